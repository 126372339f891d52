package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusVoided    = "VOIDED"
	OrderStatusRefunded  = "REFUNDED"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
	TableStatusBilled    = "BILLED"
	TableStatusCleaning  = "CLEANING"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	RoleOwner   = "OWNER"
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleWaiter  = "WAITER"
	RoleCashier = "CASHIER"
	RoleChef    = "CHEF"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	DepartmentKitchen = "KITCHEN"
	DepartmentBar     = "BAR"
)

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
)

// IsTerminalOrderStatus reports whether the given status ends the order's
// lifecycle. COMPLETED is terminal for everything except a refund.
func IsTerminalOrderStatus(s string) bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusVoided, OrderStatusRefunded:
		return true
	}
	return false
}
