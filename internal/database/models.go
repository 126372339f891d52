package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry. The catalog is read-only from the core's
// point of view; it is queried to resolve depletion strategy and routing.
type MenuItem struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Price       decimal.Decimal    `json:"price"`
	Description string             `json:"description,omitempty"`
	Recipe      []RecipeIngredient `json:"recipe,omitempty"`
}

// RecipeIngredient maps a menu item to the stock it consumes per unit sold.
type RecipeIngredient struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// Modifier is a priced option attached to a cart line.
type Modifier struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartItem is one order line. CartID identifies the line itself: the same
// dish with different modifiers or notes stays on separate lines.
type CartItem struct {
	CartID        uuid.UUID       `json:"cart_id"`
	MenuItemID    string          `json:"menu_item_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int32           `json:"quantity"`
	Modifiers     []Modifier      `json:"modifiers,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	SeatID        string          `json:"seat_id,omitempty"`
	SentToKitchen bool            `json:"sent_to_kitchen"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Status        string          `json:"status"`
	Items         []CartItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Tip           decimal.Decimal `json:"tip"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Tax           decimal.Decimal `json:"tax"`
	FoodSales     decimal.Decimal `json:"food_sales"`
	DrinkSales    decimal.Decimal `json:"drink_sales"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TableID       string          `json:"table_id,omitempty"`
	GuestCount    int32           `json:"guest_count"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	// Depleted records whether completion ran inventory depletion, so a
	// later void/refund knows whether there is anything to reverse.
	Depleted    bool       `json:"depleted"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Payment struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Tip       decimal.Decimal `json:"tip"`
	Method    string          `json:"method"`
	CreatedAt time.Time       `json:"created_at"`
}

type InventoryItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Threshold   decimal.Decimal `json:"threshold"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Category    string          `json:"category,omitempty"`
}

type Table struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Status   string     `json:"status"`
	SeatedAt *time.Time `json:"seated_at,omitempty"`
}

// HeldOrder is the table-keyed snapshot of a parked cart.
type HeldOrder struct {
	TableID    string     `json:"table_id"`
	Items      []CartItem `json:"items"`
	GuestCount int32      `json:"guest_count"`
	HeldAt     time.Time  `json:"held_at"`
}

type Employee struct {
	ID         uuid.UUID       `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Role       string          `json:"role"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	PinHash    string          `json:"-"`
}
