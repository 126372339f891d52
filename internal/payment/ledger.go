// Package payment records split payments against orders and settles
// the order once the ledger covers the total.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/order"
)

// Tolerance absorbs sub-cent drift when split payments are rounded by
// the client. An order is settled once the unpaid remainder is at or
// below it.
var Tolerance = decimal.NewFromFloat(0.01)

// MethodSplit is recorded on orders settled across multiple payment
// methods.
const MethodSplit = "SPLIT"

var (
	ErrOrderNotFound  = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrInvalidAmount  = fmt.Errorf("%w: payment amount must be positive", apperr.ErrValidation)
	ErrInvalidMethod  = fmt.Errorf("%w: unknown payment method", apperr.ErrValidation)
	ErrAlreadySettled = fmt.Errorf("%w: order is already settled", apperr.ErrConflict)
)

type Store interface {
	order.Store
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
	SumPaymentsByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

// Syncer pushes settled orders to the upstream sales platform. The
// implementation is fire-and-forget and never fails the sale.
type Syncer interface {
	Push(o *database.Order)
}

type Ledger struct {
	db       order.TxBeginner
	store    Store
	newStore func(database.DBTX) Store
	notifier order.Notifier
	sales    Syncer
	log      zerolog.Logger
}

func NewLedger(db order.TxBeginner, store Store, newStore func(database.DBTX) Store, notifier order.Notifier, sales Syncer, log zerolog.Logger) *Ledger {
	return &Ledger{
		db:       db,
		store:    store,
		newStore: newStore,
		notifier: notifier,
		sales:    sales,
		log:      log,
	}
}

type RecordParams struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Tip     decimal.Decimal
	Method  string
}

// Result describes the ledger state after one payment.
type Result struct {
	Payment   database.Payment `json:"payment"`
	Order     database.Order   `json:"order"`
	Paid      decimal.Decimal  `json:"paid"`
	Remaining decimal.Decimal  `json:"remaining"`
	Change    decimal.Decimal  `json:"change"`
	Completed bool             `json:"completed"`
	Alerts    []string         `json:"alerts,omitempty"`
}

// Record applies one payment to an order. When the running total
// reaches the order total, minus Tolerance, the order is settled in
// the same transaction: status, revenue split, inventory, table.
func (l *Ledger) Record(ctx context.Context, arg RecordParams) (*Result, error) {
	if !arg.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	return l.record(ctx, arg, false)
}

// PayInFull settles the outstanding balance with a single payment.
func (l *Ledger) PayInFull(ctx context.Context, orderID uuid.UUID, method string, tip decimal.Decimal) (*Result, error) {
	return l.record(ctx, RecordParams{OrderID: orderID, Method: method, Tip: tip}, true)
}

func (l *Ledger) record(ctx context.Context, arg RecordParams, payFull bool) (*Result, error) {
	if arg.Method != enum.PaymentMethodCash && arg.Method != enum.PaymentMethodCard {
		return nil, ErrInvalidMethod
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	store := l.newStore(tx)
	o, err := store.GetOrderForUpdate(ctx, arg.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if o.Status == enum.OrderStatusCompleted || enum.IsTerminalOrderStatus(o.Status) {
		return nil, ErrAlreadySettled
	}

	if payFull {
		paid, err := store.SumPaymentsByOrder(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("sum payments: %w", err)
		}
		arg.Amount = o.Total.Sub(paid)
		if !arg.Amount.GreaterThan(decimal.Zero) {
			return nil, ErrAlreadySettled
		}
	}

	pmt, err := store.CreatePayment(ctx, database.CreatePaymentParams{
		OrderID: o.ID,
		Amount:  arg.Amount,
		Tip:     arg.Tip,
		Method:  arg.Method,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	paid, err := store.SumPaymentsByOrder(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}
	remaining := o.Total.Sub(paid)

	res := &Result{
		Payment:   pmt,
		Order:     o,
		Paid:      paid,
		Remaining: remaining,
	}
	if remaining.IsNegative() {
		res.Remaining = decimal.Zero
		res.Change = remaining.Neg()
	}

	if remaining.LessThanOrEqual(Tolerance) {
		settled, alerts, err := l.settle(ctx, store, &o)
		if err != nil {
			return nil, err
		}
		res.Order = *settled
		res.Completed = true
		res.Alerts = alerts
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	l.log.Info().
		Str("order_id", o.ID.String()).
		Str("method", arg.Method).
		Str("amount", arg.Amount.StringFixed(2)).
		Str("remaining", res.Remaining.StringFixed(2)).
		Bool("completed", res.Completed).
		Msg("payment recorded")

	if res.Completed {
		l.notifier.OrderChanged("order.completed", &res.Order)
		if len(res.Alerts) > 0 {
			l.notifier.StockAlerts(res.Alerts)
		}
		settled := res.Order
		go l.sales.Push(&settled)
	}
	return res, nil
}

// settle completes the order and stamps the aggregate tip and payment
// method from the full payment list.
func (l *Ledger) settle(ctx context.Context, store Store, o *database.Order) (*database.Order, []string, error) {
	settled, alerts, err := order.Settle(ctx, store, o)
	if err != nil {
		return nil, nil, err
	}

	payments, err := store.ListPaymentsByOrder(ctx, o.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list payments: %w", err)
	}
	tip := decimal.Zero
	method := ""
	for _, p := range payments {
		tip = tip.Add(p.Tip)
		switch method {
		case "", p.Method:
			method = p.Method
		default:
			method = MethodSplit
		}
	}
	settled.Tip = tip
	settled.PaymentMethod = method

	settled, err = store.UpsertOrder(ctx, settled)
	if err != nil {
		return nil, nil, fmt.Errorf("stamp settlement: %w", err)
	}
	return &settled, alerts, nil
}

// ListForOrder returns the ledger lines for one order.
func (l *Ledger) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error) {
	return l.store.ListPaymentsByOrder(ctx, orderID)
}
