// Package order owns the order lifecycle: creation, kitchen status
// flow, settlement side effects, and the destructive paths behind a
// manager PIN.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/auth"
	"github.com/foodies-pos/api/internal/billing"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/inventory"
)

var (
	ErrNotFound          = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrEmptyOrder        = fmt.Errorf("%w: order has no items", apperr.ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: unknown or unsettable status", apperr.ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: illegal status transition", apperr.ErrConflict)
)

// transitionSources maps a target status to the statuses it may be
// reached from. Completion and the terminal states are driven by the
// payment and void/refund paths, never by a plain status update.
var transitionSources = map[string][]string{
	enum.OrderStatusPreparing: {enum.OrderStatusPending},
	enum.OrderStatusReady:     {enum.OrderStatusPending, enum.OrderStatusPreparing},
	enum.OrderStatusCompleted: {enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady},
	enum.OrderStatusCancelled: {enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady},
	enum.OrderStatusVoided:    {enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady, enum.OrderStatusCompleted},
	enum.OrderStatusRefunded:  {enum.OrderStatusCompleted},
}

type Store interface {
	UpsertOrder(ctx context.Context, o database.Order) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListActiveOrders(ctx context.Context) ([]database.Order, error)
	TransitionOrder(ctx context.Context, arg database.TransitionOrderParams) (database.Order, error)
	CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	SetOrderDepleted(ctx context.Context, id uuid.UUID, depleted bool) error
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.Table, error)
	ListEmployeesByRoles(ctx context.Context, roles []string) ([]database.Employee, error)

	inventory.Store
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier pushes order events to connected terminals.
type Notifier interface {
	OrderChanged(event string, o *database.Order)
	StockAlerts(alerts []string)
}

type Service struct {
	db       TxBeginner
	store    Store
	newStore func(database.DBTX) Store
	notifier Notifier
	log      zerolog.Logger
}

func NewService(db TxBeginner, store Store, newStore func(database.DBTX) Store, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		store:    store,
		newStore: newStore,
		notifier: notifier,
		log:      log,
	}
}

type CreateParams struct {
	Items      []database.CartItem
	TableID    string
	GuestCount int32
	EmployeeID uuid.UUID
}

// Build prices a cart into a new PENDING order without persisting it,
// so callers can route it through either the primary store or the
// offline queue.
func Build(arg CreateParams) database.Order {
	totals := billing.ComputeTotals(arg.Items)
	return database.Order{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Status:     enum.OrderStatusPending,
		Items:      arg.Items,
		Total:      totals.Total,
		Tax:        totals.Tax,
		FoodSales:  totals.FoodSales,
		DrinkSales: totals.DrinkSales,
		TableID:    arg.TableID,
		GuestCount: arg.GuestCount,
		EmployeeID: arg.EmployeeID,
	}
}

func (s *Service) Create(ctx context.Context, arg CreateParams) (*database.Order, error) {
	if len(arg.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	return s.Save(ctx, Build(arg))
}

// Save persists an order as given, keeping its id and timestamps.
// Offline replay relies on the upsert being idempotent by id.
func (s *Service) Save(ctx context.Context, o database.Order) (*database.Order, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enum.OrderStatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	saved, err := s.store.UpsertOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("upsert order: %w", err)
	}
	s.notifier.OrderChanged("order.created", &saved)
	return &saved, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*database.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *Service) List(ctx context.Context, limit, offset int32) ([]database.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListOrders(ctx, database.ListOrdersParams{Limit: limit, Offset: offset})
}

func (s *Service) ListActive(ctx context.Context) ([]database.Order, error) {
	return s.store.ListActiveOrders(ctx)
}

// UpdateStatus moves an order along the kitchen flow. Only PREPARING
// and READY are settable here.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*database.Order, error) {
	if status != enum.OrderStatusPreparing && status != enum.OrderStatusReady {
		return nil, ErrInvalidStatus
	}
	o, err := s.store.TransitionOrder(ctx, database.TransitionOrderParams{
		ID:     id,
		Status: status,
		From:   transitionSources[status],
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.transitionConflict(ctx, id)
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}
	s.notifier.OrderChanged("order.status", &o)
	return &o, nil
}

// Cancel aborts an active order. Stock is restored only when this
// order actually depleted it, so cancelling a never-completed order
// leaves inventory alone.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*database.Order, error) {
	return s.reverseTo(ctx, id, enum.OrderStatusCancelled)
}

// Void kills an order with manager authorization. Unlike Cancel it
// also applies to completed orders; stock is restored only when the
// order depleted it.
func (s *Service) Void(ctx context.Context, id uuid.UUID, managerPIN string) (*database.Order, error) {
	if _, err := auth.VerifyManagerPIN(ctx, s.store, managerPIN); err != nil {
		return nil, err
	}
	return s.reverseTo(ctx, id, enum.OrderStatusVoided)
}

// Refund works like Void but keeps the order distinguishable for
// end-of-day reporting.
func (s *Service) Refund(ctx context.Context, id uuid.UUID, managerPIN string) (*database.Order, error) {
	if _, err := auth.VerifyManagerPIN(ctx, s.store, managerPIN); err != nil {
		return nil, err
	}
	return s.reverseTo(ctx, id, enum.OrderStatusRefunded)
}

func (s *Service) reverseTo(ctx context.Context, id uuid.UUID, status string) (*database.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)
	o, err := store.GetOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	updated, err := store.TransitionOrder(ctx, database.TransitionOrderParams{
		ID:     id,
		Status: status,
		From:   transitionSources[status],
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: cannot %s order in status %s",
				apperr.ErrConflict, status, o.Status)
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}

	if o.Depleted {
		if err := inventory.Reverse(ctx, store, o.Items); err != nil {
			return nil, fmt.Errorf("reverse inventory: %w", err)
		}
		if err := store.SetOrderDepleted(ctx, id, false); err != nil {
			return nil, fmt.Errorf("clear depleted flag: %w", err)
		}
		updated.Depleted = false
	}

	if o.TableID != "" {
		_, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:     o.TableID,
			Status: enum.TableStatusAvailable,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("order_id", id.String()).
		Str("status", status).
		Bool("stock_restored", o.Depleted).
		Msg("order reversed")
	s.notifier.OrderChanged("order.status", &updated)
	return &updated, nil
}

// transitionConflict distinguishes a missing order from a lost
// compare-and-transition race.
func (s *Service) transitionConflict(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetOrder(ctx, id); errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// Settle finalizes a fully paid order inside the caller's transaction:
// compare-and-set to COMPLETED, revenue split, stock depletion, table
// release. Returns the completed order and any stock alerts.
func Settle(ctx context.Context, store Store, o *database.Order) (database.Order, []string, error) {
	totals := billing.ComputeTotals(o.Items)
	completed, err := store.CompleteOrder(ctx, database.CompleteOrderParams{
		ID:         o.ID,
		Tax:        totals.Tax,
		FoodSales:  totals.FoodSales,
		DrinkSales: totals.DrinkSales,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, fmt.Errorf("%w: order already settled", apperr.ErrConflict)
		}
		return database.Order{}, nil, fmt.Errorf("complete order: %w", err)
	}

	alerts, err := inventory.Deplete(ctx, store, o.Items)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("deplete inventory: %w", err)
	}

	if o.TableID != "" {
		_, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:     o.TableID,
			Status: enum.TableStatusCleaning,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, fmt.Errorf("release table: %w", err)
		}
	}
	return completed, alerts, nil
}
