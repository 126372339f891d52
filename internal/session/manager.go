// Package session tracks table occupancy and the parked carts that
// float between terminals until they become orders.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/order"
	"github.com/foodies-pos/api/internal/ticket"
)

var (
	ErrTableNotFound = fmt.Errorf("%w: table not found", apperr.ErrNotFound)
	ErrEmptyCart     = fmt.Errorf("%w: cart has no items", apperr.ErrValidation)
	ErrNothingToSend = fmt.Errorf("%w: no unsent items on table", apperr.ErrValidation)
)

type Store interface {
	GetTable(ctx context.Context, id string) (database.Table, error)
	ListTables(ctx context.Context) ([]database.Table, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.Table, error)
	GetHeldOrder(ctx context.Context, tableID string) (database.HeldOrder, error)
	UpsertHeldOrder(ctx context.Context, h database.HeldOrder) error
	DeleteHeldOrder(ctx context.Context, tableID string) error
}

// OrderSaver persists fired carts as pending orders.
type OrderSaver interface {
	Save(ctx context.Context, o database.Order) (*database.Order, error)
}

// TicketSink receives station jobs as carts are fired.
type TicketSink interface {
	Tickets(jobs []ticket.Job)
}

type Manager struct {
	store   Store
	saver   OrderSaver
	tickets TicketSink
	log     zerolog.Logger
}

func NewManager(store Store, saver OrderSaver, tickets TicketSink, log zerolog.Logger) *Manager {
	return &Manager{store: store, saver: saver, tickets: tickets, log: log}
}

// State is what a terminal needs to resume work on a table: the table
// itself and whatever cart was parked on it.
type State struct {
	Table      database.Table      `json:"table"`
	Items      []database.CartItem `json:"items"`
	GuestCount int32               `json:"guest_count"`
}

func (m *Manager) ListTables(ctx context.Context) ([]database.Table, error) {
	return m.store.ListTables(ctx)
}

// Select seats a terminal at a table and restores its parked cart, if
// any. A free table becomes OCCUPIED with the seat time stamped now.
func (m *Manager) Select(ctx context.Context, tableID string, guestCount int32) (*State, error) {
	t, err := m.store.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	state := &State{Table: t, GuestCount: guestCount}
	held, err := m.store.GetHeldOrder(ctx, tableID)
	switch {
	case err == nil:
		state.Items = held.Items
		if held.GuestCount > 0 {
			state.GuestCount = held.GuestCount
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get held order: %w", err)
	}

	if t.Status == enum.TableStatusAvailable || t.Status == enum.TableStatusCleaning {
		now := time.Now().UTC()
		t, err = m.store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:       tableID,
			Status:   enum.TableStatusOccupied,
			SeatedAt: &now,
		})
		if err != nil {
			return nil, fmt.Errorf("occupy table: %w", err)
		}
		state.Table = t
	}
	return state, nil
}

// Park saves the terminal's cart against the table so another terminal
// can pick it up. Parking replaces any previously parked cart.
func (m *Manager) Park(ctx context.Context, tableID string, items []database.CartItem, guestCount int32) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	t, err := m.store.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTableNotFound
		}
		return fmt.Errorf("get table: %w", err)
	}

	err = m.store.UpsertHeldOrder(ctx, database.HeldOrder{
		TableID:    tableID,
		Items:      items,
		GuestCount: guestCount,
		HeldAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("park cart: %w", err)
	}

	if t.Status != enum.TableStatusOccupied {
		seated := t.SeatedAt
		if seated == nil {
			now := time.Now().UTC()
			seated = &now
		}
		_, err = m.store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:       tableID,
			Status:   enum.TableStatusOccupied,
			SeatedAt: seated,
		})
		if err != nil {
			return fmt.Errorf("occupy table: %w", err)
		}
	}
	m.log.Debug().Str("table_id", tableID).Int("items", len(items)).Msg("cart parked")
	return nil
}

// Send fires the table's unsent items to their stations and persists
// them as a pending order, so each fire is an additive partial order.
// Fired items are marked sent, so re-firing the table never duplicates
// a ticket.
func (m *Manager) Send(ctx context.Context, tableID string, employeeID uuid.UUID) ([]ticket.Job, error) {
	held, err := m.store.GetHeldOrder(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNothingToSend
		}
		return nil, fmt.Errorf("get held order: %w", err)
	}

	var unsent []database.CartItem
	for _, item := range held.Items {
		if !item.SentToKitchen {
			unsent = append(unsent, item)
		}
	}
	if len(unsent) == 0 {
		return nil, ErrNothingToSend
	}

	saved, err := m.saver.Save(ctx, order.Build(order.CreateParams{
		Items:      unsent,
		TableID:    tableID,
		GuestCount: held.GuestCount,
		EmployeeID: employeeID,
	}))
	if err != nil {
		return nil, fmt.Errorf("persist fired order: %w", err)
	}
	jobs := ticket.Partition(saved, time.Now().UTC())

	for i := range held.Items {
		held.Items[i].SentToKitchen = true
	}
	if err := m.store.UpsertHeldOrder(ctx, held); err != nil {
		return nil, fmt.Errorf("mark items sent: %w", err)
	}

	t, err := m.store.GetTable(ctx, tableID)
	if err == nil && t.Status == enum.TableStatusAvailable {
		now := time.Now().UTC()
		_, err = m.store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			ID:       tableID,
			Status:   enum.TableStatusOccupied,
			SeatedAt: &now,
		})
		if err != nil {
			return nil, fmt.Errorf("occupy table: %w", err)
		}
	}

	m.tickets.Tickets(jobs)
	m.log.Info().
		Str("table_id", tableID).
		Str("order_id", saved.ID.String()).
		Int("jobs", len(jobs)).
		Msg("tickets fired")
	return jobs, nil
}

// Clear drops the parked cart and frees the table. Used when a party
// walks or after the table has been bussed.
func (m *Manager) Clear(ctx context.Context, tableID string) error {
	if err := m.store.DeleteHeldOrder(ctx, tableID); err != nil {
		return fmt.Errorf("drop held order: %w", err)
	}
	_, err := m.store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		ID:     tableID,
		Status: enum.TableStatusAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTableNotFound
		}
		return fmt.Errorf("free table: %w", err)
	}
	return nil
}

// MarkBilled flags the table as waiting on payment.
func (m *Manager) MarkBilled(ctx context.Context, tableID string) (database.Table, error) {
	t, err := m.store.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	return m.store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		ID:       tableID,
		Status:   enum.TableStatusBilled,
		SeatedAt: t.SeatedAt,
	})
}
