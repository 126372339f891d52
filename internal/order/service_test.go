package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/auth"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/order"
)

type mockStore struct {
	orders    map[uuid.UUID]database.Order
	menu      map[string]database.MenuItem
	stock     []database.InventoryItem
	employees []database.Employee
	tables    map[string]database.Table
}

func newMockStore() *mockStore {
	return &mockStore{
		orders: map[uuid.UUID]database.Order{},
		menu:   map[string]database.MenuItem{},
		tables: map[string]database.Table{},
	}
}

func (m *mockStore) UpsertOrder(_ context.Context, o database.Order) (database.Order, error) {
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *mockStore) ListOrders(_ context.Context, _ database.ListOrdersParams) ([]database.Order, error) {
	var out []database.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockStore) ListActiveOrders(_ context.Context) ([]database.Order, error) {
	var out []database.Order
	for _, o := range m.orders {
		if !enum.IsTerminalOrderStatus(o.Status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockStore) TransitionOrder(_ context.Context, arg database.TransitionOrderParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	for _, from := range arg.From {
		if o.Status == from {
			o.Status = arg.Status
			m.orders[arg.ID] = o
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockStore) CompleteOrder(_ context.Context, arg database.CompleteOrderParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || enum.IsTerminalOrderStatus(o.Status) || o.Status == enum.OrderStatusCompleted {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = enum.OrderStatusCompleted
	o.Tax = arg.Tax
	o.FoodSales = arg.FoodSales
	o.DrinkSales = arg.DrinkSales
	o.Depleted = true
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockStore) SetOrderDepleted(_ context.Context, id uuid.UUID, depleted bool) error {
	o := m.orders[id]
	o.Depleted = depleted
	m.orders[id] = o
	return nil
}

func (m *mockStore) UpdateTableStatus(_ context.Context, arg database.UpdateTableStatusParams) (database.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	t.SeatedAt = arg.SeatedAt
	m.tables[arg.ID] = t
	return t, nil
}

func (m *mockStore) ListEmployeesByRoles(_ context.Context, roles []string) ([]database.Employee, error) {
	var out []database.Employee
	for _, e := range m.employees {
		for _, role := range roles {
			if e.Role == role {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (m *mockStore) GetMenuItem(_ context.Context, id string) (database.MenuItem, error) {
	item, ok := m.menu[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockStore) ListInventory(_ context.Context) ([]database.InventoryItem, error) {
	return m.stock, nil
}

func (m *mockStore) UpdateInventoryQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	for i := range m.stock {
		if m.stock[i].ID == id {
			m.stock[i].Quantity = quantity
		}
	}
	return nil
}

type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(_ context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

type mockDB struct {
	tx *mockTx
}

func (m *mockDB) Begin(_ context.Context) (pgx.Tx, error) {
	m.tx = &mockTx{}
	return m.tx, nil
}

type mockNotifier struct {
	events []string
	alerts []string
}

func (m *mockNotifier) OrderChanged(event string, _ *database.Order) {
	m.events = append(m.events, event)
}

func (m *mockNotifier) StockAlerts(alerts []string) {
	m.alerts = append(m.alerts, alerts...)
}

func newService(store *mockStore) (*order.Service, *mockDB, *mockNotifier) {
	db := &mockDB{}
	notifier := &mockNotifier{}
	svc := order.NewService(db, store,
		func(database.DBTX) order.Store { return store },
		notifier, zerolog.Nop())
	return svc, db, notifier
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestCreateComputesTotals(t *testing.T) {
	store := newMockStore()
	svc, _, notifier := newService(store)

	o, err := svc.Create(context.Background(), order.CreateParams{
		Items: []database.CartItem{
			{Name: "Burger", Category: "Mains", Price: dec(10), Quantity: 2},
			{Name: "Cola", Category: "Soft Drinks", Price: dec(3), Quantity: 1},
		},
		TableID:    "T1",
		GuestCount: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.Status != enum.OrderStatusPending {
		t.Errorf("status = %s, want PENDING", o.Status)
	}
	if got, want := o.Total.StringFixed(2), "25.30"; got != want {
		t.Errorf("total = %s, want %s", got, want)
	}
	if got, want := o.DrinkSales.StringFixed(2), "3.00"; got != want {
		t.Errorf("drink sales = %s, want %s", got, want)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "order.created" {
		t.Errorf("events = %v", notifier.events)
	}
}

func TestCreateEmptyOrder(t *testing.T) {
	svc, _, _ := newService(newMockStore())
	_, err := svc.Create(context.Background(), order.CreateParams{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdateStatusRejectsSettlementStates(t *testing.T) {
	svc, _, _ := newService(newMockStore())
	for _, status := range []string{enum.OrderStatusCompleted, enum.OrderStatusCancelled, enum.OrderStatusVoided, "BOGUS"} {
		if _, err := svc.UpdateStatus(context.Background(), uuid.New(), status); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("UpdateStatus(%s) err = %v, want validation error", status, err)
		}
	}
}

func TestUpdateStatusTransition(t *testing.T) {
	store := newMockStore()
	id := uuid.New()
	store.orders[id] = database.Order{ID: id, Status: enum.OrderStatusPending}
	svc, _, _ := newService(store)

	o, err := svc.UpdateStatus(context.Background(), id, enum.OrderStatusPreparing)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if o.Status != enum.OrderStatusPreparing {
		t.Errorf("status = %s, want PREPARING", o.Status)
	}

	// PENDING -> READY is allowed, but READY -> PREPARING is not.
	if _, err := svc.UpdateStatus(context.Background(), id, enum.OrderStatusReady); err != nil {
		t.Fatalf("UpdateStatus to READY: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), id, enum.OrderStatusPreparing); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("backwards transition err = %v, want conflict", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newService(newMockStore())
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enum.OrderStatusReady)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCancelRestoresDepletedStock(t *testing.T) {
	store := newMockStore()
	store.stock = []database.InventoryItem{
		{ID: "rum", Name: "Mojito Rum Base", Quantity: dec(3), Unit: "btl", Threshold: dec(1)},
	}
	store.tables["T2"] = database.Table{ID: "T2", Status: enum.TableStatusOccupied}
	id := uuid.New()
	store.orders[id] = database.Order{
		ID:       id,
		Status:   enum.OrderStatusPreparing,
		TableID:  "T2",
		Depleted: true,
		Items:    []database.CartItem{{MenuItemID: "mojito", Name: "Mojito", Quantity: 2}},
	}
	svc, db, _ := newService(store)

	o, err := svc.Cancel(context.Background(), id)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if o.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", o.Status)
	}
	if o.Depleted {
		t.Error("depleted flag not cleared")
	}
	if got := store.stock[0].Quantity; !got.Equal(dec(5)) {
		t.Errorf("rum = %s, want 5 after reversal", got)
	}
	if store.tables["T2"].Status != enum.TableStatusAvailable {
		t.Errorf("table status = %s, want AVAILABLE", store.tables["T2"].Status)
	}
	if !db.tx.committed {
		t.Error("transaction not committed")
	}
}

func TestCancelSkipsReversalWhenNotDepleted(t *testing.T) {
	store := newMockStore()
	store.stock = []database.InventoryItem{
		{ID: "rum", Name: "Mojito Rum Base", Quantity: dec(3), Unit: "btl", Threshold: dec(1)},
	}
	id := uuid.New()
	store.orders[id] = database.Order{
		ID:     id,
		Status: enum.OrderStatusPending,
		Items:  []database.CartItem{{MenuItemID: "mojito", Name: "Mojito", Quantity: 2}},
	}
	svc, _, _ := newService(store)

	if _, err := svc.Cancel(context.Background(), id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := store.stock[0].Quantity; !got.Equal(dec(3)) {
		t.Errorf("rum = %s, want untouched 3", got)
	}
}

func TestVoidRequiresManagerPIN(t *testing.T) {
	store := newMockStore()
	hash, err := auth.HashPIN("4242")
	if err != nil {
		t.Fatal(err)
	}
	store.employees = []database.Employee{
		{ID: uuid.New(), Role: enum.RoleManager, PinHash: hash},
	}
	id := uuid.New()
	store.orders[id] = database.Order{ID: id, Status: enum.OrderStatusCompleted, Depleted: true}
	svc, _, _ := newService(store)

	if _, err := svc.Void(context.Background(), id, "0000"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("bad PIN err = %v, want unauthorized", err)
	}

	o, err := svc.Void(context.Background(), id, "4242")
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if o.Status != enum.OrderStatusVoided {
		t.Errorf("status = %s, want VOIDED", o.Status)
	}
}

func TestVoidPendingOrder(t *testing.T) {
	store := newMockStore()
	hash, _ := auth.HashPIN("4242")
	store.employees = []database.Employee{
		{ID: uuid.New(), Role: enum.RoleOwner, PinHash: hash},
	}
	store.stock = []database.InventoryItem{
		{ID: "rum", Name: "Mojito Rum Base", Quantity: dec(3), Unit: "btl", Threshold: dec(1)},
	}
	id := uuid.New()
	store.orders[id] = database.Order{
		ID:     id,
		Status: enum.OrderStatusPending,
		Items:  []database.CartItem{{MenuItemID: "mojito", Name: "Mojito", Quantity: 2}},
	}
	svc, _, _ := newService(store)

	o, err := svc.Void(context.Background(), id, "4242")
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if o.Status != enum.OrderStatusVoided {
		t.Errorf("status = %s, want VOIDED", o.Status)
	}
	// A pending order never depleted stock, so nothing comes back.
	if got := store.stock[0].Quantity; !got.Equal(dec(3)) {
		t.Errorf("rum = %s, want untouched 3", got)
	}
}

func TestVoidRejectsCancelledOrder(t *testing.T) {
	store := newMockStore()
	hash, _ := auth.HashPIN("4242")
	store.employees = []database.Employee{
		{ID: uuid.New(), Role: enum.RoleOwner, PinHash: hash},
	}
	id := uuid.New()
	store.orders[id] = database.Order{ID: id, Status: enum.OrderStatusCancelled}
	svc, _, _ := newService(store)

	if _, err := svc.Void(context.Background(), id, "4242"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestSettle(t *testing.T) {
	store := newMockStore()
	store.stock = []database.InventoryItem{
		{ID: "rum", Name: "Mojito Rum Base", Quantity: dec(2), Unit: "btl", Threshold: dec(2)},
	}
	store.tables["T3"] = database.Table{ID: "T3", Status: enum.TableStatusBilled}
	id := uuid.New()
	o := database.Order{
		ID:      id,
		Status:  enum.OrderStatusReady,
		TableID: "T3",
		Items:   []database.CartItem{{MenuItemID: "mojito", Name: "Mojito", Category: "Cocktails", Price: dec(9), Quantity: 1}},
	}
	store.orders[id] = o

	completed, alerts, err := order.Settle(context.Background(), store, &o)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if completed.Status != enum.OrderStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", completed.Status)
	}
	if !completed.Depleted {
		t.Error("depleted flag not set")
	}
	if got, want := completed.Tax.StringFixed(2), "0.90"; got != want {
		t.Errorf("tax = %s, want %s", got, want)
	}
	if len(alerts) != 1 {
		t.Errorf("alerts = %v, want low stock alert", alerts)
	}
	if store.tables["T3"].Status != enum.TableStatusCleaning {
		t.Errorf("table status = %s, want CLEANING", store.tables["T3"].Status)
	}

	// Settling twice is a conflict, not a double depletion.
	if _, _, err := order.Settle(context.Background(), store, &o); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second settle err = %v, want conflict", err)
	}
	if got := store.stock[0].Quantity; !got.Equal(dec(1)) {
		t.Errorf("rum = %s, want 1", got)
	}
}
