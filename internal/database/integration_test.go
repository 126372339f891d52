//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/foodies-pos/api/internal/auth"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/order"
	"github.com/foodies-pos/api/internal/payment"
)

type nopNotifier struct{}

func (nopNotifier) OrderChanged(string, *database.Order) {}
func (nopNotifier) StockAlerts([]string)                 {}

type nopSyncer struct{}

func (nopSyncer) Push(*database.Order) {}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func setupDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		t.Fatalf("migrate driver: %v", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		t.Fatalf("migrate instance: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	db.Close()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func seed(t *testing.T, store *database.Queries) (managerPIN string) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.UpsertTable(ctx, database.Table{ID: "T1", Label: "Table 1", Status: enum.TableStatusOccupied}); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	if _, err := store.UpsertInventoryItem(ctx, database.InventoryItem{
		ID: "beef-patty", Name: "Beef Patty", Quantity: dec(10), Unit: "pc", Threshold: dec(2),
	}); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	if _, err := store.UpsertMenuItem(ctx, database.MenuItem{
		ID: "classic-burger", Name: "Classic Burger", Category: "Mains", Price: dec(12.50),
		Recipe: []database.RecipeIngredient{{InventoryItemID: "beef-patty", Quantity: dec(1)}},
	}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	managerPIN = "4242"
	hash, err := auth.HashPIN(managerPIN)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateEmployee(ctx, database.Employee{
		ID: uuid.New(), FirstName: "Victor", LastName: "Huang",
		Role: enum.RoleManager, PinHash: hash,
	}); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return managerPIN
}

func TestOrderLifecycle(t *testing.T) {
	pool := setupDatabase(t)
	store := database.New(pool)
	managerPIN := seed(t, store)
	ctx := context.Background()

	newOrderStore := func(db database.DBTX) order.Store { return database.New(db) }
	newPaymentStore := func(db database.DBTX) payment.Store { return database.New(db) }
	orders := order.NewService(pool, store, newOrderStore, nopNotifier{}, zerolog.Nop())
	ledger := payment.NewLedger(pool, store, newPaymentStore, nopNotifier{}, nopSyncer{}, zerolog.Nop())

	o, err := orders.Create(ctx, order.CreateParams{
		TableID:    "T1",
		GuestCount: 2,
		Items: []database.CartItem{{
			MenuItemID: "classic-burger", Name: "Classic Burger",
			Category: "Mains", Price: dec(12.50), Quantity: 2,
		}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// 25.00 + 10% tax
	if got, want := o.Total.StringFixed(2), "27.50"; got != want {
		t.Fatalf("total = %s, want %s", got, want)
	}

	if _, err := orders.UpdateStatus(ctx, o.ID, enum.OrderStatusPreparing); err != nil {
		t.Fatalf("to PREPARING: %v", err)
	}
	if _, err := orders.UpdateStatus(ctx, o.ID, enum.OrderStatusReady); err != nil {
		t.Fatalf("to READY: %v", err)
	}

	res, err := ledger.Record(ctx, payment.RecordParams{
		OrderID: o.ID, Amount: dec(10), Method: enum.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if res.Completed {
		t.Fatal("completed on partial payment")
	}

	res, err = ledger.PayInFull(ctx, o.ID, enum.PaymentMethodCard, dec(4))
	if err != nil {
		t.Fatalf("pay in full: %v", err)
	}
	if !res.Completed {
		t.Fatal("not completed after full payment")
	}
	if res.Order.PaymentMethod != payment.MethodSplit {
		t.Errorf("method = %s, want SPLIT", res.Order.PaymentMethod)
	}

	// Stock depleted through the recipe: 10 - 2 = 8.
	item, err := store.GetInventoryItem(ctx, "beef-patty")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if !item.Quantity.Equal(dec(8)) {
		t.Errorf("beef-patty = %s, want 8", item.Quantity)
	}

	table, err := store.GetTable(ctx, "T1")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if table.Status != enum.TableStatusCleaning {
		t.Errorf("table status = %s, want CLEANING", table.Status)
	}

	// A second settlement attempt must not deplete twice.
	if _, err := ledger.PayInFull(ctx, o.ID, enum.PaymentMethodCash, decimal.Zero); err == nil {
		t.Fatal("second settlement accepted")
	}

	// Void restores the stock exactly.
	voided, err := orders.Void(ctx, o.ID, managerPIN)
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != enum.OrderStatusVoided {
		t.Errorf("status = %s, want VOIDED", voided.Status)
	}
	item, _ = store.GetInventoryItem(ctx, "beef-patty")
	if !item.Quantity.Equal(dec(10)) {
		t.Errorf("beef-patty after void = %s, want 10", item.Quantity)
	}

	// Voiding twice is a conflict.
	if _, err := orders.Void(ctx, o.ID, managerPIN); err == nil {
		t.Fatal("double void accepted")
	}
}
