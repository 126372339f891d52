// Seeds a fresh database with a demo floor plan, menu, stock, and
// staff so a terminal can log in and ring orders immediately.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/auth"
	"github.com/foodies-pos/api/internal/config"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
)

func main() {
	godotenv.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	store := database.New(pool)

	seedTables(ctx, store, log)
	seedInventory(ctx, store, log)
	seedMenu(ctx, store, log)
	seedEmployees(ctx, store, log)
	log.Info().Msg("seed complete")
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func seedTables(ctx context.Context, store *database.Queries, log zerolog.Logger) {
	for _, t := range []database.Table{
		{ID: "T1", Label: "Table 1", Status: enum.TableStatusAvailable},
		{ID: "T2", Label: "Table 2", Status: enum.TableStatusAvailable},
		{ID: "T3", Label: "Table 3", Status: enum.TableStatusAvailable},
		{ID: "T4", Label: "Table 4", Status: enum.TableStatusAvailable},
		{ID: "B1", Label: "Bar Seat 1", Status: enum.TableStatusAvailable},
		{ID: "B2", Label: "Bar Seat 2", Status: enum.TableStatusAvailable},
	} {
		if _, err := store.UpsertTable(ctx, t); err != nil {
			log.Fatal().Err(err).Str("table", t.ID).Msg("seed table")
		}
	}
}

func seedInventory(ctx context.Context, store *database.Queries, log zerolog.Logger) {
	for _, item := range []database.InventoryItem{
		{ID: "beef-patty", Name: "Beef Patty", Quantity: dec(40), Unit: "pc", Threshold: dec(10), CostPerUnit: dec(1.80), Category: "Protein"},
		{ID: "burger-bun", Name: "Burger Bun", Quantity: dec(50), Unit: "pc", Threshold: dec(12), CostPerUnit: dec(0.40), Category: "Bakery"},
		{ID: "fries", Name: "Fries", Quantity: dec(25), Unit: "kg", Threshold: dec(5), CostPerUnit: dec(2.10), Category: "Frozen"},
		{ID: "house-red", Name: "House Red Wine", Quantity: dec(18), Unit: "btl", Threshold: dec(4), CostPerUnit: dec(6.50), Category: "Bar"},
		{ID: "white-rum", Name: "Mojito White Rum", Quantity: dec(6), Unit: "btl", Threshold: dec(2), CostPerUnit: dec(14), Category: "Bar"},
		{ID: "cola", Name: "Cola", Quantity: dec(72), Unit: "can", Threshold: dec(24), CostPerUnit: dec(0.35), Category: "Soft Drinks"},
	} {
		if _, err := store.UpsertInventoryItem(ctx, item); err != nil {
			log.Fatal().Err(err).Str("item", item.ID).Msg("seed inventory")
		}
	}
}

func seedMenu(ctx context.Context, store *database.Queries, log zerolog.Logger) {
	for _, m := range []database.MenuItem{
		{
			ID: "classic-burger", Name: "Classic Burger", Category: "Mains", Price: dec(12.50),
			Description: "Beef patty, brioche bun, house sauce",
			Recipe: []database.RecipeIngredient{
				{InventoryItemID: "beef-patty", Quantity: dec(1)},
				{InventoryItemID: "burger-bun", Quantity: dec(1)},
			},
		},
		{
			ID: "fries-side", Name: "Fries", Category: "Sides", Price: dec(4),
			Recipe: []database.RecipeIngredient{
				{InventoryItemID: "fries", Quantity: dec(0.2)},
			},
		},
		// No recipe: these deplete by name match against inventory.
		{ID: "house-red-glass", Name: "House Red Wine", Category: "Wine", Price: dec(7.50)},
		{ID: "mojito", Name: "Mojito", Category: "Cocktails", Price: dec(9)},
		{ID: "cola", Name: "Cola", Category: "Soft Drinks", Price: dec(3)},
	} {
		if _, err := store.UpsertMenuItem(ctx, m); err != nil {
			log.Fatal().Err(err).Str("item", m.ID).Msg("seed menu")
		}
	}
}

func seedEmployees(ctx context.Context, store *database.Queries, log zerolog.Logger) {
	existing, err := store.ListEmployees(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list employees")
	}
	if len(existing) > 0 {
		log.Info().Int("count", len(existing)).Msg("employees already seeded, skipping")
		return
	}

	staff := []struct {
		first, last, role, pin string
		rate                   float64
	}{
		{"Olivia", "Marsh", enum.RoleOwner, "9001", 0},
		{"Victor", "Huang", enum.RoleManager, "4242", 28},
		{"Dana", "Reyes", enum.RoleWaiter, "1111", 16},
		{"Sam", "Ortiz", enum.RoleCashier, "2222", 17},
		{"Lena", "Kovac", enum.RoleChef, "3333", 22},
	}
	for _, s := range staff {
		hash, err := auth.HashPIN(s.pin)
		if err != nil {
			log.Fatal().Err(err).Msg("hash pin")
		}
		_, err = store.CreateEmployee(ctx, database.Employee{
			ID:         uuid.New(),
			FirstName:  s.first,
			LastName:   s.last,
			Role:       s.role,
			HourlyRate: dec(s.rate),
			PinHash:    hash,
		})
		if err != nil {
			log.Fatal().Err(err).Str("employee", s.first).Msg("seed employee")
		}
	}
}
