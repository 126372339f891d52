package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/config"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/handler"
	"github.com/foodies-pos/api/internal/offline"
	"github.com/foodies-pos/api/internal/order"
	"github.com/foodies-pos/api/internal/payment"
	"github.com/foodies-pos/api/internal/reports"
	"github.com/foodies-pos/api/internal/router"
	"github.com/foodies-pos/api/internal/sales"
	"github.com/foodies-pos/api/internal/session"
	"github.com/foodies-pos/api/internal/ws"
)

func main() {
	godotenv.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	if err := runMigrations(cfg); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	queue, err := offline.Open(cfg.OfflineDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open offline queue")
	}
	defer queue.Close()

	store := database.New(pool)
	hub := ws.NewHub(log)
	go hub.Run()

	salesClient := sales.NewClient(cfg.SalesSyncURL, cfg.SalesAPIKey, cfg.SalesAPISecret, log)

	orderSvc := order.NewService(pool, store,
		func(db database.DBTX) order.Store { return database.New(db) },
		hub, log)
	ledger := payment.NewLedger(pool, store,
		func(db database.DBTX) payment.Store { return database.New(db) },
		hub, salesClient, log)
	sessions := session.NewManager(store, orderSvc, hub, log)
	offlineSvc := offline.NewService(queue, orderSvc, log)
	reportSvc := reports.NewService(store)

	h := router.New(router.Deps{
		JWTSecret: cfg.JWTSecret,
		Auth:      handler.NewAuthHandler(cfg.JWTSecret, store),
		Orders:    handler.NewOrdersHandler(orderSvc, offlineSvc, ledger),
		Tables:    handler.NewTablesHandler(sessions),
		Inventory: handler.NewInventoryHandler(store),
		Menu:      handler.NewMenuHandler(store),
		Reports:   handler.NewReportsHandler(reportSvc),
		Offline:   handler.NewOfflineHandler(offlineSvc),
		Hub:       hub,
		Log:       log,
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("pos api listening")
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
