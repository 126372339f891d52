package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/handler"
	"github.com/foodies-pos/api/internal/middleware"
	"github.com/foodies-pos/api/internal/ws"
)

type Deps struct {
	JWTSecret string
	Auth      *handler.AuthHandler
	Orders    *handler.OrdersHandler
	Tables    *handler.TablesHandler
	Inventory *handler.InventoryHandler
	Menu      *handler.MenuHandler
	Reports   *handler.ReportsHandler
	Offline   *handler.OfflineHandler
	Hub       *ws.Hub
	Log       zerolog.Logger
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/auth/login", d.Auth.Login)

	serveWS := ws.ServeWS(d.Hub, d.Log)
	r.Get("/ws/terminals/{terminalId}", func(w http.ResponseWriter, r *http.Request) {
		serveWS(w, r, chi.URLParam(r, "terminalId"))
	})

	elevated := []string{enum.RoleManager, enum.RoleAdmin, enum.RoleOwner}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.JWTSecret))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", d.Orders.Create)
			r.Get("/", d.Orders.List)
			r.Get("/active", d.Orders.ListActive)
			r.Get("/{id}", d.Orders.Get)
			r.Patch("/{id}/status", d.Orders.UpdateStatus)
			r.Post("/{id}/cancel", d.Orders.Cancel)
			r.Post("/{id}/void", d.Orders.Void)
			r.Post("/{id}/refund", d.Orders.Refund)
			r.Get("/{id}/payments", d.Orders.ListPayments)
			r.Post("/{id}/payments", d.Orders.RecordPayment)
			r.Post("/{id}/pay", d.Orders.PayInFull)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", d.Tables.List)
			r.Post("/{id}/select", d.Tables.Select)
			r.Post("/{id}/park", d.Tables.Park)
			r.Post("/{id}/send", d.Tables.Send)
			r.Post("/{id}/clear", d.Tables.Clear)
			r.Post("/{id}/bill", d.Tables.Bill)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", d.Inventory.List)
			r.Get("/low-stock", d.Inventory.ListLowStock)
			r.Get("/{id}", d.Inventory.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(elevated...))
				r.Put("/{id}", d.Inventory.Upsert)
				r.Delete("/{id}", d.Inventory.Delete)
			})
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", d.Menu.List)
			r.With(middleware.RequireRole(elevated...)).Put("/{id}", d.Menu.Upsert)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/shifts/{employeeId}", d.Reports.Shift)
			r.Post("/shifts/{employeeId}/blind-drop", d.Reports.BlindDrop)
		})

		r.Route("/offline", func(r chi.Router) {
			r.Post("/sync", d.Offline.Sync)
			r.Get("/pending", d.Offline.Pending)
		})
	})

	return r
}
