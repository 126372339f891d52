package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/middleware"
	"github.com/foodies-pos/api/internal/session"
	"github.com/foodies-pos/api/internal/ticket"
)

type SessionManager interface {
	ListTables(ctx context.Context) ([]database.Table, error)
	Select(ctx context.Context, tableID string, guestCount int32) (*session.State, error)
	Park(ctx context.Context, tableID string, items []database.CartItem, guestCount int32) error
	Send(ctx context.Context, tableID string, employeeID uuid.UUID) ([]ticket.Job, error)
	Clear(ctx context.Context, tableID string) error
	MarkBilled(ctx context.Context, tableID string) (database.Table, error)
}

type TablesHandler struct {
	sessions SessionManager
}

func NewTablesHandler(sessions SessionManager) *TablesHandler {
	return &TablesHandler{sessions: sessions}
}

func (h *TablesHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.sessions.ListTables(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

type selectTableRequest struct {
	GuestCount int32 `json:"guest_count"`
}

func (h *TablesHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectTableRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	state, err := h.sessions.Select(r.Context(), chi.URLParam(r, "id"), req.GuestCount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type parkRequest struct {
	Items      []database.CartItem `json:"items"`
	GuestCount int32               `json:"guest_count"`
}

func (h *TablesHandler) Park(w http.ResponseWriter, r *http.Request) {
	var req parkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Park(r.Context(), chi.URLParam(r, "id"), req.Items, req.GuestCount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TablesHandler) Send(w http.ResponseWriter, r *http.Request) {
	var employeeID uuid.UUID
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		employeeID = claims.EmployeeID
	}
	jobs, err := h.sessions.Send(r.Context(), chi.URLParam(r, "id"), employeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *TablesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *TablesHandler) Bill(w http.ResponseWriter, r *http.Request) {
	table, err := h.sessions.MarkBilled(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
