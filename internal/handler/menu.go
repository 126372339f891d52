package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
)

type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	UpsertMenuItem(ctx context.Context, m database.MenuItem) (database.MenuItem, error)
}

type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var item database.MenuItem
	if err := decode(r, &item); err != nil {
		writeError(w, err)
		return
	}
	item.ID = chi.URLParam(r, "id")
	if item.Name == "" {
		writeError(w, fmt.Errorf("%w: menu item needs a name", apperr.ErrValidation))
		return
	}
	saved, err := h.store.UpsertMenuItem(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
