package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
)

type InventoryStore interface {
	ListInventory(ctx context.Context) ([]database.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (database.InventoryItem, error)
	UpsertInventoryItem(ctx context.Context, item database.InventoryItem) (database.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

type InventoryHandler struct {
	store InventoryStore
}

func NewInventoryHandler(store InventoryStore) *InventoryHandler {
	return &InventoryHandler{store: store}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListInventory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListLowStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetInventoryItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, fmt.Errorf("%w: inventory item", apperr.ErrNotFound))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var item database.InventoryItem
	if err := decode(r, &item); err != nil {
		writeError(w, err)
		return
	}
	item.ID = chi.URLParam(r, "id")
	if item.Name == "" {
		writeError(w, fmt.Errorf("%w: inventory item needs a name", apperr.ErrValidation))
		return
	}
	saved, err := h.store.UpsertInventoryItem(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteInventoryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
