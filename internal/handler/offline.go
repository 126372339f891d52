package handler

import (
	"context"
	"net/http"

	"github.com/foodies-pos/api/internal/offline"
)

type OfflineService interface {
	Sync(ctx context.Context) (*offline.SyncResult, error)
	Pending(ctx context.Context) (int, error)
}

type OfflineHandler struct {
	offline OfflineService
}

func NewOfflineHandler(service OfflineService) *OfflineHandler {
	return &OfflineHandler{offline: service}
}

// Sync drains the local queue into the primary store. A partial drain
// still reports progress; the error names the order that stopped it.
func (h *OfflineHandler) Sync(w http.ResponseWriter, r *http.Request) {
	res, err := h.offline.Sync(r.Context())
	if err != nil {
		if res != nil {
			writeJSON(w, http.StatusBadGateway, res)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type pendingResponse struct {
	Pending int `json:"pending"`
}

func (h *OfflineHandler) Pending(w http.ResponseWriter, r *http.Request) {
	n, err := h.offline.Pending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pendingResponse{Pending: n})
}
