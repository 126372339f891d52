package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/reports"
)

type ReportService interface {
	BuildShiftReport(ctx context.Context, employeeID uuid.UUID, since time.Time) (*reports.ShiftReport, error)
}

type ReportsHandler struct {
	reports ReportService
}

func NewReportsHandler(service ReportService) *ReportsHandler {
	return &ReportsHandler{reports: service}
}

// shiftWindow defaults to the trailing 12 hours when no explicit shift
// start is given.
func shiftWindow(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Now().Add(-12 * time.Hour), nil
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: since must be RFC3339", apperr.ErrValidation)
	}
	return since, nil
}

func (h *ReportsHandler) Shift(w http.ResponseWriter, r *http.Request) {
	employeeID, err := uuid.Parse(chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad employee id", apperr.ErrValidation))
		return
	}
	since, err := shiftWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.reports.BuildShiftReport(r.Context(), employeeID, since)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type blindDropRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
}

// BlindDrop reconciles a counted drawer against the shift's expected
// cash without showing the counter the expectation beforehand.
func (h *ReportsHandler) BlindDrop(w http.ResponseWriter, r *http.Request) {
	employeeID, err := uuid.Parse(chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad employee id", apperr.ErrValidation))
		return
	}
	since, err := shiftWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req blindDropRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	report, err := h.reports.BuildShiftReport(r.Context(), employeeID, since)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.ReconcileDrop(report, req.CountedCash))
}
