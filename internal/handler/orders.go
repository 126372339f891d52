package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/apperr"
	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/middleware"
	"github.com/foodies-pos/api/internal/order"
	"github.com/foodies-pos/api/internal/payment"
)

type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Order, error)
	List(ctx context.Context, limit, offset int32) ([]database.Order, error)
	ListActive(ctx context.Context) ([]database.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*database.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*database.Order, error)
	Void(ctx context.Context, id uuid.UUID, managerPIN string) (*database.Order, error)
	Refund(ctx context.Context, id uuid.UUID, managerPIN string) (*database.Order, error)
}

// OrderSaver persists a new order, falling back to the offline queue
// when the primary store is down.
type OrderSaver interface {
	SaveOrQueue(ctx context.Context, o database.Order) (*database.Order, bool, error)
}

type PaymentLedger interface {
	Record(ctx context.Context, arg payment.RecordParams) (*payment.Result, error)
	PayInFull(ctx context.Context, orderID uuid.UUID, method string, tip decimal.Decimal) (*payment.Result, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
}

type OrdersHandler struct {
	orders   OrderService
	saver    OrderSaver
	payments PaymentLedger
}

func NewOrdersHandler(orders OrderService, saver OrderSaver, payments PaymentLedger) *OrdersHandler {
	return &OrdersHandler{orders: orders, saver: saver, payments: payments}
}

func orderID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad order id", apperr.ErrValidation)
	}
	return id, nil
}

type createOrderRequest struct {
	Items      []database.CartItem `json:"items"`
	TableID    string              `json:"table_id"`
	GuestCount int32               `json:"guest_count"`
}

type createOrderResponse struct {
	Order  *database.Order `json:"order"`
	Queued bool            `json:"queued"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, order.ErrEmptyOrder)
		return
	}

	params := order.CreateParams{
		Items:      req.Items,
		TableID:    req.TableID,
		GuestCount: req.GuestCount,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		params.EmployeeID = claims.EmployeeID
	}

	saved, queued, err := h.saver.SaveOrQueue(r.Context(), order.Build(params))
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if queued {
		// The order lives in the terminal-local queue until sync.
		status = http.StatusAccepted
	}
	writeJSON(w, status, createOrderResponse{Order: saved, Queued: queued})
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	orders, err := h.orders.List(r.Context(), int32(limit), int32(offset))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListActive feeds the kitchen display: open orders, oldest first.
func (h *OrdersHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type managerActionRequest struct {
	ManagerPIN string `json:"manager_pin"`
}

func (h *OrdersHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.managerAction(w, r, h.orders.Void)
}

func (h *OrdersHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.managerAction(w, r, h.orders.Refund)
}

func (h *OrdersHandler) managerAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, string) (*database.Order, error)) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req managerActionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := fn(r.Context(), id, req.ManagerPIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Tip    decimal.Decimal `json:"tip"`
	Method string          `json:"method"`
}

func (h *OrdersHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req recordPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.payments.Record(r.Context(), payment.RecordParams{
		OrderID: id,
		Amount:  req.Amount,
		Tip:     req.Tip,
		Method:  req.Method,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type payInFullRequest struct {
	Method string          `json:"method"`
	Tip    decimal.Decimal `json:"tip"`
}

func (h *OrdersHandler) PayInFull(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req payInFullRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.payments.PayInFull(r.Context(), id, req.Method, req.Tip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payments, err := h.payments.ListForOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
