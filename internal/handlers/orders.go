package handlers

import (
	"net/http"

	"github.com/diewo77/go-tailorshop/httpx"
	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/services"
	"github.com/diewo77/go-tailorshop/validation"
)

// OrderHandler serves order intake, status changes and order-scoped invoice
// operations as JSON.
type OrderHandler struct {
	Svc *services.FulfillmentService
}

func NewOrderHandler(svc *services.FulfillmentService) *OrderHandler {
	return &OrderHandler{Svc: svc}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.Create)
	mux.HandleFunc("GET /orders/{id}", h.View)
	mux.HandleFunc("POST /orders/{id}/status", h.UpdateStatus)
	mux.HandleFunc("POST /orders/{id}/invoice", h.ComposeInvoice)
	mux.HandleFunc("GET /orders/{id}/invoice", h.Invoice)
	mux.HandleFunc("GET /orders/{id}/confirmation", h.Confirmation)
	mux.HandleFunc("POST /orders/{id}/confirmation", h.SendConfirmation)
}

// Create: POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.NewOrder
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// View: GET /orders/{id}
func (h *OrderHandler) View(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// UpdateStatus: POST /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req services.StatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v := make(validation.Violations)
	validation.Required("targetStatus", string(req.Target), v)
	if !v.Empty() {
		writeError(w, r, apperrors.WithDetails(apperrors.CodeInvalidRequest, "invalid status update", v))
		return
	}

	res, err := h.Svc.UpdateStatus(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// ComposeInvoice: POST /orders/{id}/invoice. Repeated calls return the same
// invoice.
func (h *OrderHandler) ComposeInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.ComposeInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice":     inv,
		"invoiceLink": h.Svc.InvoiceLink(inv.ID),
	})
}

// Invoice: GET /orders/{id}/invoice
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.GetInvoiceByOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Confirmation: GET /orders/{id}/confirmation
func (h *OrderHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.OrderConfirmation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// SendConfirmation: POST /orders/{id}/confirmation
func (h *OrderHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.SendOrderConfirmation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
