package handlers

import (
	"net/http"

	"github.com/diewo77/go-tailorshop/httpx"
	"github.com/diewo77/go-tailorshop/internal/services"
)

type InvoiceHandler struct {
	Svc *services.FulfillmentService
}

func NewInvoiceHandler(svc *services.FulfillmentService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /invoices/{id}", h.View)
	mux.HandleFunc("GET /invoices/{id}/image", h.Image)
	mux.HandleFunc("GET /invoices/{id}/notice", h.Notice)
}

// View: GET /invoices/{id}
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.GetInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Image: GET /invoices/{id}/image renders the invoice from current order and
// shop data on every request.
func (h *InvoiceHandler) Image(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Svc.RenderInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Blob(w, http.StatusOK, doc.ContentType, doc.Bytes)
}

// Notice: GET /invoices/{id}/notice
func (h *InvoiceHandler) Notice(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.InvoiceNotice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if wantsText(r) {
		httpx.Text(w, http.StatusOK, n.Message)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func wantsText(r *http.Request) bool {
	return r.Header.Get("Accept") == "text/plain"
}
