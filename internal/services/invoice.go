package services

import (
	"context"

	"github.com/diewo77/go-tailorshop/internal/document"
	"github.com/diewo77/go-tailorshop/internal/models"
)

// ComposeInvoice returns the order's invoice, composing it on first call.
func (s *FulfillmentService) ComposeInvoice(ctx context.Context, orderID string) (*models.Invoice, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.invoices.ComposeFor(ctx, order)
}

// GetInvoice looks an invoice up by id.
func (s *FulfillmentService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return s.invoices.Get(ctx, invoiceID)
}

// GetInvoiceByOrder looks an invoice up by its order id.
func (s *FulfillmentService) GetInvoiceByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	return s.invoices.GetByOrder(ctx, orderID)
}

// RenderInvoice draws the invoice image from the current order and shop.
// Nothing is cached; every call renders afresh.
func (s *FulfillmentService) RenderInvoice(ctx context.Context, invoiceID string) (*document.Document, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, inv.OrderID)
	if err != nil {
		return nil, err
	}
	return document.Render(document.Input{
		Order:    order,
		Shop:     order.Shop,
		Now:      s.opts.Now(),
		Currency: s.opts.DocumentCurrency,
		Brand:    s.opts.Brand,
	})
}

// InvoiceNotice composes the invoice-ready text for an existing invoice.
func (s *FulfillmentService) InvoiceNotice(ctx context.Context, invoiceID string) (*Confirmation, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, inv.OrderID)
	if err != nil {
		return nil, err
	}
	link := s.InvoiceLink(inv.ID)
	return &Confirmation{
		Invoice:     inv,
		InvoiceLink: link,
		Message:     s.messages.InvoiceReadyNotice(inv, order, order.Shop, link),
	}, nil
}
