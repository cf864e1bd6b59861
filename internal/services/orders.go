package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/diewo77/go-tailorshop/internal/notify"
	"github.com/diewo77/go-tailorshop/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewOrderItem is one garment line of an intake request.
type NewOrderItem struct {
	GarmentType  string          `json:"garmentType"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Notes        string          `json:"notes"`
}

// NewOrder is an order intake request. Either Items or the single-garment
// fields OrderType and Price describe what is ordered.
type NewOrder struct {
	ShopID         uint            `json:"shopId"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone"`
	Items          []NewOrderItem  `json:"items"`
	OrderType      string          `json:"orderType"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	AdvancePayment decimal.Decimal `json:"advancePayment"`
	Discount       decimal.Decimal `json:"discount"`
	DueDate        *time.Time      `json:"dueDate"`
}

// CreateOrder validates and stores a new order in OrderCreated. For itemized
// orders the price is the sum of the item totals.
func (s *FulfillmentService) CreateOrder(ctx context.Context, in NewOrder) (*models.Order, error) {
	v := make(validation.Violations)
	validation.Required("customerName", in.CustomerName, v)
	validation.NonNegative("advancePayment", in.AdvancePayment, v)
	validation.NonNegative("discount", in.Discount, v)
	if len(in.Items) == 0 {
		validation.Required("orderType", in.OrderType, v)
		validation.NonNegative("price", in.Price, v)
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	price := decimal.Zero
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		validation.Required(field+".garmentType", it.GarmentType, v)
		validation.MinInt(field+".quantity", it.Quantity, 1, v)
		validation.NonNegative(field+".pricePerItem", it.PricePerItem, v)
		validation.NonNegative(field+".totalPrice", it.TotalPrice, v)

		total := it.TotalPrice
		if total.IsZero() && it.Quantity > 0 {
			total = it.PricePerItem.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		price = price.Add(total)
		items = append(items, models.OrderItem{
			Position:     i,
			GarmentType:  strings.TrimSpace(it.GarmentType),
			Quantity:     it.Quantity,
			PricePerItem: it.PricePerItem,
			TotalPrice:   total,
			Notes:        it.Notes,
		})
	}
	if !v.Empty() {
		return nil, apperrors.WithDetails(apperrors.CodeInvalidRequest, "invalid order", v)
	}
	if len(items) == 0 {
		price = in.Price
	}

	shop, err := s.resolveShop(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:             s.newID(),
		ShopID:         shop.ID,
		Shop:           shop,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		Status:         models.OrderStatusCreated,
		Items:          items,
		OrderType:      strings.TrimSpace(in.OrderType),
		Description:    in.Description,
		Price:          price,
		AdvancePayment: in.AdvancePayment,
		Discount:       in.Discount,
		DueDate:        in.DueDate,
	}
	if err := s.db.WithContext(ctx).Omit("Shop").Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	logging.FromCtx(ctx).Info("order created", "order_id", order.ID, "items", len(items), "price", price.String())
	return order, nil
}

// GetOrder returns an order with its items and shop.
func (s *FulfillmentService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.loadOrder(ctx, orderID)
}

// Confirmation is the composed order-confirmation message. Invoice and
// InvoiceLink are empty while the order has no invoice.
type Confirmation struct {
	Invoice     *models.Invoice `json:"invoice,omitempty"`
	InvoiceLink string          `json:"invoiceLink,omitempty"`
	Message     string          `json:"message"`
}

// OrderConfirmation previews the confirmation text. It is read-only: the
// existing invoice is referenced when there is one, none is composed.
func (s *FulfillmentService) OrderConfirmation(ctx context.Context, orderID string) (*Confirmation, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	inv, err := s.existingInvoice(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return s.confirmation(order, inv), nil
}

// SendOrderConfirmation composes the confirmation and hands it to the
// publisher. The invoice is composed (idempotently) so the message can link
// it. Cancelled orders only reference an invoice that already exists.
func (s *FulfillmentService) SendOrderConfirmation(ctx context.Context, orderID string) (*Confirmation, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var inv *models.Invoice
	if order.Status == models.OrderStatusCancelled {
		inv, err = s.existingInvoice(ctx, order.ID)
	} else {
		inv, err = s.invoices.ComposeFor(ctx, order)
	}
	if err != nil {
		return nil, err
	}
	c := s.confirmation(order, inv)
	s.publish(ctx, notify.KindOrderConfirmed, order, inv, c.InvoiceLink, c.Message)
	return c, nil
}

func (s *FulfillmentService) confirmation(order *models.Order, inv *models.Invoice) *Confirmation {
	c := &Confirmation{Invoice: inv}
	if inv != nil {
		c.InvoiceLink = s.InvoiceLink(inv.ID)
	}
	c.Message = s.messages.OrderConfirmation(inv, order, order.Shop, c.InvoiceLink)
	return c
}

// existingInvoice returns the order's invoice, or nil when none was composed.
func (s *FulfillmentService) existingInvoice(ctx context.Context, orderID string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByOrder(ctx, orderID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return inv, err
}

func (s *FulfillmentService) resolveShop(ctx context.Context, shopID uint) (*models.Shop, error) {
	var shop models.Shop
	q := s.db.WithContext(ctx)
	var err error
	if shopID == 0 {
		err = q.Order("id").First(&shop).Error
	} else {
		err = q.First(&shop, shopID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("shop", fmt.Sprint(shopID))
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
