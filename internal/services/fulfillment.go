// Package services orchestrates order fulfillment: status changes, invoice
// composition, document rendering and customer messages.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/invoicing"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/diewo77/go-tailorshop/internal/messages"
	"github.com/diewo77/go-tailorshop/internal/metrics"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/diewo77/go-tailorshop/internal/notify"
	"github.com/diewo77/go-tailorshop/internal/orderstatus"
	"github.com/diewo77/go-tailorshop/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxStatusAttempts bounds optimistic retries when a concurrent writer
// changes the status between read and write.
const maxStatusAttempts = 3

// Payment modes accepted in a settlement.
var PaymentModes = []string{"Cash", "UPI", "Card", "BankTransfer"}

// ErrConcurrentUpdate is returned when every optimistic attempt lost its race.
var ErrConcurrentUpdate = errors.New("order changed concurrently, retry")

// Options configures a FulfillmentService.
type Options struct {
	PublicBaseURL    string
	DocumentCurrency string
	Brand            string
	Now              func() time.Time
}

// FulfillmentService drives orders through production and billing.
type FulfillmentService struct {
	db        *gorm.DB
	machine   *orderstatus.Machine
	invoices  *invoicing.Composer
	messages  *messages.Composer
	publisher notify.Publisher
	opts      Options
	newID     func() string
}

// NewFulfillmentService wires the service. A nil publisher logs notifications.
func NewFulfillmentService(db *gorm.DB, invoices *invoicing.Composer, msgs *messages.Composer, publisher notify.Publisher, opts Options) *FulfillmentService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if publisher == nil {
		publisher = notify.NewLogPublisher(logging.New("notify"))
	}
	return &FulfillmentService{
		db:        db,
		machine:   orderstatus.New(opts.Now),
		invoices:  invoices,
		messages:  msgs,
		publisher: publisher,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// Settlement is the optional payment data attached on delivery.
type Settlement struct {
	PaymentMode     string           `json:"paymentMode"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	AmountCollected *decimal.Decimal `json:"amountCollected,omitempty"`
}

// StatusUpdate requests a move to Target.
type StatusUpdate struct {
	Target     models.OrderStatus `json:"targetStatus"`
	Settlement *Settlement        `json:"settlement,omitempty"`
}

// StatusResult is returned by UpdateStatus. Invoice, link and message are
// set only when the new status triggers invoicing.
type StatusResult struct {
	Order       *models.Order   `json:"order"`
	Invoice     *models.Invoice `json:"invoice,omitempty"`
	InvoiceLink string          `json:"invoiceLink,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// UpdateStatus validates and applies a status change using optimistic
// concurrency: the write only succeeds while the stored status still equals
// the status the transition was validated against.
//
// When the target triggers invoicing, the invoice is composed and committed
// before the status is written, outside any shared transaction. A failed
// allocation leaves the order untouched. A failed or lost status write leaves
// the composed invoice in place; the order keeps its old status and the next
// attempt that reaches an invoicing status reuses that invoice rather than
// numbering a new one.
func (s *FulfillmentService) UpdateStatus(ctx context.Context, orderID string, upd StatusUpdate) (*StatusResult, error) {
	log := logging.FromCtx(ctx).With("order_id", orderID, "target", upd.Target)

	if upd.Settlement != nil {
		if err := validateSettlement(upd.Settlement); err != nil {
			return nil, err
		}
	}

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		order, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		from := order.Status

		if err := s.machine.Apply(order, upd.Target); err != nil {
			metrics.RejectedTransitions.WithLabelValues(string(from), string(upd.Target)).Inc()
			return nil, err
		}

		var inv *models.Invoice
		if orderstatus.TriggersInvoice(order.Status) {
			if inv, err = s.invoices.ComposeFor(ctx, order); err != nil {
				return nil, err
			}
		}

		updates := map[string]any{"status": order.Status}
		if order.CuttingCompletedAt != nil {
			updates["cutting_completed_at"] = order.CuttingCompletedAt
		}
		if order.CompletedAt != nil {
			updates["completed_at"] = order.CompletedAt
		}
		if order.Status == models.OrderStatusDelivered && upd.Settlement != nil {
			s.applySettlement(order, upd.Settlement, updates)
		} else if upd.Settlement != nil {
			log.Info("settlement ignored for non-delivery transition")
		}

		res := s.db.WithContext(ctx).Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, from).
			Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			log.Warn("status changed concurrently, re-validating", "attempt", attempt, "from", from)
			continue
		}

		metrics.OrderTransitions.WithLabelValues(string(from), string(order.Status)).Inc()
		log.Info("order status updated", "from", from, "to", order.Status)

		result := &StatusResult{Order: order, Invoice: inv}
		if inv != nil {
			result.InvoiceLink = s.InvoiceLink(inv.ID)
			result.Message = s.messages.InvoiceReadyNotice(inv, order, order.Shop, result.InvoiceLink)
			s.publish(ctx, notify.KindInvoiceReady, order, inv, result.InvoiceLink, result.Message)
		}
		return result, nil
	}
	return nil, ErrConcurrentUpdate
}

// validateSettlement checks st and rewrites its payment mode to the
// PaymentModes spelling.
func validateSettlement(st *Settlement) error {
	v := make(validation.Violations)
	st.PaymentMode = validation.OneOf("settlement.paymentMode", st.PaymentMode, PaymentModes, v)
	if st.Discount != nil {
		validation.NonNegative("settlement.discount", *st.Discount, v)
	}
	if st.AmountCollected != nil {
		validation.NonNegative("settlement.amountCollected", *st.AmountCollected, v)
	}
	if v.Empty() {
		return nil
	}
	return apperrors.WithDetails(apperrors.CodeInvalidRequest, "invalid settlement", v)
}

func (s *FulfillmentService) applySettlement(order *models.Order, st *Settlement, updates map[string]any) {
	at := s.opts.Now().UTC()
	order.SettledAt = &at
	updates["settled_at"] = at
	if st.PaymentMode != "" {
		order.PaymentMode = st.PaymentMode
		updates["payment_mode"] = st.PaymentMode
	}
	if st.Discount != nil {
		order.Discount = *st.Discount
		updates["discount"] = *st.Discount
	}
	if st.AmountCollected != nil {
		order.AmountCollected = decimal.NewNullDecimal(*st.AmountCollected)
		updates["amount_collected"] = order.AmountCollected
	}
}

// InvoiceLink is the shareable URL of an invoice's rendered image.
func (s *FulfillmentService) InvoiceLink(invoiceID string) string {
	return s.opts.PublicBaseURL + "/invoices/" + invoiceID + "/image"
}

// publish hands a message to the publisher. Failures never fail the caller.
func (s *FulfillmentService) publish(ctx context.Context, kind notify.Kind, order *models.Order, inv *models.Invoice, link, text string) {
	n := notify.Notification{
		Kind:          kind,
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Link:          link,
		Text:          text,
		CreatedAt:     s.opts.Now().UTC(),
	}
	if inv != nil {
		n.InvoiceID = inv.ID
		n.InvoiceNumber = inv.InvoiceNumber
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		logging.FromCtx(ctx).Error("publish notification failed", "kind", kind, "order_id", order.ID, "err", err)
	}
}

func (s *FulfillmentService) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Shop").
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("order", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
