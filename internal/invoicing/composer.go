// Package invoicing composes the single invoice of an order.
package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/logging"
	"github.com/diewo77/go-tailorshop/internal/metrics"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequenceIssuer allocates invoice sequences and formats them as numbers.
type SequenceIssuer interface {
	NextInvoiceSequence(ctx context.Context) (int64, error)
	Number(seq int64) string
}

// Composer builds and persists invoices. Composition is idempotent per order.
type Composer struct {
	db     *gorm.DB
	issuer SequenceIssuer
	newID  func() string
}

// NewComposer returns a Composer drawing numbers from issuer.
func NewComposer(db *gorm.DB, issuer SequenceIssuer) *Composer {
	return &Composer{db: db, issuer: issuer, newID: uuid.NewString}
}

// Compose returns the invoice of orderID, creating it on first call.
//
// A sequence is allocated only when no invoice exists yet. If persisting
// fails after allocation the number is burned; a retry allocates a new one.
// When a concurrent caller wins the insert, its invoice is returned.
func (c *Composer) Compose(ctx context.Context, orderID string) (*models.Invoice, error) {
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return c.ComposeFor(ctx, order)
}

// ComposeFor is Compose for an already loaded order snapshot. On success the
// order's InvoiceID is set to the returned invoice.
func (c *Composer) ComposeFor(ctx context.Context, order *models.Order) (*models.Invoice, error) {
	log := logging.FromCtx(ctx).With("order_id", order.ID)

	existing, err := c.findByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		order.InvoiceID = &existing.ID
		return existing, nil
	}

	seq, err := c.issuer.NextInvoiceSequence(ctx)
	if err != nil {
		log.Error("invoice sequence unavailable", "err", err)
		return nil, err
	}

	totals := ComputeTotals(order)
	inv := &models.Invoice{
		ID:            c.newID(),
		OrderID:       order.ID,
		ShopID:        order.ShopID,
		InvoiceNumber: c.issuer.Number(seq),
		Sequence:      seq,
		Items:         LineItems(order),
		TotalAmount:   totals.Total,
		AdvanceAmount: totals.Advance,
		DueAmount:     totals.Due,
		PaymentStatus: models.PaymentStatusFor(totals.Advance),
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("invoice_id", inv.ID).Error
	})
	if err != nil {
		// Another caller may have persisted the invoice first.
		winner, findErr := c.findByOrder(ctx, order.ID)
		if findErr == nil && winner != nil {
			dup := apperrors.Wrap(apperrors.CodeDuplicateInvoiceAttempt, "invoice already exists for order", err)
			log.Warn("duplicate invoice attempt absorbed",
				"err", dup, "burned_number", inv.InvoiceNumber, "invoice_number", winner.InvoiceNumber)
			order.InvoiceID = &winner.ID
			return winner, nil
		}
		log.Error("persist invoice failed", "err", err, "burned_number", inv.InvoiceNumber)
		return nil, fmt.Errorf("persist invoice for order %s: %w", order.ID, err)
	}

	metrics.InvoicesIssued.Inc()
	log.Info("invoice issued", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	order.InvoiceID = &inv.ID
	return inv, nil
}

// Get returns the invoice with id.
func (c *Composer) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := c.db.WithContext(ctx).Preload("Items", orderByPosition).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("invoice", id)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByOrder returns the invoice composed for orderID.
func (c *Composer) GetByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	inv, err := c.findByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperrors.NotFound("invoice", orderID)
	}
	return inv, nil
}

func (c *Composer) findByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	var invs []models.Invoice
	err := c.db.WithContext(ctx).Preload("Items", orderByPosition).
		Where("order_id = ?", orderID).Limit(1).Find(&invs).Error
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return &invs[0], nil
}

func (c *Composer) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).Preload("Items", orderByPosition).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("order", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
