package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses derived from the advance collected at composition time.
const (
	PaymentStatusAdvancePaid = "Advance Paid"
	PaymentStatusPending     = "Pending"
)

// Invoice is the billing record composed once per order.
type Invoice struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// OrderID is unique: an order has at most one invoice.
	OrderID string `gorm:"size:36;uniqueIndex;not null" json:"order_id"`
	ShopID  uint   `gorm:"index;not null" json:"shop_id"`

	// Invoice identification
	InvoiceNumber string `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	Sequence      int64  `gorm:"not null" json:"sequence"`

	// Items is a snapshot of the order lines at composition time.
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"advance_amount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"due_amount"`
	PaymentStatus string          `gorm:"size:20;not null" json:"payment_status"`
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	InvoiceID string `gorm:"size:36;index;not null" json:"-"`
	Position  int    `gorm:"default:0" json:"position"`

	Description   string          `gorm:"size:255;not null" json:"description"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	PricePerItem  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_per_item"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	StitchingType string          `gorm:"type:text" json:"stitching_type,omitempty"`
}

// PaymentStatusFor derives the payment status from the advance amount.
func PaymentStatusFor(advance decimal.Decimal) string {
	if advance.IsPositive() {
		return PaymentStatusAdvancePaid
	}
	return PaymentStatusPending
}

// UnitPrice returns the per-unit price implied by the line total.
func (item *InvoiceItem) UnitPrice() decimal.Decimal {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	return item.TotalPrice.Div(decimal.NewFromInt(int64(qty)))
}
