package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the production status of an order. Values belong to one of
// two disjoint transition regimes; see package orderstatus.
type OrderStatus string

const (
	OrderStatusCreated          OrderStatus = "OrderCreated"
	OrderStatusCuttingCompleted OrderStatus = "CuttingCompleted"
	OrderStatusCompleted        OrderStatus = "OrderCompleted"
	OrderStatusDelivered        OrderStatus = "Delivered"
	OrderStatusCancelled        OrderStatus = "Cancelled"

	// Legacy statuses kept for orders created before the production pipeline.
	OrderStatusLegacyPending    OrderStatus = "Pending"
	OrderStatusLegacyInProgress OrderStatus = "InProgress"
	OrderStatusLegacyCompleted  OrderStatus = "Completed"
)

// Order is a customer order taken by a shop.
//
// Multi-item orders carry Items; legacy single-item orders leave Items empty
// and describe themselves through OrderType, Description and Price.
type Order struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ShopID uint  `gorm:"index;not null" json:"shop_id"`
	Shop   *Shop `gorm:"foreignKey:ShopID" json:"-"`

	CustomerName  string `gorm:"size:255;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone,omitempty"`

	Status OrderStatus `gorm:"size:32;index;not null" json:"status"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	// Legacy scalar description
	OrderType   string `gorm:"size:100" json:"order_type,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	AdvancePayment decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"advance_payment"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`

	DueDate            *time.Time `json:"due_date,omitempty"`
	CuttingCompletedAt *time.Time `json:"cutting_completed_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	// Settlement recorded on delivery
	PaymentMode     string              `gorm:"size:50" json:"payment_mode,omitempty"`
	AmountCollected decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"amount_collected,omitempty"`
	SettledAt       *time.Time          `json:"settled_at,omitempty"`

	// InvoiceID links to the order's invoice once composed. The order does not
	// own the invoice.
	InvoiceID *string `gorm:"size:36;index" json:"invoice_id,omitempty"`
}

// OrderItem is one garment line of a multi-item order.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      string          `gorm:"size:36;index;not null" json:"order_id"`
	Position     int             `gorm:"default:0" json:"position"`
	GarmentType  string          `gorm:"size:100;not null" json:"garment_type"`
	Quantity     int             `gorm:"not null;default:1" json:"quantity"`
	PricePerItem decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_per_item"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	Notes        string          `gorm:"type:text" json:"notes,omitempty"`
}

// IsLegacy reports whether the order predates itemized orders.
func (o *Order) IsLegacy() bool {
	return len(o.Items) == 0
}

// HasInvoice reports whether an invoice has been linked to the order.
func (o *Order) HasInvoice() bool {
	return o.InvoiceID != nil && *o.InvoiceID != ""
}

// ShortCode returns the customer-facing order reference: the last six hex
// characters of the id, uppercased.
func (o *Order) ShortCode() string {
	return ShortCode(o.ID)
}

// ShortCode returns the last six characters of id, ignoring dashes, uppercased.
func ShortCode(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return strings.ToUpper(s)
}
