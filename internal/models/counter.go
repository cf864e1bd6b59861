package models

import "time"

// Counter is a named, persisted sequence. Seq only ever grows.
type Counter struct {
	Name      string    `gorm:"primaryKey;size:50"`
	Seq       int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// All lists every model managed by the service, in migration order.
func All() []any {
	return []any{
		&Shop{},
		&Order{},
		&OrderItem{},
		&Invoice{},
		&InvoiceItem{},
		&Counter{},
	}
}
