package models

import (
	"strings"
	"time"
)

// Shop is the tailor's business profile printed on invoices.
type Shop struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name   string `gorm:"size:255;not null" json:"name"`
	Phone  string `gorm:"size:50" json:"phone,omitempty"`
	Street string `gorm:"size:500" json:"street,omitempty"`
	City   string `gorm:"size:100" json:"city,omitempty"`
}

// Address joins street and city on one line, skipping empty parts.
func (s *Shop) Address() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{s.Street, s.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
