// Package validation collects field-level violations for request payloads.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field path to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "too_small"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// OneOf flags val when it is not among allowed, matching case-insensitively.
// It returns the matching allowed entry, or val itself when there is none.
// An empty val is accepted.
func OneOf(field, val string, allowed []string, v Violations) string {
	if val == "" {
		return val
	}
	for _, a := range allowed {
		if strings.EqualFold(a, val) {
			return a
		}
	}
	v[field] = "unsupported_value"
	return val
}
