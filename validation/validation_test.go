package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("customer_name", "  ", v)
	Required("garment_type", "Shirt", v)
	MinInt("items[0].quantity", 0, 1, v)
	MinInt("items[1].quantity", 2, 1, v)
	NonNegative("advance_payment", decimal.NewFromInt(-1), v)
	NonNegative("discount", decimal.Zero, v)
	OneOf("payment_mode", "Bitcoin", []string{"Cash", "UPI"}, v)
	if got := OneOf("payment_mode_ok", "upi", []string{"Cash", "UPI"}, v); got != "UPI" {
		t.Errorf("OneOf canonical = %q, want UPI", got)
	}

	want := Violations{
		"customer_name":     "required",
		"items[0].quantity": "too_small",
		"advance_payment":   "must_not_be_negative",
		"payment_mode":      "unsupported_value",
	}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for k, code := range want {
		if v[k] != code {
			t.Errorf("%s = %q, want %q", k, v[k], code)
		}
	}
	if v.Empty() {
		t.Errorf("expected violations")
	}
	if !make(Violations).Empty() {
		t.Errorf("new Violations should be empty")
	}
}
