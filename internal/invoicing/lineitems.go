package invoicing

import (
	"strings"

	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/shopspring/decimal"
)

const legacyDescription = "Order"

// LineItems normalizes both order shapes into invoice lines.
//
// Itemized orders map one line per item in position order. Legacy orders,
// which carry no items, get a single synthesized line built from OrderType,
// Description and Price.
func LineItems(order *models.Order) []models.InvoiceItem {
	if order.IsLegacy() {
		desc := strings.TrimSpace(order.OrderType)
		if desc == "" {
			desc = legacyDescription
		}
		price := nonNegative(order.Price)
		return []models.InvoiceItem{{
			Position:      0,
			Description:   desc,
			Quantity:      1,
			PricePerItem:  price,
			TotalPrice:    price,
			StitchingType: order.Description,
		}}
	}

	out := make([]models.InvoiceItem, 0, len(order.Items))
	for i, it := range order.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		unit, total := it.PricePerItem, it.TotalPrice
		switch {
		case total.IsZero() && !unit.IsZero():
			total = unit.Mul(decimal.NewFromInt(int64(qty)))
		case unit.IsZero() && !total.IsZero():
			unit = total.Div(decimal.NewFromInt(int64(qty))).Round(2)
		}
		out = append(out, models.InvoiceItem{
			Position:      i,
			Description:   it.GarmentType,
			Quantity:      qty,
			PricePerItem:  unit,
			TotalPrice:    total,
			StitchingType: it.Notes,
		})
	}
	return out
}

// Totals is the financial breakdown captured on an invoice.
type Totals struct {
	Total   decimal.Decimal
	Advance decimal.Decimal
	Due     decimal.Decimal
}

// ComputeTotals derives invoice totals from the order. Negative amounts are
// treated as zero and the due amount never drops below zero.
func ComputeTotals(order *models.Order) Totals {
	total := nonNegative(order.Price)
	advance := nonNegative(order.AdvancePayment)
	return Totals{
		Total:   total,
		Advance: advance,
		Due:     decimal.Max(total.Sub(advance), decimal.Zero),
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
