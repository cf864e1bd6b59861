// Package messages composes the plain-text notifications sent to customers.
// Delivery is left to the caller.
package messages

import (
	"strings"
	"text/template"
	"time"

	"github.com/diewo77/go-tailorshop/internal/invoicing"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/shopspring/decimal"
)

// DueDateLayout formats order due dates, e.g. "05 Mar 2026".
const DueDateLayout = "02 Jan 2006"

const notAvailable = "N/A"

var (
	orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(
		`Hello {{.Customer}},
Your order #{{.Code}} with {{.Shop}} has been confirmed.
Due date: {{.DueDate}}
Total: {{.Total}}
Advance paid: {{.Advance}}
Balance due: {{.Due}}
{{- if .Link}}
View your invoice: {{.Link}}
{{- end}}
Thank you for choosing {{.Shop}}!`))

	invoiceReadyTmpl = template.Must(template.New("invoice_ready").Parse(
		`Hello {{.Customer}},
Good news! Your order #{{.Code}} is ready for pickup.
Invoice: {{.Number}}
Due date: {{.DueDate}}
Total: {{.Total}}
Advance paid: {{.Advance}}
Balance due: {{.Due}}
Payment status: {{.PaymentStatus}}
{{- if .Link}}
Invoice link: {{.Link}}
{{- end}}
- {{.Shop}}`))
)

type view struct {
	Customer      string
	Code          string
	Shop          string
	DueDate       string
	Number        string
	Total         string
	Advance       string
	Due           string
	PaymentStatus string
	Link          string
}

// Composer fills message templates. The zero value prints amounts without a
// currency glyph.
type Composer struct {
	Currency string
}

// New returns a Composer prefixing amounts with currency.
func New(currency string) *Composer {
	return &Composer{Currency: currency}
}

// OrderConfirmation composes the message sent when an order is accepted.
// The link line is omitted when link is empty. inv may be nil, in which case
// amounts are derived from the order.
func (c *Composer) OrderConfirmation(inv *models.Invoice, order *models.Order, shop *models.Shop, link string) string {
	return c.execute(orderConfirmationTmpl, c.view(inv, order, shop, link))
}

// InvoiceReadyNotice composes the message sent when the invoice is issued.
func (c *Composer) InvoiceReadyNotice(inv *models.Invoice, order *models.Order, shop *models.Shop, link string) string {
	return c.execute(invoiceReadyTmpl, c.view(inv, order, shop, link))
}

// Amount formats d with two decimals and the currency prefix.
func (c *Composer) Amount(d decimal.Decimal) string {
	return c.Currency + d.StringFixed(2)
}

// FormatDueDate renders a due date or "N/A" when unset.
func FormatDueDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notAvailable
	}
	return t.Format(DueDateLayout)
}

func (c *Composer) view(inv *models.Invoice, order *models.Order, shop *models.Shop, link string) view {
	v := view{
		Customer: strings.TrimSpace(order.CustomerName),
		Code:     order.ShortCode(),
		DueDate:  FormatDueDate(order.DueDate),
		Link:     strings.TrimSpace(link),
	}
	if shop != nil {
		v.Shop = shop.Name
	}

	if inv != nil {
		v.Number = inv.InvoiceNumber
		v.Total = c.Amount(inv.TotalAmount)
		v.Advance = c.Amount(inv.AdvanceAmount)
		v.Due = c.Amount(inv.DueAmount)
		v.PaymentStatus = inv.PaymentStatus
		return v
	}
	totals := invoicing.ComputeTotals(order)
	v.Number = notAvailable
	v.Total = c.Amount(totals.Total)
	v.Advance = c.Amount(totals.Advance)
	v.Due = c.Amount(totals.Due)
	v.PaymentStatus = models.PaymentStatusFor(totals.Advance)
	return v
}

func (c *Composer) execute(t *template.Template, v view) string {
	var b strings.Builder
	// Templates are parsed at init and only reference view fields.
	_ = t.Execute(&b, v)
	return b.String()
}
