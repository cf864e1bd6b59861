package document

import (
	"image"
	"strconv"
	"strings"

	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/shopspring/decimal"
)

// Fixed layout offsets. Item cards are 90px tall on a 100px stride.
const (
	margin        = 40
	separatorY    = 140
	titleY        = 175
	billToY       = 215
	itemsTop      = 305
	cardHeight    = 90
	cardStride    = 100
	pricingGap    = 10
	pricingHeight = 160
	footerHeight  = 130

	colQty   = 60
	colUnit  = 220
	colGST   = 420
	colTotal = 580

	gstPlaceholder = "--"
	renderDate     = "02 Jan 2006"
)

type layout struct {
	c     *canvas
	in    Input
	items []models.InvoiceItem
}

func (l *layout) draw() {
	l.header()
	l.title()
	l.billTo()
	bottom := itemsTop
	for i, item := range l.items {
		bottom = l.itemCard(i, item)
	}
	l.pricing(bottom + pricingGap)
	l.footer()
}

func (l *layout) right() int { return l.c.width() - margin }

func (l *layout) money(d decimal.Decimal) string {
	return l.in.Currency + d.StringFixed(2)
}

func (l *layout) header() {
	c, shop := l.c, l.in.Shop

	c.text(c.shop, colorText, margin, 50, c.fit(c.shop, shop.Name, 440))
	y := 75
	if phone := strings.TrimSpace(shop.Phone); phone != "" {
		c.text(c.body, colorMuted, margin, y, phone)
		y += 20
	}
	for _, line := range WrapAddress(shop.Address()) {
		c.text(c.body, colorMuted, margin, y, line)
		y += 18
	}

	// Wordmark: accent disc with the brand initial, then the brand name.
	brand := l.in.Brand
	nameW := c.measure(c.heading, brand)
	c.textRight(c.heading, colorAccent, l.right(), 50, brand)
	cx := l.right() - nameW - 24
	c.disc(cx, 44, 16, colorAccent)
	initial := strings.ToUpper(string([]rune(brand)[:1]))
	c.text(c.heading, image.White, cx-c.measure(c.heading, initial)/2, 50, initial)

	c.hline(margin, l.right(), separatorY, colorRule)
}

func (l *layout) title() {
	l.c.textCenter(l.c.title, colorText, titleY, "Tax Invoice")
}

func (l *layout) billTo() {
	c, o := l.c, l.in.Order

	c.text(c.small, colorMuted, margin, billToY, "BILL TO")
	c.text(c.heading, colorText, margin, billToY+25, c.fit(c.heading, o.CustomerName, 380))
	if phone := strings.TrimSpace(o.CustomerPhone); phone != "" {
		c.text(c.body, colorMuted, margin, billToY+47, phone)
	}

	c.textRight(c.small, colorMuted, l.right(), billToY, "INVOICE")
	c.textRight(c.heading, colorText, l.right(), billToY+25, "Invoice #"+o.ShortCode())
	c.textRight(c.body, colorMuted, l.right(), billToY+47, "Date: "+l.in.Now.Format(renderDate))

	c.hline(margin, l.right(), itemsTop-15, colorRule)
}

// itemCard draws the i-th line item and returns the card's bottom edge.
func (l *layout) itemCard(i int, item models.InvoiceItem) int {
	c := l.c
	top := itemsTop + i*cardStride
	card := image.Rect(margin, top, l.right(), top+cardHeight)
	c.box(card, colorCard, colorRule)

	name := item.Description
	if item.StitchingType != "" {
		name += " (" + item.StitchingType + ")"
	}
	c.text(c.heading, colorText, margin+20, top+28, c.fit(c.heading, name, card.Dx()-40))

	labels := [4]string{"Qty", "Unit Price", "GST", "Amount"}
	values := [4]string{
		strconv.Itoa(item.Quantity),
		l.money(item.UnitPrice()),
		gstPlaceholder,
		l.money(item.TotalPrice),
	}
	for col, x := range [4]int{colQty, colUnit, colGST, colTotal} {
		c.text(c.small, colorMuted, x, top+54, labels[col])
		c.text(c.strong, colorText, x, top+76, values[col])
	}
	return card.Max.Y
}

// Breakdown is the pricing summary printed under the item cards.
type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Received decimal.Decimal
	Balance  decimal.Decimal
}

// PriceBreakdown derives the pricing card values from order. Negative inputs
// count as zero and neither the total nor the balance goes below zero.
func PriceBreakdown(order *models.Order) Breakdown {
	sub := clampZero(order.Price)
	disc := clampZero(order.Discount)
	total := clampZero(sub.Sub(disc))
	received := clampZero(order.AdvancePayment)
	return Breakdown{
		Subtotal: sub,
		Discount: disc,
		Total:    total,
		Received: received,
		Balance:  clampZero(total.Sub(received)),
	}
}

func (l *layout) pricing(top int) {
	c := l.c
	card := image.Rect(margin, top, l.right(), top+pricingHeight)
	c.box(card, nil, colorRule)

	b := PriceBreakdown(l.in.Order)
	type row struct {
		label, value string
		strong       bool
	}
	rows := []row{{label: "Subtotal", value: l.money(b.Subtotal)}}
	if b.Discount.IsPositive() {
		rows = append(rows, row{label: "Discount", value: "-" + l.money(b.Discount)})
	}
	rows = append(rows,
		row{label: "Total", value: l.money(b.Total), strong: true},
		row{label: "Received", value: l.money(b.Received)},
		row{label: "Balance", value: l.money(b.Balance), strong: true},
	)

	y := top + 30
	for _, r := range rows {
		face, col := c.body, colorText
		if r.strong {
			face = c.strong
		}
		if r.label == "Balance" && b.Balance.IsPositive() {
			col = colorBalance
		}
		c.text(face, colorMuted, margin+20, y, r.label)
		c.textRight(face, col, l.right()-20, y, r.value)
		y += 28
	}
}

func (l *layout) footer() {
	c := l.c
	top := c.img.Bounds().Dy() - footerHeight
	c.hline(margin, l.right(), top, colorRule)
	c.text(c.small, colorMuted, margin, top+30, "Terms & Conditions: goods once delivered will not be taken back.")
	c.text(c.small, colorMuted, margin, top+48, "Alterations accepted within 7 days of delivery.")

	sig := image.Rect(l.right()-200, top+20, l.right(), top+85)
	c.box(sig, nil, colorRule)
	c.textRight(c.small, colorMuted, l.right()-40, top+105, "Authorised Signatory")
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
