// Package document renders an order's invoice as a fixed-width PNG.
//
// Rendering is a pure function of its input. The canvas height is derived
// from the number of line items before anything is drawn:
//
//	height = 650 + 110 * items
package document

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/invoicing"
	"github.com/diewo77/go-tailorshop/internal/metrics"
	"github.com/diewo77/go-tailorshop/internal/models"
)

// ContentType of rendered documents.
const ContentType = "image/png"

// Canvas geometry in device pixels.
const (
	CanvasWidth   = 800
	BaseHeight    = 650
	PerItemHeight = 110
)

// DefaultCurrency prefixes amounts when Input.Currency is empty. The bundled
// Go fonts have no rupee glyph, so the textual form is used.
const DefaultCurrency = "Rs. "

// DefaultBrand is the wordmark drawn in the header.
const DefaultBrand = "TailorShop"

// Input is everything a render depends on.
type Input struct {
	Order    *models.Order
	Shop     *models.Shop
	Now      time.Time // render date printed on the invoice
	Currency string
	Brand    string
}

// Document is a rendered invoice image.
type Document struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
}

// CanvasHeight returns the canvas height for itemCount line items.
func CanvasHeight(itemCount int) int {
	return BaseHeight + PerItemHeight*itemCount
}

// Render draws the invoice for in.Order. Malformed input fails with
// INVALID_DOCUMENT_INPUT before any drawing happens.
func Render(in Input) (*Document, error) {
	start := time.Now()
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if in.Brand == "" {
		in.Brand = DefaultBrand
	}

	items := invoicing.LineItems(in.Order)
	height := CanvasHeight(len(items))

	c, err := newCanvas(CanvasWidth, height)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	l := layout{c: c, in: in, items: items}
	l.draw()

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	metrics.ObserveSince(metrics.DocumentRenders, start)
	return &Document{
		Bytes:       buf.Bytes(),
		ContentType: ContentType,
		Width:       CanvasWidth,
		Height:      height,
	}, nil
}

// Bounds returns the pixel rectangle of the document.
func (d *Document) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

func validate(in Input) error {
	missing := make([]string, 0, 4)
	switch {
	case in.Order == nil:
		missing = append(missing, "order")
	default:
		if strings.TrimSpace(in.Order.ID) == "" {
			missing = append(missing, "order.id")
		}
		if strings.TrimSpace(in.Order.CustomerName) == "" {
			missing = append(missing, "order.customer_name")
		}
	}
	switch {
	case in.Shop == nil:
		missing = append(missing, "shop")
	case strings.TrimSpace(in.Shop.Name) == "":
		missing = append(missing, "shop.name")
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.WithDetails(apperrors.CodeInvalidDocumentInput,
		"cannot render invoice: missing "+strings.Join(missing, ", "),
		map[string][]string{"missing": missing})
}

// WrapAddress splits address into at most two lines, cutting at the 40th
// character regardless of word boundaries.
func WrapAddress(address string) []string {
	const width = 40
	r := []rune(address)
	if len(r) <= width {
		if address == "" {
			return nil
		}
		return []string{address}
	}
	return []string{string(r[:width]), string(r[width:])}
}
