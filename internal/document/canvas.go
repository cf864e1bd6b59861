package document

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	colorText    = color.RGBA{0x22, 0x22, 0x2a, 0xff}
	colorMuted   = color.RGBA{0x6b, 0x6b, 0x78, 0xff}
	colorRule    = color.RGBA{0xd9, 0xd9, 0xe0, 0xff}
	colorCard    = color.RGBA{0xf7, 0xf7, 0xfa, 0xff}
	colorAccent  = color.RGBA{0x8c, 0x2f, 0x39, 0xff}
	colorBalance = color.RGBA{0xb0, 0x1e, 0x2d, 0xff}
)

var (
	fontsOnce       sync.Once
	regular, bold   *opentype.Font
	errFontsParsing error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, errFontsParsing = opentype.Parse(goregular.TTF); errFontsParsing != nil {
			return
		}
		bold, errFontsParsing = opentype.Parse(gobold.TTF)
	})
	return errFontsParsing
}

// faces are not safe for concurrent use, so each canvas owns its own.
type faces struct {
	shop    font.Face // shop name
	title   font.Face // "Tax Invoice"
	heading font.Face // customer, item names, invoice code
	body    font.Face
	strong  font.Face
	small   font.Face // column labels
}

func newFaces() (*faces, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	var err error
	mk := func(f *opentype.Font, size float64) font.Face {
		if err != nil {
			return nil
		}
		var face font.Face
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		return face
	}
	fs := &faces{
		shop:    mk(bold, 24),
		title:   mk(bold, 22),
		heading: mk(bold, 16),
		body:    mk(regular, 14),
		strong:  mk(bold, 14),
		small:   mk(regular, 12),
	}
	if err != nil {
		fs.Close()
		return nil, err
	}
	return fs, nil
}

func (fs *faces) Close() {
	for _, f := range []font.Face{fs.shop, fs.title, fs.heading, fs.body, fs.strong, fs.small} {
		if f != nil {
			_ = f.Close()
		}
	}
}

type canvas struct {
	img *image.RGBA
	*faces
}

func newCanvas(w, h int) (*canvas, error) {
	fs, err := newFaces()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &canvas{img: img, faces: fs}, nil
}

func (c *canvas) width() int { return c.img.Bounds().Dx() }

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// hline draws a one pixel rule from x0 to x1 at y.
func (c *canvas) hline(x0, x1, y int, col color.Color) {
	c.fill(image.Rect(x0, y, x1, y+1), col)
}

// box draws a filled rectangle with a one pixel border. A nil fill leaves the
// interior untouched.
func (c *canvas) box(r image.Rectangle, fill, border color.Color) {
	if fill != nil {
		c.fill(r, fill)
	}
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), border)
	c.fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), border)
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), border)
	c.fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), border)
}

// disc fills a circle of radius r centred on (cx, cy).
func (c *canvas) disc(cx, cy, r int, col color.Color) {
	const k = 0.5523 // cubic Bézier circle constant
	d := float32(2 * r)
	rf := float32(r)
	z := vector.NewRasterizer(2*r, 2*r)
	z.MoveTo(rf, 0)
	z.CubeTo(rf+k*rf, 0, d, rf-k*rf, d, rf)
	z.CubeTo(d, rf+k*rf, rf+k*rf, d, rf, d)
	z.CubeTo(rf-k*rf, d, 0, rf+k*rf, 0, rf)
	z.CubeTo(0, rf-k*rf, rf-k*rf, 0, rf, 0)
	z.ClosePath()
	z.Draw(c.img, image.Rect(cx-r, cy-r, cx+r, cy+r), image.NewUniform(col), image.Point{})
}

func (c *canvas) measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Round()
}

// text draws s with its baseline starting at (x, y).
func (c *canvas) text(face font.Face, col color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textRight draws s so that it ends at x.
func (c *canvas) textRight(face font.Face, col color.Color, x, y int, s string) {
	c.text(face, col, x-c.measure(face, s), y, s)
}

// textCenter draws s centred on the canvas.
func (c *canvas) textCenter(face font.Face, col color.Color, y int, s string) {
	c.text(face, col, (c.width()-c.measure(face, s))/2, y, s)
}

// fit shortens s with an ellipsis until it is at most maxWidth pixels wide.
func (c *canvas) fit(face font.Face, s string, maxWidth int) string {
	if c.measure(face, s) <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if cand := string(r) + "..."; c.measure(face, cand) <= maxWidth {
			return cand
		}
	}
	return ""
}
