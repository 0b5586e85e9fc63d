package gauge

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	errorWidth  = 200
	errorHeight = 100
	errorMargin = 10

	strokeWidth = 1.5
	arcSteps    = 64
)

var (
	face = basicfont.Face7x13
	ink  = image.NewUniform(color.Black)
)

// Render draws the gauge described by s. extra, when not empty, is printed inside the dial.
func Render(s Spec, extra string) (*image.RGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g := Layout(s)
	img := blank(Width, Height)

	strokeArc(img, g.Center, g.Radius, math.Pi, 2*math.Pi)
	for _, t := range g.Ticks {
		drawText(img, int(t.At.X), int(t.At.Y), t.Text())
	}
	drawText(img, border, int(g.Center.Y)+10, s.CenterText())
	if extra != "" {
		drawText(img, 2*border, 2*border, extra)
	}
	if g.HasNeedle {
		strokeLine(img, g.NeedleEnd, g.Center)
	}
	return img, nil
}

// RenderError draws msg on a small white image. Each line of msg gets its own row.
func RenderError(msg string) *image.RGBA {
	img := blank(errorWidth, errorHeight)
	lineHeight := face.Metrics().Height.Ceil()
	for i, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		drawText(img, errorMargin, errorMargin+i*lineHeight, line)
	}
	return img
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "cannot encode png")
}

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// drawText prints s with its top left corner at (x, y).
func drawText(dst draw.Image, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  ink,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}

// strokeArc draws the arc of the circle around c from angle a0 to a1, clockwise in image coordinates.
func strokeArc(dst draw.Image, c Point, r, a0, a1 float64) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	outer, inner := r+strokeWidth/2, r-strokeWidth/2
	for i := 0; i <= arcSteps; i++ {
		a := a0 + (a1-a0)*float64(i)/arcSteps
		x, y := float32(c.X+outer*math.Cos(a)), float32(c.Y+outer*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	for i := arcSteps; i >= 0; i-- {
		a := a0 + (a1-a0)*float64(i)/arcSteps
		z.LineTo(float32(c.X+inner*math.Cos(a)), float32(c.Y+inner*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(dst, b, ink, image.Point{})
}

// strokeLine draws a straight line from p to q.
func strokeLine(dst draw.Image, p, q Point) {
	dx, dy := q.X-p.X, q.Y-p.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// half-width normal
	nx, ny := -dy/l*strokeWidth/2, dx/l*strokeWidth/2

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(p.X+nx), float32(p.Y+ny))
	z.LineTo(float32(q.X+nx), float32(q.Y+ny))
	z.LineTo(float32(q.X-nx), float32(q.Y-ny))
	z.LineTo(float32(p.X-nx), float32(p.Y-ny))
	z.ClosePath()
	z.Draw(dst, b, ink, image.Point{})
}
