package kml

import (
	"net/url"
	"strconv"
	"time"

	gokml "github.com/twpayne/go-kml"
)

// OverlaySize is the fraction of the viewport each gauge covers in both directions.
const OverlaySize = 0.15

// OverlaySpec places one gauge on screen. X and Y are the anchor point inside the gauge image, as
// fractions. ScreenX and ScreenY are where that anchor lands on the viewport; when unset they equal X and
// Y, so (0, 1) pins the gauge's top left corner to the top left of the screen.
type OverlaySpec struct {
	Column  string   `yaml:"column"`
	Name    string   `yaml:"name"`
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	ScreenX *float64 `yaml:"screen_x,omitempty"`
	ScreenY *float64 `yaml:"screen_y,omitempty"`
}

// Anchor is the point of the gauge image that is pinned to the screen.
func (s OverlaySpec) Anchor() Fraction {
	return Fraction{X: s.X, Y: s.Y}
}

// Screen is where the anchor lands on the viewport.
func (s OverlaySpec) Screen() Fraction {
	f := s.Anchor()
	if s.ScreenX != nil {
		f.X = *s.ScreenX
	}
	if s.ScreenY != nil {
		f.Y = *s.ScreenY
	}
	return f
}

// Fraction is a point in viewport or image fractions.
type Fraction struct {
	X, Y float64
}

func (f Fraction) vec2() gokml.Vec2 {
	return gokml.Vec2{X: f.X, Y: f.Y, XUnits: gokml.UnitsFraction, YUnits: gokml.UnitsFraction}
}

// Overlay is a gauge laid out on screen.
type Overlay struct {
	Name   string
	Anchor Fraction
	Screen Fraction
	Size   Fraction
	Href   string
}

// ScreenOverlay converts o into its KML element.
func (o Overlay) ScreenOverlay() *gokml.CompoundElement {
	return gokml.ScreenOverlay(
		gokml.Name(o.Name),
		gokml.Icon(gokml.Href(o.Href)),
		gokml.OverlayXY(o.Anchor.vec2()),
		gokml.ScreenXY(o.Screen.vec2()),
		gokml.Size(o.Size.vec2()),
	)
}

// PlanOverlays lays out one overlay per spec, in order. Each href points at gaugeURL with the gauge's
// column, label and range, and asks for the value logged delta before the moment the viewer fetches
// the image.
func PlanOverlays(gaugeURL string, delta time.Duration, debug bool, specs []OverlaySpec) []Overlay {
	overlays := make([]Overlay, 0, len(specs))
	for _, s := range specs {
		overlays = append(overlays, Overlay{
			Name:   s.Name,
			Anchor: s.Anchor(),
			Screen: s.Screen(),
			Size:   Fraction{X: OverlaySize, Y: OverlaySize},
			Href:   GaugeHref(gaugeURL, delta, debug, s),
		})
	}
	return overlays
}

// GaugeHref builds the gauge image URL for s.
func GaugeHref(gaugeURL string, delta time.Duration, debug bool, s OverlaySpec) string {
	q := url.Values{}
	q.Set("startdelta", strconv.FormatInt(int64(delta/time.Second), 10))
	q.Set("datacolumn", s.Column)
	q.Set("dataname", s.Name)
	q.Set("datamin", formatFloat(s.Min))
	q.Set("datamax", formatFloat(s.Max))
	if debug {
		q.Set("debug", "1")
	}
	return gaugeURL + "?" + q.Encode()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
