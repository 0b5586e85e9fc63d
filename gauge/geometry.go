package gauge

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// Divisions is the number of intervals between tick labels on the dial.
	Divisions = 7

	radius       = 40
	border       = 40 // room around the dial for the tick labels
	gaugeWidth   = 2 * radius
	gaugeHeight  = radius
	textRadius   = gaugeHeight + 20
	needleLength = gaugeHeight - 20

	Width  = gaugeWidth + 2*border
	Height = gaugeHeight + 2*border
)

// Value is a channel reading that may be missing.
type Value struct {
	v     float64
	known bool
}

// Unknown is the value shown when no reading exists.
var Unknown = Value{}

// Known wraps a reading.
func Known(v float64) Value {
	return Value{v: v, known: true}
}

// Float returns the reading and whether there is one.
func (v Value) Float() (float64, bool) {
	return v.v, v.known
}

func (v Value) String() string {
	if !v.known {
		return "Unknown"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// Spec describes a single gauge image.
type Spec struct {
	Channel string
	Label   string
	Min     float64
	Max     float64
	Value   Value
}

// Validate checks that the range is usable.
func (s Spec) Validate() error {
	if math.IsNaN(s.Min) || math.IsInf(s.Min, 0) || math.IsNaN(s.Max) || math.IsInf(s.Max, 0) {
		return errors.Errorf("gauge range [%v, %v] must be finite", s.Min, s.Max)
	}
	if s.Min >= s.Max {
		return errors.Errorf("gauge minimum %v must be below maximum %v", s.Min, s.Max)
	}
	if math.IsInf(s.Max-s.Min, 0) {
		return errors.Errorf("gauge range [%v, %v] is too wide", s.Min, s.Max)
	}
	return nil
}

// CenterText is the label printed under the dial.
func (s Spec) CenterText() string {
	return s.Label + " : " + s.Value.String()
}

// Point is a position in image pixels.
type Point struct {
	X, Y float64
}

// Tick is one numeric label around the dial.
type Tick struct {
	Angle float64
	Value float64
	At    Point
}

// Text is the label as printed: the value rounded to an integer.
func (t Tick) Text() string {
	r := math.Round(t.Value)
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

// Geometry is everything needed to draw a gauge, in image pixels. Angles are in radians, measured
// clockwise from the positive x axis because the image y axis points down; the dial spans pi to 2*pi.
type Geometry struct {
	Center       Point
	Radius       float64
	TextRadius   float64
	NeedleLength float64
	Ticks        []Tick

	// HasNeedle is false when the value is unknown.
	HasNeedle   bool
	NeedleAngle float64
	NeedleEnd   Point
}

// Layout computes the dial geometry for s. s must be valid.
func Layout(s Spec) Geometry {
	g := Geometry{
		Center:       Point{X: Width / 2, Y: Height - border},
		Radius:       radius,
		TextRadius:   textRadius,
		NeedleLength: needleLength,
		Ticks:        make([]Tick, 0, Divisions+1),
	}
	for i, v := range TickValues(s.Min, s.Max) {
		angle := math.Pi / 180 * (180 + 180*float64(i)/Divisions)
		g.Ticks = append(g.Ticks, Tick{
			Angle: angle,
			Value: v,
			At:    g.polar(angle, textRadius),
		})
	}
	if v, ok := s.Value.Float(); ok {
		g.HasNeedle = true
		g.NeedleAngle = NeedleAngle(s.Min, s.Max, v)
		g.NeedleEnd = g.polar(g.NeedleAngle, needleLength)
	}
	return g
}

func (g Geometry) polar(angle, r float64) Point {
	return Point{
		X: g.Center.X + r*math.Cos(angle),
		Y: g.Center.Y + r*math.Sin(angle),
	}
}

// TickValues returns the Divisions+1 evenly spaced values labelled on the dial, from min to max.
func TickValues(min, max float64) []float64 {
	vals := make([]float64, Divisions+1)
	for i := range vals {
		vals[i] = min + float64(i)*(max-min)/Divisions
	}
	return vals
}

// NeedleAngle maps value linearly from [min, max] onto [pi, 2*pi]. Values outside the range pin the
// needle to the nearest end of the dial.
func NeedleAngle(min, max, value float64) float64 {
	frac := (value - min) / (max - min)
	if math.IsNaN(frac) {
		frac = 0
	}
	frac = math.Max(0, math.Min(1, frac))
	return math.Pi / 180 * (180 + 180*frac)
}
