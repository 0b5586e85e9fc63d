package gauge

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSize(t *testing.T) {
	assert.Equal(t, 160, Width)
	assert.Equal(t, 120, Height)

	g := Layout(Spec{Min: 0, Max: 255, Value: Known(10)})
	assert.Equal(t, Point{X: 80, Y: 80}, g.Center)
	assert.Equal(t, 40.0, g.Radius)
	assert.Equal(t, 60.0, g.TextRadius)
	assert.Equal(t, 20.0, g.NeedleLength)
}

func TestNeedleAngleEnds(t *testing.T) {
	tests := []struct {
		min, max float64
	}{
		{0, 255},
		{0, 8000},
		{-40, 215},
		{0.5, 0.75},
	}
	for _, tt := range tests {
		assert.InDelta(t, math.Pi, NeedleAngle(tt.min, tt.max, tt.min), 1e-12, "min of %v", tt)
		assert.InDelta(t, 2*math.Pi, NeedleAngle(tt.min, tt.max, tt.max), 1e-12, "max of %v", tt)
		assert.InDelta(t, 1.5*math.Pi, NeedleAngle(tt.min, tt.max, (tt.min+tt.max)/2), 1e-12, "middle of %v", tt)
	}
}

func TestNeedleAngleMonotonic(t *testing.T) {
	min, max := 0.0, 8000.0
	prev := NeedleAngle(min, max, min)
	for v := min; v <= max; v += 37 {
		a := NeedleAngle(min, max, v)
		if a < prev {
			t.Errorf("NeedleAngle(%v) = %v, less than %v for a smaller value", v, a, prev)
		}
		prev = a
	}
}

func TestNeedleAngleClamped(t *testing.T) {
	assert.Equal(t, math.Pi, NeedleAngle(0, 100, -50))
	assert.Equal(t, 2*math.Pi, NeedleAngle(0, 100, 500))
}

func TestTicks(t *testing.T) {
	g := Layout(Spec{Min: 0, Max: 255, Value: Unknown})
	require.Len(t, g.Ticks, Divisions+1)

	var labels []string
	for i, tick := range g.Ticks {
		labels = append(labels, tick.Text())
		assert.Equal(t, math.Round(0+float64(i)*255/7), math.Round(tick.Value))
	}
	assert.Equal(t, []string{"0", "36", "73", "109", "146", "182", "219", "255"}, labels)

	// Leftmost and rightmost labels sit on the horizontal through the center.
	assert.InDelta(t, 20, g.Ticks[0].At.X, 1e-9)
	assert.InDelta(t, 80, g.Ticks[0].At.Y, 1e-9)
	assert.InDelta(t, 140, g.Ticks[Divisions].At.X, 1e-9)
	assert.InDelta(t, 80, g.Ticks[Divisions].At.Y, 1e-9)
	for _, tick := range g.Ticks[1:Divisions] {
		assert.True(t, tick.At.Y < 80, "inner ticks are above the center")
	}
}

func TestTickValuesEvenlySpaced(t *testing.T) {
	vals := TickValues(-40, 215)
	require.Len(t, vals, 8)
	step := vals[1] - vals[0]
	for i := 1; i < len(vals); i++ {
		assert.InDelta(t, step, vals[i]-vals[i-1], 1e-9)
	}
	assert.Equal(t, -40.0, vals[0])
	assert.InDelta(t, 215, vals[7], 1e-9)
}

func TestTickTextNoNegativeZero(t *testing.T) {
	assert.Equal(t, "0", Tick{Value: -0.3}.Text())
	assert.Equal(t, "-1", Tick{Value: -0.5}.Text())
	assert.Equal(t, "3", Tick{Value: 2.5}.Text())
}

func TestUnknownValue(t *testing.T) {
	s := Spec{Channel: "vss", Label: "Vehicle Speed", Min: 0, Max: 255, Value: Unknown}
	assert.Equal(t, "Vehicle Speed : Unknown", s.CenterText())

	g := Layout(s)
	assert.False(t, g.HasNeedle)
	assert.Zero(t, g.NeedleAngle)

	_, err := Render(s, "")
	assert.NoError(t, err)
}

func TestKnownValue(t *testing.T) {
	s := Spec{Channel: "rpm", Label: "RPM", Min: 0, Max: 8000, Value: Known(2500.5)}
	assert.Equal(t, "RPM : 2500.5", s.CenterText())

	g := Layout(s)
	assert.True(t, g.HasNeedle)
	assert.InDelta(t, math.Hypot(g.NeedleEnd.X-g.Center.X, g.NeedleEnd.Y-g.Center.Y), 20, 1e-9)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Spec{Min: 0, Max: 1}.Validate())
	assert.Error(t, Spec{Min: 1, Max: 1}.Validate())
	assert.Error(t, Spec{Min: 2, Max: 1}.Validate())
	assert.Error(t, Spec{Min: math.NaN(), Max: 1}.Validate())
	assert.Error(t, Spec{Min: 0, Max: math.Inf(1)}.Validate())
	assert.Error(t, Spec{Min: -1e308, Max: 1e308}.Validate(), "span overflows")
	assert.NoError(t, Spec{Min: -1e307, Max: 1e307}.Validate())

	_, err := Render(Spec{Min: 5, Max: 5}, "")
	assert.Error(t, err)
}

func TestRenderDrawsDial(t *testing.T) {
	img, err := Render(Spec{Label: "Vehicle Speed", Min: 0, Max: 255, Value: Known(0)}, "extra")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())

	// corner stays white, top of the arc is inked
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))
	assert.True(t, isDark(img.RGBAAt(80, 40)), "arc apex at (80, 40)")
	// needle at min points left from the center
	assert.True(t, isDark(img.RGBAAt(70, 80)), "needle")
}

func TestRenderError(t *testing.T) {
	img := RenderError("Couldn't find column\nbogus\n")
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(199, 99))

	dark := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if isDark(img.RGBAAt(x, y)) {
				dark++
			}
		}
	}
	assert.True(t, dark > 0, "message is drawn")
}

func TestWritePNG(t *testing.T) {
	img, err := Render(Spec{Label: "RPM", Min: 0, Max: 8000, Value: Known(4000)}, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	assert.True(t, strings.HasPrefix(buf.String(), "\x89PNG"))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func isDark(c color.RGBA) bool {
	return c.R < 0x80 && c.G < 0x80 && c.B < 0x80
}
