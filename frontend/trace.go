package frontend

import (
	"github.com/kodek/obdlive/telemetry"
	"github.com/kodek/obdlive/trace"
	"github.com/paulmach/orb"
)

// BuildTrace splits logged fixes into segments colored against targetMPG. Speed doubles as the height of
// each point.
func BuildTrace(rows []telemetry.TraceSample, targetMPG float64) []trace.Segment {
	samples := make([]trace.Sample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, trace.Sample{
			Point: orb.Point{r.Longitude, r.Latitude},
			Speed: r.SpeedOrZero(),
			MPG:   r.MilesPerGallon(),
		})
	}
	return trace.Split(samples, targetMPG)
}
