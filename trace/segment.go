// Package trace splits a GPS track into runs of points whose fuel efficiency is on the same side of a
// target.
package trace

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Class says whether a run of the trace meets the efficiency target.
type Class int

const (
	Below Class = iota
	Above
)

func (c Class) String() string {
	if c == Above {
		return "above"
	}
	return "below"
}

// Classify compares mpg against target. Non-finite efficiencies (no airflow logged) count as below.
func Classify(mpg, target float64) Class {
	if math.IsNaN(mpg) || math.IsInf(mpg, 0) {
		return Below
	}
	if mpg >= target {
		return Above
	}
	return Below
}

// Sample is one position along the track. Speed is used as the altitude of the drawn line.
type Sample struct {
	Point orb.Point
	Speed float64
	MPG   float64
}

// Point is one vertex of a segment.
type Point struct {
	orb.Point
	Speed float64
}

// Segment is a contiguous run of the trace sharing one classification.
type Segment struct {
	Class  Class
	Points []Point
}

// LineString drops the speed of every point.
func (s Segment) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(s.Points))
	for _, p := range s.Points {
		ls = append(ls, p.Point)
	}
	return ls
}

// Length is the geodesic length of the segment in meters.
func (s Segment) Length() float64 {
	total := 0.0
	for i := 1; i < len(s.Points); i++ {
		total += geo.Distance(s.Points[i-1].Point, s.Points[i].Point)
	}
	return total
}

// Split walks samples in order and cuts the track every time the classification against targetMPG
// changes. The sample at a change ends the closed segment and starts the next one, so consecutive
// segments share a vertex. Consecutive samples at the same position are coalesced. No samples yield no
// segments.
func Split(samples []Sample, targetMPG float64) []Segment {
	var (
		segments []Segment
		current  Segment
		last     orb.Point
		started  bool
	)
	for _, s := range samples {
		if started && s.Point.Equal(last) {
			continue
		}
		last = s.Point

		p := Point{Point: s.Point, Speed: s.Speed}
		class := Classify(s.MPG, targetMPG)
		current.Points = append(current.Points, p)

		if !started {
			current.Class = class
			started = true
			continue
		}
		if class != current.Class {
			segments = append(segments, current)
			current = Segment{
				Class:  class,
				Points: []Point{p},
			}
		}
	}
	if started {
		segments = append(segments, current)
	}
	return segments
}
