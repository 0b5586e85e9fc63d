package clock

import "time"

type Clock interface {
	Now() time.Time
}

func NewReal() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// FakeClock always reports CurrentTime. Handlers under test use it to pin the "now" anchor that
// startdelta offsets are measured from.
type FakeClock struct {
	CurrentTime time.Time
}

func (fc *FakeClock) Now() time.Time {
	return fc.CurrentTime
}

// Advance moves the fake clock forward by d.
func (fc *FakeClock) Advance(d time.Duration) {
	fc.CurrentTime = fc.CurrentTime.Add(d)
}
