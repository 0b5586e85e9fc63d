package frontend

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/kodek/obdlive/common"
	"github.com/kodek/obdlive/gauge"
	"github.com/pkg/errors"
)

// Stages of the live KML flow.
const (
	StageForm = 0
	StageSeed = 1
	StageLive = 2
)

// liveStartDelta asks for the most recent sample window.
const liveStartDelta = -1

// inputError is a problem with the request rather than with the server.
type inputError struct {
	msg string
}

func (e inputError) Error() string {
	return e.msg
}

func inputErrorf(format string, args ...interface{}) error {
	return inputError{msg: fmt.Sprintf(format, args...)}
}

func isInputError(err error) bool {
	_, ok := errors.Cause(err).(inputError)
	return ok
}

// GaugeParams is a parsed /gauge request.
type GaugeParams struct {
	// StartDelta is how far before now the reading is looked up.
	StartDelta time.Duration
	Channel    string
	Label      string
	Min        float64
	Max        float64
	Extra      string
	// Debug adds the time of the reading as extra text when no other is given.
	Debug bool
}

// Spec builds the gauge spec showing v.
func (p GaugeParams) Spec(v gauge.Value) gauge.Spec {
	return gauge.Spec{
		Channel: p.Channel,
		Label:   p.Label,
		Min:     p.Min,
		Max:     p.Max,
		Value:   v,
	}
}

// ParseGaugeParams reads gauge parameters from q. Missing or empty parameters take their defaults.
func ParseGaugeParams(q url.Values, defaults common.Gauge) (GaugeParams, error) {
	p := GaugeParams{
		Channel: stringParam(q, "datacolumn", "vss"),
		Label:   stringParam(q, "dataname", "Vehicle Speed"),
		Extra:   q.Get("extra"),
		Debug:   q.Get("debug") == "1",
	}
	var err error
	if p.StartDelta, err = secondsParam(q, "startdelta", defaults.DefaultStartDelta); err != nil {
		return GaugeParams{}, err
	}
	if p.Min, err = floatParam(q, "datamin", 0); err != nil {
		return GaugeParams{}, err
	}
	if p.Max, err = floatParam(q, "datamax", 255); err != nil {
		return GaugeParams{}, err
	}
	if err := p.Spec(gauge.Unknown).Validate(); err != nil {
		return GaugeParams{}, inputError{msg: err.Error()}
	}
	return p, nil
}

// LiveParams is a parsed /livekml request.
type LiveParams struct {
	Stage        int
	SampleLength time.Duration
	TargetMPG    float64
	// StartDelta is how far before now the sample window begins.
	StartDelta time.Duration
	// UpdateRate is the viewer refresh interval. Zero means never refresh.
	UpdateRate time.Duration
	Debug      bool
}

// ParseLiveParams reads live KML parameters from q. A start delta of -1 means the latest window: it is
// replaced by the sample length. Unknown or malformed stages show the form.
func ParseLiveParams(q url.Values, defaults common.LiveKML) (LiveParams, error) {
	p := LiveParams{
		Debug: q.Get("debug") == "1",
	}
	// Anything but a seed or live stage, numeric or not, shows the form.
	p.Stage, _ = intParam(q, "stage", StageForm)
	if p.Stage != StageSeed && p.Stage != StageLive {
		p.Stage = StageForm
	}
	var err error
	if p.SampleLength, err = secondsParam(q, "samplelength", defaults.SampleLength); err != nil {
		return LiveParams{}, err
	}
	if p.SampleLength <= 0 {
		return LiveParams{}, inputErrorf("samplelength must be positive, got %s", q.Get("samplelength"))
	}
	if p.TargetMPG, err = floatParam(q, "targetmpg", defaults.TargetMPG); err != nil {
		return LiveParams{}, err
	}

	delta, err := intParam(q, "startdelta", defaults.StartDelta)
	if err != nil {
		return LiveParams{}, err
	}
	if delta == liveStartDelta {
		p.StartDelta = p.SampleLength
	} else if p.StartDelta, err = seconds("startdelta", delta); err != nil {
		return LiveParams{}, err
	}

	if p.UpdateRate, err = secondsParam(q, "updaterate", defaults.UpdateRate); err != nil {
		return LiveParams{}, err
	}
	if p.UpdateRate < 0 {
		p.UpdateRate = 0
	}
	return p, nil
}

// Window is the sample window of a live request made at now, and the delta the gauges look back by so
// they show the values at the end of the window.
func (p LiveParams) Window(now time.Time) (start, end time.Time, gaugeDelta time.Duration) {
	start = now.Add(-p.StartDelta)
	end = start.Add(p.SampleLength)
	return start, end, now.Sub(end)
}

// LiveQuery is the query string of the stage 2 request the seed links to.
func (p LiveParams) LiveQuery() url.Values {
	q := url.Values{}
	q.Set("stage", strconv.Itoa(StageLive))
	q.Set("startdelta", strconv.FormatInt(int64(p.StartDelta/time.Second), 10))
	q.Set("samplelength", strconv.FormatInt(int64(p.SampleLength/time.Second), 10))
	q.Set("targetmpg", strconv.FormatFloat(p.TargetMPG, 'f', -1, 64))
	if p.Debug {
		q.Set("debug", "1")
	}
	return q
}

func stringParam(q url.Values, name, def string) string {
	if v := q.Get(name); v != "" {
		return v
	}
	return def
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, inputErrorf("%s is not an integer: %q", name, v)
	}
	return i, nil
}

func secondsParam(q url.Values, name string, def int) (time.Duration, error) {
	i, err := intParam(q, name, def)
	if err != nil {
		return 0, err
	}
	return seconds(name, i)
}

// maxSeconds is the largest number of seconds a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

func seconds(name string, i int) (time.Duration, error) {
	if int64(i) > maxSeconds || int64(i) < -maxSeconds {
		return 0, inputErrorf("%s is out of range: %d", name, i)
	}
	return time.Duration(i) * time.Second, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, inputErrorf("%s is not a number: %q", name, v)
	}
	return f, nil
}
