package frontend

import (
	"net/url"
	"testing"
	"time"

	"github.com/kodek/obdlive/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGaugeParamsDefaults(t *testing.T) {
	p, err := ParseGaugeParams(url.Values{}, common.Gauge{DefaultStartDelta: 10})
	require.NoError(t, err)
	assert.Equal(t, GaugeParams{
		StartDelta: 10 * time.Second,
		Channel:    "vss",
		Label:      "Vehicle Speed",
		Min:        0,
		Max:        255,
	}, p)
}

func TestParseGaugeParams(t *testing.T) {
	q, err := url.ParseQuery("startdelta=30&datacolumn=rpm&dataname=RPM&datamin=-5&datamax=8000.5&extra=hi&debug=1")
	require.NoError(t, err)
	p, err := ParseGaugeParams(q, common.Gauge{DefaultStartDelta: 10})
	require.NoError(t, err)
	assert.Equal(t, GaugeParams{
		StartDelta: 30 * time.Second,
		Channel:    "rpm",
		Label:      "RPM",
		Min:        -5,
		Max:        8000.5,
		Extra:      "hi",
		Debug:      true,
	}, p)
}

func TestParseGaugeParamsErrors(t *testing.T) {
	tests := []string{
		"startdelta=soon",
		"datamin=low",
		"datamax=1e",
		"datamin=10&datamax=10",
		"datamin=20&datamax=10",
		"datamax=NaN",
		"startdelta=10000000000",
		"startdelta=-10000000000",
	}
	for _, raw := range tests {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = ParseGaugeParams(q, common.Gauge{})
		if assert.Error(t, err, raw) {
			assert.True(t, isInputError(err), raw)
		}
	}
}

func TestParseLiveParams(t *testing.T) {
	defaults := common.DefaultConfig().LiveKML

	tests := []struct {
		raw  string
		want LiveParams
	}{
		{
			raw: "",
			want: LiveParams{Stage: StageForm, SampleLength: 10 * time.Second, TargetMPG: 20,
				StartDelta: 10 * time.Second, UpdateRate: 4 * time.Second},
		},
		{
			raw: "stage=2&samplelength=30&targetmpg=25.5&startdelta=100&updaterate=8&debug=1",
			want: LiveParams{Stage: StageLive, SampleLength: 30 * time.Second, TargetMPG: 25.5,
				StartDelta: 100 * time.Second, UpdateRate: 8 * time.Second, Debug: true},
		},
		{
			// Live data follows the sample length.
			raw: "stage=1&samplelength=15&startdelta=-1&updaterate=-1",
			want: LiveParams{Stage: StageSeed, SampleLength: 15 * time.Second, TargetMPG: 20,
				StartDelta: 15 * time.Second},
		},
		{
			raw: "stage=two",
			want: LiveParams{Stage: StageForm, SampleLength: 10 * time.Second, TargetMPG: 20,
				StartDelta: 10 * time.Second, UpdateRate: 4 * time.Second},
		},
		{
			raw: "stage=7&startdelta=0&debug=yes",
			want: LiveParams{Stage: StageForm, SampleLength: 10 * time.Second, TargetMPG: 20,
				UpdateRate: 4 * time.Second},
		},
	}
	for _, tt := range tests {
		q, err := url.ParseQuery(tt.raw)
		require.NoError(t, err)
		got, err := ParseLiveParams(q, defaults)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseLiveParamsErrors(t *testing.T) {
	tests := []string{
		"samplelength=0",
		"samplelength=-3",
		"samplelength=99999999999",
		"startdelta=10000000000",
		"startdelta=1.5",
		"targetmpg=x",
		"updaterate=fast",
	}
	for _, raw := range tests {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = ParseLiveParams(q, common.DefaultConfig().LiveKML)
		if assert.Error(t, err, raw) {
			assert.True(t, isInputError(err), raw)
		}
	}
}

func TestWindow(t *testing.T) {
	now := time.Unix(10000, 0)
	p := LiveParams{SampleLength: 10 * time.Second, StartDelta: 25 * time.Second}
	start, end, delta := p.Window(now)
	assert.Equal(t, time.Unix(9975, 0), start)
	assert.Equal(t, time.Unix(9985, 0), end)
	assert.Equal(t, 15*time.Second, delta)

	// Live window ends now.
	p.StartDelta = p.SampleLength
	_, end, delta = p.Window(now)
	assert.Equal(t, now, end)
	assert.Equal(t, time.Duration(0), delta)
}

func TestLiveQuery(t *testing.T) {
	p := LiveParams{Stage: StageSeed, SampleLength: 10 * time.Second, TargetMPG: 22.5, StartDelta: 40 * time.Second,
		UpdateRate: 4 * time.Second, Debug: true}
	assert.Equal(t, "debug=1&samplelength=10&stage=2&startdelta=40&targetmpg=22.5", p.LiveQuery().Encode())

	back, err := ParseLiveParams(p.LiveQuery(), common.DefaultConfig().LiveKML)
	require.NoError(t, err)
	assert.Equal(t, StageLive, back.Stage)
	assert.Equal(t, p.StartDelta, back.StartDelta)
	assert.Equal(t, p.SampleLength, back.SampleLength)
	assert.Equal(t, p.TargetMPG, back.TargetMPG)
	assert.True(t, back.Debug)
}
