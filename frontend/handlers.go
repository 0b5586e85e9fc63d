// Package frontend serves gauge images and the live KML documents from an obdgpslogger log.
package frontend

import (
	"bytes"
	"context"
	"html/template"
	"image"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"
	"github.com/kodek/obdlive/common"
	"github.com/kodek/obdlive/gauge"
	"github.com/kodek/obdlive/kml"
	"github.com/kodek/obdlive/telemetry"
	"github.com/kodek/obdlive/telemetry/clock"
	"github.com/pkg/errors"
)

const (
	seedFilename = "liveobdseed.kml"
	liveFilename = "liveobd.kml"

	// Any date in the past works.
	expiredDate = "Sat, 26 Jul 1997 05:00:00 GMT"
)

var updateRates = []int{1, 2, 4, 8, 16, 32}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>Launch {{.Name}}</title></head>
<body>
<h1>Launch {{.Name}}</h1>
<form method="GET">
<input type="hidden" name="stage" value="1">
<table>
<tr><td>Target MPG</td><td><input type="text" name="targetmpg" value="{{.TargetMPG}}"></td></tr>
<tr><td>Sample Length (Seconds)</td><td><input type="text" name="samplelength" value="{{.SampleLength}}"></td></tr>
<tr><td>Start Time</td><td>
<select name="startdelta">
<option value="-1" selected>Live Data</option>
{{if .ReplayDelta}}<option value="{{.ReplayDelta}}">Start of {{.LogName}}</option>
{{end}}</select>
</td></tr>
<tr><td>Update Rate</td><td>
<select name="updaterate">
<option value="-1"{{if eq .UpdateRate 0}} selected{{end}}>Never</option>
{{range .UpdateRates}}<option value="{{.}}"{{if eq . $.UpdateRate}} selected{{end}}>{{.}} Second{{if ne . 1}}s{{end}}</option>
{{end}}</select>
</td></tr>
<tr><td>Debug Mode</td><td><input type="checkbox" name="debug" value="1"{{if .Debug}} checked{{end}}></td></tr>
<tr><td><input type="submit"></td></tr>
</table>
</form>
</body>
</html>
`))

// Server answers gauge and live KML requests against one log.
type Server struct {
	db    telemetry.Database
	clock clock.Clock
	conf  common.Configuration
}

func NewServer(db telemetry.Database, clk clock.Clock, conf common.Configuration) *Server {
	return &Server{
		db:    db,
		clock: clk,
		conf:  conf,
	}
}

// Register attaches all handlers to mux.
func (s *Server) Register(mux *common.KodekMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/livekml", http.StatusSeeOther)
	})
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := s.conf.WriteRedacted(w); err != nil {
			glog.Errorf("Cannot write config: %s", err)
		}
	})
	mux.HandleFunc("/gauge", s.HandleGauge)
	mux.HandleFunc("/livekml", s.HandleLiveKML)
}

// now is truncated to whole seconds, the resolution of every offset in a request.
func (s *Server) now() time.Time {
	return s.clock.Now().Truncate(time.Second)
}

// baseURL is the scheme and host viewers reach this server at.
func (s *Server) baseURL(r *http.Request) string {
	if s.conf.Server.PublicURL != "" {
		return strings.TrimSuffix(s.conf.Server.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	w.Header().Set("Expires", expiredDate)
}

func statusFor(err error) int {
	if isInputError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandleGauge renders the gauge for the first value of a channel logged after now minus startdelta.
func (s *Server) HandleGauge(w http.ResponseWriter, r *http.Request) {
	p, err := ParseGaugeParams(r.URL.Query(), s.conf.Gauge)
	if err != nil {
		s.gaugeError(w, err)
		return
	}
	img, err := s.renderGauge(r.Context(), p)
	if err != nil {
		s.gaugeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := gauge.WritePNG(&buf, img); err != nil {
		s.gaugeError(w, err)
		return
	}
	noCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) renderGauge(ctx context.Context, p GaugeParams) (*image.RGBA, error) {
	ok, err := s.db.HasChannel(ctx, p.Channel)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list channels")
	}
	if !ok {
		return nil, inputErrorf("Couldn't find column\n%s", p.Channel)
	}

	since := s.now().Add(-p.StartDelta)
	reading, err := s.db.FirstReadingSince(ctx, p.Channel, since)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", p.Channel)
	}

	value := gauge.Unknown
	extra := p.Extra
	if reading != nil {
		value = gauge.Known(reading.Value)
		if p.Debug && extra == "" {
			extra = reading.Time.UTC().Format("15:04:05")
		}
	}
	if glog.V(1) {
		glog.Infof("Gauge %s since %d: %s", p.Channel, since.Unix(), spew.Sdump(reading))
	}
	return gauge.Render(p.Spec(value), extra)
}

// gaugeError answers with an image so the viewer shows what went wrong in place of the gauge.
func (s *Server) gaugeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		glog.Errorf("Gauge failed: %s", err)
		msg = "Error reading database\n" + errors.Cause(err).Error()
	}

	var buf bytes.Buffer
	if err := gauge.WritePNG(&buf, gauge.RenderError(msg)); err != nil {
		http.Error(w, msg, code)
		return
	}
	noCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// HandleLiveKML serves the three stages of the live view: the launch form, the seed document that
// links back to stage 2, and the live document itself.
func (s *Server) HandleLiveKML(w http.ResponseWriter, r *http.Request) {
	p, err := ParseLiveParams(r.URL.Query(), s.conf.LiveKML)
	if err != nil {
		s.textError(w, err)
		return
	}
	if glog.V(1) {
		glog.Infof("Live KML request: %s", spew.Sdump(p))
	}

	switch p.Stage {
	case StageSeed:
		s.serveSeed(w, r, p)
	case StageLive:
		s.serveLive(w, r, p)
	default:
		s.serveForm(w, p)
	}
}

func (s *Server) textError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		glog.Errorf("Live KML failed: %s", err)
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) serveForm(w http.ResponseWriter, p LiveParams) {
	data := struct {
		Name         string
		LogName      string
		TargetMPG    float64
		SampleLength int64
		ReplayDelta  int64
		UpdateRate   int
		UpdateRates  []int
		Debug        bool
	}{
		Name:         s.conf.Server.Name,
		LogName:      filepath.Base(s.conf.Database.Path),
		TargetMPG:    p.TargetMPG,
		SampleLength: int64(p.SampleLength / time.Second),
		UpdateRate:   int(p.UpdateRate / time.Second),
		UpdateRates:  updateRates,
		Debug:        p.Debug,
	}
	if start := s.conf.LiveKML.ReplayStart; start > 0 {
		data.ReplayDelta = s.now().Unix() - start
	}

	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, data); err != nil {
		s.textError(w, errors.Wrap(err, "cannot render form"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) serveSeed(w http.ResponseWriter, r *http.Request, p LiveParams) {
	href := s.baseURL(r) + r.URL.Path + "?" + p.LiveQuery().Encode()
	desc := "Showing live data from OBDGPSLogger, pulled from logfile " + filepath.Base(s.conf.Database.Path)
	s.writeKML(w, p.Debug, seedFilename, kml.SeedDocument(href, desc, p.UpdateRate))
}

func (s *Server) serveLive(w http.ResponseWriter, r *http.Request, p LiveParams) {
	start, end, gaugeDelta := p.Window(s.now())
	rows, err := s.db.TraceSamples(r.Context(), start, end)
	if err != nil {
		s.textError(w, errors.Wrap(err, "cannot read trace"))
		return
	}
	segments := BuildTrace(rows, p.TargetMPG)
	glog.V(1).Infof("Trace %d-%d: %d fixes in %d segments.", start.Unix(), end.Unix(), len(rows), len(segments))

	overlays := kml.PlanOverlays(s.baseURL(r)+"/gauge", gaugeDelta, p.Debug, s.conf.LiveKML.Gauges)
	s.writeKML(w, p.Debug, liveFilename, kml.LiveDocument(overlays, segments))
}

// writeKML serves k as a download, or as plain text a browser will show in debug mode.
func (s *Server) writeKML(w http.ResponseWriter, debug bool, filename string, k kml.Element) {
	var buf bytes.Buffer
	if err := kml.Encode(&buf, k); err != nil {
		s.textError(w, err)
		return
	}
	if debug {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", kml.MIMEType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	}
	w.Write(buf.Bytes())
}
