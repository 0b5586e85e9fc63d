package kml

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"time"

	"github.com/kodek/obdlive/trace"
	gokml "github.com/twpayne/go-kml"
)

const (
	// StylePrefix keeps the trace style ids from clashing with other documents loaded in the viewer.
	StylePrefix = "LiveOBDKMLStyle"

	hideChildrenStyle = "hidechildren"
	liveDocumentID    = "livegpspos"
	gaugesFolderName  = "Gauges"
	traceFolderName   = "Height=>speed, color=>mpg"
)

var (
	green = color.RGBA{G: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

// StyleID is the id of the style used for segments of class c.
func StyleID(c trace.Class) string {
	if c == trace.Above {
		return StylePrefix + "Green"
	}
	return StylePrefix + "Red"
}

// TraceStyles are the two styles referenced by trace placemarks: green for runs meeting the target,
// red for the rest.
func TraceStyles() []gokml.Element {
	return []gokml.Element{
		colorStyle(StyleID(trace.Above), green),
		colorStyle(StyleID(trace.Below), red),
	}
}

func colorStyle(id string, c color.Color) *gokml.SharedElement {
	return gokml.SharedStyle(id,
		gokml.LineStyle(gokml.Color(c)),
		gokml.PolyStyle(gokml.Color(c)),
	)
}

func hideChildren() *gokml.SharedElement {
	return gokml.SharedStyle(hideChildrenStyle,
		gokml.ListStyle(gokml.ListItemType(gokml.ListItemTypeCheckHideChildren)))
}

// TracePlacemark draws one segment as an extruded line whose height is the vehicle speed.
func TracePlacemark(s trace.Segment) *gokml.CompoundElement {
	coords := make([]gokml.Coordinate, 0, len(s.Points))
	for _, p := range s.Points {
		coords = append(coords, gokml.Coordinate{Lon: p.Lon(), Lat: p.Lat(), Alt: p.Speed})
	}
	return gokml.Placemark(
		gokml.Description(fmt.Sprintf("%s target, %.2f km", s.Class, s.Length()/1000)),
		gokml.StyleURL("#"+StyleID(s.Class)),
		gokml.LineString(
			gokml.Extrude(true),
			gokml.Tessellate(true),
			gokml.AltitudeMode(gokml.AltitudeModeRelativeToGround),
			gokml.Coordinates(coords...),
		),
	)
}

// TraceFolder holds the trace styles and one placemark per segment.
func TraceFolder(segments []trace.Segment) *gokml.CompoundElement {
	f := gokml.Folder(
		gokml.Name(traceFolderName),
		gokml.StyleURL("#"+hideChildrenStyle),
	)
	f.Add(TraceStyles()...)
	for _, s := range segments {
		f.Add(TracePlacemark(s))
	}
	return f
}

// LiveDocument is the document refreshed by the seed's network link: the gauges pinned to the screen
// and the colored trace of the sampled window.
func LiveDocument(overlays []Overlay, segments []trace.Segment) Element {
	gauges := gokml.Folder(gokml.Name(gaugesFolderName))
	for _, o := range overlays {
		gauges.Add(o.ScreenOverlay())
	}
	doc := gokml.Document(
		gokml.Name("OBDGPSLogger live updates"),
		hideChildren(),
		gauges,
		TraceFolder(segments),
	)
	doc.Attr = append(doc.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: liveDocumentID})
	return gokml.KML(doc)
}

// TraceDocument is a standalone document with only the trace, for offline export.
func TraceDocument(name, description string, segments []trace.Segment) Element {
	doc := gokml.Document()
	if name != "" {
		doc.Add(gokml.Name(name))
	}
	if description != "" {
		doc.Add(gokml.Description(description))
	}
	doc.Add(hideChildren(), TraceFolder(segments))
	return gokml.KML(doc)
}

// SeedDocument links to the live document at href. A positive refresh makes the viewer reload it on
// that interval; otherwise it is fetched once.
func SeedDocument(href, description string, refresh time.Duration) Element {
	link := gokml.Link(gokml.Href(href))
	if refresh > 0 {
		link.Add(
			gokml.RefreshMode(gokml.RefreshModeOnInterval),
			gokml.RefreshInterval(refresh.Seconds()),
		)
	}
	nl := gokml.NetworkLink(gokml.Name("OBDGPSLogger network link"))
	if description != "" {
		nl.Add(gokml.Description(description))
	}
	nl.Add(link)
	return gokml.KML(nl)
}
