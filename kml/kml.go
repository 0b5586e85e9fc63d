// Package kml builds the KML documents served to Google Earth on top of go-kml element trees.
package kml

import (
	"io"

	"github.com/pkg/errors"
	gokml "github.com/twpayne/go-kml"
)

const MIMEType = "application/vnd.google-earth.kml+xml"

// Element is a KML element, usually a whole document from this package.
type Element = gokml.Element

// Encode writes k as an indented XML document.
func Encode(w io.Writer, k Element) error {
	if err := k.WriteIndent(w, "", "  "); err != nil {
		return errors.Wrap(err, "cannot encode kml")
	}
	_, err := io.WriteString(w, "\n")
	return errors.Wrap(err, "cannot write kml")
}
