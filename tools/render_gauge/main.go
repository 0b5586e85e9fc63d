// Renders one gauge image, either for a given value or for the first value logged at or after a time.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/kodek/obdlive/common"
	"github.com/kodek/obdlive/gauge"
	"github.com/kodek/obdlive/telemetry"
	"github.com/pkg/errors"
)

var (
	channel  = flag.String("channel", "vss", "Column of the obd table to show")
	label    = flag.String("label", "Vehicle Speed", "Name printed under the dial")
	gaugeMin = flag.Float64("min", 0, "Value at the left end of the dial")
	gaugeMax = flag.Float64("max", 255, "Value at the right end of the dial")
	value    = flag.String("value", "", "Value to show. When empty the value is read from the database")
	at       = flag.Int64("at", 0, "Unix time to read the value at")
	dbPath   = flag.String("db", "", "obdgpslogger database to read. Defaults to database.path from the config")
	extra    = flag.String("extra", "", "Extra text drawn inside the dial")
	outPath  = flag.String("out", "gauge.png", "Output file")
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()

	spec := gauge.Spec{
		Channel: *channel,
		Label:   *label,
		Min:     *gaugeMin,
		Max:     *gaugeMax,
	}
	v, err := lookupValue()
	if err != nil {
		glog.Fatal(err)
	}
	spec.Value = v

	img, err := gauge.Render(spec, *extra)
	if err != nil {
		glog.Fatal(err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		glog.Fatal(err)
	}
	if err := gauge.WritePNG(f, img); err != nil {
		glog.Fatal(err)
	}
	if err := f.Close(); err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Wrote %s showing %s = %s", *outPath, spec.Channel, spec.Value)
}

func lookupValue() (gauge.Value, error) {
	if *value != "" {
		if *value == gauge.Unknown.String() {
			return gauge.Unknown, nil
		}
		f, err := strconv.ParseFloat(*value, 64)
		if err != nil {
			return gauge.Unknown, errors.Wrapf(err, "bad -value %q", *value)
		}
		return gauge.Known(f), nil
	}

	path := *dbPath
	if path == "" {
		conf, err := common.LoadConfig()
		if err != nil {
			return gauge.Unknown, err
		}
		path = conf.Database.Path
	}
	db, err := telemetry.OpenSqliteDatabase(path)
	if err != nil {
		return gauge.Unknown, err
	}
	defer db.Close()
	return readValue(context.Background(), db, *channel, time.Unix(*at, 0))
}

// readValue returns the first value of channel logged at or after t, or Unknown.
func readValue(ctx context.Context, db telemetry.Database, channel string, t time.Time) (gauge.Value, error) {
	ok, err := db.HasChannel(ctx, channel)
	if err != nil {
		return gauge.Unknown, err
	}
	if !ok {
		return gauge.Unknown, errors.Errorf("no column %q in the obd table", channel)
	}
	r, err := db.FirstReadingSince(ctx, channel, t)
	if err != nil || r == nil {
		return gauge.Unknown, err
	}
	glog.Infof("Read %s = %v logged at %s", channel, r.Value, r.Time.UTC().Format(time.RFC3339))
	return gauge.Known(r.Value), nil
}
