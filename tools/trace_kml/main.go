// Writes the colored trace of a time range of an obdgpslogger log as a static KML document.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/kodek/obdlive/common"
	"github.com/kodek/obdlive/frontend"
	"github.com/kodek/obdlive/kml"
	"github.com/kodek/obdlive/telemetry"
	"github.com/pkg/errors"
)

var (
	dbPath    = flag.String("db", "", "obdgpslogger database to read. Defaults to database.path from the config")
	start     = flag.Int64("start", 0, "Unix time of the first fix to include")
	end       = flag.Int64("end", 0, "Unix time of the last fix to include. Defaults to start plus one hour")
	targetMPG = flag.Float64("target_mpg", 0, "Fuel efficiency separating green from red. Defaults to livekml.target_mpg")
	outPath   = flag.String("out", "", "Output file. Defaults to stdout")
)

func main() {
	_ = flag.Set("logtostderr", "true")
	flag.Parse()

	conf, err := common.LoadConfig()
	if err != nil {
		glog.Fatal(err)
	}
	if *dbPath == "" {
		*dbPath = conf.Database.Path
	}
	if *targetMPG == 0 {
		*targetMPG = conf.LiveKML.TargetMPG
	}
	if *end == 0 {
		*end = *start + int64(time.Hour/time.Second)
	}

	db, err := telemetry.OpenSqliteDatabase(*dbPath)
	if err != nil {
		glog.Fatal(err)
	}
	defer db.Close()

	name := filepath.Base(*dbPath)
	from, to := time.Unix(*start, 0), time.Unix(*end, 0)
	if *outPath == "" {
		if err := writeTrace(context.Background(), db, os.Stdout, name, from, to, *targetMPG); err != nil {
			glog.Fatal(err)
		}
		return
	}
	if err := writeTraceFile(context.Background(), db, *outPath, name, from, to, *targetMPG); err != nil {
		glog.Fatal(err)
	}
}

// writeTraceFile writes the trace to path. The file is only complete once it has closed without error.
func writeTraceFile(ctx context.Context, db telemetry.Database, path, name string, from, to time.Time, targetMPG float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create output")
	}
	if err := writeTrace(ctx, db, f, name, from, to, targetMPG); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "cannot close %s", path)
}

// writeTrace writes the fixes of db in [from, to] as a trace document.
func writeTrace(ctx context.Context, db telemetry.Database, w io.Writer, name string, from, to time.Time, targetMPG float64) error {
	if to.Before(from) {
		return errors.Errorf("end %d is before start %d", to.Unix(), from.Unix())
	}
	rows, err := db.TraceSamples(ctx, from, to)
	if err != nil {
		return err
	}
	segments := frontend.BuildTrace(rows, targetMPG)
	glog.Infof("Read %d fixes from %s into %d segments.", len(rows), name, len(segments))

	desc := fmt.Sprintf("%s to %s, target %v mpg",
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339), targetMPG)
	return kml.Encode(w, kml.TraceDocument(name, desc, segments))
}
