package telemetry

import (
	"context"
	"time"
)

// Database is a read-only view of an obdgpslogger log.
type Database interface {
	// Channels lists the columns of the obd table.
	Channels(ctx context.Context) ([]string, error)

	// HasChannel reports whether the obd table has a column with the given name.
	HasChannel(ctx context.Context, channel string) (bool, error)

	// FirstReadingSince returns the first value of channel logged at or after since, or nil if there is
	// none. The channel must be validated with HasChannel first.
	FirstReadingSince(ctx context.Context, channel string, since time.Time) (*Reading, error)

	// TraceSamples returns the GPS fixes in [start, end] joined with the OBD speed and airflow logged at the
	// same instant, ordered by time.
	TraceSamples(ctx context.Context, start, end time.Time) ([]TraceSample, error)

	Close() error
}
