package telemetry

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createLog writes a small obdgpslogger style database and returns its path.
func createLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.db")
	conn, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	conn.MustExec(`create table obd (vss real, rpm real, maf real, throttlepos real, time real, trip integer)`)
	conn.MustExec(`create table gps (lat real, lon real, alt real, speed real, course real, gpstime real, time real, trip integer)`)

	obd := []struct {
		vss, rpm, maf, tp, time float64
	}{
		{50, 2000, 10, 20, 1000},
		{60, 2500, 0, 25, 1001},
		{70, 3000, 20, 30, 1002},
	}
	for _, r := range obd {
		conn.MustExec(`insert into obd (vss, rpm, maf, throttlepos, time, trip) values (?, ?, ?, ?, ?, 1)`,
			r.vss, r.rpm, r.maf, r.tp, r.time)
	}
	gps := []struct {
		lat, lon, time float64
	}{
		{47.0, 8.0, 1000},
		{47.1, 8.1, 1001},
		{47.2, 8.2, 1002},
		{47.3, 8.3, 1003}, // no obd row
		{47.4, 8.4, 2000}, // outside window
	}
	for _, r := range gps {
		conn.MustExec(`insert into gps (lat, lon, time, trip) values (?, ?, ?, 1)`, r.lat, r.lon, r.time)
	}
	return path
}

func TestOpenMissingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	conn, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	conn.MustExec(`create table trip (tripid integer primary key, start real, "end" real)`)
	require.NoError(t, conn.Close())

	_, err = OpenSqliteDatabase(path)
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := OpenSqliteDatabase(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestOpenWithRetryGivesUp(t *testing.T) {
	start := time.Now()
	_, err := OpenWithRetry(filepath.Join(t.TempDir(), "nope.db"), 200*time.Millisecond)
	assert.Error(t, err)
	assert.True(t, time.Since(start) < 5*time.Second)
}

func TestChannels(t *testing.T) {
	db, err := OpenSqliteDatabase(createLog(t))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	channels, err := db.Channels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"vss", "rpm", "maf", "throttlepos", "time", "trip"}, channels)

	ok, err := db.HasChannel(ctx, "rpm")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.HasChannel(ctx, "rpm; drop table obd")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstReadingSince(t *testing.T) {
	db, err := OpenSqliteDatabase(createLog(t))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	r, err := db.FirstReadingSince(ctx, "rpm", time.Unix(1001, 0))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 2500.0, r.Value)
	assert.Equal(t, int64(1001), r.Time.Unix())

	r, err = db.FirstReadingSince(ctx, "rpm", time.Unix(999, 0))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 2000.0, r.Value)

	r, err = db.FirstReadingSince(ctx, "rpm", time.Unix(5000, 0))
	require.NoError(t, err)
	assert.Nil(t, r, "no rows is not an error")

	_, err = db.FirstReadingSince(ctx, "bogus", time.Unix(0, 0))
	assert.Error(t, err)
}

func TestTraceSamples(t *testing.T) {
	db, err := OpenSqliteDatabase(createLog(t))
	require.NoError(t, err)
	defer db.Close()

	samples, err := db.TraceSamples(context.Background(), time.Unix(1000, 0), time.Unix(1010, 0))
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, 8.0, samples[0].Longitude)
	assert.Equal(t, 47.0, samples[0].Latitude)
	assert.Equal(t, 50.0, samples[0].SpeedOrZero())
	assert.InDelta(t, 7.107*50/10, samples[0].MilesPerGallon(), 1e-9)

	assert.True(t, math.IsInf(samples[1].MilesPerGallon(), 1), "zero airflow")

	assert.False(t, samples[3].Speed.Valid)
	assert.Equal(t, 0.0, samples[3].SpeedOrZero())
	assert.True(t, math.IsNaN(samples[3].MilesPerGallon()), "missing obd row")
}

func TestTraceSamplesEmptyWindow(t *testing.T) {
	db, err := OpenSqliteDatabase(createLog(t))
	require.NoError(t, err)
	defer db.Close()

	samples, err := db.TraceSamples(context.Background(), time.Unix(3000, 0), time.Unix(3010, 0))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"vss"`, quoteIdentifier("vss"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
