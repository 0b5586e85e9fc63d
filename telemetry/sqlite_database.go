package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	obdTable = "obd"
	gpsTable = "gps"
)

type sqliteDatabase struct {
	conn *sqlx.DB
	path string
}

// OpenSqliteDatabase opens an obdgpslogger database read-only and checks that the obd and gps tables
// exist. The logger may still be writing to the file.
func OpenSqliteDatabase(path string) (Database, error) {
	conn, err := sqlx.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open database %s", path)
	}
	db := &sqliteDatabase{
		conn: conn,
		path: path,
	}
	if err := db.checkSchema(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	glog.Infof("Opened telemetry database %s.", path)
	return db, nil
}

func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro&_busy_timeout=5000"
}

func (db *sqliteDatabase) checkSchema(ctx context.Context) error {
	var tables []string
	err := db.conn.SelectContext(ctx, &tables,
		"select name from sqlite_master where type = 'table' and name in (?, ?)", obdTable, gpsTable)
	if err != nil {
		return errors.Wrapf(err, "cannot read schema of %s", db.path)
	}
	if len(tables) != 2 {
		return errors.Errorf("database %s is missing the %s and %s tables (found %v)", db.path, obdTable, gpsTable, tables)
	}
	return nil
}

func (db *sqliteDatabase) Close() error {
	return db.conn.Close()
}

func (db *sqliteDatabase) Channels(ctx context.Context) ([]string, error) {
	var names []string
	if err := db.conn.SelectContext(ctx, &names, "select name from pragma_table_info(?)", obdTable); err != nil {
		return nil, errors.Wrap(err, "cannot list obd columns")
	}
	return names, nil
}

func (db *sqliteDatabase) HasChannel(ctx context.Context, channel string) (bool, error) {
	names, err := db.Channels(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == channel {
			return true, nil
		}
	}
	return false, nil
}

func (db *sqliteDatabase) FirstReadingSince(ctx context.Context, channel string, since time.Time) (*Reading, error) {
	ok, err := db.HasChannel(ctx, channel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("unknown channel %q", channel)
	}

	// channel matched a column name above, so quoting it is enough to use it as an identifier.
	q := fmt.Sprintf("select %s as value, time from %s where time >= ? order by time asc limit 1",
		quoteIdentifier(channel), obdTable)
	glog.V(1).Infof("Querying %s since %d.", channel, since.Unix())

	var row struct {
		Value sql.NullFloat64 `db:"value"`
		Time  float64         `db:"time"`
	}
	err = db.conn.GetContext(ctx, &row, q, since.Unix())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query %s", channel)
	}
	if !row.Value.Valid {
		return nil, nil
	}
	return &Reading{
		Time:  fromUnixFloat(row.Time),
		Value: row.Value.Float64,
	}, nil
}

func (db *sqliteDatabase) TraceSamples(ctx context.Context, start, end time.Time) ([]TraceSample, error) {
	for _, c := range []string{SpeedChannel, AirflowChannel} {
		ok, err := db.HasChannel(ctx, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Errorf("obd table has no %s column", c)
		}
	}

	q := `select gps.time as time, gps.lat as lat, gps.lon as lon, obd.vss as vss, obd.maf as maf
	from gps left join obd on gps.time = obd.time
	where gps.time >= ? and gps.time <= ? and gps.lat is not null and gps.lon is not null
	order by gps.time asc`
	glog.V(1).Infof("Querying trace between %d and %d.", start.Unix(), end.Unix())

	var samples []TraceSample
	if err := db.conn.SelectContext(ctx, &samples, q, start.Unix(), end.Unix()); err != nil {
		return nil, errors.Wrap(err, "cannot query trace")
	}
	return samples, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
}
