package telemetry

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// OpenWithRetry keeps trying to open the database at path until it succeeds or timeout elapses. The
// logger creates the file and its tables on first start, so the server may come up before they exist.
func OpenWithRetry(path string, timeout time.Duration) (Database, error) {
	onError := func(e error, d time.Duration) {
		glog.Errorf("Cannot open %s. Retrying in (%s): %s", path, d.Round(time.Millisecond), e)
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = timeout

	var db Database
	err := backoff.RetryNotify(func() error {
		var err error
		db, err = OpenSqliteDatabase(path)
		return err
	}, strategy, onError)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s after %s", path, timeout)
	}
	return db, nil
}
