package telemetry

import (
	"database/sql"
	"math"
	"time"
)

const (
	// Columns the live trace depends on.
	SpeedChannel   = "vss"
	AirflowChannel = "maf"

	// mpgFactor converts km/h over grams of air per second into miles per gallon, assuming a
	// stoichiometric gasoline mixture.
	mpgFactor = 7.107
)

// Reading is a single logged value of one channel.
type Reading struct {
	Time  time.Time
	Value float64
}

// TraceSample is one GPS fix with the OBD values logged at the same time. Speed and Airflow are invalid
// when the logger had no OBD row for the fix.
type TraceSample struct {
	Time      float64         `db:"time"`
	Latitude  float64         `db:"lat"`
	Longitude float64         `db:"lon"`
	Speed     sql.NullFloat64 `db:"vss"`
	Airflow   sql.NullFloat64 `db:"maf"`
}

// SpeedOrZero returns the vehicle speed, or 0 when it wasn't logged.
func (s TraceSample) SpeedOrZero() float64 {
	if !s.Speed.Valid {
		return 0
	}
	return s.Speed.Float64
}

// MilesPerGallon computes instantaneous fuel efficiency from speed and mass air flow. The result is NaN
// when either value is missing and infinite when the airflow is zero.
func (s TraceSample) MilesPerGallon() float64 {
	if !s.Speed.Valid || !s.Airflow.Valid {
		return math.NaN()
	}
	return MilesPerGallon(s.Speed.Float64, s.Airflow.Float64)
}

// MilesPerGallon converts vehicle speed (km/h) and mass air flow (g/s) into miles per gallon.
func MilesPerGallon(vss, maf float64) float64 {
	return mpgFactor * vss / maf
}

func fromUnixFloat(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
