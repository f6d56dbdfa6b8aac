// Package timeseries provides the pure date-sequence and series-alignment
// primitives used by the position history reconstruction.
package timeseries

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical day-granularity date layout.
const DateFormat = "2006-01-02"

// Point is one (date, amount) entry of a sparse daily series. Dates are
// always midnight UTC.
type Point struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dates generates the arithmetic sequence of calendar dates spanning
// [from, to] inclusive at a fixed step of stepDays days. In descending mode
// the sequence starts at to and walks backward while >= from; ascending
// starts at from and walks forward while <= to. A window with to before
// from yields an empty sequence.
func Dates(from, to time.Time, stepDays int, descending bool) []time.Time {
	from, to = Day(from), Day(to)
	if stepDays <= 0 {
		stepDays = 1
	}

	var dates []time.Time
	if descending {
		for d := to; !d.Before(from); d = d.AddDate(0, 0, -stepDays) {
			dates = append(dates, d)
		}
		return dates
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, stepDays) {
		dates = append(dates, d)
	}
	return dates
}
