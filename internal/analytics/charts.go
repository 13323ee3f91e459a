package analytics

import (
	"time"

	"github.com/mtimit/gamify-product-lab/internal/store"
)

// DayValue is one bar of a daily chart. Day is formatted as YYYY-MM-DD.
type DayValue struct {
	Day   string
	Value float64
}

// ChartStart is the first instant of the n-day window ending on now, as UTC
// midnight.
func ChartStart(now time.Time, n int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-n)
}

// DailySeries lays out values keyed by YYYY-MM-DD over the n UTC days
// ending on now, oldest first. Days missing from values are zero and keys
// outside the window are ignored.
func DailySeries(values map[string]float64, now time.Time, n int) []DayValue {
	if n <= 0 {
		return nil
	}
	out := make([]DayValue, n)
	start := ChartStart(now, n)
	for i := range out {
		key := start.AddDate(0, 0, i).Format(store.DateLayout)
		out[i] = DayValue{Day: key, Value: values[key]}
	}
	return out
}
