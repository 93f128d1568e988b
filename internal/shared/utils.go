package shared

import (
	"math"
	"time"
)

// DayKeyFormat is the calendar-day key used for bucket documents.
const DayKeyFormat = "2006-01-02"

// DayKey returns the bucket key for a point in time.
func DayKey(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// DayLabel shortens a day key to its MM-DD suffix for chart labels.
// A key that does not look like a day key is returned unchanged.
func DayLabel(key string) string {
	if len(key) == len(DayKeyFormat) {
		return key[5:]
	}
	return key
}

// Round rounds x to the given number of decimal places.
func Round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}
