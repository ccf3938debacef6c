package aggregator

import (
	"time"

	"github.com/araddon/dateparse"
)

const dateLayout = "2006-01-02"

// NormalizeDate canonicalizes a requested date to YYYY-MM-DD. Anything
// unparsable, including an empty string, becomes the current date. The
// normalized value is the cache key for the rest of the flow; the raw input
// is never used again.
func NormalizeDate(raw string, now time.Time) string {
	date, _ := normalizeDate(raw, now)
	return date
}

// normalizeDate additionally reports whether the input parsed; an empty
// input is a deliberate "today" and counts as parsed.
func normalizeDate(raw string, now time.Time) (string, bool) {
	if raw == "" {
		return now.Format(dateLayout), true
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return now.Format(dateLayout), false
	}

	return t.Format(dateLayout), true
}

// ageInDays measures how far in the past a normalized date lies. Future
// dates come out negative, which every gate treats as recent.
func ageInDays(date string, now time.Time) int {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}

	return int(now.Sub(t).Hours() / 24)
}
