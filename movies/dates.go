package movies

import (
	"fmt"
	"time"

	"github.com/user/movielab-go/apperror"
)

// EarliestAddedAt is the lower bound used when a listing gives no start date.
// The first motion picture dates from 1888.
var EarliestAddedAt = time.Date(1888, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, zone-less timestamps (read as UTC)
// and plain dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.NewBadRequestError(fmt.Sprintf("invalid date: %q", s), nil)
}

// DateRange resolves optional start and end values. An empty start means
// EarliestAddedAt and an empty end means now. An inverted range is not an
// error; it simply matches nothing.
func DateRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	from, to := EarliestAddedAt, now
	var err error
	if start != "" {
		if from, err = ParseDate(start); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end != "" {
		if to, err = ParseDate(end); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
