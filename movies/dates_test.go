package movies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movielab-go/apperror"
)

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2011-02-10T12:10:00":  time.Date(2011, 2, 10, 12, 10, 0, 0, time.UTC),
		"1997-12-31T23:59":     time.Date(1997, 12, 31, 23, 59, 0, 0, time.UTC),
		"2022-01-01":           time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		"2022-01-01T10:00:00Z": time.Date(2022, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDate("yesterday")
	assert.True(t, apperror.IsBadRequest(err))
}

func TestDateRangeDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	from, to, err := DateRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, EarliestAddedAt, from)
	assert.Equal(t, now, to)

	from, to, err = DateRange("2000-01-01", "", now)
	require.NoError(t, err)
	assert.Equal(t, 2000, from.Year())
	assert.Equal(t, now, to)

	_, _, err = DateRange("", "not-a-date", now)
	assert.Error(t, err)
}

func TestColumns(t *testing.T) {
	assert.Equal(t,
		"id, title, description, genre, duration_minutes, release_year, director, added_at, rating, watched",
		Columns(""))
	assert.Contains(t, Columns("m"), "m.id, m.title")
}
