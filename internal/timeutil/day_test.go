package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndEndOfDay(t *testing.T) {
	noon := time.Date(2025, time.July, 15, 12, 34, 56, 789, time.Local)

	start := StartOfDay(noon)
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.Local), start)

	end := EndOfDay(noon)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.True(t, end.After(noon))
	assert.Equal(t, start.Day(), end.Day())
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.July, 2025)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, time.July, end.Month())

	// February in a leap year
	start, end = MonthBounds(time.February, 2024)
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, 29, end.Day())

	// December rolls into the next year correctly
	_, end = MonthBounds(time.December, 2025)
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, 2025, end.Year())
}

func TestNextMidnight(t *testing.T) {
	noon := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.Local)
	next := NextMidnight(noon)
	assert.Equal(t, time.Date(2025, time.July, 16, 0, 0, 0, 0, time.Local), next)

	// already at midnight still advances a full day
	next = NextMidnight(next)
	assert.Equal(t, 17, next.Day())
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-07-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 5, 0, 0, 0, 0, time.Local), parsed)

	_, err = ParseDate("05/07/2025")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}
