package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, IST), date)

	_, err = ParseDate("10/01/2025")
	require.Error(t, err)
}

func TestStartOfDayConvertsZone(t *testing.T) {
	// 2025-01-10 22:00 UTC is already 2025-01-11 03:30 in IST.
	utc := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, IST), StartOfDay(utc))
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2025, 1, 10, 14, 30, 0, 0, IST)
	require.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, IST), NextMidnight(now))

	// Already at midnight: still the following midnight.
	midnight := time.Date(2025, 1, 10, 0, 0, 0, 0, IST)
	require.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, IST), NextMidnight(midnight))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 1, 10, 1, 0, 0, 0, IST)
	b := time.Date(2025, 1, 10, 23, 59, 0, 0, IST)
	require.True(t, SameDay(a, b))
	require.False(t, SameDay(a, b.Add(time.Minute)))
}
