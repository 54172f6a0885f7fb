package period

import (
	"testing"
	"time"

	"fabricstore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, KindWeekly, kind)

	kind, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindMonthly, kind)

	_, err = ParseKind("yearly")
	assert.Error(t, err)
}

func TestDaily(t *testing.T) {
	now := time.Date(2024, 5, 17, 15, 30, 0, 0, jakarta)
	w := Daily(now)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, jakarta), w.Start)
	assert.Equal(t, time.Date(2024, 5, 18, 0, 0, 0, 0, jakarta).Add(-time.Nanosecond), w.End)
	assert.True(t, w.Contains(now))
}

func TestTrailingWeekCoversSevenDays(t *testing.T) {
	now := time.Date(2024, 3, 3, 9, 0, 0, 0, jakarta)
	w := TrailingWeek(now)
	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, jakarta), w.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, jakarta).Add(-time.Nanosecond), w.End)
}

func TestFirstWeekOf(t *testing.T) {
	w := FirstWeekOf(2024, 2, jakarta)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, jakarta), w.Start)
	assert.True(t, w.Contains(time.Date(2024, 2, 7, 23, 59, 59, 0, jakarta)))
	assert.False(t, w.Contains(time.Date(2024, 2, 8, 0, 0, 0, 0, jakarta)))
}

func TestMonthlyHandlesLeapYear(t *testing.T) {
	w := Monthly(2024, 2, time.UTC)
	assert.True(t, w.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, 7, 10, 8, 0, 0, 0, jakarta)

	w, err := Resolve(KindMonthly, Reference{Now: now})
	require.NoError(t, err)
	assert.Equal(t, Monthly(2024, 7, jakarta), w)

	w, err = Resolve(KindMonthly, Reference{Now: now, Year: 2023, Month: 12})
	require.NoError(t, err)
	assert.Equal(t, Monthly(2023, 12, jakarta), w)

	w, err = Resolve(KindWeekly, Reference{Now: now, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, FirstWeekOf(2024, 3, jakarta), w)

	w, err = Resolve(KindWeekly, Reference{Now: now})
	require.NoError(t, err)
	assert.Equal(t, TrailingWeek(now), w)

	w, err = Resolve(KindDaily, Reference{Now: now, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, Daily(now), w)

	_, err = Resolve(KindMonthly, Reference{Now: now, Month: 13})
	assert.Error(t, err)

	_, err = Resolve(KindMonthly, Reference{Now: now, Year: 2023})
	assert.ErrorContains(t, err, "year requires month")

	_, err = Resolve(Kind("hourly"), Reference{Now: now})
	assert.Error(t, err)
}

func TestElapsedMonthWindows(t *testing.T) {
	now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	windows := ElapsedMonthWindows(now)
	require.Len(t, windows, 4)
	assert.Equal(t, Monthly(2024, 1, time.UTC), windows[0])
	assert.Equal(t, Monthly(2024, domain.Month(4), time.UTC), windows[3])

	assert.Len(t, ElapsedMonthWindows(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), 1)
}
