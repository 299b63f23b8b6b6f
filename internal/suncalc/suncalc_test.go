package suncalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSunCalc(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc(testLatitude, testLongitude, nil)
	require.NotNil(t, sc)
	assert.InDelta(t, testLatitude, sc.observer.Latitude, 0)
	assert.InDelta(t, testLongitude, sc.observer.Longitude, 0)
	assert.Equal(t, time.UTC, sc.location)
}

func TestGetSunEventTimes(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()

	times, err := sc.GetSunEventTimes(midsummerDate())
	require.NoError(t, err)

	assert.False(t, times.CivilDawn.IsZero())
	assert.False(t, times.Sunrise.IsZero())
	assert.False(t, times.Sunset.IsZero())
	assert.False(t, times.CivilDusk.IsZero())
	assert.Equal(t, chicago().String(), times.Sunrise.Location().String())
	assert.Positive(t, times.Night)
}

func TestGetSunriseAndSunsetTime(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()

	sunrise, err := sc.GetSunriseTime(midsummerDate())
	require.NoError(t, err)
	sunset, err := sc.GetSunsetTime(midsummerDate())
	require.NoError(t, err)

	assert.False(t, sunrise.IsZero())
	assert.False(t, sunset.IsZero())
}

func TestCacheConsistency(t *testing.T) {
	t.Parallel()

	sc := newTestSunCalc()
	date := midsummerDate()

	times1, err := sc.GetSunEventTimes(date)
	require.NoError(t, err)

	cached, found := sc.cache.Get(date.String())
	require.True(t, found, "cache entry not found after calculation")
	assert.True(t, cached.(dayEvents).sunrise.Equal(times1.Sunrise))

	// the next day was needed for the night length
	_, found = sc.cache.Get("2024-06-22")
	assert.True(t, found)

	times2, err := sc.GetSunEventTimes(date)
	require.NoError(t, err)
	assert.Equal(t, times1, times2)
}
