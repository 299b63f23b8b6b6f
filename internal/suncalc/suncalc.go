// Package suncalc computes sun event times for the observer location used by the report.
package suncalc

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sj14/astral/pkg/astral"

	"github.com/tphakala/birdstrike/internal/dataset"
)

// SunEventTimes holds the sun event times of one date in the observer's time zone
type SunEventTimes struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
	// Night is the time from this date's sunset to the next date's sunrise
	Night time.Duration
}

// SunCalc handles caching and calculation of sun event times
type SunCalc struct {
	cache    *cache.Cache    // date → dayEvents; entries never expire
	observer astral.Observer // observer for sun event calculations
	location *time.Location  // zone of returned times and of calendar dates
}

// dayEvents are the events of a single date, without the night length
type dayEvents struct {
	civilDawn, sunrise, sunset, civilDusk time.Time
}

// NewSunCalc creates a SunCalc for an observer. A nil location means UTC.
func NewSunCalc(latitude, longitude float64, location *time.Location) *SunCalc {
	if location == nil {
		location = time.UTC
	}
	return &SunCalc{
		// zero cleanup interval: no janitor goroutine
		cache:    cache.New(cache.NoExpiration, 0),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		location: location,
	}
}

// GetSunEventTimes returns the sun event times for a date, using the cache if available.
// Dates without a sunrise or sunset at the observer's latitude are an error.
func (sc *SunCalc) GetSunEventTimes(date dataset.Date) (SunEventTimes, error) {
	today, err := sc.dayEvents(date)
	if err != nil {
		return SunEventTimes{}, err
	}

	next := dataset.DateOf(date.Time(time.UTC).AddDate(0, 0, 1))
	tomorrow, err := sc.dayEvents(next)
	if err != nil {
		return SunEventTimes{}, err
	}

	return SunEventTimes{
		CivilDawn: today.civilDawn,
		Sunrise:   today.sunrise,
		Sunset:    today.sunset,
		CivilDusk: today.civilDusk,
		Night:     tomorrow.sunrise.Sub(today.sunset),
	}, nil
}

func (sc *SunCalc) dayEvents(date dataset.Date) (dayEvents, error) {
	key := date.String()
	if cached, found := sc.cache.Get(key); found {
		return cached.(dayEvents), nil
	}

	events, err := sc.calculateDayEvents(date)
	if err != nil {
		return dayEvents{}, err
	}
	sc.cache.SetDefault(key, events)
	return events, nil
}

// calculateDayEvents calculates the sun event times of a date
func (sc *SunCalc) calculateDayEvents(date dataset.Date) (dayEvents, error) {
	// noon keeps the calendar date stable whatever the zone offset
	day := time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, sc.location)

	civilDawn, err := astral.Dawn(sc.observer, day, astral.DepressionCivil)
	if err != nil {
		return dayEvents{}, fmt.Errorf("failed to calculate civil dawn for %s: %w", date, err)
	}

	sunrise, err := astral.Sunrise(sc.observer, day)
	if err != nil {
		return dayEvents{}, fmt.Errorf("failed to calculate sunrise for %s: %w", date, err)
	}

	sunset, err := astral.Sunset(sc.observer, day)
	if err != nil {
		return dayEvents{}, fmt.Errorf("failed to calculate sunset for %s: %w", date, err)
	}

	civilDusk, err := astral.Dusk(sc.observer, day, astral.DepressionCivil)
	if err != nil {
		return dayEvents{}, fmt.Errorf("failed to calculate civil dusk for %s: %w", date, err)
	}

	return dayEvents{
		civilDawn: civilDawn.In(sc.location),
		sunrise:   sunrise.In(sc.location),
		sunset:    sunset.In(sc.location),
		civilDusk: civilDusk.In(sc.location),
	}, nil
}

// GetSunriseTime returns the sunrise time for a given date
func (sc *SunCalc) GetSunriseTime(date dataset.Date) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a given date
func (sc *SunCalc) GetSunsetTime(date dataset.Date) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}
