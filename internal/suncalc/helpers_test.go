package suncalc

import (
	"time"

	"github.com/tphakala/birdstrike/internal/dataset"
)

// Chicago coordinates for testing
const (
	testLatitude  = 41.8781
	testLongitude = -87.6298
)

func chicago() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return time.FixedZone("CDT", -5*3600)
	}
	return loc
}

// newTestSunCalc creates a SunCalc instance with Chicago coordinates.
func newTestSunCalc() *SunCalc {
	return NewSunCalc(testLatitude, testLongitude, chicago())
}

// midsummerDate returns June 21, 2024 - a date with predictable sun events.
func midsummerDate() dataset.Date {
	return dataset.Date{Year: 2024, Month: time.June, Day: 21}
}
