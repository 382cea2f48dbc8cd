// Package countdown derives a remote city's wall clock from a timezone lookup and
// keeps a per-second countdown to the next prayer event.
package countdown

import (
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

// MaxOffset bounds the UTC offset of any real zone (UTC-12 to UTC+14).
const MaxOffset = 14 * time.Hour

var serverTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Resolve returns how far the city's wall clock is ahead of the local wall clock
// at localNow. Both clocks are compared on minute boundaries; the live seconds are
// taken from the local clock when city time is projected. A nil tz yields 0.
func Resolve(tz *models.TimezoneInfo, localNow time.Time) time.Duration {
	if tz == nil {
		return 0
	}

	loc := localNow.Location()
	cityNow, ok := parseServerTime(tz.ServerTime, loc)
	if ok && !plausible(cityNow.Truncate(time.Minute).Sub(localNow.Truncate(time.Minute)), localNow) {
		logger.Warn("[countdown] ignoring server time %q for %s: implausible offset", tz.ServerTime, tz.ZoneName)
		ok = false
	}
	if !ok {
		offset := time.Duration(tz.OffsetSeconds) * time.Second
		if offset > MaxOffset || offset < -MaxOffset {
			logger.Warn("[countdown] offset %ds for %s out of range, using local time", tz.OffsetSeconds, tz.ZoneName)
			return 0
		}
		cityNow = wallClock(localNow.UTC().Add(offset), loc)
	}

	return cityNow.Truncate(time.Minute).Sub(localNow.Truncate(time.Minute))
}

// CityTime projects the city's current instant from the local clock and a resolved offset.
func CityTime(localNow time.Time, offset time.Duration) time.Time {
	return localNow.Add(offset)
}

func parseServerTime(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range serverTimeLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return wallClock(t, loc), true
		}
	}
	logger.Debug("[countdown] malformed server time %q", raw)
	return time.Time{}, false
}

// wallClock re-reads t's calendar fields as a wall clock in loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// plausible reports whether delta implies a city UTC offset a real zone can have.
func plausible(delta time.Duration, localNow time.Time) bool {
	_, localOffset := localNow.Zone()
	implied := delta + time.Duration(localOffset)*time.Second
	return implied <= MaxOffset && implied >= -MaxOffset
}
