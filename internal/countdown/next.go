package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

// ErrMalformedTime marks an event value that is not a valid "HH:MM".
var ErrMalformedTime = errors.New("malformed event time")

// ParseClock parses "HH:MM" (24h, two digits each), tolerating a trailing zone
// label such as "05:12 (BST)".
func ParseClock(v string) (hour, minute int, err error) {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("%w: empty", ErrMalformedTime)
	}
	s := fields[0]
	if len(s) != 5 || s[2] != ':' || !digits(s[:2]) || !digits(s[3:]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, v)
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, v)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SelectNext returns the first event, in canonical order, that occurs strictly
// after cityNow on cityNow's calendar date. When every event today has passed, the
// first defined event of the following day is returned. ok is false only when pt
// has no usable values.
func SelectNext(pt models.PrayerTimes, cityNow time.Time) (next models.NextEvent, ok bool) {
	y, m, d := cityNow.Date()
	loc := cityNow.Location()

	var first models.Event
	var firstHour, firstMinute int

	for _, ev := range models.Events {
		raw := pt.Get(ev)
		if raw == "" {
			continue
		}
		hour, minute, err := ParseClock(raw)
		if err != nil {
			logger.Debug("[countdown] skipping %s: %v", ev, err)
			continue
		}
		if first == "" {
			first, firstHour, firstMinute = ev, hour, minute
		}

		at := time.Date(y, m, d, hour, minute, 0, 0, loc)
		if cityNow.Before(at) {
			return models.NextEvent{Name: ev, At: at}, true
		}
	}

	if first == "" {
		return models.NextEvent{}, false
	}
	return models.NextEvent{Name: first, At: time.Date(y, m, d+1, firstHour, firstMinute, 0, 0, loc)}, true
}
