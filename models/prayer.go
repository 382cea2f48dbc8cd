package models

import (
	"strings"
	"time"
)

// Event is one of the six daily prayer markers.
type Event string

const (
	Fajr    Event = "fajr"
	Sunrise Event = "sunrise"
	Dhuhr   Event = "dhuhr"
	Asr     Event = "asr"
	Maghrib Event = "maghrib"
	Isha    Event = "isha"
)

// Events lists the daily markers in canonical order.
var Events = []Event{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// Label returns the display name, e.g. "Fajr".
func (e Event) Label() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

// PrayerTimes holds the "HH:MM" city-local times of a single calendar date.
// An empty value means the event is absent.
type PrayerTimes struct {
	Date    time.Time `json:"date" bson:"date"`
	Hijri   string    `json:"hijri,omitempty" bson:"hijri,omitempty"`
	Fajr    string    `json:"fajr" bson:"fajr"`
	Sunrise string    `json:"sunrise" bson:"sunrise"`
	Dhuhr   string    `json:"dhuhr" bson:"dhuhr"`
	Asr     string    `json:"asr" bson:"asr"`
	Maghrib string    `json:"maghrib" bson:"maghrib"`
	Isha    string    `json:"isha" bson:"isha"`
}

// Get returns the raw value stored for e.
func (p PrayerTimes) Get(e Event) string {
	switch e {
	case Fajr:
		return p.Fajr
	case Sunrise:
		return p.Sunrise
	case Dhuhr:
		return p.Dhuhr
	case Asr:
		return p.Asr
	case Maghrib:
		return p.Maghrib
	case Isha:
		return p.Isha
	}
	return ""
}

// Set stores v for e and returns the updated copy.
func (p PrayerTimes) Set(e Event, v string) PrayerTimes {
	switch e {
	case Fajr:
		p.Fajr = v
	case Sunrise:
		p.Sunrise = v
	case Dhuhr:
		p.Dhuhr = v
	case Asr:
		p.Asr = v
	case Maghrib:
		p.Maghrib = v
	case Isha:
		p.Isha = v
	}
	return p
}

// TimezoneInfo describes the selected city's zone as reported by the lookup service.
type TimezoneInfo struct {
	OffsetSeconds int    `json:"offset_seconds"`
	ZoneName      string `json:"zone_name"`
	IsDST         bool   `json:"is_dst"`
	// ServerTime is the city wall clock reported by the service, if any.
	ServerTime string `json:"server_time,omitempty"`
}

type City struct {
	ID   string  `json:"id" bson:"city_id"`
	Name string  `json:"name" bson:"name"`
	Lat  float64 `json:"lat" bson:"lat"`
	Lon  float64 `json:"lon" bson:"lon"`
}

// NextEvent is the nearest upcoming prayer marker and the instant it occurs.
type NextEvent struct {
	Name Event
	At   time.Time
}
