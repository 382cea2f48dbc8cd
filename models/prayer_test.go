package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrayerTimes_GetSet(t *testing.T) {
	var pt PrayerTimes
	for i, e := range Events {
		pt = pt.Set(e, string(rune('a'+i)))
	}
	for i, e := range Events {
		assert.Equal(t, string(rune('a'+i)), pt.Get(e), e)
	}
	assert.Equal(t, "", pt.Get(Event("midnight")))
	assert.Equal(t, pt, pt.Set(Event("midnight"), "00:00"), "unknown events are ignored")
}

func TestEvent_Label(t *testing.T) {
	assert.Equal(t, "Fajr", Fajr.Label())
	assert.Equal(t, "Maghrib", Maghrib.Label())
	assert.Equal(t, "", Event("").Label())
}
