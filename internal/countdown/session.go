package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/models"
)

type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "IDLE"
}

// Session owns at most one live Ticker. Selecting new inputs always stops the
// previous loop before the next one starts.
type Session struct {
	sink Sink
	opts []Option

	mu      sync.Mutex
	current *Ticker
}

func NewSession(sink Sink, opts ...Option) *Session {
	return &Session{sink: sink, opts: opts}
}

// Select replaces the active inputs. With both inputs present the session becomes
// Active; otherwise it returns to Idle and publishes placeholders. ctx bounds the
// lifetime of the started loop.
func (s *Session) Select(ctx context.Context, tz *models.TimezoneInfo, pt *models.PrayerTimes) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if tz == nil || pt == nil {
		s.sink.Publish(Placeholder, Placeholder)
		return Idle
	}

	t := NewTicker(*pt, tz, s.sink, s.opts...)
	t.Start(ctx)
	s.current = t
	return Active
}

// Clear withdraws the inputs and returns the session to Idle.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.sink.Publish(Placeholder, Placeholder)
}

// Stop ends the running loop without publishing anything, leaving the display
// as it was until the next Select or Clear.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.current == nil {
		return
	}
	s.current.Stop()
	s.current = nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Idle
	}
	select {
	case <-s.current.Done():
		return Idle
	default:
		return Active
	}
}

// CityNow reports the active city's current instant.
func (s *Session) CityNow() (time.Time, bool) {
	s.mu.Lock()
	t := s.current
	s.mu.Unlock()

	if t == nil {
		return time.Time{}, false
	}
	return t.CityNow(), true
}

func (s *Session) PrayerTimes() (models.PrayerTimes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.PrayerTimes{}, false
	}
	return s.current.PrayerTimes(), true
}

func (s *Session) ticker() *Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
