package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

// Sink receives the values a Ticker publishes.
type Sink interface {
	// Publish is called once per tick with the city clock and the countdown.
	Publish(clock, countdown string)
	// NextEvent is called whenever a new next event has been selected.
	NextEvent(name models.Event)
}

type Option func(*Ticker)

// WithClock replaces the local time source.
func WithClock(now func() time.Time) Option {
	return func(t *Ticker) {
		t.now = now
	}
}

func WithInterval(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// Ticker republishes a city's clock and the countdown to its next prayer event
// at a fixed interval. The cached offset and next event are only touched by the
// goroutine running the loop.
type Ticker struct {
	prayerTimes models.PrayerTimes
	timezone    *models.TimezoneInfo
	sink        Sink
	now         func() time.Time
	interval    time.Duration

	offset time.Duration
	next   *models.NextEvent

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTicker(pt models.PrayerTimes, tz *models.TimezoneInfo, sink Sink, opts ...Option) *Ticker {
	t := &Ticker{
		prayerTimes: pt,
		timezone:    tz,
		sink:        sink,
		now:         time.Now,
		interval:    time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start resolves the offset, publishes the first tick and launches the loop.
// The loop runs until Stop is called or ctx is cancelled. Start on a running
// Ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		select {
		case <-t.done:
		default:
			return
		}
	}

	t.offset = Resolve(t.timezone, t.now())
	t.next = nil
	t.tick()

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(loopCtx, t.done)
}

// Stop cancels the loop and waits for it to exit. No Sink call happens after
// Stop returns.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed once the loop has exited. It is nil before Start.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Ticker) Offset() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

// CityNow projects the city's current instant from the live local clock.
func (t *Ticker) CityNow() time.Time {
	return CityTime(t.now(), t.Offset())
}

func (t *Ticker) PrayerTimes() models.PrayerTimes {
	return t.prayerTimes
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			if ctx.Err() != nil {
				return
			}
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[countdown] tick failed: %v", r)
			t.next = nil
			t.publishPlaceholder()
		}
	}()

	cityNow := CityTime(t.now(), t.offset)
	t.sink.Publish(FormatClock(cityNow), t.countdown(cityNow, true))
}

// publishPlaceholder blanks the display. A sink that keeps failing is logged
// and the loop carries on.
func (t *Ticker) publishPlaceholder() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[countdown] placeholder publish failed: %v", r)
		}
	}()
	t.sink.Publish(Placeholder, Placeholder)
}

// countdown refreshes the cached next event when it is missing or reached and
// formats the time left. A fresh selection that is already due is re-derived once.
func (t *Ticker) countdown(cityNow time.Time, retry bool) string {
	fresh := false
	if t.next == nil || !cityNow.Before(t.next.At) {
		next, ok := SelectNext(t.prayerTimes, cityNow)
		if !ok {
			t.next = nil
			return Placeholder
		}
		t.next = &next
		fresh = true
		t.sink.NextEvent(next.Name)
	}

	remaining := t.next.At.Sub(cityNow)
	if remaining <= 0 {
		t.next = nil
		if fresh && retry {
			return t.countdown(cityNow, false)
		}
		return Placeholder
	}
	return FormatCountdown(remaining)
}
