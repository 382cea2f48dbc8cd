// Package display renders the city clock and prayer countdown.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AbdulWasayUl/go-athan-clock/internal/countdown"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

const (
	// ANSI escape sequences
	clearScreen = "\033[2J"
	cursorHome  = "\033[H"
	bold        = "\033[1m"
	reset       = "\033[0m"
	dim         = "\033[2m"
	cyan        = "\033[36m"
	yellow      = "\033[33m"
)

// Frame is everything shown for one tick.
type Frame struct {
	City      string
	Zone      string
	Hijri     string
	Clock     string
	Next      models.Event
	Countdown string
}

// Render writes f to w as a full-screen refresh.
func Render(w io.Writer, f Frame) {
	fmt.Fprint(w, clearScreen+cursorHome)
	fmt.Fprintf(w, "%s%s 🕌 %s %s%s%s%s\n", bold, cyan, orDash(f.City), reset, dim, f.Zone, reset)
	if f.Hijri != "" {
		fmt.Fprintf(w, "  %s%s%s\n", dim, f.Hijri, reset)
	}
	fmt.Fprintln(w, strings.Repeat("─", 44))
	fmt.Fprintf(w, "  %-12s %s%s%s\n", "Time", bold, f.Clock, reset)
	fmt.Fprintf(w, "  %-12s %s%s%s\n", "Next", yellow, strings.ToUpper(orDash(string(f.Next))), reset)
	fmt.Fprintf(w, "  %-12s %s%s%s\n", "Remaining", bold, f.Countdown, reset)
	fmt.Fprintln(w, strings.Repeat("─", 44))
	fmt.Fprintf(w, "%sPress Ctrl+C to exit%s\n", dim, reset)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Terminal is a countdown.Sink that redraws the screen on every tick.
type Terminal struct {
	w io.Writer

	mu    sync.Mutex
	frame Frame
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, frame: Frame{Clock: countdown.Placeholder, Countdown: countdown.Placeholder}}
}

// SetCity changes the heading shown above the clock.
func (t *Terminal) SetCity(city models.City, tz models.TimezoneInfo, pt models.PrayerTimes) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame.City = city.Name
	t.frame.Zone = tz.ZoneName
	t.frame.Hijri = pt.Hijri
	t.frame.Next = ""
}

func (t *Terminal) Publish(clock, cd string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame.Clock = clock
	t.frame.Countdown = cd
	if cd == countdown.Placeholder && clock == countdown.Placeholder {
		t.frame.Next = ""
	}
	Render(t.w, t.frame)
}

func (t *Terminal) NextEvent(name models.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame.Next = name
}

// Recorder is a countdown.Sink that keeps every published value.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	events []models.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(clock, cd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var next models.Event
	if len(r.events) > 0 {
		next = r.events[len(r.events)-1]
	}
	r.frames = append(r.frames, Frame{Clock: clock, Countdown: cd, Next: next})
}

func (r *Recorder) NextEvent(name models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, name)
}

func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

// Last returns the most recent frame, or a placeholder frame if nothing was published.
func (r *Recorder) Last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{Clock: countdown.Placeholder, Countdown: countdown.Placeholder}
	}
	return r.frames[len(r.frames)-1]
}
