package athan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/cache"
	"github.com/AbdulWasayUl/go-athan-clock/internal/channels"
	"github.com/AbdulWasayUl/go-athan-clock/internal/countdown"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/AbdulWasayUl/go-athan-clock/services/aladhan"
	"github.com/AbdulWasayUl/go-athan-clock/services/geonames"
)

const serviceName = "athan"

var ErrInvalidCity = errors.New("city coordinates are out of range")

// Fetcher is one lookup stage of the worker pool pipeline.
type Fetcher interface {
	FetchData(ctx context.Context, id string) ([]byte, error)
	ParseData(data []byte) (interface{}, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.City, error)
}

type RecentStore interface {
	Add(ctx context.Context, city models.City) error
	List(ctx context.Context) ([]models.City, error)
	Clear(ctx context.Context) error
}

// CitySetter is implemented by sinks that show which city is being counted down.
type CitySetter interface {
	SetCity(city models.City, tz models.TimezoneInfo, pt models.PrayerTimes)
}

// Snapshot is a one-off reading of a city's clock and next prayer event.
type Snapshot struct {
	City        models.City
	Timezone    models.TimezoneInfo
	PrayerTimes models.PrayerTimes
	CityNow     time.Time
	Next        *models.NextEvent
	Countdown   string
}

// Service ties the lookups, the recent cities and the countdown session together.
// Recents and Cache are optional.
type Service struct {
	Timezones Fetcher
	Prayers   Fetcher
	Places    Searcher
	Recents   RecentStore
	Cache     cache.Store
	Channels  *channels.Channels
	Session   *countdown.Session
	Sink      countdown.Sink

	now func() time.Time

	mu   sync.Mutex
	city *models.City
}

type Option func(*Service)

// WithClock replaces the local time source used to pick the prayer-times date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithRecents(r RecentStore) Option {
	return func(s *Service) {
		s.Recents = r
	}
}

func WithCache(c cache.Store) Option {
	return func(s *Service) {
		s.Cache = c
	}
}

func NewService(timezones, prayers Fetcher, places Searcher, chans *channels.Channels, session *countdown.Session, sink countdown.Sink, opts ...Option) *Service {
	s := &Service{
		Timezones: timezones,
		Prayers:   prayers,
		Places:    places,
		Channels:  chans,
		Session:   session,
		Sink:      sink,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validate(city models.City) error {
	if math.IsNaN(city.Lat) || math.IsNaN(city.Lon) || math.Abs(city.Lat) > 90 || math.Abs(city.Lon) > 180 {
		return fmt.Errorf("%w: %s (%f, %f)", ErrInvalidCity, city.Name, city.Lat, city.Lon)
	}
	if city.Lat == 0 && city.Lon == 0 {
		return fmt.Errorf("%w: %s has no coordinates", ErrInvalidCity, city.Name)
	}
	return nil
}

// SelectCity loads the city's timezone and prayer times and restarts the
// countdown for it. ctx bounds the lifetime of the countdown loop. When the
// prayer times cannot be loaded the session returns to idle.
func (s *Service) SelectCity(ctx context.Context, city models.City) error {
	if err := validate(city); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tz, pt, err := s.load(ctx, city)
	if err != nil {
		s.city = nil
		s.Session.Clear()
		return err
	}

	if s.Recents != nil {
		if err := s.Recents.Add(ctx, city); err != nil {
			logger.Warn("[%s] failed to remember %s: %v", serviceName, city.Name, err)
		}
	}

	s.activate(ctx, city, tz, pt)
	logger.Info("[%s] counting down for %s (%s)", serviceName, city.Name, tz.ZoneName)
	return nil
}

// activate stops the previous countdown before the sink is relabelled, so no
// tick of the old city is drawn under the new name.
func (s *Service) activate(ctx context.Context, city models.City, tz models.TimezoneInfo, pt models.PrayerTimes) {
	s.Session.Stop()
	if setter, ok := s.Sink.(CitySetter); ok {
		setter.SetCity(city, tz, pt)
	}
	s.Session.Select(ctx, &tz, &pt)
	s.city = &city
}

// Refresh reloads the prayer times once the selected city has moved on to a
// new calendar day. It is a no-op when nothing is selected or the day is unchanged.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return nil
	}
	cityNow, ok := s.Session.CityNow()
	if !ok {
		return nil
	}
	pt, ok := s.Session.PrayerTimes()
	if ok && sameDay(pt.Date, cityNow) {
		return nil
	}

	city := *s.city
	logger.Info("[%s] new day in %s, reloading prayer times", serviceName, city.Name)
	tz, fresh, err := s.load(ctx, city)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", city.Name, err)
	}
	s.activate(ctx, city, tz, fresh)
	return nil
}

// Deselect stops the countdown and returns the session to idle.
func (s *Service) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.city = nil
	s.Session.Clear()
}

// Current returns the selected city, if any.
func (s *Service) Current() (models.City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return models.City{}, false
	}
	return *s.city, true
}

// Next reads the city's next prayer event once, without touching the session.
func (s *Service) Next(ctx context.Context, city models.City) (Snapshot, error) {
	if err := validate(city); err != nil {
		return Snapshot{}, err
	}
	tz, pt, err := s.load(ctx, city)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.now()
	cityNow := countdown.CityTime(now, countdown.Resolve(&tz, now))
	snap := Snapshot{
		City:        city,
		Timezone:    tz,
		PrayerTimes: pt,
		CityNow:     cityNow,
		Countdown:   countdown.Placeholder,
	}
	if next, ok := countdown.SelectNext(pt, cityNow); ok {
		snap.Next = &next
		snap.Countdown = countdown.FormatCountdown(next.At.Sub(cityNow))
	}
	return snap, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]models.City, error) {
	return s.Places.Search(ctx, query)
}

func (s *Service) Recent(ctx context.Context) ([]models.City, error) {
	if s.Recents == nil {
		return nil, nil
	}
	return s.Recents.List(ctx)
}

// ClearCaches drops every cached lookup and forgets the recent cities.
func (s *Service) ClearCaches(ctx context.Context) error {
	var errs []error
	if s.Cache != nil {
		if err := s.Cache.Purge(ctx); err != nil {
			errs = append(errs, fmt.Errorf("purge cache: %w", err))
		}
	}
	if s.Recents != nil {
		if err := s.Recents.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear recent cities: %w", err))
		}
	}
	return errors.Join(errs...)
}

// load fetches the timezone and the prayer times for the device's date in
// parallel, then refetches the prayer times if the city is already on another day.
func (s *Service) load(ctx context.Context, city models.City) (models.TimezoneInfo, models.PrayerTimes, error) {
	now := s.now()

	tzResult := s.submit(geonames.ID(city.Lat, city.Lon), "geonames", s.Timezones)
	ptResult := s.submit(aladhan.ID(city.Lat, city.Lon, now), "aladhan", s.Prayers)

	var tz models.TimezoneInfo
	tzOut, err := await(ctx, tzResult)
	if err == nil {
		tz, err = as[models.TimezoneInfo](tzOut)
	}
	if err != nil {
		if ctx.Err() != nil {
			return models.TimezoneInfo{}, models.PrayerTimes{}, ctx.Err()
		}
		logger.Warn("[%s] timezone lookup failed for %s, approximating from longitude: %v", serviceName, city.Name, err)
		tz = geonames.Fallback(city.Lon)
	}

	ptOut, err := await(ctx, ptResult)
	if err != nil {
		return models.TimezoneInfo{}, models.PrayerTimes{}, fmt.Errorf("prayer times for %s: %w", city.Name, err)
	}
	pt, err := as[models.PrayerTimes](ptOut)
	if err != nil {
		return models.TimezoneInfo{}, models.PrayerTimes{}, err
	}

	cityNow := countdown.CityTime(now, countdown.Resolve(&tz, now))
	if !sameDay(pt.Date, cityNow) {
		logger.Debug("[%s] %s is on %s, refetching prayer times", serviceName, city.Name, cityNow.Format(time.DateOnly))
		ptOut, err = await(ctx, s.submit(aladhan.ID(city.Lat, city.Lon, cityNow), "aladhan", s.Prayers))
		if err != nil {
			return models.TimezoneInfo{}, models.PrayerTimes{}, fmt.Errorf("prayer times for %s: %w", city.Name, err)
		}
		if pt, err = as[models.PrayerTimes](ptOut); err != nil {
			return models.TimezoneInfo{}, models.PrayerTimes{}, err
		}
	}

	return tz, pt, nil
}

type result struct {
	value interface{}
	err   error
}

// submit queues a fetch -> parse pipeline on the worker pool. The parsed value
// is delivered on the returned channel.
func (s *Service) submit(id, service string, f Fetcher) <-chan result {
	out := make(chan result, 1)
	var value interface{}
	s.Channels.Submit(models.DataRequest{
		ID:        id,
		Service:   service,
		FetchFunc: f.FetchData,
		ParseFunc: f.ParseData,
		StoreFunc: func(_ context.Context, data interface{}) error {
			value = data
			return nil
		},
		Done: func(err error) {
			out <- result{value: value, err: err}
		},
	})
	return out
}

func await(ctx context.Context, ch <-chan result) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.value, r.err
	}
}

func as[T any](v interface{}) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected lookup result %T", v)
	}
	return t, nil
}

// sameDay compares the calendar date of a prayer-times day with a city wall clock.
func sameDay(day, cityNow time.Time) bool {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := cityNow.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
