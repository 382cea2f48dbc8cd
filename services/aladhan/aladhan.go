package aladhan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/api"
	"github.com/AbdulWasayUl/go-athan-clock/internal/cache"
	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

const (
	serviceName = "aladhan"
	dateLayout  = "02-01-2006"
)

var ErrInvalidRequest = errors.New("invalid prayer times request")

type Service struct {
	Config *config.Config
	Client *api.Client
	Cache  cache.Store
	TTL    time.Duration
}

func NewService(cfg *config.Config, store cache.Store, opts ...api.Option) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 30,
		PerDuration: time.Minute,
	}
	client := api.NewClient(rlSettings, opts...)

	return &Service{
		Config: cfg,
		Client: client,
		Cache:  store,
		TTL:    cfg.PrayerTimesTTL,
	}
}

// ID encodes coordinates and a calendar date as a pipeline request ID.
func ID(lat, lon float64, date time.Time) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64) + "/" + date.Format(dateLayout)
}

func parseID(id string) (lat, lon float64, date time.Time, err error) {
	coords, day, ok := strings.Cut(id, "/")
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRequest, id)
	}
	a, b, ok := strings.Cut(coords, ",")
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRequest, id)
	}
	if lat, err = strconv.ParseFloat(a, 64); err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRequest, id)
	}
	if lon, err = strconv.ParseFloat(b, 64); err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRequest, id)
	}
	if date, err = time.Parse(dateLayout, day); err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRequest, id)
	}
	return lat, lon, date, nil
}

// FetchData returns the raw timings payload for id, served from cache when fresh.
func (s *Service) FetchData(ctx context.Context, id string) ([]byte, error) {
	lat, lon, date, err := parseID(id)
	if err != nil {
		return nil, err
	}

	key := "pt:" + id
	var cached json.RawMessage
	if s.Cache != nil {
		if err := s.Cache.Get(ctx, key, &cached); err == nil {
			logger.Debug("[%s] cache hit for %s", serviceName, key)
			return cached, nil
		}
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("method", s.Config.AladhanMethod)
	q.Set("methodSettings", s.Config.AladhanMethodSettings)
	q.Set("tune", s.Config.AladhanTune)
	endpoint := fmt.Sprintf("%s/timings/%s?%s", s.Config.AladhanAPIBaseURL, date.Format(dateLayout), q.Encode())

	data, err := s.Client.Do(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.ParseData(data); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, json.RawMessage(data), s.TTL); err != nil {
			logger.Warn("[%s] failed to cache %s: %v", serviceName, key, err)
		}
	}
	return data, nil
}

func (s *Service) ParseData(data []byte) (interface{}, error) {
	var resp TimingsAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse prayer times: %w", err)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, fmt.Errorf("prayer times API returned code %d: %s", resp.Code, resp.Status)
	}

	date, err := time.Parse(dateLayout, resp.Data.Date.Gregorian.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prayer times date %q: %w", resp.Data.Date.Gregorian.Date, err)
	}

	t := resp.Data.Timings
	return models.PrayerTimes{
		Date:    date,
		Hijri:   resp.Data.Date.Hijri.Format(),
		Fajr:    clean(t.Fajr),
		Sunrise: clean(t.Sunrise),
		Dhuhr:   clean(t.Dhuhr),
		Asr:     clean(t.Asr),
		Maghrib: clean(t.Maghrib),
		Isha:    clean(t.Isha),
	}, nil
}

// clean drops a trailing zone label such as " (BST)".
func clean(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
