package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
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
	serviceName        = "geonames"
	serverTimeLayout   = "2006-01-02 15:04"
	advancedTimeLayout = "2006-01-02 15:04:05"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Service struct {
	Config *config.Config
	Client *api.Client
	Cache  cache.Store
	TTL    time.Duration
	Clock  func() time.Time
}

// cachedTimezone is a stored payload with the instant it was fetched, so the
// server wall clock in it can be moved forward when it is reused.
type cachedTimezone struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

func NewService(cfg *config.Config, store cache.Store, opts ...api.Option) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 20,
		PerDuration: time.Minute,
	}
	client := api.NewClient(rlSettings, opts...)

	return &Service{
		Config: cfg,
		Client: client,
		Cache:  store,
		TTL:    cfg.TimezoneTTL,
		Clock:  time.Now,
	}
}

// ID encodes coordinates as a pipeline request ID.
func ID(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

func parseID(id string) (lat, lon float64, err error) {
	a, b, ok := strings.Cut(id, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, id)
	}
	if lat, err = strconv.ParseFloat(a, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, id)
	}
	if lon, err = strconv.ParseFloat(b, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, id)
	}
	if lat == 0 || lon == 0 || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, id)
	}
	return lat, lon, nil
}

// cacheKey rounds to one decimal so nearby lookups share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("tz:%.1f,%.1f", math.Round(lat*10)/10, math.Round(lon*10)/10)
}

// FetchData returns the raw timezone payload for id, served from cache when fresh.
// A cached server time is advanced by the time elapsed since it was fetched.
func (s *Service) FetchData(ctx context.Context, id string) ([]byte, error) {
	lat, lon, err := parseID(id)
	if err != nil {
		return nil, err
	}

	key := cacheKey(lat, lon)
	if s.Cache != nil {
		var entry cachedTimezone
		if err := s.Cache.Get(ctx, key, &entry); err == nil && len(entry.Payload) > 0 {
			data, err := advance(entry, s.Clock())
			if err == nil {
				logger.Debug("[%s] cache hit for %s", serviceName, key)
				return data, nil
			}
			logger.Warn("[%s] discarding cached %s: %v", serviceName, key, err)
		}
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("username", s.Config.GeoNamesUsername)
	endpoint := fmt.Sprintf("%s/timezoneJSON?%s", s.Config.GeoNamesAPIBaseURL, q.Encode())

	fetchedAt := s.Clock()
	data, err := s.Client.Do(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.ParseData(data); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		entry := cachedTimezone{FetchedAt: fetchedAt, Payload: json.RawMessage(data)}
		if err := s.Cache.Set(ctx, key, entry, s.TTL); err != nil {
			logger.Warn("[%s] failed to cache %s: %v", serviceName, key, err)
		}
	}
	return data, nil
}

// advance moves the payload's "time" field forward to now. Payloads without a
// parseable time are returned unchanged.
func advance(entry cachedTimezone, now time.Time) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry.Payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode cached payload: %w", err)
	}

	var raw string
	if err := json.Unmarshal(fields["time"], &raw); err != nil || raw == "" {
		return entry.Payload, nil
	}
	issued, err := time.Parse(serverTimeLayout, raw)
	if err != nil {
		if issued, err = time.Parse(advancedTimeLayout, raw); err != nil {
			return entry.Payload, nil
		}
	}

	elapsed := now.Sub(entry.FetchedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	shifted, err := json.Marshal(issued.Add(elapsed).Format(advancedTimeLayout))
	if err != nil {
		return nil, err
	}
	fields["time"] = shifted
	return json.Marshal(fields)
}

func (s *Service) ParseData(data []byte) (interface{}, error) {
	var resp TimezoneAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse timezone data: %w", err)
	}
	if resp.RawOffset == nil {
		if resp.Status != nil {
			return nil, fmt.Errorf("invalid timezone response: %s", resp.Status.Message)
		}
		return nil, errors.New("invalid timezone response: missing rawOffset")
	}

	zone := resp.TimezoneID
	if zone == "" {
		zone = "Unknown"
	}

	return models.TimezoneInfo{
		OffsetSeconds: int(math.Round(*resp.RawOffset * 3600)),
		ZoneName:      zone,
		IsDST:         resp.DSTOffset > 0,
		ServerTime:    resp.Time,
	}, nil
}

// Fallback approximates a zone from longitude, 15 degrees per hour.
func Fallback(lon float64) models.TimezoneInfo {
	return models.TimezoneInfo{
		OffsetSeconds: int(math.Round(lon/15)) * 3600,
		ZoneName:      "Approximated",
	}
}
