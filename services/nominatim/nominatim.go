package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/api"
	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
)

const (
	serviceName = "nominatim"
	resultLimit = 5
)

type Service struct {
	Config *config.Config
	Client *api.Client
}

// NewService respects the public instance's policy of one request per second.
func NewService(cfg *config.Config, opts ...api.Option) *Service {
	rlSettings := models.RateLimitSettings{
		MaxRequests: 1,
		PerDuration: time.Second,
	}
	client := api.NewClient(rlSettings, opts...)

	return &Service{
		Config: cfg,
		Client: client,
	}
}

// FetchData runs a free-form search for the query in id.
func (s *Service) FetchData(ctx context.Context, id string) ([]byte, error) {
	q := url.Values{}
	q.Set("q", id)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(resultLimit))
	endpoint := fmt.Sprintf("%s/search?%s", s.Config.NominatimAPIBaseURL, q.Encode())

	headers := map[string]string{
		"User-Agent": s.Config.UserAgent,
		"Accept":     "application/json",
	}
	return s.Client.Do(ctx, endpoint, headers)
}

func (s *Service) ParseData(data []byte) (interface{}, error) {
	var resp SearchAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	cities := make([]models.City, 0, len(resp))
	for _, p := range resp {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			logger.Debug("[%s] skipping place %d with latitude %q", serviceName, p.PlaceID, p.Lat)
			continue
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			logger.Debug("[%s] skipping place %d with longitude %q", serviceName, p.PlaceID, p.Lon)
			continue
		}
		cities = append(cities, models.City{
			ID:   strconv.FormatInt(p.PlaceID, 10),
			Name: p.DisplayName,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return cities, nil
}

// Search geocodes a place name. A blank query returns no results without a request.
func (s *Service) Search(ctx context.Context, query string) ([]models.City, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	data, err := s.FetchData(ctx, query)
	if err != nil {
		return nil, err
	}
	parsed, err := s.ParseData(data)
	if err != nil {
		return nil, err
	}
	return parsed.([]models.City), nil
}
