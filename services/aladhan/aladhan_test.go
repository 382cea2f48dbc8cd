package aladhan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/api"
	"github.com/AbdulWasayUl/go-athan-clock/internal/cache"
	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonResponse = `{
	"code": 200,
	"status": "OK",
	"data": {
		"timings": {
			"Fajr": "05:12 (GMT)",
			"Sunrise": "07:58 (GMT)",
			"Dhuhr": "12:13 (GMT)",
			"Asr": "14:16 (GMT)",
			"Sunset": "16:23 (GMT)",
			"Maghrib": "16:23 (GMT)",
			"Isha": "18:01 (GMT)",
			"Imsak": "05:02 (GMT)",
			"Midnight": "00:13 (GMT)"
		},
		"date": {
			"readable": "15 Jan 2024",
			"timestamp": "1705305600",
			"gregorian": {"date": "15-01-2024"},
			"hijri": {
				"date": "04-07-1445",
				"day": "4",
				"month": {"number": 7, "en": "Rajab", "ar": "رَجَب"},
				"year": "1445",
				"designation": {"abbreviated": "AH", "expanded": "Anno Hegirae"}
			}
		},
		"meta": {"timezone": "Europe/London"}
	}
}`

func TestParseData(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		validate    func(*testing.T, models.PrayerTimes)
	}{
		{
			name:  "london with zone suffixes",
			input: londonResponse,
			validate: func(t *testing.T, pt models.PrayerTimes) {
				assert.Equal(t, "05:12", pt.Fajr)
				assert.Equal(t, "07:58", pt.Sunrise)
				assert.Equal(t, "12:13", pt.Dhuhr)
				assert.Equal(t, "14:16", pt.Asr)
				assert.Equal(t, "16:23", pt.Maghrib)
				assert.Equal(t, "18:01", pt.Isha)
				assert.Equal(t, "4 Rajab 1445 AH", pt.Hijri)
				assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), pt.Date)
			},
		},
		{
			name:  "missing event stays absent",
			input: `{"code":200,"data":{"timings":{"Fajr":"04:00","Isha":"19:30"},"date":{"gregorian":{"date":"01-06-2024"}}}}`,
			validate: func(t *testing.T, pt models.PrayerTimes) {
				assert.Equal(t, "04:00", pt.Fajr)
				assert.Equal(t, "", pt.Dhuhr)
				assert.Equal(t, "", pt.Hijri)
			},
		},
		{name: "api error code", input: `{"code":400,"status":"Bad Request","data":{}}`, expectError: true},
		{name: "missing date", input: `{"code":200,"data":{"timings":{"Fajr":"04:00"}}}`, expectError: true},
		{name: "invalid json", input: `{invalid json}`, expectError: true},
	}

	service := NewService(&config.Config{}, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := service.ParseData([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			pt, ok := data.(models.PrayerTimes)
			require.True(t, ok, "expected PrayerTimes type")
			tt.validate(t, pt)
		})
	}
}

func TestFetchData_CachesPerDay(t *testing.T) {
	var hits atomic.Int32
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, londonResponse)
	}))
	defer ts.Close()

	store, err := cache.NewMemory(8)
	require.NoError(t, err)

	cfg := &config.Config{
		AladhanAPIBaseURL:     ts.URL,
		AladhanMethod:         "99",
		AladhanMethodSettings: "12.5,null,null",
		AladhanTune:           "0,0,0,0,0,0,0,90",
		PrayerTimesTTL:        time.Hour,
	}
	service := NewService(cfg, store, api.WithRetryDelays(time.Millisecond, time.Millisecond), api.WithBurst(10))
	ctx := context.Background()
	day := time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC)

	data, err := service.FetchData(ctx, ID(51.5074, -0.1278, day))
	require.NoError(t, err)
	parsed, err := service.ParseData(data)
	require.NoError(t, err)
	assert.Equal(t, "05:12", parsed.(models.PrayerTimes).Fajr)
	assert.Equal(t, "/timings/15-01-2024", gotPath)
	assert.Contains(t, gotQuery, "latitude=51.5074")
	assert.Contains(t, gotQuery, "longitude=-0.1278")
	assert.Contains(t, gotQuery, "method=99")
	assert.Contains(t, gotQuery, "tune=0%2C0%2C0%2C0%2C0%2C0%2C0%2C90")

	_, err = service.FetchData(ctx, ID(51.5074, -0.1278, day.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "same day should be served from cache")

	_, err = service.FetchData(ctx, ID(51.5074, -0.1278, day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchData_InvalidID(t *testing.T) {
	service := NewService(&config.Config{}, nil)

	_, err := service.FetchData(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestID(t *testing.T) {
	id := ID(41.9028, 12.4964, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "41.9028,12.4964/09-03-2024", id)

	lat, lon, date, err := parseID(id)
	require.NoError(t, err)
	assert.Equal(t, 41.9028, lat)
	assert.Equal(t, 12.4964, lon)
	assert.Equal(t, time.March, date.Month())
}
