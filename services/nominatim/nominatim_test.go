package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/api"
	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cairoResponse = `[
	{"place_id": 282590120, "display_name": "Cairo, Egypt", "lat": "30.0443879", "lon": "31.2357257", "class": "boundary", "type": "administrative"},
	{"place_id": 12345, "display_name": "Cairo, Illinois, United States", "lat": "37.0053", "lon": "-89.1764", "class": "place", "type": "city"},
	{"place_id": 999, "display_name": "Broken", "lat": "north", "lon": "1.0"}
]`

func TestParseData(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    []models.City
	}{
		{
			name:  "valid results skip unparsable coordinates",
			input: cairoResponse,
			expected: []models.City{
				{ID: "282590120", Name: "Cairo, Egypt", Lat: 30.0443879, Lon: 31.2357257},
				{ID: "12345", Name: "Cairo, Illinois, United States", Lat: 37.0053, Lon: -89.1764},
			},
		},
		{name: "no results", input: `[]`, expected: []models.City{}},
		{name: "invalid json", input: `{"error":"bad"}`, expectError: true},
	}

	service := NewService(&config.Config{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := service.ParseData([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestSearch(t *testing.T) {
	var hits atomic.Int32
	var gotQuery, gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		fmt.Fprint(w, cairoResponse)
	}))
	defer ts.Close()

	cfg := &config.Config{NominatimAPIBaseURL: ts.URL, UserAgent: "AthanApp/1.0"}
	service := NewService(cfg, api.WithRetryDelays(time.Millisecond, time.Millisecond))

	cities, err := service.Search(context.Background(), "  Cairo ")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Cairo, Egypt", cities[0].Name)
	assert.Equal(t, "Cairo", gotQuery)
	assert.Equal(t, "AthanApp/1.0", gotAgent)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearch_BlankQuery(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	service := NewService(&config.Config{NominatimAPIBaseURL: ts.URL})

	cities, err := service.Search(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, cities)
	assert.Zero(t, hits.Load())
}

func TestSearch_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	service := NewService(&config.Config{NominatimAPIBaseURL: ts.URL})

	_, err := service.Search(context.Background(), "Cairo")
	assert.ErrorIs(t, err, api.ErrNonOK)
}
