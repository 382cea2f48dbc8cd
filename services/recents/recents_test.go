package recents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("27017"))
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	return client
}

// steppingClock advances one minute per call so each Add is strictly newer.
func steppingClock() func() time.Time {
	current := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "abc", Key(models.City{ID: "abc", Lat: 1, Lon: 2}))
	assert.Equal(t, "41.9028,12.4964", Key(models.City{Lat: 41.9028, Lon: 12.4964}))
}

func TestRecents(t *testing.T) {
	client := setupMongo(t)
	ctx := context.Background()

	cfg := &config.Config{
		DBAthan:                "athan_test",
		CollectionRecentCities: "recent_cities",
		RecentCitiesLimit:      3,
	}
	svc := NewService(client, cfg)
	svc.now = steppingClock()

	cities := []models.City{
		{ID: "1", Name: "Rome", Lat: 41.9, Lon: 12.5},
		{ID: "2", Name: "Cairo", Lat: 30.04, Lon: 31.24},
		{ID: "3", Name: "London", Lat: 51.5, Lon: -0.12},
		{ID: "4", Name: "Jakarta", Lat: -6.2, Lon: 106.8},
	}

	t.Run("rejects city without coordinates", func(t *testing.T) {
		assert.ErrorIs(t, svc.Add(ctx, models.City{ID: "x"}), ErrInvalidCity)
	})

	t.Run("keeps newest up to the limit", func(t *testing.T) {
		for _, c := range cities {
			require.NoError(t, svc.Add(ctx, c))
		}

		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"Jakarta", "London", "Cairo"}, []string{list[0].Name, list[1].Name, list[2].Name})
	})

	t.Run("reselecting moves a city to the front without duplicating", func(t *testing.T) {
		require.NoError(t, svc.Add(ctx, cities[1]))

		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Cairo", list[0].Name)
		assert.Equal(t, 30.04, list[0].Lat)
	})

	t.Run("clear empties the list", func(t *testing.T) {
		require.NoError(t, svc.Clear(ctx))

		list, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
