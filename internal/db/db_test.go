package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/db"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
)

// Helper: Start temporary MongoDB container
func setupMongoContainer(ctx context.Context) (tc.Container, string, error) {
	req := tc.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "admin",
			"MONGO_INITDB_ROOT_PASSWORD": "password",
		},
		WaitingFor: wait.ForListeningPort("27017/tcp"),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	port, err := container.MappedPort(ctx, nat.Port("27017"))
	if err != nil {
		return nil, "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", err
	}

	mongoURI := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	return container, mongoURI, nil
}

func testConfig(uri, dbName string) *config.Config {
	return &config.Config{
		MongoURI:                    uri,
		MongoUser:                   "admin",
		MongoPass:                   "password",
		MongoAuthDB:                 "admin",
		DBAthan:                     dbName,
		CollectionRecentCities:      "recent_cities",
		CollectionMigrationsHistory: "migrations_history",
	}
}

func TestConnectMongoDB_NoURI(t *testing.T) {
	client, err := db.ConnectMongoDB(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, db.ErrNoMongoURI)
	assert.Nil(t, client)
	assert.NoError(t, db.DisconnectMongoDB(context.Background(), nil))
}

func TestRunMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	container, mongoURI, err := setupMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	defer container.Terminate(ctx)

	cfg := testConfig(mongoURI, "athan_test_migrations")

	client, err := db.ConnectMongoDB(ctx, cfg)
	require.NoError(t, err)
	defer db.DisconnectMongoDB(ctx, client)

	require.NoError(t, db.RunMigrations(ctx, client, cfg))
	// A second pass finds the history entry and skips.
	require.NoError(t, db.RunMigrations(ctx, client, cfg))

	history := client.Database(cfg.DBAthan).Collection(cfg.CollectionMigrationsHistory)
	count, err := history.CountDocuments(ctx, bson.M{"name": "recent_cities_indexes"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	recent := client.Database(cfg.DBAthan).Collection(cfg.CollectionRecentCities)
	_, err = recent.InsertOne(ctx, bson.M{"city_id": "1", "selected_at": time.Now()})
	require.NoError(t, err)
	_, err = recent.InsertOne(ctx, bson.M{"city_id": "1", "selected_at": time.Now()})
	assert.Error(t, err, "city_id should be unique")
}
