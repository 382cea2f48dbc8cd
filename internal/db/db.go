package db

import (
	"context"
	"errors"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/db/migrations"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoMongoURI = errors.New("MongoDB URI is not configured")

func ConnectMongoDB(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, ErrNoMongoURI
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.MongoUser != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   cfg.MongoUser,
			Password:   cfg.MongoPass,
			AuthSource: cfg.MongoAuthDB,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctxTimeout, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB!")
	return client, nil
}

func DisconnectMongoDB(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Info("Disconnected from MongoDB.")
	return nil
}

// RunMigrations applies every migration not yet recorded in the history collection.
func RunMigrations(ctx context.Context, client *mongo.Client, cfg *config.Config) error {
	return apply(ctx, client, cfg, []models.Migration{
		{Name: "recent_cities_indexes", Func: migrations.MigrateRecentCities(cfg)},
	})
}

func apply(ctx context.Context, client *mongo.Client, cfg *config.Config, list []models.Migration) error {
	coll := client.Database(cfg.DBAthan).Collection(cfg.CollectionMigrationsHistory)

	for _, m := range list {
		var result struct{ Name string }
		err := coll.FindOne(ctx, bson.M{"name": m.Name}).Decode(&result)
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Info("Running migration: %s", m.Name)
			if err := m.Func(ctx, client); err != nil {
				logger.Error("Error applying migration %s: %v", m.Name, err)
				return err
			}
			_, err = coll.InsertOne(ctx, bson.M{"name": m.Name, "applied_at": time.Now()})
			if err != nil {
				return err
			}
			logger.Info("Migration %s applied successfully.", m.Name)
		} else if err != nil {
			return err
		} else {
			logger.Info("Migration %s already applied, skipping.", m.Name)
		}
	}

	return nil
}
