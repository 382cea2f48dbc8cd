package migrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createCollectionIfNotExists(ctx context.Context, db *mongo.Database, name string) error {
	if err := db.CreateCollection(ctx, name); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) {
			if cmdErr.Code != 48 { // 48 = NamespaceExists
				return fmt.Errorf("failed to create collection %s: %w", name, err)
			}
		} else {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// MigrateRecentCities creates the recent cities collection with a unique city
// index and a recency index for listing.
func MigrateRecentCities(cfg *config.Config) func(ctx context.Context, client *mongo.Client) error {
	return func(ctx context.Context, client *mongo.Client) error {
		db := client.Database(cfg.DBAthan)
		if err := createCollectionIfNotExists(ctx, db, cfg.CollectionRecentCities); err != nil {
			return err
		}

		_, err := db.Collection(cfg.CollectionRecentCities).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "city_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("city_id_unique"),
			},
			{
				Keys:    bson.D{{Key: "selected_at", Value: -1}},
				Options: options.Index().SetName("selected_at_desc"),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", cfg.CollectionRecentCities, err)
		}
		return nil
	}
}
