package recents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "recents"

var ErrInvalidCity = errors.New("city has no coordinates")

type record struct {
	models.City `bson:",inline"`
	SelectedAt  time.Time `bson:"selected_at"`
}

// Service keeps the most recently selected cities in MongoDB.
type Service struct {
	Collection *mongo.Collection
	Limit      int
	now        func() time.Time
}

func NewService(client *mongo.Client, cfg *config.Config) *Service {
	limit := cfg.RecentCitiesLimit
	if limit <= 0 {
		limit = 5
	}
	return &Service{
		Collection: client.Database(cfg.DBAthan).Collection(cfg.CollectionRecentCities),
		Limit:      limit,
		now:        time.Now,
	}
}

// Key identifies a city by its ID, or by its coordinates when it has none.
func Key(city models.City) string {
	if city.ID != "" {
		return city.ID
	}
	return fmt.Sprintf("%.4f,%.4f", city.Lat, city.Lon)
}

// Add records city as the latest selection and trims the list to the limit.
func (s *Service) Add(ctx context.Context, city models.City) error {
	if city.Lat == 0 && city.Lon == 0 {
		return ErrInvalidCity
	}
	city.ID = Key(city)

	filter := bson.M{"city_id": city.ID}
	update := bson.M{"$set": record{City: city, SelectedAt: s.now().UTC()}}
	if _, err := s.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save recent city %s: %w", city.ID, err)
	}

	return s.trim(ctx)
}

func (s *Service) trim(ctx context.Context) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "selected_at", Value: -1}}).
		SetSkip(int64(s.Limit)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := s.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to find stale recent cities: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		return fmt.Errorf("failed to decode stale recent cities: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	ids := make([]interface{}, 0, len(stale))
	for _, doc := range stale {
		ids = append(ids, doc.ID)
	}
	res, err := s.Collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to trim recent cities: %w", err)
	}
	logger.Debug("[%s] trimmed %d old cities", serviceName, res.DeletedCount)
	return nil
}

// List returns the recent cities, newest first.
func (s *Service) List(ctx context.Context) ([]models.City, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "selected_at", Value: -1}}).
		SetLimit(int64(s.Limit))

	cursor, err := s.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent cities: %w", err)
	}
	defer cursor.Close(ctx)

	var records []record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode recent cities: %w", err)
	}

	cities := make([]models.City, 0, len(records))
	for _, r := range records {
		cities = append(cities, r.City)
	}
	return cities, nil
}

func (s *Service) Clear(ctx context.Context) error {
	res, err := s.Collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to clear recent cities: %w", err)
	}
	logger.Info("[%s] cleared %d cities", serviceName, res.DeletedCount)
	return nil
}
