package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// DataRequest is one fetch -> parse -> store pipeline handed to the worker pool.
type DataRequest struct {
	ID        string
	Service   string
	FetchFunc func(ctx context.Context, id string) ([]byte, error)
	ParseFunc func([]byte) (interface{}, error)
	StoreFunc func(ctx context.Context, data interface{}) error
	// Done, when set, receives the pipeline outcome after the request finishes.
	Done func(err error)
}

type RateLimitSettings struct {
	MaxRequests int
	PerDuration time.Duration
}

type Migration struct {
	Name string
	Func func(ctx context.Context, client *mongo.Client) error
}
