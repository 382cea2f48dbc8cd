package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/cache"
	"github.com/AbdulWasayUl/go-athan-clock/internal/channels"
	"github.com/AbdulWasayUl/go-athan-clock/internal/config"
	"github.com/AbdulWasayUl/go-athan-clock/internal/countdown"
	"github.com/AbdulWasayUl/go-athan-clock/internal/db"
	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/internal/workpool"
	"github.com/AbdulWasayUl/go-athan-clock/services/aladhan"
	"github.com/AbdulWasayUl/go-athan-clock/services/athan"
	"github.com/AbdulWasayUl/go-athan-clock/services/geonames"
	"github.com/AbdulWasayUl/go-athan-clock/services/nominatim"
	"github.com/AbdulWasayUl/go-athan-clock/services/recents"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const redisKeyPrefix = "athan:"

// app holds the long-lived dependencies shared by every command.
type app struct {
	cfg   *config.Config
	store cache.Store
	redis *redis.Client
	mongo *mongo.Client
	chans *channels.Channels
	pool  *workpool.WorkerPool
	svc   *athan.Service
}

func setup(ctx context.Context, cfg *config.Config, sink countdown.Sink) (*app, error) {
	a := &app{cfg: cfg}

	if err := a.openCache(ctx); err != nil {
		return nil, err
	}
	a.openRecents(ctx)

	a.chans = channels.New()
	a.pool = workpool.New(a.chans, cfg.WorkerCount)
	a.pool.Start(ctx)

	session := countdown.NewSession(sink, countdown.WithInterval(cfg.TickInterval))
	opts := []athan.Option{athan.WithCache(a.store)}
	if a.mongo != nil {
		opts = append(opts, athan.WithRecents(recents.NewService(a.mongo, cfg)))
	}

	a.svc = athan.NewService(
		geonames.NewService(cfg, a.store),
		aladhan.NewService(cfg, a.store),
		nominatim.NewService(cfg),
		a.chans,
		session,
		sink,
		opts...,
	)
	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	if a.cfg.CacheBackend == "redis" && a.cfg.RedisAddr != "" {
		client := cache.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisUsername, a.cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			a.redis = client
			a.store = cache.NewRedis(client, redisKeyPrefix)
			logger.Info("Using Redis cache at %s", a.cfg.RedisAddr)
			return nil
		}
		logger.Warn("Redis at %s unavailable, using in-memory cache: %v", a.cfg.RedisAddr, err)
		_ = client.Close()
	}

	mem, err := cache.NewMemory(a.cfg.CacheCapacity)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.store = mem
	return nil
}

// openRecents connects to MongoDB when configured. Recent cities are optional,
// so connection or migration failures only disable them.
func (a *app) openRecents(ctx context.Context) {
	if a.cfg.MongoURI == "" {
		logger.Debug("MongoDB not configured, recent cities disabled")
		return
	}

	client, err := db.ConnectMongoDB(ctx, a.cfg)
	if err != nil {
		logger.Warn("Failed to connect to MongoDB, recent cities disabled: %v", err)
		return
	}
	if err := db.RunMigrations(ctx, client, a.cfg); err != nil {
		logger.Warn("Failed to run migrations, recent cities disabled: %v", err)
		_ = db.DisconnectMongoDB(ctx, client)
		return
	}
	a.mongo = client
}

func (a *app) close(ctx context.Context) {
	a.svc.Deselect()
	a.pool.Stop()

	logger.Debug("Waiting for pending worker jobs to finish...")
	a.chans.WG.Wait()

	if a.mongo != nil {
		if err := db.DisconnectMongoDB(ctx, a.mongo); err != nil {
			logger.Error("Error disconnecting MongoDB: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Error("Error closing Redis client: %v", err)
		}
	}
}
