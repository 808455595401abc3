package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stationops/nowplayd/pkg/logger"
)

const (
	// LatestKey holds the most recent update as JSON.
	LatestKey = "nowplaying:latest"
	// EventsChannel receives every update via pub/sub.
	EventsChannel = "nowplaying:events"

	// Stale now-playing data is worse than none; the latest key expires if
	// the daemon stops publishing.
	latestTTL = 24 * time.Hour
)

// RedisAnnouncer stores the latest update under LatestKey and publishes each
// update to EventsChannel.
type RedisAnnouncer struct {
	rdb    *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection. An empty address
// means the announcer is disabled and nil is returned.
func NewRedis(cfg RedisConfig) (*RedisAnnouncer, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	logger.Log.Info("Connected to Redis successfully")

	return &RedisAnnouncer{
		rdb:    rdb,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (a *RedisAnnouncer) Name() string { return "redis" }

// Announce stores the update with a TTL and publishes it on the events
// channel.
func (a *RedisAnnouncer) Announce(update Update) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	if err := a.rdb.Set(a.ctx, LatestKey, data, latestTTL).Err(); err != nil {
		return fmt.Errorf("failed to store latest update: %w", err)
	}

	if err := a.rdb.Publish(a.ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish update: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (a *RedisAnnouncer) Close() error {
	a.cancel()
	return a.rdb.Close()
}
