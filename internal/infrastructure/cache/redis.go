package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/anirudhprmar/pushup-t3/internal/domain/events"
	"github.com/anirudhprmar/pushup-t3/pkg/config"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

const (
	keyPrefix        = "pushup:"
	dashboardChannel = "pushup:dashboard:events"
	defaultTTL       = 5 * time.Minute
)

var ErrCacheMiss = errors.New("cache miss")

type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisCache(cfg *config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, logger: log}, nil
}

func (c *RedisCache) key(k string) string {
	return keyPrefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// ClearByPattern scans and deletes keys matching the pattern under the
// cache prefix. Used to invalidate a user's aggregate caches after a
// log write.
func (c *RedisCache) ClearByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, c.key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// PublishDashboardEvent broadcasts a cache invalidation event. Failures
// are logged, not returned, so a flaky redis never blocks a write path.
func (c *RedisCache) PublishDashboardEvent(ctx context.Context, event events.DashboardEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal dashboard event", zap.Error(err))
		return
	}
	if err := c.client.Publish(ctx, dashboardChannel, data).Err(); err != nil {
		c.logger.Error("failed to publish dashboard event", zap.Error(err))
	}
}

// SubscribeDashboardEvents returns a channel of decoded dashboard
// events. The subscription ends when ctx is cancelled.
func (c *RedisCache) SubscribeDashboardEvents(ctx context.Context) (<-chan events.DashboardEvent, error) {
	sub := c.client.Subscribe(ctx, dashboardChannel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, err
	}

	out := make(chan events.DashboardEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event events.DashboardEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					c.logger.Error("failed to decode dashboard event", zap.Error(err))
					continue
				}
				out <- event
			}
		}
	}()
	return out, nil
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// StartHealthLoop pings redis on an interval until ctx is cancelled,
// logging state changes.
func (c *RedisCache) StartHealthLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		healthy := true
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := c.HealthCheck(ctx)
				if err != nil && healthy {
					healthy = false
					c.logger.Error("redis health check failed", zap.Error(err))
				} else if err == nil && !healthy {
					healthy = true
					c.logger.Info("redis connection recovered")
				}
			}
		}
	}()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
