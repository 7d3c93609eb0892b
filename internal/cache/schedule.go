package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// ScheduleCache caches the manager schedule per calendar day and is
// invalidated whenever a placement mutates that day. Losing it only
// costs a database read, so all failures are logged and absorbed.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	TLS      bool
	TTL      time.Duration
}

// New creates a schedule cache. Returns nil when no address is
// configured; callers treat a nil cache as disabled.
func New(opts Options, logger *logging.Logger) *ScheduleCache {
	if opts.Addr == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	redisOpts := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
	}
	if opts.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScheduleCache{
		client: redis.NewClient(redisOpts),
		ttl:    ttl,
		logger: logger,
	}
}

// NewWithClient wires an existing client, used in tests.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *logging.Logger) *ScheduleCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleCache{client: client, ttl: ttl, logger: logger}
}

func dayKey(day time.Time) string {
	return fmt.Sprintf("schedule:%s", day.Format("2006-01-02"))
}

// GetDay returns the cached schedule payload for the day, or nil on a
// miss.
func (c *ScheduleCache) GetDay(ctx context.Context, day time.Time) []byte {
	if c == nil {
		return nil
	}
	data, err := c.client.Get(ctx, dayKey(day)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("schedule cache read failed", "error", err, "key", dayKey(day))
		}
		return nil
	}
	return data
}

// SetDay stores the schedule payload for the day.
func (c *ScheduleCache) SetDay(ctx context.Context, day time.Time, payload []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, dayKey(day), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache write failed", "error", err, "key", dayKey(day))
	}
}

// InvalidateDay drops the cached schedule for every distinct day
// touched by a placement change.
func (c *ScheduleCache) InvalidateDay(ctx context.Context, days ...time.Time) {
	if c == nil || len(days) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(days))
	keys := make([]string, 0, len(days))
	for _, day := range days {
		key := dayKey(day)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("schedule cache invalidation failed", "error", err, "keys", keys)
	}
}

// Close releases the underlying client.
func (c *ScheduleCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
