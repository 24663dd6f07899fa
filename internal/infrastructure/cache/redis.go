package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"hireboard/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultTTL     = 600 * time.Second
	defaultLockTTL = 30 * time.Second
	scanBatch      = 200
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis is a namespaced JSON cache. Without a client every read misses and
// every write is dropped, so callers never branch on availability.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger logrus.FieldLogger

	warned atomic.Bool
}

var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedis dials cfg and pings once. An unset host or a failed ping yields
// the bypassing cache.
func NewRedis(cfg config.RedisConfig, logger logrus.FieldLogger) *Redis {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "cache")

	if cfg.Disabled() {
		logger.Info("redis not configured, cache bypassed")
		return NewRedisClient(nil, cfg.Prefix, cfg.TTL, logger)
	}

	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}
	addr := net.JoinHostPort(strings.TrimSpace(cfg.Host), port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis unavailable, bypassing cache")
		_ = client.Close()
		return NewRedisClient(nil, cfg.Prefix, cfg.TTL, logger)
	}

	logger.WithFields(logrus.Fields{"addr": addr, "db": cfg.DB, "prefix": cfg.Prefix}).Info("redis connected")
	return NewRedisClient(client, cfg.Prefix, cfg.TTL, logger)
}

// NewRedisClient wraps an existing client. A nil client bypasses.
func NewRedisClient(client redis.UniversalClient, prefix string, ttl time.Duration, logger logrus.FieldLogger) *Redis {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix != "" {
		prefix += ":"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Available reports whether a Redis connection was established.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// failed logs the first command error only; a flapping server would
// otherwise flood the log.
func (r *Redis) failed(err error) error {
	if r.warned.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("redis command failed, bypassing cache")
	}
	return err
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, r.failed(err)
	case len(b) == 0:
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), b, ttl).Err(); err != nil {
		return r.failed(err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return nil
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return r.failed(err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching the glob, in scan batches.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if !r.Available() || pattern == "" {
		return nil
	}

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.client.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	iter := r.client.Scan(ctx, 0, r.key(pattern), scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return r.failed(err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return r.failed(err)
	}
	if err := flush(); err != nil {
		return r.failed(err)
	}
	return nil
}

// SetIfNotExists reports false without error when Redis is unavailable;
// callers that need mutual exclusion check Available first.
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	ok, err := r.client.SetNX(ctx, r.key(key), value, ttl).Result()
	if err != nil {
		return false, r.failed(err)
	}
	return ok, nil
}

// DeleteIfEquals removes key only while it still holds value.
func (r *Redis) DeleteIfEquals(ctx context.Context, key, value string) error {
	if !r.Available() {
		return nil
	}
	err := compareAndDelete.Run(ctx, r.client, []string{r.key(key)}, value).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return r.failed(err)
	}
	return nil
}
