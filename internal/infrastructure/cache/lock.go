package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// KeyLock hands out short-lived exclusive locks per key. Locks live in Redis
// so several API processes agree; without Redis, or when a Redis call
// fails, the lock is held in this process only.
type KeyLock struct {
	redis  *Redis
	logger logrus.FieldLogger

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

func NewKeyLock(r *Redis, logger logrus.FieldLogger) *KeyLock {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KeyLock{redis: r, logger: logger, local: map[string]time.Time{}, now: time.Now}
}

func (l *KeyLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if l.redis.Available() {
		token := uuid.NewString()
		ok, err := l.redis.SetIfNotExists(ctx, key, token, ttl)
		if err == nil {
			if !ok {
				return nil, false, nil
			}
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.redis.DeleteIfEquals(ctx, key, token); err != nil {
					l.logger.WithError(err).WithField("key", key).Warn("release lock")
				}
			}, true, nil
		}
		l.logger.WithError(err).WithField("key", key).Warn("redis lock failed, using local lock")
	}
	return l.tryLocal(key, ttl)
}

func (l *KeyLock) tryLocal(key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, held := l.local[key]; held && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.local[key] = exp

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.local[key].Equal(exp) {
				delete(l.local, key)
			}
		})
	}, true, nil
}
