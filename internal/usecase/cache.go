package usecase

import (
	"context"
	"time"
)

// Cache is the read-through JSON cache shared by the job list and assessment
// lookups. A nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// KeyLocker grants short-lived exclusive ownership of a key.
type KeyLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// Broadcaster pushes realtime events to connected dashboards.
type Broadcaster interface {
	BroadcastJSON(v any)
}
