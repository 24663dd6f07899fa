package cache

import (
	"context"
	"testing"
	"time"

	"hireboard/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disabledRedis(t *testing.T) *Redis {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewRedis(config.RedisConfig{}, log)
}

func TestRedis_DisabledBypasses(t *testing.T) {
	ctx := context.Background()
	r := disabledRedis(t)
	assert.False(t, r.Available())
	assert.Error(t, r.Ping(ctx))

	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}, 0))
	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.DeleteByPattern(ctx, "jobs:list:*"))
	assert.NoError(t, r.Close())
}

func TestKeyLock_LocalFallback(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	l := NewKeyLock(disabledRedis(t), log)

	unlock, ok, err := l.TryLock(ctx, "stage:lock:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "stage:lock:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held")

	_, ok, err = l.TryLock(ctx, "stage:lock:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	unlock()
	unlock()
	_, ok, err = l.TryLock(ctx, "stage:lock:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKeyLock_LocalExpiry(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	l := NewKeyLock(disabledRedis(t), log)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	stale, ok, _ := l.TryLock(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.TryLock(ctx, "k", time.Second)
	assert.True(t, ok, "expired lock can be taken")

	stale()
	_, ok, _ = l.TryLock(ctx, "k", time.Second)
	assert.False(t, ok, "stale unlock does not release the new holder")
}

func unreachableRedis(t *testing.T, prefix string) (*Redis, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisClient(client, prefix, 0, log), hook
}

func TestRedis_KeysAreNamespaced(t *testing.T) {
	r, _ := unreachableRedis(t, " hireboard: ")
	assert.Equal(t, "hireboard:jobs:list:abc", r.key("jobs:list:abc"))

	bare, _ := unreachableRedis(t, "")
	assert.Equal(t, "jobs:list:abc", bare.key("jobs:list:abc"))
}

func TestRedis_CommandFailuresWarnOnce(t *testing.T) {
	ctx := context.Background()
	r, hook := unreachableRedis(t, "hb")
	defer r.Close()

	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}, 0))
	assert.Error(t, r.Delete(ctx, "k"))

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "redis command failed, bypassing cache" {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}
