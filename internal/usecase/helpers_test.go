package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func seedJob(t *testing.T, st *memory.Store, title string) job.Job {
	t.Helper()
	uc := NewJobUsecase(st.Jobs(), st.Candidates(), nil, nil, nullLogger())
	j, err := uc.Create(context.Background(), JobInput{Title: title})
	require.NoError(t, err)
	return j
}

func seedCandidate(t *testing.T, st *memory.Store, jobID uuid.UUID, name string) candidate.Candidate {
	t.Helper()
	uc := NewCandidateUsecase(st.Candidates(), st.History(), st.Notes(), st.Jobs(), nil, nullLogger())
	c, err := uc.Create(context.Background(), CandidateInput{Name: name, Email: name + "@example.com", JobID: jobID}, "system")
	require.NoError(t, err)
	return c
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []StageEvent
	other  []any
}

func (b *recordingBroadcaster) BroadcastJSON(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := v.(StageEvent); ok {
		b.events = append(b.events, e)
		return
	}
	b.other = append(b.other, v)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type mapLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *mapLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

// mapCache stores JSON in memory and counts hits.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := pattern
	if n := len(prefix); n > 0 && prefix[n-1] == '*' {
		prefix = prefix[:n-1]
	}
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
		}
	}
	return nil
}
