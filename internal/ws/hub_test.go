package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scopedEvent struct {
	Type  string `json:"type"`
	JobID string `json:"jobId"`
}

func (e scopedEvent) Scope() string { return e.JobID }

func testClient(h *Hub, scope string) *Client {
	return &Client{id: scope + "-client", scope: scope, hub: h, send: make(chan []byte, 4), logger: h.logger}
}

func receive(t *testing.T, c *Client) (scopedEvent, bool) {
	t.Helper()
	select {
	case b, ok := <-c.send:
		if !ok {
			return scopedEvent{}, false
		}
		var ev scopedEvent
		require.NoError(t, json.Unmarshal(b, &ev))
		return ev, true
	case <-time.After(200 * time.Millisecond):
		return scopedEvent{}, false
	}
}

func TestHub_ScopedDelivery(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	all := testClient(h, "")
	jobA := testClient(h, "job-a")
	jobB := testClient(h, "job-b")
	for _, c := range []*Client{all, jobA, jobB} {
		h.Register(c)
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	h.BroadcastJSON(scopedEvent{Type: "stage.committed", JobID: "job-a"})

	ev, ok := receive(t, all)
	require.True(t, ok)
	assert.Equal(t, "stage.committed", ev.Type)
	_, ok = receive(t, jobA)
	assert.True(t, ok)
	_, ok = receive(t, jobB)
	assert.False(t, ok, "other job's dashboard is not notified")

	h.BroadcastJSON(map[string]string{"type": "jobs.reordered"})
	_, ok = receive(t, jobB)
	assert.True(t, ok, "unscoped events reach everyone")
}

func TestHub_UnregisterAndShutdown(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	a := testClient(h, "")
	b := testClient(h, "")
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Unregister(a)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-a.send
	assert.False(t, open)

	cancel()
	<-done
	assert.Zero(t, h.ClientCount())
	_, open = <-b.send
	assert.False(t, open)
}

func TestHub_CallsAfterShutdownDoNotBlock(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	late := make([]*Client, 0, 200)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 200; i++ {
			c := testClient(h, "job-1")
			h.Register(c)
			h.Unregister(c)
			late = append(late, c)
		}
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after the hub stopped")
	}
	assert.Zero(t, h.ClientCount())
	for _, c := range late {
		_, open := <-c.send
		assert.False(t, open)
	}
}
