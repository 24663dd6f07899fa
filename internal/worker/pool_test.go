package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasksBeforeClose(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewPool(3, 16, logger)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		fail := i == 4
		require.NoError(t, p.Submit(func(context.Context) error {
			ran.Add(1)
			if fail {
				return errors.New("boom")
			}
			return nil
		}))
	}
	p.Close()

	assert.Equal(t, int32(10), ran.Load())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "worker task failed", hook.LastEntry().Message)

	assert.ErrorIs(t, p.Submit(func(context.Context) error { return nil }), ErrPoolClosed)
	p.Close()
}

func TestPool_RecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewPool(1, 1, logger)
	p.Start(context.Background())

	require.NoError(t, p.Submit(func(context.Context) error { panic("bad") }))
	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) error { close(done); return nil }))
	p.Close()

	<-done
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "worker task panicked", hook.AllEntries()[0].Message)
}
