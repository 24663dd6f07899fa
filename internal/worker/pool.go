package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs background persistence work such as assessment autosaves on a
// fixed number of goroutines. Task errors are logged, never returned to the
// submitter.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	logger  logrus.FieldLogger

	mu     sync.RWMutex
	closed bool

	rateMu sync.Mutex
	rate   <-chan time.Time
	ticker *time.Ticker

	// Timeout bounds a single task; zero means no limit.
	Timeout time.Duration
}

func NewPool(workers, buffer int, logger logrus.FieldLogger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
		logger:  logger,
		Timeout: 10 * time.Second,
	}
}

func (p *Pool) SetRateLimit(rps int) {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if rps <= 0 {
		return
	}
	p.ticker = time.NewTicker(time.Second / time.Duration(rps))
	p.rate = p.ticker.C
}

// Submit queues t, blocking while the buffer is full.
func (p *Pool) Submit(t Task) error {
	if t == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- t
	return nil
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// once the queue is drained.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.loop(ctx, i)
	}
}

func (p *Pool) loop(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.rateMu.Lock()
			rate := p.rate
			p.rateMu.Unlock()
			if rate != nil {
				select {
				case <-ctx.Done():
					return
				case <-rate:
				}
			}
			p.run(ctx, id, t)
		}
	}
}

func (p *Pool) run(ctx context.Context, id int, t Task) {
	tctx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{"worker": id, "panic": r}).Error("worker task panicked")
		}
	}()
	if err := t(tctx); err != nil {
		p.logger.WithError(err).WithField("worker", id).Warn("worker task failed")
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
	p.SetRateLimit(0)
}
