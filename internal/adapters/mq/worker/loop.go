// Package worker runs the single event loop that owns session state.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pinlog/internal/adapters/mq/queue"
	"github.com/okian/pinlog/pkg/logger"
	"github.com/okian/pinlog/pkg/metrics"
)

// Queue defines how the loop receives tasks.
type Queue interface {
	Dequeue() <-chan queue.Task
}

// Loop executes tasks one at a time, in queue order, on one goroutine.
type Loop struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop consuming q.
func NewLoop(q Queue, opts ...Option) *Loop {
	l := &Loop{
		queue:    q,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named(l.name)
	}
	return l
}

// Run consumes tasks until ctx is canceled, Shutdown is called or the queue
// is closed and drained.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	tasks := l.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			l.execute(ctx, task)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Shutdown stops the loop and waits for the running task to finish.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (l *Loop) execute(ctx context.Context, task queue.Task) {
	start := time.Now()
	defer func() {
		metrics.RecordLoopTaskLatency(task.Name, float64(time.Since(start).Microseconds())/1000)
		if r := recover(); r != nil {
			l.logger.Error(ctx, "task panicked",
				logger.String("task", task.Name),
				logger.Any("panic", r),
			)
		}
	}()

	if task.Run != nil {
		task.Run()
	}
}
