// Package background runs best-effort side effects after a response has
// been written. Work is not persisted and is lost if the process dies.
package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTaskTimeout = 2 * time.Minute

// Runner starts tasks on their own goroutines, recovering panics and logging
// failures. Wait blocks until every started task returns.
type Runner struct {
	wg      sync.WaitGroup
	logger  *zap.Logger
	timeout time.Duration
	base    context.Context
	cancel  context.CancelFunc
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l.Named("Background")
		}
	}
}

// WithTimeout bounds each task's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func New(opts ...Option) *Runner {
	base, cancel := context.WithCancel(context.Background())
	r := &Runner{logger: zap.NewNop(), timeout: defaultTaskTimeout, base: base, cancel: cancel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go schedules fn. The task context is detached from any request context.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(r.base, r.timeout)
		defer cancel()

		start := time.Now()
		err := r.run(ctx, fn)
		if err != nil {
			r.logger.Warn("background task failed", zap.String("task", name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
			return
		}
		r.logger.Debug("background task done", zap.String("task", name), zap.Duration("elapsed", time.Since(start)))
	}()
}

func (r *Runner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return fn(ctx)
}

// Wait blocks until all tasks finish or ctx expires. On expiry the remaining
// tasks' contexts are cancelled.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

// Flush waits for every task without a deadline.
func (r *Runner) Flush() {
	r.wg.Wait()
}
