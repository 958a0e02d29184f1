package campaign

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

// Runner executes batch runs in background goroutines, at most one per key.
type Runner struct {
	processor *Processor
	logger    *slog.Logger
	active    map[string]struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
}

// NewRunner creates a runner around processor. A nil logger discards output.
func NewRunner(processor *Processor, l *slog.Logger) *Runner {
	if l == nil {
		l = logger.NewNope()
	}
	return &Runner{
		processor: processor,
		logger:    l,
		active:    make(map[string]struct{}),
	}
}

// Start validates batch and launches a run for key. It returns ErrRunInProgress when a
// run for key has not finished yet, or the *ValidationError for an invalid batch.
// done, when not nil, receives the result on the run goroutine.
func (r *Runner) Start(ctx context.Context, key string, batch *Batch, done func(*Report, error), opts ...RunOption) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.active[key]; ok {
		r.mu.Unlock()
		return ErrRunInProgress
	}
	r.active[key] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer r.wg.Done()
		defer r.release(key)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.ErrorContext(ctx, "batch run panicked", slog.Any("panic", rec))
			}
		}()

		report, err := r.processor.Run(ctx, batch, opts...)
		if done != nil {
			done(report, err)
		}
	}()

	return nil
}

// Running reports whether a run for key is in progress.
func (r *Runner) Running(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[key]
	return ok
}

// Wait blocks until every run has finished or ctx is done.
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
		return ctx.Err()
	}
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	delete(r.active, key)
	r.mu.Unlock()
}
