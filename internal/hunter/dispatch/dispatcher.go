// Package dispatch bounds how many hunts run at once and runs them either
// in the background (HTTP) or inline (Zeebe jobs).
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	apperrors "lead-hunter/internal/common/errors"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/metrics"
	"lead-hunter/internal/models"
)

// Runner executes one hunt.
type Runner interface {
	Run(ctx context.Context, huntID string, query models.SearchQuery) *models.HuntSummary
}

// SummaryStore keeps finished summaries for later lookup.
type SummaryStore interface {
	Save(ctx context.Context, summary *models.HuntSummary) error
}

// ErrShuttingDown is the cause carried by hunts refused after Shutdown.
var ErrShuttingDown = errors.New("dispatcher is shutting down")

type Options struct {
	MaxConcurrent int64
	// HuntTimeout bounds background hunts. Zero means no bound.
	HuntTimeout time.Duration
	Summaries   SummaryStore
	Logger      logger.Logger
}

type Dispatcher struct {
	runner    Runner
	sem       *semaphore.Weighted
	limit     int64
	timeout   time.Duration
	summaries SummaryStore
	log       logger.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	// mu orders wg.Add in Submit against the closing flag set by Shutdown.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(runner Runner, opts Options) *Dispatcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		runner:    runner,
		sem:       semaphore.NewWeighted(opts.MaxConcurrent),
		limit:     opts.MaxConcurrent,
		timeout:   opts.HuntTimeout,
		summaries: opts.Summaries,
		log:       log.Named("dispatch"),
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Submit starts a hunt in the background and returns its id immediately.
// It refuses with HUNT_BUSY when every slot is taken and with
// HUNT_CANCELLED once Shutdown has begun.
func (d *Dispatcher) Submit(query models.SearchQuery) (string, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return "", apperrors.NewHuntCancelledError(ErrShuttingDown)
	}
	if !d.sem.TryAcquire(1) {
		d.mu.Unlock()
		metrics.HuntsTotal.WithLabelValues(string(apperrors.ErrCodeHuntBusy)).Inc()
		return "", apperrors.NewHuntBusyError(d.limit)
	}
	d.wg.Add(1)
	d.mu.Unlock()

	huntID := uuid.New().String()
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)

		ctx := d.baseCtx
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		d.store(ctx, d.runner.Run(ctx, huntID, query))
	}()
	return huntID, nil
}

// Run waits for a free slot and runs the hunt inline.
func (d *Dispatcher) Run(ctx context.Context, query models.SearchQuery) (*models.HuntSummary, error) {
	if d.isClosed() {
		return nil, apperrors.NewHuntCancelledError(ErrShuttingDown)
	}
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, apperrors.NewHuntCancelledError(err)
	}
	defer d.sem.Release(1)

	summary := d.runner.Run(ctx, uuid.New().String(), query)
	d.store(ctx, summary)
	return summary, nil
}

func (d *Dispatcher) store(ctx context.Context, summary *models.HuntSummary) {
	if d.summaries == nil || summary == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := d.summaries.Save(ctx, summary); err != nil {
		d.log.Warn("failed to store hunt summary", map[string]interface{}{
			"huntId": summary.HuntID,
			"error":  err.Error(),
		})
	}
}

func (d *Dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Shutdown stops accepting hunts and waits for background ones. When ctx
// expires first the hunts are cancelled, which still lets them record their
// summaries.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
