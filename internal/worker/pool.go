// Package worker runs asynchronous document generation. A bounded queue
// feeds a fixed number of workers; a recovery loop re-enqueues PENDING
// documents that were never picked up and fails attempts that stalled.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/GraceHermine/GenerateurDocument/internal/config"
)

// StaleCause is recorded on PROCESSING documents failed by the recovery loop.
const StaleCause = "generation attempt timed out"

// Runner generates one document.
type Runner interface {
	Run(ctx context.Context, id uuid.UUID) error
}

// Store finds documents that need recovery.
type Store interface {
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	FailStale(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error)
}

// DepthGauge observes the queue length.
type DepthGauge interface {
	SetQueueDepth(n int)
}

// Pool dispatches queued documents to workers.
type Pool struct {
	queue      chan uuid.UUID
	workers    int
	interval   time.Duration
	staleAfter time.Duration
	store      Store
	gauge      DepthGauge
	log        *slog.Logger
}

// New creates a Pool sized by cfg. gauge may be nil.
func New(log *slog.Logger, cfg config.GenerationConfig, store Store, gauge DepthGauge) *Pool {
	return &Pool{
		queue:      make(chan uuid.UUID, max(cfg.QueueSize, 1)),
		workers:    max(cfg.Workers, 1),
		interval:   cfg.RecoverInterval,
		staleAfter: cfg.StaleAfter,
		store:      store,
		gauge:      gauge,
		log:        log.With("component", "worker"),
	}
}

// Enqueue adds a document to the queue without blocking. It reports false
// when the queue is full.
func (p *Pool) Enqueue(id uuid.UUID) bool {
	select {
	case p.queue <- id:
		p.observeDepth()
		return true
	default:
		return false
	}
}

// Len returns the number of queued documents.
func (p *Pool) Len() int { return len(p.queue) }

// Run starts the workers and the recovery loop and blocks until ctx is
// cancelled. Attempts in flight at that moment run to completion.
func (p *Pool) Run(ctx context.Context, runner Runner) error {
	p.log.InfoContext(ctx, "worker pool started",
		slog.Int("workers", p.workers),
		slog.Int("queue_size", cap(p.queue)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := range p.workers {
		g.Go(func() error {
			p.work(gctx, runner, i)
			return nil
		})
	}
	if p.interval > 0 {
		g.Go(func() error {
			p.recoverLoop(gctx)
			return nil
		})
	}

	err := g.Wait()
	p.log.InfoContext(ctx, "worker pool stopped", slog.Int("queued", len(p.queue)))
	return err
}

func (p *Pool) work(ctx context.Context, runner Runner, n int) {
	log := p.log.With(slog.Int("worker", n))
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-p.queue:
			p.observeDepth()
			if err := runner.Run(context.WithoutCancel(ctx), id); err != nil {
				log.ErrorContext(ctx, "run document",
					slog.String("document_id", id.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (p *Pool) recoverLoop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.Recover(ctx); err != nil && ctx.Err() == nil {
			p.log.ErrorContext(ctx, "recover documents", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RecoverReport counts the documents touched by one recovery pass.
type RecoverReport struct {
	Failed   int
	Requeued int
}

// Recover fails PROCESSING documents untouched for longer than the stale
// threshold, then re-enqueues PENDING documents older than the recovery
// interval while the queue has room.
func (p *Pool) Recover(ctx context.Context) (RecoverReport, error) {
	var report RecoverReport
	now := time.Now().UTC()

	if p.staleAfter > 0 {
		failed, err := p.store.FailStale(ctx, now.Add(-p.staleAfter), StaleCause, now)
		if err != nil {
			return report, fmt.Errorf("fail stale documents: %w", err)
		}
		report.Failed = len(failed)
		for _, id := range failed {
			p.log.WarnContext(ctx, "stale document failed", slog.String("document_id", id.String()))
		}
	}

	free := cap(p.queue) - len(p.queue)
	if free == 0 {
		return report, nil
	}
	pending, err := p.store.ListPendingBefore(ctx, now.Add(-p.interval), free)
	if err != nil {
		return report, fmt.Errorf("list pending documents: %w", err)
	}
	for _, id := range pending {
		if !p.Enqueue(id) {
			break
		}
		report.Requeued++
	}

	if report.Failed > 0 || report.Requeued > 0 {
		p.log.InfoContext(ctx, "recovery pass",
			slog.Int("failed", report.Failed),
			slog.Int("requeued", report.Requeued),
		)
	}
	return report, nil
}

func (p *Pool) observeDepth() {
	if p.gauge != nil {
		p.gauge.SetQueueDepth(len(p.queue))
	}
}
