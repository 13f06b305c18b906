// Command cleanup fails generation attempts stuck in PROCESSING longer than
// the configured stale threshold. In sync mode it also fails PENDING
// documents of the same age: they were reset for retry by a process that
// died before running them, and no recovery loop will pick them up.
// Sync deployments invoke it from an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/document"
	"github.com/GraceHermine/GenerateurDocument/internal/app"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/worker"
)

// orphanedCause is recorded on PENDING documents failed in sync mode.
const orphanedCause = "generation never started"

type staleStore interface {
	FailStale(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error)
	FailStalePending(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error)
}

type sweepResult struct {
	processing int
	pending    int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	cfg.Database.ApplicationName = "docgen-cleanup"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	now := time.Now().UTC()
	threshold := now.Add(-cfg.Generation.StaleAfter)

	res, err := sweep(ctx, document.New(pool), cfg.Generation, now)
	if err != nil {
		logger.Error("fail stale documents",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("stale documents failed",
		slog.Int("processing", res.processing),
		slog.Int("pending", res.pending),
		slog.String("mode", cfg.Generation.Mode),
		slog.Time("threshold", threshold),
	)
}

func sweep(ctx context.Context, store staleStore, gen config.GenerationConfig, now time.Time) (sweepResult, error) {
	var res sweepResult
	threshold := now.Add(-gen.StaleAfter)

	failed, err := store.FailStale(ctx, threshold, worker.StaleCause, now)
	if err != nil {
		return res, fmt.Errorf("processing: %w", err)
	}
	res.processing = len(failed)

	if !gen.Synchronous() {
		return res, nil
	}
	orphaned, err := store.FailStalePending(ctx, threshold, orphanedCause, now)
	if err != nil {
		return res, fmt.Errorf("pending: %w", err)
	}
	res.pending = len(orphaned)
	return res, nil
}
