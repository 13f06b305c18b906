package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	auditrepo "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/audit"
	documentrepo "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/document"
	formrepo "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/form"
	templaterepo "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/template"
	"github.com/GraceHermine/GenerateurDocument/internal/adapter/storage/blob"
	"github.com/GraceHermine/GenerateurDocument/internal/auth"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/metrics"
	"github.com/GraceHermine/GenerateurDocument/internal/render/convert"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
	"github.com/GraceHermine/GenerateurDocument/internal/service/template"
	"github.com/GraceHermine/GenerateurDocument/internal/transport/middleware"
	"github.com/GraceHermine/GenerateurDocument/internal/transport/rest"
	"github.com/GraceHermine/GenerateurDocument/internal/worker"
)

// Components is the assembled service graph shared by the server and the
// operator CLI.
type Components struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Blobs     *blob.Store
	Metrics   *metrics.Metrics
	Pipeline  *convert.Pipeline
	Documents *documentrepo.Repo
	Templates *template.Service
	Generator *document.Service
	// Worker is nil in sync mode.
	Worker *worker.Pool
}

// Close releases the database pool.
func (c *Components) Close() {
	c.Pool.Close()
}

// Build connects to the database and storage and wires the services.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c, err := assemble(pool, cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// assemble wires the services on an open pool.
func assemble(pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) (*Components, error) {
	blobs, err := NewBlobStore(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	pipeline, err := NewPipeline(cfg.Conversion, log, m)
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)
	templates := templaterepo.New(pool)
	forms := formrepo.New(pool)
	documents := documentrepo.New(pool)
	audit := auditrepo.New(pool)

	c := &Components{
		Config:    cfg,
		Pool:      pool,
		Blobs:     blobs,
		Metrics:   m,
		Pipeline:  pipeline,
		Documents: documents,
		Templates: template.NewService(log, templates, forms, blobs, txm),
	}

	deps := document.Deps{
		Documents: documents,
		Audit:     audit,
		Templates: templates,
		Forms:     forms,
		Blobs:     blobs,
		Renderer:  pipeline,
		Jobs:      m,
		Tx:        txm,
	}
	if !cfg.Generation.Synchronous() {
		c.Worker = worker.New(log, cfg.Generation, documents, m)
		deps.Queue = c.Worker
	}
	c.Generator = document.NewService(log, deps, cfg.Generation)

	return c, nil
}

// Run is the application entry point. It loads configuration, wires the
// services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("generation_mode", cfg.Generation.Mode),
		slog.Any("converters", cfg.Conversion.Backends()),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(c, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	if c.Worker != nil {
		g.Go(func() error {
			return c.Worker.Run(gctx, c.Generator)
		})
	}

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}

func newRouter(c *Components, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	cfg := c.Config
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	deps := rest.RouterDeps{
		Logger:      logger,
		Health:      rest.NewHealthHandler(c.Pool, c.Blobs, BuildVersion()),
		Templates:   rest.NewTemplateHandler(c.Templates, cfg.Server.MaxUploadBytes, logger),
		Documents:   rest.NewDocumentHandler(c.Generator, logger),
		Auth:        middleware.Auth(jwt),
		CORS:        cfg.CORS,
		HTTPMetrics: middleware.Metrics(c.Metrics),
	}
	if cfg.Metrics.Enabled {
		deps.MetricsPath = cfg.Metrics.Path
		deps.MetricsHandler = c.Metrics.Handler()
	}
	if cfg.Generation.RateLimit > 0 {
		deps.GenerateLimit = limiter.Limit(cfg.Generation.RateLimit)
	}
	return rest.NewRouter(deps)
}
