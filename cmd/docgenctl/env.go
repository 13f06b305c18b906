package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/app"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// operatorID identifies docgenctl in audit entries and ownership columns.
var operatorID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("docgenctl"))

// operatorContext carries an admin identity for service calls.
func operatorContext(ctx context.Context) context.Context {
	ctx = ctxutil.WithUserID(ctx, operatorID)
	return ctxutil.WithUserRole(ctx, "admin")
}

// withComponents loads configuration, wires the services and runs fn.
// Logs go to stderr so that command output stays parseable.
func withComponents(ctx context.Context, stderr io.Writer, tune func(*config.Config), fn func(ctx context.Context, c *app.Components) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if tune != nil {
		tune(cfg)
	}

	log := app.NewLoggerTo(stderr, cfg.Log).With(slog.String("app", "docgenctl"))
	c, err := app.Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer c.Close()

	return fn(operatorContext(ctx), c)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
