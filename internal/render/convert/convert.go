// Package convert turns a rendered .docx document into the requested output
// format. DOCX is passed through; PDF goes through an ordered list of
// converters, the first available one that succeeds wins.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// DefaultTimeout bounds a single converter invocation.
const DefaultTimeout = 60 * time.Second

// ErrUnavailable is recorded for converters whose backend is missing on the host.
var ErrUnavailable = errors.New("converter not available")

// Converter converts the .docx file at src into a PDF written under outDir
// and returns the path of the produced file.
type Converter interface {
	Name() string
	Available(ctx context.Context) bool
	Convert(ctx context.Context, src, outDir string) (string, error)
}

// Observer receives one call per converter attempt.
type Observer interface {
	ObserveConversion(converter string, success bool, elapsed time.Duration)
}

// Result is the final artifact of a render.
type Result struct {
	Data        []byte
	ContentType string
	Converter   string
}

// Attempt is one converter invocation recorded by a failed conversion.
type Attempt struct {
	Converter string
	Err       error
}

// ConversionError reports that no converter produced an output.
type ConversionError struct {
	Attempts []Attempt
}

func (e *ConversionError) Error() string {
	if len(e.Attempts) == 0 {
		return "conversion failed: no converter configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Converter + ": " + a.Err.Error()
	}
	return "conversion failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes domain.ErrConversion and every attempt error.
func (e *ConversionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, domain.ErrConversion)
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Pipeline renders documents into their output format.
type Pipeline struct {
	converters []Converter
	timeout    time.Duration
	tempRoot   string
	observer   Observer
	log        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout sets the per-converter timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTempRoot sets the directory under which attempt directories are created.
func WithTempRoot(dir string) Option {
	return func(p *Pipeline) { p.tempRoot = dir }
}

// WithObserver registers a converter attempt observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// NewPipeline creates a Pipeline trying converters in the given order.
func NewPipeline(logger *slog.Logger, converters []Converter, opts ...Option) *Pipeline {
	p := &Pipeline{
		converters: converters,
		timeout:    DefaultTimeout,
		log:        logger.With("component", "convert"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Converters returns the configured converter names in order.
func (p *Pipeline) Converters() []string {
	names := make([]string, len(p.converters))
	for i, c := range p.converters {
		names[i] = c.Name()
	}
	return names
}

// Render serializes doc and converts it to format.
func (p *Pipeline) Render(ctx context.Context, doc *docx.Document, format domain.OutputFormat) (Result, error) {
	data, err := doc.Bytes()
	if err != nil {
		return Result{}, fmt.Errorf("serialize document: %w", err)
	}
	return p.Convert(ctx, data, format)
}

// Convert converts serialized .docx bytes to format.
func (p *Pipeline) Convert(ctx context.Context, source []byte, format domain.OutputFormat) (Result, error) {
	switch format {
	case domain.OutputFormatDOCX:
		return Result{Data: source, ContentType: format.ContentType(), Converter: "passthrough"}, nil
	case domain.OutputFormatPDF:
		return p.toPDF(ctx, source)
	default:
		return Result{}, domain.NewValidationError("format", fmt.Sprintf("unsupported output format %q", format))
	}
}

// toPDF runs the converters inside a temporary directory that is removed on
// every exit path.
func (p *Pipeline) toPDF(ctx context.Context, source []byte) (Result, error) {
	dir, err := os.MkdirTemp(p.tempRoot, "docgen-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			p.log.WarnContext(ctx, "temp dir cleanup failed", slog.String("dir", dir), slog.String("error", rmErr.Error()))
		}
	}()

	src := filepath.Join(dir, "source.docx")
	if err := os.WriteFile(src, source, 0o600); err != nil {
		return Result{}, fmt.Errorf("write source: %w", err)
	}
	target := filepath.Join(dir, "source.pdf")

	convErr := &ConversionError{}
	for _, c := range p.converters {
		if ctx.Err() != nil {
			convErr.Attempts = append(convErr.Attempts, Attempt{Converter: c.Name(), Err: ctx.Err()})
			break
		}
		if !c.Available(ctx) {
			p.log.DebugContext(ctx, "converter unavailable", slog.String("converter", c.Name()))
			convErr.Attempts = append(convErr.Attempts, Attempt{Converter: c.Name(), Err: ErrUnavailable})
			continue
		}

		data, err := p.attempt(ctx, c, src, target, dir)
		if err != nil {
			convErr.Attempts = append(convErr.Attempts, Attempt{Converter: c.Name(), Err: err})
			continue
		}
		return Result{Data: data, ContentType: domain.OutputFormatPDF.ContentType(), Converter: c.Name()}, nil
	}

	return Result{}, convErr
}

func (p *Pipeline) attempt(ctx context.Context, c Converter, src, target, dir string) ([]byte, error) {
	outDir := filepath.Join(dir, "out-"+c.Name())
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.Convert(attemptCtx, src, outDir)
	elapsed := time.Since(start)
	if err == nil {
		err = relocate(out, target)
	}
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("timed out after %s: %w", p.timeout, err)
	}
	if p.observer != nil {
		p.observer.ObserveConversion(c.Name(), err == nil, elapsed)
	}
	if err != nil {
		p.log.WarnContext(ctx, "converter failed",
			slog.String("converter", c.Name()),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("converter produced an empty file")
	}

	p.log.InfoContext(ctx, "document converted",
		slog.String("converter", c.Name()),
		slog.Duration("elapsed", elapsed),
		slog.Int("size", len(data)),
	)
	return data, nil
}

// relocate moves the converter output to the expected path.
func relocate(out, target string) error {
	if out == "" {
		return errors.New("converter returned no output path")
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("converter output missing: %w", err)
	}
	if out == target {
		return nil
	}
	if err := os.Rename(out, target); err != nil {
		return fmt.Errorf("relocate output: %w", err)
	}
	return nil
}
