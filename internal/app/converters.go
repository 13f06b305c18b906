package app

import (
	"fmt"
	"log/slog"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/provider/gotenberg"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/render/convert"
)

type converterFactory func(cfg config.ConversionConfig, log *slog.Logger) convert.Converter

// converterFactories lists every known DOCX to PDF backend by name.
var converterFactories = map[string]converterFactory{
	"docx2pdf": func(cfg config.ConversionConfig, _ *slog.Logger) convert.Converter {
		return convert.NewDocx2PDF(cfg.Docx2PDFBin)
	},
	"soffice": func(cfg config.ConversionConfig, _ *slog.Logger) convert.Converter {
		return convert.NewSoffice(cfg.SofficeBin)
	},
	"gotenberg": func(cfg config.ConversionConfig, log *slog.Logger) convert.Converter {
		return gotenberg.NewProvider(cfg.GotenbergURL, log)
	},
}

// NewConverters builds the converter candidates in configured order.
func NewConverters(cfg config.ConversionConfig, log *slog.Logger) ([]convert.Converter, error) {
	names := cfg.Backends()
	out := make([]convert.Converter, 0, len(names))
	for _, name := range names {
		factory, ok := converterFactories[name]
		if !ok {
			return nil, fmt.Errorf("unknown converter %q", name)
		}
		out = append(out, factory(cfg, log))
	}
	return out, nil
}

// NewPipeline builds the conversion pipeline from configuration. obs may be
// nil.
func NewPipeline(cfg config.ConversionConfig, log *slog.Logger, obs convert.Observer) (*convert.Pipeline, error) {
	converters, err := NewConverters(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []convert.Option{convert.WithTimeout(cfg.Timeout)}
	if cfg.TempDir != "" {
		opts = append(opts, convert.WithTempRoot(cfg.TempDir))
	}
	if obs != nil {
		opts = append(opts, convert.WithObserver(obs))
	}
	return convert.NewPipeline(log, converters, opts...), nil
}
