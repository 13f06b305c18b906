package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GraceHermine/GenerateurDocument/internal/app"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/substitute"
)

// readData loads substitution values from a JSON or YAML file, chosen by
// extension.
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		err = dec.Decode(&data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}

func outputFormat(flag, out string) (domain.OutputFormat, error) {
	if flag == "" {
		flag = strings.TrimPrefix(filepath.Ext(out), ".")
	}
	f, ok := domain.ParseOutputFormat(flag)
	if !ok {
		return "", fmt.Errorf("format must be docx or pdf (got %q)", flag)
	}
	return f, nil
}

func renderCmd(opts *rootOptions) *cobra.Command {
	var dataPath, out, format string
	cmd := &cobra.Command{
		Use:   "render <template.docx>",
		Short: "Fill a template with local data and write the result",
		Long: "Fill a template with values from a JSON or YAML file. PDF output uses\n" +
			"the converters configured in conversion.backends.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, out)
			if err != nil {
				return err
			}

			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := docx.Open(source)
			if err != nil {
				return err
			}

			repl := substitute.NewReplacements()
			if dataPath != "" {
				data, err := readData(dataPath)
				if err != nil {
					return err
				}
				repl = substitute.FromData(data)
			}
			replaced := substitute.Apply(doc, repl)

			var section struct {
				Conversion config.ConversionConfig `yaml:"conversion"`
			}
			if err := loadPartial(&section); err != nil {
				return err
			}
			pipeline, err := app.NewPipeline(section.Conversion, app.NewLoggerTo(cmd.ErrOrStderr(), config.LogConfig{Level: "warn", Format: "text"}), nil)
			if err != nil {
				return err
			}

			result, err := pipeline.Render(cmd.Context(), doc, f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, result.Data, 0o644); err != nil {
				return err
			}

			if opts.json {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"out": out, "format": f, "paragraphs_changed": replaced, "bytes": len(result.Data), "converter": result.Converter,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes, %d paragraphs changed)\n", out, f, len(result.Data), replaced)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "JSON or YAML file with placeholder values")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().StringVar(&format, "format", "", "docx or pdf (default: from --out extension)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
