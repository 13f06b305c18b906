package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GraceHermine/GenerateurDocument/internal/app"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/extract"
	"github.com/GraceHermine/GenerateurDocument/internal/service/template"
)

func templatesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and import templates",
	}
	cmd.AddCommand(
		templatesExtractCmd(opts),
		templatesImportCmd(opts),
		templatesListCmd(opts),
		templatesVersionsCmd(opts),
		templatesActivateCmd(),
		templatesQuestionsCmd(opts),
	)
	return cmd
}

type extractedField struct {
	Label    string `json:"label"`
	Variable string `json:"variable"`
	Type     string `json:"type"`
}

func templatesExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.docx>",
		Short: "Print the placeholders of a template and the form derived from them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			vars := extract.FromBytes(data, discardLogger())
			form := template.BuildForm(filepath.Base(args[0]), uuid.Nil, vars, time.Now())

			fields := make([]extractedField, len(form.Questions))
			for i, q := range form.Questions {
				fields[i] = extractedField{Label: q.Label, Variable: q.Variable, Type: q.Type.String()}
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), fields)
			}
			if len(fields) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no placeholders found")
				return nil
			}
			tw := newTable(cmd, "#", "Label", "Variable", "Type")
			for i, f := range fields {
				tw.AppendRow([]any{i + 1, f.Label, f.Variable, f.Type})
			}
			tw.Render()
			return nil
		},
	}
}

// manifest lists templates to import. Source paths are relative to the
// manifest file.
type manifest struct {
	Templates []manifestTemplate `yaml:"templates"`
}

type manifestTemplate struct {
	// TemplateID adds a version to an existing template instead of
	// creating one.
	TemplateID  string                   `yaml:"template_id"`
	Title       string                   `yaml:"title"`
	Description string                   `yaml:"description"`
	Category    string                   `yaml:"category"`
	Source      string                   `yaml:"source"`
	ChangeLog   string                   `yaml:"change_log"`
	Activate    bool                     `yaml:"activate"`
	Schema      map[string]manifestField `yaml:"schema"`
}

type manifestField struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	Label    string `yaml:"label"`
}

func readManifest(path string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, t := range m.Templates {
		if t.Source == "" {
			return m, fmt.Errorf("manifest entry %d: source is required", i+1)
		}
		if !filepath.IsAbs(t.Source) {
			m.Templates[i].Source = filepath.Join(dir, t.Source)
		}
	}
	return m, nil
}

func (t manifestTemplate) schema() domain.InputSchema {
	if len(t.Schema) == 0 {
		return nil
	}
	s := make(domain.InputSchema, len(t.Schema))
	for k, f := range t.Schema {
		ft := domain.FieldType(f.Type)
		if f.Type == "" {
			ft = domain.FieldTypeText
		}
		s[k] = domain.SchemaField{Type: ft, Required: f.Required, Label: f.Label}
	}
	return s
}

type importedTemplate struct {
	TemplateID uuid.UUID `json:"template_id"`
	Title      string    `json:"title"`
	Version    int       `json:"version"`
	Questions  int       `json:"questions"`
}

type templateCreator interface {
	CreateTemplate(ctx context.Context, input template.CreateTemplateInput) (*template.CreateResult, error)
	CreateVersion(ctx context.Context, input template.CreateVersionInput) (*template.CreateResult, error)
}

// importManifest creates every manifest entry in order and stops at the
// first failure.
func importManifest(ctx context.Context, svc templateCreator, m manifest) ([]importedTemplate, error) {
	out := make([]importedTemplate, 0, len(m.Templates))
	for i, t := range m.Templates {
		source, err := os.ReadFile(t.Source)
		if err != nil {
			return out, fmt.Errorf("manifest entry %d: %w", i+1, err)
		}

		var result *template.CreateResult
		if t.TemplateID != "" {
			id, perr := uuid.Parse(t.TemplateID)
			if perr != nil {
				return out, fmt.Errorf("manifest entry %d: template_id: %w", i+1, perr)
			}
			result, err = svc.CreateVersion(ctx, template.CreateVersionInput{
				TemplateID:     id,
				SourceFilename: filepath.Base(t.Source),
				Source:         source,
				InputSchema:    t.schema(),
				ChangeLog:      t.ChangeLog,
				Activate:       t.Activate,
			})
		} else {
			result, err = svc.CreateTemplate(ctx, template.CreateTemplateInput{
				Title:          t.Title,
				Description:    t.Description,
				Category:       t.Category,
				SourceFilename: filepath.Base(t.Source),
				Source:         source,
				InputSchema:    t.schema(),
				ChangeLog:      t.ChangeLog,
			})
		}
		if err != nil {
			return out, fmt.Errorf("manifest entry %d (%s): %w", i+1, filepath.Base(t.Source), err)
		}

		out = append(out, importedTemplate{
			TemplateID: result.Template.ID,
			Title:      result.Template.Title,
			Version:    result.Version.VersionNumber,
			Questions:  len(result.Form.Questions),
		})
	}
	return out, nil
}

func templatesImportCmd(opts *rootOptions) *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create templates and versions listed in a YAML manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readManifest(manifestPath)
			if err != nil {
				return err
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				imported, err := importManifest(ctx, c.Templates, m)
				if opts.json {
					if perr := printJSON(cmd.OutOrStdout(), imported); perr != nil {
						return perr
					}
				} else if len(imported) > 0 {
					tw := newTable(cmd, "Template", "Title", "Version", "Questions")
					for _, t := range imported {
						tw.AppendRow([]any{t.TemplateID, t.Title, t.Version, t.Questions})
					}
					tw.Render()
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to the YAML manifest")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func templatesListCmd(opts *rootOptions) *cobra.Command {
	var search, category string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				input := template.ListTemplatesInput{Limit: limit}
				if search != "" {
					input.Search = &search
				}
				if category != "" {
					input.Category = &category
				}
				result, err := c.Templates.ListTemplates(ctx, input)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), result)
				}
				tw := newTable(cmd, "ID", "Title", "Category", "Updated")
				for _, t := range result.Templates {
					tw.AppendRow([]any{t.ID, t.Title, t.Category, t.UpdatedAt.Format(time.DateTime)})
				}
				tw.AppendFooter([]any{"", "", "Total", result.Total})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "title search")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	return cmd
}
