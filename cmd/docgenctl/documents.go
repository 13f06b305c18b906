package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GraceHermine/GenerateurDocument/internal/app"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
)

func documentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect and retry generated documents",
	}
	cmd.AddCommand(documentsListCmd(opts), documentsShowCmd(opts), documentsRetryCmd(opts))
	return cmd
}

func documentsListCmd(opts *rootOptions) *cobra.Command {
	var status, templateID string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := document.ListInput{Limit: limit, Offset: offset}
			if status != "" {
				s := domain.DocumentStatus(strings.ToUpper(status))
				input.Status = &s
			}
			if templateID != "" {
				id, err := uuid.Parse(templateID)
				if err != nil {
					return fmt.Errorf("--template: %w", err)
				}
				input.TemplateID = &id
			}

			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				result, err := c.Generator.List(ctx, input)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), result)
				}
				tw := newTable(cmd, "ID", "Status", "Format", "Attempt", "Created", "Error")
				for _, d := range result.Documents {
					tw.AppendRow([]any{d.ID, d.Status, d.Format, d.Attempt, d.CreatedAt.Format(time.DateTime), deref(d.ErrorLog)})
				}
				tw.AppendFooter([]any{"", "", "", "", "Total", result.Total})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter (PENDING, PROCESSING, COMPLETED, FAILED)")
	cmd.Flags().StringVar(&templateID, "template", "", "template id filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func documentsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document and its audit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				status, err := c.Generator.Status(ctx, id)
				if err != nil {
					return err
				}
				history, err := c.Generator.History(ctx, id)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), map[string]any{"document": status.Document, "audit": history})
				}

				d := status.Document
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\nStatus:   %s (attempt %d)\nFormat:   %s\nFilename: %s\n",
					d.ID, d.Status, d.Attempt, d.Format, deref(d.Filename))
				if d.ErrorLog != nil {
					fmt.Fprintf(out, "Error:    %s\n", *d.ErrorLog)
				}

				tw := newTable(cmd, "When", "Action", "Actor", "IP")
				for _, e := range history {
					actor := ""
					if e.ActorID != nil {
						actor = e.ActorID.String()
					}
					tw.AppendRow([]any{e.CreatedAt.Format(time.DateTime), e.Action, actor, deref(e.IP)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func documentsRetryCmd(opts *rootOptions) *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Move a FAILED document back to PENDING",
		Long: "Move a FAILED document back to PENDING. Without --inline the document\n" +
			"is picked up by the server's recovery loop; with --inline it is generated\n" +
			"by this process.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			tune := func(cfg *config.Config) {
				if inline {
					cfg.Generation.Mode = config.ModeSync
				}
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), tune, func(ctx context.Context, c *app.Components) error {
				result, err := c.Generator.Retry(ctx, id)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), result.Document)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (attempt %d)\n", result.Document.ID, result.Document.Status, result.Document.Attempt)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "generate the document in this process")
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
