package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GraceHermine/GenerateurDocument/internal/app"
)

func templatesVersionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <template-id>",
		Short: "List the versions of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid template id: %w", err)
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				versions, err := c.Templates.ListVersions(ctx, id)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), versions)
				}
				tw := newTable(cmd, "Version", "ID", "Active", "Source", "Created", "Change log")
				for _, v := range versions {
					active := ""
					if v.IsActive {
						active = "*"
					}
					tw.AppendRow([]any{v.VersionNumber, v.ID, active, v.SourceFilename, v.CreatedAt.Format(time.DateTime), v.ChangeLog})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func templatesActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <template-id> <version>",
		Short: "Make a version the active one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid template id: %w", err)
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version number %q", args[1])
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				v, err := c.Templates.ActivateVersion(ctx, id, number)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "activated version %d (%s)\n", v.VersionNumber, v.ID)
				return nil
			})
		},
	}
}

func templatesQuestionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "questions <version-id>",
		Short: "Show the questions derived for a template version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid version id: %w", err)
			}
			return withComponents(cmd.Context(), cmd.ErrOrStderr(), nil, func(ctx context.Context, c *app.Components) error {
				version, err := c.Templates.GetVersion(ctx, id)
				if err != nil {
					return err
				}
				forms, err := c.Templates.GetForms(ctx, id)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), forms)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d of %s\n", version.VersionNumber, version.SourceFilename)
				tw := newTable(cmd, "#", "Label", "Variable", "Type", "Required", "Choices")
				for _, f := range forms {
					for _, q := range f.Questions {
						tw.AppendRow([]any{q.Position, q.Label, q.Variable, q.Type, q.Required, strings.Join(q.Choices, ", ")})
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}
