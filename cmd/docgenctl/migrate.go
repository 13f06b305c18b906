package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(migrateUpCmd(opts), migrateStatusCmd(opts))
	return cmd
}

func databaseDSN() (string, error) {
	var section struct {
		Database config.DatabaseConfig `yaml:"database"`
	}
	if err := loadPartial(&section); err != nil {
		return "", err
	}
	return section.Database.DSN, nil
}

func migrateUpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseDSN()
			if err != nil {
				return err
			}
			db, err := postgres.OpenSQL(dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.MigrateUp(cmd.Context(), db)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), map[string]any{"applied": applied})
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d\n", v)
			}
			return nil
		},
	}
}

func migrateStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseDSN()
			if err != nil {
				return err
			}
			db, err := postgres.OpenSQL(dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			states, err := postgres.MigrationStatus(cmd.Context(), db)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), states)
			}
			tw := newTable(cmd, "Version", "Source", "Applied")
			for _, s := range states {
				tw.AppendRow([]any{s.Version, s.Source, s.Applied})
			}
			tw.Render()
			return nil
		},
	}
}
