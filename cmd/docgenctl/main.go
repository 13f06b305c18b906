// Command docgenctl is the operator CLI of the document generator.
//
// Offline commands (templates extract, render, sample) work on local files
// only. The others read the server configuration (CONFIG_PATH, .env and
// environment) and talk to the database directly.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	json       bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "docgenctl",
		Short:         "Operate the document generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				return os.Setenv("CONFIG_PATH", opts.configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "output JSON")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (overrides CONFIG_PATH)")

	root.AddCommand(migrateCmd(opts))
	root.AddCommand(templatesCmd(opts))
	root.AddCommand(documentsCmd(opts))
	root.AddCommand(renderCmd(opts))
	root.AddCommand(sampleCmd())
	root.AddCommand(tokenCmd())
	return root
}
