package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GraceHermine/GenerateurDocument/internal/docx"
)

// sampleTemplate builds a demonstration invoice template. Some placeholders
// are split across runs the way word processors store edited text.
func sampleTemplate() ([]byte, error) {
	body := docx.ParagraphXML("Invoice {{invoice_number}}") +
		docx.ParagraphXML("Date: {{issue", "_date}}") +
		docx.ParagraphXML("Billed to: {client_name}") +
		docx.ParagraphXML("Contact: {{client", "_email}}") +
		docx.TableXML([][]string{
			{"Description", "Amount"},
			{"{{description}}", "{{total_amount}} EUR"},
		}) +
		docx.ParagraphXML("Payment due within 30 days.")
	return docx.Compose(body)
}

func sampleCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a demonstration template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := sampleTemplate()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "sample.docx", "output file")
	return cmd
}
