package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// maxOutput caps the captured converter output quoted in error messages.
const maxOutput = 512

// CommandConverter runs an external program that converts a .docx file.
type CommandConverter struct {
	name     string
	bin      string
	args     func(src, outDir string) []string
	output   func(src, outDir string) string
	lookPath func(string) (string, error)
}

// NewCommandConverter creates a converter for an arbitrary program. args
// builds the command line and output returns where the program writes its
// result.
func NewCommandConverter(name, bin string, args func(src, outDir string) []string, output func(src, outDir string) string) *CommandConverter {
	return &CommandConverter{
		name:     name,
		bin:      bin,
		args:     args,
		output:   output,
		lookPath: exec.LookPath,
	}
}

// NewDocx2PDF returns the native converter: `docx2pdf <src> <out.pdf>`.
func NewDocx2PDF(bin string) *CommandConverter {
	if bin == "" {
		bin = "docx2pdf"
	}
	return NewCommandConverter("docx2pdf", bin,
		func(src, outDir string) []string {
			return []string{src, pdfPath(src, outDir)}
		},
		pdfPath,
	)
}

// NewSoffice returns the headless LibreOffice converter. Each invocation gets
// its own user profile so concurrent conversions do not contend for a lock.
func NewSoffice(bin string) *CommandConverter {
	if bin == "" {
		bin = "soffice"
	}
	return NewCommandConverter("soffice", bin,
		func(src, outDir string) []string {
			profile := "file://" + filepath.ToSlash(filepath.Join(outDir, "profile"))
			return []string{
				"-env:UserInstallation=" + profile,
				"--headless", "--norestore",
				"--convert-to", "pdf",
				"--outdir", outDir,
				src,
			}
		},
		pdfPath,
	)
}

func pdfPath(src, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, base+".pdf")
}

// Name implements Converter.
func (c *CommandConverter) Name() string { return c.name }

// Available reports whether the program can be found.
func (c *CommandConverter) Available(context.Context) bool {
	_, err := c.lookPath(c.bin)
	return err == nil
}

// Convert runs the program and waits for it, killing it when ctx expires.
func (c *CommandConverter) Convert(ctx context.Context, src, outDir string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, c.args(src, outDir)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Children of the converter may keep the pipes open after it is killed.
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", c.bin, ctxErr)
		}
		return "", fmt.Errorf("%s: %w%s", c.bin, err, quoteOutput(out.Bytes()))
	}

	target := c.output(src, outDir)
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: no output produced%s", c.bin, quoteOutput(out.Bytes()))
		}
		return "", fmt.Errorf("%s: stat output: %w", c.bin, err)
	}
	return target, nil
}

func quoteOutput(b []byte) string {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return ""
	}
	if len(s) > maxOutput {
		s = s[:maxOutput] + "..."
	}
	return ": " + s
}
