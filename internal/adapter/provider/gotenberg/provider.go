// Package gotenberg converts .docx files to PDF through a Gotenberg service
// (LibreOffice route).
package gotenberg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	convertPath = "/forms/libreoffice/convert"
	healthPath  = "/health"
	// maxErrorBody caps the response body quoted in errors.
	maxErrorBody = 512
)

// Provider is a convert.Converter backed by a Gotenberg HTTP service.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider for the Gotenberg instance at baseURL.
// The per-request deadline comes from the caller's context.
func NewProvider(baseURL string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        logger.With("adapter", "gotenberg"),
	}
}

// NewProviderWithClient creates a Provider with a custom HTTP client (for testing).
func NewProviderWithClient(baseURL string, client *http.Client, logger *slog.Logger) *Provider {
	p := NewProvider(baseURL, logger)
	p.httpClient = client
	return p
}

// Name implements convert.Converter.
func (p *Provider) Name() string { return "gotenberg" }

// Available reports whether the service answers its health check.
func (p *Provider) Available(ctx context.Context) bool {
	if p.baseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.DebugContext(ctx, "gotenberg health check failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Convert uploads src and writes the returned PDF into outDir.
func (p *Provider) Convert(ctx context.Context, src, outDir string) (string, error) {
	body, contentType, err := buildForm(src)
	if err != nil {
		return "", fmt.Errorf("gotenberg: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+convertPath, body)
	if err != nil {
		return "", fmt.Errorf("gotenberg: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	p.log.DebugContext(ctx, "gotenberg request", slog.String("file", filepath.Base(src)))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gotenberg: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("gotenberg: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	target := filepath.Join(outDir, base+".pdf")

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("gotenberg: create output: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("gotenberg: write output: %w", err)
	}

	p.log.DebugContext(ctx, "gotenberg response",
		slog.Int("status", resp.StatusCode),
		slog.Int64("size", n),
	)

	return target, nil
}

// buildForm encodes src as the "files" field of a multipart form.
func buildForm(src string) (io.Reader, string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filepath.Base(src))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
