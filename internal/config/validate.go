package config

import (
	"fmt"
	"slices"
	"strings"
)

// KnownBackends lists the converter names accepted in conversion.backends.
var KnownBackends = []string{"docx2pdf", "soffice", "gotenberg"}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Database.StatementTimeout < 0 {
		return fmt.Errorf("database.statement_timeout must not be negative (got %s)", c.Database.StatementTimeout)
	}

	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Generation.validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Conversion.validate(); err != nil {
		return fmt.Errorf("conversion: %w", err)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with / (got %q)", c.Metrics.Path)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case "os":
		if strings.TrimSpace(s.Root) == "" {
			return fmt.Errorf("root is required for the os backend")
		}
	case "memory":
	default:
		return fmt.Errorf("backend must be os or memory (got %q)", s.Backend)
	}
	return nil
}

func (g *GenerationConfig) validate() error {
	if g.Mode != ModeSync && g.Mode != ModeAsync {
		return fmt.Errorf("mode must be %s or %s (got %q)", ModeSync, ModeAsync, g.Mode)
	}
	if g.Mode == ModeAsync {
		if g.Workers < 1 {
			return fmt.Errorf("workers must be > 0 (got %d)", g.Workers)
		}
		if g.QueueSize < 1 {
			return fmt.Errorf("queue_size must be > 0 (got %d)", g.QueueSize)
		}
		if g.RecoverInterval <= 0 {
			return fmt.Errorf("recover_interval must be > 0 (got %v)", g.RecoverInterval)
		}
	}
	if g.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0 (got %d)", g.RateLimit)
	}
	if g.StaleAfter <= 0 {
		return fmt.Errorf("stale_after must be > 0 (got %v)", g.StaleAfter)
	}
	return nil
}

func (c *ConversionConfig) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", c.Timeout)
	}
	for _, b := range c.Backends() {
		if !slices.Contains(KnownBackends, b) {
			return fmt.Errorf("unknown backend %q (known: %s)", b, strings.Join(KnownBackends, ", "))
		}
		if b == "gotenberg" && c.GotenbergURL == "" {
			return fmt.Errorf("gotenberg_url is required when the gotenberg backend is listed")
		}
	}
	return nil
}
