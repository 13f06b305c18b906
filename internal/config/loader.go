package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "./config.yaml"

// Path returns the configuration file to read and whether it was named
// explicitly through CONFIG_PATH.
func Path() (string, bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load reads the configuration with ENV > YAML > env-default precedence.
// A missing default file means ENV and defaults only; a missing explicit
// CONFIG_PATH is an error. Relative storage and temp directories written in
// the YAML file are resolved against the file's directory, so a service
// started from another working directory still finds its blobs.
func Load() (*Config, error) {
	var cfg Config
	if err := ReadInto(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// ReadInto fills v, the whole Config or a struct holding some of its
// sections, without validating it.
func ReadInto(v any) error {
	path, explicit := Path()
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(v); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
		return nil
	}

	if err := cleanenv.ReadConfig(path, v); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if cfg, ok := v.(*Config); ok {
		cfg.resolvePaths(filepath.Dir(path))
	}
	return nil
}

// resolvePaths anchors relative directories from the file at dir. Values
// supplied through the environment stay relative to the working directory.
func (c *Config) resolvePaths(dir string) {
	anchor := func(p *string, env string) {
		if *p == "" || filepath.IsAbs(*p) {
			return
		}
		if _, set := os.LookupEnv(env); set {
			return
		}
		*p = filepath.Join(dir, *p)
	}
	anchor(&c.Storage.Root, "STORAGE_ROOT")
	anchor(&c.Conversion.TempDir, "CONVERSION_TEMP_DIR")
}
