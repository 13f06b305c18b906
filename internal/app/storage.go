package app

import (
	"fmt"
	"log/slog"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/storage/blob"
	"github.com/GraceHermine/GenerateurDocument/internal/config"
)

// NewBlobStore opens the configured blob backend.
func NewBlobStore(cfg config.StorageConfig, log *slog.Logger) (*blob.Store, error) {
	switch cfg.Backend {
	case "memory":
		return blob.NewMemory(log), nil
	case "os":
		store, err := blob.NewOS(cfg.Root, log)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
