// Package blob stores template sources and generated artifacts as files
// addressed by slash-separated keys.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Store is a key/value blob store on top of an afero filesystem.
type Store struct {
	fs  afero.Fs
	log *slog.Logger
}

// New creates a Store over an arbitrary filesystem.
func New(fsys afero.Fs, logger *slog.Logger) *Store {
	return &Store{fs: fsys, log: logger.With("adapter", "blob")}
}

// NewOS creates a Store rooted at dir on the local filesystem.
func NewOS(dir string, logger *slog.Logger) (*Store, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", dir, err)
	}
	return New(afero.NewBasePathFs(osFs, dir), logger), nil
}

// NewMemory creates an in-memory Store.
func NewMemory(logger *slog.Logger) *Store {
	return New(afero.NewMemMapFs(), logger)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Put stores data under key, replacing any previous content. The write goes
// to a temporary file first so readers never observe a partial blob.
// It returns the key as the retrievable reference.
func (s *Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if dir := path.Dir(key); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("blob %s: mkdir: %w: %v", key, domain.ErrStorage, err)
		}
	}

	tmp := key + ".tmp-" + uuid.NewString()
	if err := afero.WriteFile(s.fs, tmp, data, 0o640); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("blob %s: write: %w: %v", key, domain.ErrStorage, err)
	}
	if err := s.fs.Rename(tmp, key); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("blob %s: rename: %w: %v", key, domain.ErrStorage, err)
	}

	s.log.DebugContext(ctx, "blob stored", slog.String("key", key), slog.Int("size", len(data)))
	return key, nil
}

// Delete removes the blob under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob %s: delete: %w: %v", key, domain.ErrStorage, err)
	}
	s.log.DebugContext(ctx, "blob deleted", slog.String("key", key))
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the blob stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("blob %s: read: %w: %v", key, domain.ErrStorage, err)
	}
	return data, nil
}

// Exists reports whether a blob is stored under key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, key)
	if err != nil {
		return false, fmt.Errorf("blob %s: stat: %w: %v", key, domain.ErrStorage, err)
	}
	return ok, nil
}

// Ping checks that the storage root is reachable.
func (s *Store) Ping(context.Context) error {
	if _, err := s.fs.Stat("."); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: %w: %v", domain.ErrStorage, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// ValidateKey rejects keys that are empty, absolute, not clean or that
// contain characters outside [A-Za-z0-9._/-].
func ValidateKey(key string) error {
	switch {
	case key == "":
		return domain.NewValidationError("key", "required")
	case strings.HasPrefix(key, "/"):
		return domain.NewValidationError("key", "must be relative")
	case path.Clean(key) != key || strings.HasPrefix(key, ".."):
		return domain.NewValidationError("key", "must be a clean path")
	}
	for _, r := range key {
		if !isKeyRune(r) {
			return domain.NewValidationError("key", fmt.Sprintf("invalid character %q", r))
		}
	}
	return nil
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-' || r == '/'
}

// TemplateKey returns the key of a template version source file.
func TemplateKey(templateID uuid.UUID, versionNumber int) string {
	return fmt.Sprintf("templates/%s/v%d.docx", templateID, versionNumber)
}

// DocumentKey returns the key of a generated artifact. The key only depends
// on the document, so a re-run overwrites the previous artifact.
func DocumentKey(documentID uuid.UUID, format domain.OutputFormat) string {
	return "documents/" + documentID.String() + "." + format.Extension()
}
