package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

const defaultFilePerm os.FileMode = 0644

// ArtifactStoreAdapter reads and writes artifact documents on disk
type ArtifactStoreAdapter struct {
	// beforeRename runs after the temp file is synced; tests use it to
	// interrupt a write.
	beforeRename func(tmpPath string) error
}

// NewArtifactStoreAdapter creates a new artifact store
func NewArtifactStoreAdapter() *ArtifactStoreAdapter {
	return &ArtifactStoreAdapter{}
}

// Load reads and parses the artifact at location
func (s *ArtifactStoreAdapter) Load(_ context.Context, location string) (*domain.Artifact, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s: %w", location, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact, err := domain.ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", location, err)
	}
	return artifact, nil
}

// Save encodes the artifact and atomically replaces the file at location,
// keeping the permissions of the file it replaces.
func (s *ArtifactStoreAdapter) Save(ctx context.Context, location string, artifact *domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := artifact.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	perm := defaultFilePerm
	if info, err := os.Stat(location); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(location), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return atomicWrite(location, data, perm, s.beforeRename)
}

// Reset removes everything under dir and makes sure dir exists
func (s *ArtifactStoreAdapter) Reset(_ context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return os.MkdirAll(dir, 0755)
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactRepository = (*ArtifactStoreAdapter)(nil)
