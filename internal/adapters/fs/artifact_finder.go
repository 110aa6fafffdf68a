package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// ArtifactFinderAdapter discovers artifacts and sources by walking the file system
type ArtifactFinderAdapter struct{}

// NewArtifactFinderAdapter creates a new artifact finder
func NewArtifactFinderAdapter() *ArtifactFinderAdapter {
	return &ArtifactFinderAdapter{}
}

// Find returns every *.json file under dir, sorted. A non-empty query keeps
// only files whose name without extension fuzzy-matches it.
func (f *ArtifactFinderAdapter) Find(ctx context.Context, dir string, query string) ([]string, error) {
	paths, err := walkExt(ctx, dir, ".json")
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return paths, nil
	}

	names := lo.Map(paths, func(p string, _ int) string {
		return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	})
	matched := lo.Map(fuzzy.Find(query, names), func(m fuzzy.Match, _ int) int {
		return m.Index
	})
	// keep discovery order rather than match score
	sort.Ints(matched)

	return lo.Map(matched, func(i int, _ int) string {
		return paths[i]
	}), nil
}

// Sources returns every *.sol file under dir, sorted
func (f *ArtifactFinderAdapter) Sources(ctx context.Context, dir string) ([]string, error) {
	return walkExt(ctx, dir, ".sol")
}

func walkExt(ctx context.Context, dir, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			// a missing root holds nothing
			if path == dir && errors.Is(err, iofs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactFinder = (*ArtifactFinderAdapter)(nil)
