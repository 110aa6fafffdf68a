package fs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/usecase"
	"gopkg.in/yaml.v3"
)

// planFile is the YAML layout of a deployment plan:
//
//	network: mordor
//	artifacts:
//	  - build/contracts/Registry.json
//	  - build/contracts/Token.json
type planFile struct {
	Network   string   `yaml:"network"`
	Artifacts []string `yaml:"artifacts"`
}

// PlanLoaderAdapter reads deployment plans from YAML files
type PlanLoaderAdapter struct{}

// NewPlanLoaderAdapter creates a new plan loader
func NewPlanLoaderAdapter() *PlanLoaderAdapter {
	return &PlanLoaderAdapter{}
}

// LoadPlan parses the plan at path. Relative artifact paths are resolved
// against the directory of the plan file.
func (l *PlanLoaderAdapter) LoadPlan(_ context.Context, path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var raw planFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	plan := &domain.Plan{
		Path:      path,
		Network:   strings.TrimSpace(raw.Network),
		Artifacts: make([]string, 0, len(raw.Artifacts)),
	}

	seen := make(map[string]bool, len(raw.Artifacts))
	for i, artifact := range raw.Artifacts {
		artifact = strings.TrimSpace(artifact)
		if artifact == "" {
			return nil, fmt.Errorf("plan %s: artifact %d is empty", path, i+1)
		}
		if !filepath.IsAbs(artifact) {
			artifact = filepath.Join(base, artifact)
		}
		if seen[artifact] {
			return nil, fmt.Errorf("plan %s: artifact %s is listed twice", path, artifact)
		}
		seen[artifact] = true
		plan.Artifacts = append(plan.Artifacts, artifact)
	}

	return plan, nil
}

// Ensure the adapter implements the interface
var _ usecase.PlanLoader = (*PlanLoaderAdapter)(nil)
