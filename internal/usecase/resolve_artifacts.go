package usecase

import (
	"context"
	"fmt"
	"path/filepath"
)

// ResolveArtifacts turns command input into the ordered artifact locations of a run
type ResolveArtifacts struct {
	finder ArtifactFinder
	plans  PlanLoader
}

// NewResolveArtifacts creates a new ResolveArtifacts use case
func NewResolveArtifacts(finder ArtifactFinder, plans PlanLoader) *ResolveArtifacts {
	return &ResolveArtifacts{
		finder: finder,
		plans:  plans,
	}
}

// ResolveArtifactsParams contains the ways artifacts can be selected.
// Explicit paths win over a plan, a plan wins over discovery.
type ResolveArtifactsParams struct {
	Paths        []string
	PlanPath     string
	ArtifactsDir string
	// Query fuzzy-filters discovered artifacts by file name
	Query string
}

// ResolveArtifactsResult contains the artifact locations in deployment order
type ResolveArtifactsResult struct {
	Locations []string
	// Network requested by the plan, if any
	Network string
}

// Run executes the use case
func (uc *ResolveArtifacts) Run(ctx context.Context, params ResolveArtifactsParams) (*ResolveArtifactsResult, error) {
	if len(params.Paths) > 0 {
		return &ResolveArtifactsResult{Locations: params.Paths}, nil
	}

	if params.PlanPath != "" {
		plan, err := uc.plans.LoadPlan(ctx, params.PlanPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan: %w", err)
		}
		if len(plan.Artifacts) == 0 {
			return nil, fmt.Errorf("plan %s lists no artifacts", params.PlanPath)
		}
		return &ResolveArtifactsResult{
			Locations: plan.Artifacts,
			Network:   plan.Network,
		}, nil
	}

	locations, err := uc.finder.Find(ctx, params.ArtifactsDir, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to discover artifacts in %s: %w", params.ArtifactsDir, err)
	}
	if len(locations) == 0 {
		if params.Query != "" {
			return nil, fmt.Errorf("no artifacts in %s match %q", filepath.Clean(params.ArtifactsDir), params.Query)
		}
		return nil, fmt.Errorf("no artifacts found in %s, run 'emerald compile' first", filepath.Clean(params.ArtifactsDir))
	}

	return &ResolveArtifactsResult{Locations: locations}, nil
}
