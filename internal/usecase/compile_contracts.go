package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/trebuchet-org/emerald/internal/domain"
)

// CompileContracts compiles the project sources into fresh artifacts
type CompileContracts struct {
	finder   ArtifactFinder
	compiler ContractCompiler
	store    ArtifactRepository
	progress ProgressSink
}

// NewCompileContracts creates a new CompileContracts use case
func NewCompileContracts(
	finder ArtifactFinder,
	compiler ContractCompiler,
	store ArtifactRepository,
	progress ProgressSink,
) *CompileContracts {
	return &CompileContracts{
		finder:   finder,
		compiler: compiler,
		store:    store,
		progress: progress,
	}
}

// CompileContractsParams contains parameters for compilation
type CompileContractsParams struct {
	SourcesDir   string
	ArtifactsDir string
}

// CompiledArtifact is one artifact written by a compilation
type CompiledArtifact struct {
	ContractName string
	SourcePath   string
	Location     string
}

// CompileContractsResult contains the written artifacts
type CompileContractsResult struct {
	Sources   []string
	Artifacts []CompiledArtifact

	// Abstract names the contracts without creation code
	Abstract []string
}

// Run writes one artifact per deployable contract into a cleared artifacts
// directory. Nothing is cleared unless every artifact could be built, and
// previous deployment records are not carried over. Interfaces and abstract
// contracts have no creation code and get no artifact.
func (uc *CompileContracts) Run(ctx context.Context, params CompileContractsParams) (*CompileContractsResult, error) {
	sources, err := uc.finder.Sources(ctx, params.SourcesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources in %s: %w", params.SourcesDir, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no solidity sources found in %s", params.SourcesDir)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "compiling",
		Total:   len(sources),
		Message: fmt.Sprintf("Compiling %d source file(s)", len(sources)),
		Spinner: true,
	})

	contracts, err := uc.compiler.Compile(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("compilation failed: %w", err)
	}

	result := &CompileContractsResult{Sources: sources}
	artifacts := make([]*domain.Artifact, 0, len(contracts))
	seen := make(map[string]string, len(contracts))
	for _, contract := range contracts {
		if prev, ok := seen[contract.Name]; ok {
			return nil, fmt.Errorf("contract %s is defined in both %s and %s", contract.Name, prev, contract.SourcePath)
		}
		seen[contract.Name] = contract.SourcePath

		artifact, err := domain.NewArtifact(contract)
		if err != nil {
			return nil, fmt.Errorf("failed to build artifact for %s: %w", contract.Name, err)
		}
		if !artifact.HasBytecode() {
			result.Abstract = append(result.Abstract, contract.Name)
			continue
		}

		artifacts = append(artifacts, artifact)
		result.Artifacts = append(result.Artifacts, CompiledArtifact{
			ContractName: contract.Name,
			SourcePath:   contract.SourcePath,
			Location:     filepath.Join(params.ArtifactsDir, contract.Name+".json"),
		})
	}

	if err := uc.store.Reset(ctx, params.ArtifactsDir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", params.ArtifactsDir, err)
	}

	for i, artifact := range artifacts {
		location := result.Artifacts[i].Location
		if err := uc.store.Save(ctx, location, artifact); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", location, err)
		}

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "written",
			Current: i + 1,
			Total:   len(artifacts),
			Message: location,
		})
	}

	return result, nil
}
