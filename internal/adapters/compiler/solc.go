package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// SolcAdapter compiles sources with the solc binary
type SolcAdapter struct {
	log         *slog.Logger
	solc        string
	projectRoot string
}

// NewSolcAdapter creates a new solc adapter
func NewSolcAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *SolcAdapter {
	return &SolcAdapter{
		log:         log.With("component", "SolcAdapter"),
		solc:        cfg.Compiler.Solc,
		projectRoot: cfg.ProjectRoot,
	}
}

// Compile runs solc --combined-json abi,bin over sources
func (s *SolcAdapter) Compile(ctx context.Context, sources []string) ([]*domain.CompiledContract, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to compile")
	}

	start := time.Now()
	args := append([]string{"--combined-json", "abi,bin"}, sources...)
	s.log.Debug("running solc", "solc", s.solc, "sources", len(sources))

	cmd := exec.CommandContext(ctx, s.solc, args...)
	cmd.Dir = s.projectRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\nOutput: %s", s.solc, err, strings.TrimSpace(stderr.String()))
	}

	contracts, err := parseCombinedJSON(stdout.Bytes(), s.projectRoot)
	if err != nil {
		return nil, err
	}

	s.log.Debug("solc completed", "contracts", len(contracts), "duration", time.Since(start))
	return contracts, nil
}

// combinedOutput is the document printed by solc --combined-json
type combinedOutput struct {
	Contracts map[string]struct {
		ABI json.RawMessage `json:"abi"`
		Bin string          `json:"bin"`
	} `json:"contracts"`
	Version string `json:"version"`
}

// parseCombinedJSON splits solc output into one contract per "path:Name" key,
// ordered by source path and name.
func parseCombinedJSON(data []byte, projectRoot string) ([]*domain.CompiledContract, error) {
	var out combinedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}

	contracts := make([]*domain.CompiledContract, 0, len(out.Contracts))
	for key, c := range out.Contracts {
		idx := strings.LastIndex(key, ":")
		if idx <= 0 || idx == len(key)-1 {
			return nil, fmt.Errorf("unexpected contract key %q in solc output", key)
		}

		abi, err := normalizeABI(c.ABI)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", key, err)
		}

		contracts = append(contracts, &domain.CompiledContract{
			Name:       key[idx+1:],
			SourcePath: sourcePath(key[:idx], projectRoot),
			ABI:        abi,
			Bytecode:   "0x" + strings.TrimPrefix(c.Bin, "0x"),
			Compiler: domain.CompilerInfo{
				Name:    "solc",
				Version: out.Version,
			},
		})
	}

	sort.Slice(contracts, func(i, j int) bool {
		if contracts[i].SourcePath != contracts[j].SourcePath {
			return contracts[i].SourcePath < contracts[j].SourcePath
		}
		return contracts[i].Name < contracts[j].Name
	})

	return contracts, nil
}

// normalizeABI accepts both the array form and the JSON-encoded string form
// older solc releases print.
func normalizeABI(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("[]"), nil
	}
	if raw[0] != '"' {
		return raw, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}
	if !json.Valid([]byte(encoded)) {
		return nil, fmt.Errorf("invalid abi: not JSON")
	}
	return json.RawMessage(encoded), nil
}

func sourcePath(path, projectRoot string) string {
	if filepath.IsAbs(path) && projectRoot != "" {
		if rel, err := filepath.Rel(projectRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// Ensure the adapter implements the interface
var _ usecase.ContractCompiler = (*SolcAdapter)(nil)
