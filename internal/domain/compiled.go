package domain

import (
	"encoding/json"
	"fmt"
)

const (
	fieldABI        = "abi"
	fieldSourcePath = "sourcePath"
	fieldCompiler   = "compiler"
)

// CompiledContract is one contract of a compiler run.
type CompiledContract struct {
	Name       string
	SourcePath string
	ABI        json.RawMessage
	// Bytecode is the 0x-prefixed creation code
	Bytecode string
	Compiler CompilerInfo
}

// CompilerInfo identifies the compiler that produced an artifact.
type CompilerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewArtifact builds a fresh artifact document with no deployments.
func NewArtifact(c *CompiledContract) (*Artifact, error) {
	doc := newJSONObject()

	abi := c.ABI
	if len(abi) == 0 {
		abi = json.RawMessage("[]")
	}

	fields := []struct {
		key   string
		value any
	}{
		{fieldContractName, c.Name},
		{fieldABI, abi},
		{fieldBytecode, c.Bytecode},
		{fieldSourcePath, c.SourcePath},
		{fieldCompiler, c.Compiler},
	}
	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.key, err)
		}
		doc.set(f.key, raw)
	}
	doc.set(fieldNetworks, json.RawMessage("{}"))

	return &Artifact{
		ContractName: c.Name,
		Bytecode:     c.Bytecode,
		doc:          doc,
		networks:     make(map[string]*DeploymentRecord),
	}, nil
}
