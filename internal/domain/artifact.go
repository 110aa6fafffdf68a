package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	fieldContractName    = "contractName"
	fieldBytecode        = "bytecode"
	fieldNetworks        = "networks"
	fieldAddress         = "address"
	fieldTransactionHash = "transactionHash"
)

// Artifact is a compiled contract document. Only the fields the deployer
// needs are typed; everything else the compiler produced is carried through
// untouched and in its original order.
type Artifact struct {
	ContractName string
	Bytecode     string

	doc         *jsonObject
	networkKeys []string
	networks    map[string]*DeploymentRecord
}

// ParseArtifact decodes an artifact document.
func ParseArtifact(data []byte) (*Artifact, error) {
	if isNull(data) {
		return nil, fmt.Errorf("invalid artifact document: expected a JSON object")
	}
	doc := newJSONObject()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("invalid artifact document: %w", err)
	}

	a := &Artifact{
		doc:      doc,
		networks: make(map[string]*DeploymentRecord),
	}

	if raw, ok := doc.get(fieldContractName); ok {
		if err := json.Unmarshal(raw, &a.ContractName); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", fieldContractName, err)
		}
	}

	if raw, ok := doc.get(fieldBytecode); ok {
		code, err := decodeBytecode(raw)
		if err != nil {
			return nil, err
		}
		a.Bytecode = code
	}

	if raw, ok := doc.get(fieldNetworks); ok && !isNull(raw) {
		networks := newJSONObject()
		if err := json.Unmarshal(raw, networks); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", fieldNetworks, err)
		}
		for _, key := range networks.keys {
			rec, err := parseDeploymentRecord(networks.values[key])
			if err != nil {
				return nil, fmt.Errorf("invalid %s[%s]: %w", fieldNetworks, key, err)
			}
			a.networkKeys = append(a.networkKeys, key)
			a.networks[key] = rec
		}
	}

	return a, nil
}

// decodeBytecode accepts both the plain string form and the
// {"object": "0x..."} form emitted by newer toolchains.
func decodeBytecode(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return code, nil
	}
	var wrapped struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", fmt.Errorf("invalid %s: expected a hex string or an object with an \"object\" field", fieldBytecode)
	}
	return wrapped.Object, nil
}

// HasBytecode reports whether the artifact carries deployable creation code.
func (a *Artifact) HasBytecode() bool {
	code := strings.TrimPrefix(strings.TrimSpace(a.Bytecode), "0x")
	return code != ""
}

// Network returns the deployment record stored under the given network key.
func (a *Artifact) Network(key string) (*DeploymentRecord, bool) {
	rec, ok := a.networks[key]
	return rec, ok
}

// NetworkKeys returns the network keys in document order.
func (a *Artifact) NetworkKeys() []string {
	return append([]string(nil), a.networkKeys...)
}

// RecordDeployment merges a confirmed deployment into networks[key]. Existing
// fields of the record are kept; address and transaction hash are always set
// together.
func (a *Artifact) RecordDeployment(key, address, txHash string) {
	rec, ok := a.networks[key]
	if !ok {
		rec = &DeploymentRecord{fields: newJSONObject()}
		a.networks[key] = rec
		a.networkKeys = append(a.networkKeys, key)
	}
	rec.Address = address
	rec.TransactionHash = txHash
	rec.null = false
}

// MarshalJSON rebuilds the document with the current deployment records.
func (a *Artifact) MarshalJSON() ([]byte, error) {
	doc := newJSONObject()
	if a.doc != nil {
		doc = a.doc.clone()
	}

	if a.ContractName != "" {
		if _, ok := doc.get(fieldContractName); !ok {
			raw, err := json.Marshal(a.ContractName)
			if err != nil {
				return nil, err
			}
			doc.set(fieldContractName, raw)
		}
	}

	_, hadNetworks := doc.get(fieldNetworks)
	if hadNetworks || len(a.networkKeys) > 0 {
		networks := newJSONObject()
		for _, key := range a.networkKeys {
			raw, err := a.networks[key].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s[%s]: %w", fieldNetworks, key, err)
			}
			networks.set(key, raw)
		}
		raw, err := networks.MarshalJSON()
		if err != nil {
			return nil, err
		}
		doc.set(fieldNetworks, raw)
	}

	return doc.MarshalJSON()
}

// Encode renders the artifact the way compiled artifacts are stored on disk:
// four-space indentation, no HTML escaping.
func (a *Artifact) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ChainKey returns the networks key used for a chain.
func ChainKey(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

// DeploymentRecord is the per-network entry of an artifact. Address and
// TransactionHash are typed; any other field is kept as-is.
type DeploymentRecord struct {
	Address         string
	TransactionHash string

	fields *jsonObject
	// null is set for a record written as JSON null; it stays null until
	// a deployment is recorded into it
	null bool
}

func parseDeploymentRecord(raw json.RawMessage) (*DeploymentRecord, error) {
	if isNull(raw) {
		return &DeploymentRecord{fields: newJSONObject(), null: true}, nil
	}
	fields := newJSONObject()
	if err := json.Unmarshal(raw, fields); err != nil {
		return nil, err
	}

	rec := &DeploymentRecord{fields: fields}
	if v, ok := fields.get(fieldAddress); ok && !isNull(v) {
		if err := json.Unmarshal(v, &rec.Address); err != nil {
			return nil, fmt.Errorf("%s must be a string", fieldAddress)
		}
	}
	if v, ok := fields.get(fieldTransactionHash); ok && !isNull(v) {
		if err := json.Unmarshal(v, &rec.TransactionHash); err != nil {
			return nil, fmt.Errorf("%s must be a string", fieldTransactionHash)
		}
	}
	return rec, nil
}

// Deployed reports whether the record holds a completed deployment.
func (r *DeploymentRecord) Deployed() bool {
	return r.Address != "" && r.TransactionHash != ""
}

// Extra returns the fields of the record other than address and
// transactionHash.
func (r *DeploymentRecord) Extra() map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage)
	if r.fields == nil {
		return extra
	}
	for _, key := range r.fields.keys {
		if key == fieldAddress || key == fieldTransactionHash {
			continue
		}
		extra[key] = r.fields.values[key]
	}
	return extra
}

func (r *DeploymentRecord) MarshalJSON() ([]byte, error) {
	if r.null {
		return []byte("null"), nil
	}
	fields := newJSONObject()
	if r.fields != nil {
		fields = r.fields.clone()
	}

	if err := setString(fields, fieldAddress, r.Address); err != nil {
		return nil, err
	}
	if err := setString(fields, fieldTransactionHash, r.TransactionHash); err != nil {
		return nil, err
	}
	return fields.MarshalJSON()
}

// setString stores a non-empty string value; an empty value leaves whatever
// the document already had.
func setString(o *jsonObject, key, value string) error {
	if value == "" {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	o.set(key, raw)
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
