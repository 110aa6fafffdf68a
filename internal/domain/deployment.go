package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactState is the position of one artifact in a deployment run.
type ArtifactState string

const (
	StatePending   ArtifactState = "pending"
	StateSubmitted ArtifactState = "submitted"
	StateConfirmed ArtifactState = "confirmed"
	StatePersisted ArtifactState = "persisted"
	StateFailed    ArtifactState = "failed"
	StateSkipped   ArtifactState = "skipped"
)

// Terminal reports whether no further transition can happen from s.
func (s ArtifactState) Terminal() bool {
	switch s {
	case StatePersisted, StateFailed, StateSkipped:
		return true
	default:
		return false
	}
}

// PendingTx references a deployment transaction that has been sent but not
// yet confirmed.
type PendingTx struct {
	Hash            string
	ExpectedAddress string
	Sender          string
	Nonce           uint64
	ChainID         uint64
	SubmittedAt     time.Time
}

// Confirmation is the on-chain outcome of a deployment transaction.
type Confirmation struct {
	Address         string
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
}

// ArtifactOutcome summarises what a run did with one artifact.
type ArtifactOutcome struct {
	Location        string
	ContractName    string
	ChainID         uint64
	State           ArtifactState
	Address         string
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
}

// RedeployPolicy decides what happens to an artifact that already has a
// deployment recorded for the target chain.
type RedeployPolicy string

const (
	// RedeployAlways deploys again and overwrites the existing record.
	RedeployAlways RedeployPolicy = "always"
	// RedeploySkip leaves already deployed artifacts untouched.
	RedeploySkip RedeployPolicy = "skip"
	// RedeployPrompt asks the operator for each already deployed artifact.
	RedeployPrompt RedeployPolicy = "prompt"
)

// ParseRedeployPolicy parses a policy name. An empty name means RedeployAlways.
func ParseRedeployPolicy(s string) (RedeployPolicy, error) {
	switch p := RedeployPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return RedeployAlways, nil
	case RedeployAlways, RedeploySkip, RedeployPrompt:
		return p, nil
	default:
		return "", fmt.Errorf("unknown redeploy policy %q (expected always, skip or prompt)", s)
	}
}
