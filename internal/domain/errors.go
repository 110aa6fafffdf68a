package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidChainID is returned when a chain ID is invalid
	ErrInvalidChainID = errors.New("invalid chain ID")

	// ErrNetworkMismatch is returned when the endpoint reports a different chain than configured
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrEmptyBytecode is returned when an artifact has no creation code to deploy
	ErrEmptyBytecode = errors.New("artifact has no bytecode")

	// ErrReverted is returned when a deployment transaction was mined but failed
	ErrReverted = errors.New("transaction reverted")
)

// Deployment run failures. A *DeployError matches exactly one of these with errors.Is.
var (
	ErrRead         = errors.New("read error")
	ErrSubmit       = errors.New("submit error")
	ErrConfirmation = errors.New("confirmation error")
	ErrWrite        = errors.New("write error")
	ErrCancelled    = errors.New("cancelled")
)

// DeployErrorKind classifies the step of a deployment run that failed.
type DeployErrorKind int

const (
	ReadError DeployErrorKind = iota + 1
	SubmitError
	ConfirmationError
	WriteError
	Cancelled
)

func (k DeployErrorKind) sentinel() error {
	switch k {
	case ReadError:
		return ErrRead
	case SubmitError:
		return ErrSubmit
	case ConfirmationError:
		return ErrConfirmation
	case WriteError:
		return ErrWrite
	case Cancelled:
		return ErrCancelled
	default:
		return nil
	}
}

func (k DeployErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("DeployErrorKind(%d)", int(k))
}

// DeployError reports the first failure of a deployment run: which artifact,
// at which step, and from which state it failed.
type DeployError struct {
	Location string
	Index    int
	Kind     DeployErrorKind
	From     ArtifactState
	Err      error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("%s: %s while %s: %v", e.Location, e.Kind, e.From, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind, so callers can write
// errors.Is(err, domain.ErrSubmit).
func (e *DeployError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// UnknownNetworkErr is returned when a network name is not configured.
type UnknownNetworkErr struct {
	Name      string
	Available []string
}

func (e UnknownNetworkErr) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("network '%s' is not configured", e.Name)
	}
	names := make([]string, len(e.Available))
	copy(names, e.Available)
	sort.Strings(names)
	return fmt.Sprintf("network '%s' is not configured (available: %s)", e.Name, strings.Join(names, ", "))
}
