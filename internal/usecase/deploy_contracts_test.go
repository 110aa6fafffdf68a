package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// memStore keeps artifact documents in memory, encoded the way they are on disk
type memStore struct {
	mu        sync.Mutex
	docs      map[string][]byte
	saves     []string
	failSave  map[string]error
	afterSave func(location string)
}

func newMemStore(docs map[string]string) *memStore {
	s := &memStore{docs: make(map[string][]byte), failSave: make(map[string]error)}
	for k, v := range docs {
		s.docs[k] = []byte(v)
	}
	return s
}

func (s *memStore) Load(ctx context.Context, location string) (*domain.Artifact, error) {
	s.mu.Lock()
	data, ok := s.docs[location]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("open %s: %w", location, domain.ErrNotFound)
	}
	return domain.ParseArtifact(data)
}

func (s *memStore) Save(ctx context.Context, location string, artifact *domain.Artifact) error {
	if err := s.failSave[location]; err != nil {
		return err
	}
	data, err := artifact.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[location] = data
	s.saves = append(s.saves, location)
	s.mu.Unlock()
	if s.afterSave != nil {
		s.afterSave(location)
	}
	return nil
}

func (s *memStore) Reset(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	for location := range s.docs {
		if strings.HasPrefix(location, prefix) {
			delete(s.docs, location)
		}
	}
	return nil
}

func (s *memStore) doc(location string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.docs[location])
}

type call struct {
	op       string
	contract string
	at       time.Time
}

// fakeDeployer records the order of calls and confirms every transaction
// with a deterministic address unless told otherwise.
type fakeDeployer struct {
	mu          sync.Mutex
	chainID     uint64
	chainErr    error
	submitErr   map[string]error
	confirmErr  map[string]error
	neverMine   bool
	confirmAs   map[string]*domain.Confirmation
	calls       []call
	submitted   int
	closed      bool
	confirmWait time.Duration
}

func newFakeDeployer(chainID uint64) *fakeDeployer {
	return &fakeDeployer{
		chainID:    chainID,
		submitErr:  make(map[string]error),
		confirmErr: make(map[string]error),
	}
}

func (d *fakeDeployer) record(op, contract string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call{op: op, contract: contract, at: time.Now()})
}

func (d *fakeDeployer) ChainID(ctx context.Context) (uint64, error) {
	return d.chainID, d.chainErr
}

func (d *fakeDeployer) Submit(ctx context.Context, artifact *domain.Artifact) (*domain.PendingTx, error) {
	d.record("submit", artifact.ContractName)
	if err := d.submitErr[artifact.ContractName]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.submitted++
	n := d.submitted
	d.mu.Unlock()
	return &domain.PendingTx{
		Hash:            fmt.Sprintf("0xtx%d", n),
		ExpectedAddress: fmt.Sprintf("0xaddr%d", n),
		Nonce:           uint64(n - 1),
		ChainID:         d.chainID,
		SubmittedAt:     time.Now(),
	}, nil
}

func (d *fakeDeployer) AwaitConfirmation(ctx context.Context, tx *domain.PendingTx, timeout time.Duration) (*domain.Confirmation, error) {
	if d.neverMine {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.confirmWait > 0 {
		time.Sleep(d.confirmWait)
	}
	d.mu.Lock()
	contract := ""
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].op == "submit" {
			contract = d.calls[i].contract
			break
		}
	}
	d.mu.Unlock()
	d.record("confirmed", contract)
	if err := d.confirmErr[contract]; err != nil {
		return nil, err
	}
	if c, ok := d.confirmAs[contract]; ok {
		return c, nil
	}
	return &domain.Confirmation{
		Address:         tx.ExpectedAddress,
		TransactionHash: tx.Hash,
		BlockNumber:     uint64(len(d.calls)),
		GasUsed:         21000,
	}, nil
}

func (d *fakeDeployer) Close() {
	d.closed = true
}

type fakeFactory struct {
	deployer *fakeDeployer
	err      error
}

func (f *fakeFactory) Connect(ctx context.Context, network *config.Network) (usecase.Deployer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deployer, nil
}

// MockRedeployConfirmer is a mock implementation of RedeployConfirmer
type MockRedeployConfirmer struct {
	mock.Mock
}

func (m *MockRedeployConfirmer) ConfirmRedeploy(ctx context.Context, location string, chainID uint64, existing *domain.DeploymentRecord) (bool, error) {
	args := m.Called(ctx, location, chainID, existing)
	return args.Bool(0), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(string)  {}
func (m *MockProgressSink) Error(string) {}

func (m *MockProgressSink) stages(location string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		if o, ok := e.Metadata.(domain.ArtifactOutcome); ok && o.Location == location {
			out = append(out, e.Stage)
		}
	}
	return out
}

func artifactDoc(name string) string {
	return fmt.Sprintf(`{
    "contractName": %q,
    "abi": [],
    "bytecode": "0x60006000f3",
    "networks": {}
}`, name)
}

var testNetwork = &config.Network{Name: "dev", RPCURL: "http://127.0.0.1:8545"}

func newDeployContracts(store usecase.ArtifactRepository, d *fakeDeployer, confirmer usecase.RedeployConfirmer, sink usecase.ProgressSink) *usecase.DeployContracts {
	return usecase.NewDeployContracts(store, &fakeFactory{deployer: d}, confirmer, sink, nil)
}

func TestDeployContracts_Sequencing(t *testing.T) {
	locations := []string{"build/contracts/A.json", "build/contracts/B.json", "build/contracts/C.json"}
	store := newMemStore(map[string]string{
		locations[0]: artifactDoc("A"),
		locations[1]: artifactDoc("B"),
		locations[2]: artifactDoc("C"),
	})
	deployer := newFakeDeployer(1337)
	deployer.confirmWait = 2 * time.Millisecond
	sink := &MockProgressSink{}

	uc := newDeployContracts(store, deployer, nil, sink)
	result, err := uc.Run(context.Background(), usecase.DeployContractsParams{
		Locations: locations,
		Network:   testNetwork,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1337), result.ChainID)
	assert.Equal(t, "1337", result.NetworkKey)
	require.Len(t, result.Deployed, 3)
	assert.Empty(t, result.Skipped)
	assert.True(t, deployer.closed)

	// submit i+1 never happens before confirmation of i
	require.Len(t, deployer.calls, 6)
	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, "submit", deployer.calls[2*i].op)
		assert.Equal(t, name, deployer.calls[2*i].contract)
		assert.Equal(t, "confirmed", deployer.calls[2*i+1].op)
		assert.Equal(t, name, deployer.calls[2*i+1].contract)
		if i > 0 {
			assert.False(t, deployer.calls[2*i].at.Before(deployer.calls[2*i-1].at),
				"submission of %s before confirmation of the previous artifact", name)
		}
	}

	// each artifact is written before the next one is submitted
	assert.Equal(t, locations, store.saves)

	for i, loc := range locations {
		a, err := domain.ParseArtifact([]byte(store.doc(loc)))
		require.NoError(t, err)
		rec, ok := a.Network("1337")
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("0xaddr%d", i+1), rec.Address)
		assert.Equal(t, fmt.Sprintf("0xtx%d", i+1), rec.TransactionHash)

		assert.Equal(t, domain.StatePersisted, result.Deployed[i].State)
		assert.Equal(t, rec.Address, result.Deployed[i].Address)
		assert.Equal(t, []string{"pending", "submitted", "confirmed", "persisted"}, sink.stages(loc))
	}
}

func TestDeployContracts_PreservesExistingFields(t *testing.T) {
	location := "build/contracts/Token.json"
	store := newMemStore(map[string]string{
		location: `{
    "contractName": "Token",
    "bytecode": "0x60006000f3",
    "networks": {
        "mainnet": {
            "foo": "bar"
        }
    }
}`,
	})
	deployer := newFakeDeployer(1)
	deployer.confirmAs = map[string]*domain.Confirmation{
		"Token": {Address: "0xABC", TransactionHash: "0xDEF"},
	}

	uc := newDeployContracts(store, deployer, nil, nil)
	_, err := uc.Run(context.Background(), usecase.DeployContractsParams{
		Locations:  []string{location},
		Network:    testNetwork,
		NetworkKey: "mainnet",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"contractName": "Token",
		"bytecode": "0x60006000f3",
		"networks": {
			"mainnet": {"foo": "bar", "address": "0xABC", "transactionHash": "0xDEF"}
		}
	}`, store.doc(location))
}

func TestDeployContracts_FailFast(t *testing.T) {
	locations := []string{"a/One.json", "a/Two.json", "a/Three.json"}
	store := newMemStore(map[string]string{
		locations[0]: artifactDoc("One"),
		locations[1]: artifactDoc("Two"),
		locations[2]: artifactDoc("Three"),
	})
	deployer := newFakeDeployer(63)
	deployer.submitErr["Two"] = errors.New("insufficient funds for gas * price + value")

	uc := newDeployContracts(store, deployer, nil, nil)
	result, err := uc.Run(context.Background(), usecase.DeployContractsParams{
		Locations: locations,
		Network:   testNetwork,
	})
	require.Error(t, err)

	var deployErr *domain.DeployError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, locations[1], deployErr.Location)
	assert.Equal(t, 1, deployErr.Index)
	assert.Equal(t, domain.SubmitError, deployErr.Kind)
	assert.Equal(t, domain.StatePending, deployErr.From)
	assert.ErrorIs(t, err, domain.ErrSubmit)
	assert.Contains(t, err.Error(), "insufficient funds")

	// exactly one artifact persisted, the third untouched
	assert.Equal(t, []string{locations[0]}, store.saves)
	require.Len(t, result.Deployed, 1)
	assert.Contains(t, store.doc(locations[0]), "0xaddr1")
	assert.Equal(t, artifactDoc("Two"), store.doc(locations[1]))
	assert.Equal(t, artifactDoc("Three"), store.doc(locations[2]))

	for _, c := range deployer.calls {
		assert.NotEqual(t, "Three", c.contract)
	}
}

func TestDeployContracts_RedeploysByDefault(t *testing.T) {
	location := "build/contracts/Token.json"
	store := newMemStore(map[string]string{location: artifactDoc("Token")})
	deployer := newFakeDeployer(1337)

	uc := newDeployContracts(store, deployer, nil, nil)
	params := usecase.DeployContractsParams{Locations: []string{location}, Network: testNetwork}

	_, err := uc.Run(context.Background(), params)
	require.NoError(t, err)
	_, err = uc.Run(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 2, deployer.submitted)

	a, err := domain.ParseArtifact([]byte(store.doc(location)))
	require.NoError(t, err)
	rec, _ := a.Network("1337")
	assert.Equal(t, "0xaddr2", rec.Address)
	assert.Equal(t, "0xtx2", rec.TransactionHash)
}

func TestDeployContracts_RedeployPolicies(t *testing.T) {
	deployed := `{
    "contractName": "Token",
    "bytecode": "0x60006000f3",
    "networks": {
        "1337": {
            "address": "0x00000000000000000000000000000000000000aa",
            "transactionHash": "0xold"
        }
    }
}`
	location := "build/contracts/Token.json"

	t.Run("skip leaves the artifact untouched", func(t *testing.T) {
		store := newMemStore(map[string]string{location: deployed})
		deployer := newFakeDeployer(1337)

		result, err := newDeployContracts(store, deployer, nil, nil).Run(context.Background(), usecase.DeployContractsParams{
			Locations: []string{location},
			Network:   testNetwork,
			Redeploy:  domain.RedeploySkip,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{location}, result.Skipped)
		assert.Empty(t, result.Deployed)
		assert.Empty(t, deployer.calls)
		assert.Empty(t, store.saves)
		assert.Equal(t, deployed, store.doc(location))
	})

	t.Run("prompt declined", func(t *testing.T) {
		store := newMemStore(map[string]string{location: deployed})
		deployer := newFakeDeployer(1337)
		confirmer := &MockRedeployConfirmer{}
		confirmer.On("ConfirmRedeploy", mock.Anything, location, uint64(1337), mock.MatchedBy(func(r *domain.DeploymentRecord) bool {
			return r.Address == "0x00000000000000000000000000000000000000aa"
		})).Return(false, nil)

		result, err := newDeployContracts(store, deployer, confirmer, nil).Run(context.Background(), usecase.DeployContractsParams{
			Locations: []string{location},
			Network:   testNetwork,
			Redeploy:  domain.RedeployPrompt,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{location}, result.Skipped)
		assert.Empty(t, deployer.calls)
		confirmer.AssertExpectations(t)
	})

	t.Run("prompt accepted", func(t *testing.T) {
		store := newMemStore(map[string]string{location: deployed})
		deployer := newFakeDeployer(1337)
		confirmer := &MockRedeployConfirmer{}
		confirmer.On("ConfirmRedeploy", mock.Anything, location, uint64(1337), mock.Anything).Return(true, nil)

		result, err := newDeployContracts(store, deployer, confirmer, nil).Run(context.Background(), usecase.DeployContractsParams{
			Locations: []string{location},
			Network:   testNetwork,
			Redeploy:  domain.RedeployPrompt,
		})
		require.NoError(t, err)
		require.Len(t, result.Deployed, 1)
		assert.Contains(t, store.doc(location), "0xaddr1")
	})

	t.Run("prompt in non-interactive mode redeploys", func(t *testing.T) {
		store := newMemStore(map[string]string{location: deployed})
		deployer := newFakeDeployer(1337)
		confirmer := &MockRedeployConfirmer{}

		result, err := newDeployContracts(store, deployer, confirmer, nil).Run(context.Background(), usecase.DeployContractsParams{
			Locations:      []string{location},
			Network:        testNetwork,
			Redeploy:       domain.RedeployPrompt,
			NonInteractive: true,
		})
		require.NoError(t, err)
		require.Len(t, result.Deployed, 1)
		confirmer.AssertNotCalled(t, "ConfirmRedeploy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("prompt aborted", func(t *testing.T) {
		store := newMemStore(map[string]string{location: deployed})
		deployer := newFakeDeployer(1337)
		confirmer := &MockRedeployConfirmer{}
		confirmer.On("ConfirmRedeploy", mock.Anything, location, uint64(1337), mock.Anything).Return(false, errors.New("^C"))

		_, err := newDeployContracts(store, deployer, confirmer, nil).Run(context.Background(), usecase.DeployContractsParams{
			Locations: []string{location},
			Network:   testNetwork,
			Redeploy:  domain.RedeployPrompt,
		})
		assert.ErrorIs(t, err, domain.ErrCancelled)
		assert.Equal(t, deployed, store.doc(location))
	})
}

func TestDeployContracts_ConfirmationTimeout(t *testing.T) {
	locations := []string{"a/Slow.json", "a/Next.json"}
	store := newMemStore(map[string]string{
		locations[0]: artifactDoc("Slow"),
		locations[1]: artifactDoc("Next"),
	})
	deployer := newFakeDeployer(1337)
	deployer.neverMine = true

	uc := newDeployContracts(store, deployer, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Run(context.Background(), usecase.DeployContractsParams{
			Locations:           locations,
			Network:             testNetwork,
			ConfirmationTimeout: 50 * time.Millisecond,
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		var deployErr *domain.DeployError
		require.ErrorAs(t, err, &deployErr)
		assert.Equal(t, domain.ConfirmationError, deployErr.Kind)
		assert.Equal(t, domain.StateSubmitted, deployErr.From)
		assert.Equal(t, locations[0], deployErr.Location)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "not confirmed within 50ms")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the confirmation timeout")
	}

	assert.Empty(t, store.saves)
	assert.Len(t, deployer.calls, 1)
}

func TestDeployContracts_CancelBetweenArtifacts(t *testing.T) {
	locations := []string{"a/First.json", "a/Second.json", "a/Third.json"}
	store := newMemStore(map[string]string{
		locations[0]: artifactDoc("First"),
		locations[1]: artifactDoc("Second"),
		locations[2]: artifactDoc("Third"),
	})
	deployer := newFakeDeployer(1337)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// interrupt arrives while the first artifact is being written
	store.afterSave = func(string) { cancel() }

	uc := newDeployContracts(store, deployer, nil, nil)
	result, err := uc.Run(ctx, usecase.DeployContractsParams{
		Locations: locations,
		Network:   testNetwork,
	})
	require.Error(t, err)

	var deployErr *domain.DeployError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, domain.Cancelled, deployErr.Kind)
	assert.Equal(t, locations[1], deployErr.Location)
	assert.Equal(t, 1, deployErr.Index)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, result.Deployed, 1)
	assert.Equal(t, []string{locations[0]}, store.saves)
	assert.Equal(t, artifactDoc("Second"), store.doc(locations[1]))
}

func TestDeployContracts_CancelledDuringConfirmation(t *testing.T) {
	location := "a/Pending.json"
	store := newMemStore(map[string]string{location: artifactDoc("Pending")})
	deployer := newFakeDeployer(1337)
	deployer.neverMine = true

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newDeployContracts(store, deployer, nil, nil).Run(ctx, usecase.DeployContractsParams{
		Locations:           []string{location},
		Network:             testNetwork,
		ConfirmationTimeout: time.Minute,
	})
	assert.ErrorIs(t, err, domain.ErrConfirmation)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.saves)
}

func TestDeployContracts_StepFailures(t *testing.T) {
	location := "build/contracts/Token.json"

	tests := []struct {
		name     string
		docs     map[string]string
		setup    func(d *fakeDeployer, s *memStore)
		wantKind domain.DeployErrorKind
		wantFrom domain.ArtifactState
		wantIs   error
	}{
		{
			name:     "missing artifact",
			docs:     map[string]string{},
			wantKind: domain.ReadError,
			wantFrom: domain.StatePending,
			wantIs:   domain.ErrNotFound,
		},
		{
			name:     "malformed artifact",
			docs:     map[string]string{location: `{"contractName": "Token",`},
			wantKind: domain.ReadError,
			wantFrom: domain.StatePending,
		},
		{
			name:     "empty bytecode",
			docs:     map[string]string{location: `{"contractName": "Token", "bytecode": "0x"}`},
			wantKind: domain.SubmitError,
			wantFrom: domain.StatePending,
			wantIs:   domain.ErrEmptyBytecode,
		},
		{
			name: "reverted",
			docs: map[string]string{location: artifactDoc("Token")},
			setup: func(d *fakeDeployer, s *memStore) {
				d.confirmErr["Token"] = fmt.Errorf("tx 0xtx1: %w", domain.ErrReverted)
			},
			wantKind: domain.ConfirmationError,
			wantFrom: domain.StateSubmitted,
			wantIs:   domain.ErrReverted,
		},
		{
			name: "write failure",
			docs: map[string]string{location: artifactDoc("Token")},
			setup: func(d *fakeDeployer, s *memStore) {
				s.failSave[location] = errors.New("read-only file system")
			},
			wantKind: domain.WriteError,
			wantFrom: domain.StateConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(tt.docs)
			deployer := newFakeDeployer(1337)
			if tt.setup != nil {
				tt.setup(deployer, store)
			}

			_, err := newDeployContracts(store, deployer, nil, nil).Run(context.Background(), usecase.DeployContractsParams{
				Locations: []string{location},
				Network:   testNetwork,
			})
			require.Error(t, err)

			var deployErr *domain.DeployError
			require.ErrorAs(t, err, &deployErr)
			assert.Equal(t, tt.wantKind, deployErr.Kind)
			assert.Equal(t, tt.wantFrom, deployErr.From)
			assert.Equal(t, location, deployErr.Location)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestDeployContracts_ChainIDFailure(t *testing.T) {
	location := "build/contracts/Token.json"
	store := newMemStore(map[string]string{location: artifactDoc("Token")})
	deployer := newFakeDeployer(0)
	deployer.chainErr = errors.New("connection refused")

	_, err := newDeployContracts(store, deployer, nil, nil).Run(context.Background(), usecase.DeployContractsParams{
		Locations: []string{location},
		Network:   testNetwork,
	})
	require.Error(t, err)

	var deployErr *domain.DeployError
	assert.False(t, errors.As(err, &deployErr), "chain id failures happen before any artifact")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, deployer.calls)
	assert.Empty(t, store.saves)
}

func TestDeployContracts_ConnectFailure(t *testing.T) {
	uc := usecase.NewDeployContracts(newMemStore(nil), &fakeFactory{err: errors.New("dial tcp: refused")}, nil, nil, nil)

	_, err := uc.Run(context.Background(), usecase.DeployContractsParams{
		Locations: []string{"x.json"},
		Network:   testNetwork,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to network dev")

	_, err = uc.Run(context.Background(), usecase.DeployContractsParams{Locations: []string{"x.json"}})
	assert.EqualError(t, err, "no network selected")
}
