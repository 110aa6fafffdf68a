package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// MockDeploymentChecker is a mock implementation of DeploymentChecker
type MockDeploymentChecker struct {
	mock.Mock
}

func (m *MockDeploymentChecker) Connect(ctx context.Context, network *config.Network) (uint64, error) {
	args := m.Called(ctx, network)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockDeploymentChecker) CheckDeploymentExists(ctx context.Context, address string) (bool, string, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockDeploymentChecker) CheckTransactionExists(ctx context.Context, txHash string) (bool, uint64, string, error) {
	args := m.Called(ctx, txHash)
	return args.Bool(0), args.Get(1).(uint64), args.String(2), args.Error(3)
}

func (m *MockDeploymentChecker) Close() {
	m.Called()
}

const (
	tokenAddr = "0x1111111111111111111111111111111111111111"
	saleAddr  = "0x2222222222222222222222222222222222222222"
)

func deployedDocs() map[string]string {
	return map[string]string{
		"build/contracts/Token.json": `{
    "contractName": "Token",
    "bytecode": "0x6000",
    "networks": {
        "63": {"address": "` + tokenAddr + `", "transactionHash": "0xaa"},
        "61": {"address": "0x3333333333333333333333333333333333333333", "transactionHash": "0xcc"}
    }
}`,
		"build/contracts/Sale.json": `{
    "contractName": "Sale",
    "bytecode": "0x6000",
    "networks": {"63": {"address": "` + saleAddr + `", "transactionHash": "0xbb"}}
}`,
		"build/contracts/Math.json":  `{"contractName": "Math", "bytecode": "0x6000", "networks": {}}`,
		"build/contracts/notes.json": `[1, 2]`,
	}
}

func newListDeployments(network *config.Network, checker usecase.DeploymentChecker) (*usecase.ListDeployments, *MockArtifactFinder) {
	cfg := &config.RuntimeConfig{
		Network: network,
		Deploy:  config.DeployConfig{ArtifactsDir: "build/contracts"},
	}
	finder := &MockArtifactFinder{}
	finder.On("Find", mock.Anything, "build/contracts", "").Return([]string{
		"build/contracts/Math.json",
		"build/contracts/Sale.json",
		"build/contracts/Token.json",
		"build/contracts/notes.json",
	}, nil)
	return usecase.NewListDeployments(cfg, finder, newMemStore(deployedDocs()), checker, &MockProgressSink{}, nil), finder
}

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	mordor := &config.Network{Name: "mordor", RPCURL: "https://rpc.mordor.example", ChainID: 63}

	t.Run("configured chain id needs no node", func(t *testing.T) {
		checker := &MockDeploymentChecker{}
		uc, _ := newListDeployments(mordor, checker)

		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)

		assert.Equal(t, "mordor", result.Network)
		assert.Equal(t, "63", result.NetworkKey)
		require.Len(t, result.Deployments, 2)
		assert.Equal(t, "Sale", result.Deployments[0].ContractName)
		assert.Equal(t, "Token", result.Deployments[1].ContractName)
		assert.Equal(t, tokenAddr, result.Deployments[1].Address)
		assert.Equal(t, usecase.DeploymentRecorded, result.Deployments[1].Status)
		assert.Equal(t, []string{"Math"}, result.Summary.Undeployed)
		assert.Equal(t, 2, result.Summary.Total)
		checker.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
	})

	t.Run("chain id from the node", func(t *testing.T) {
		dev := &config.Network{Name: "dev", RPCURL: "http://127.0.0.1:8545"}
		checker := &MockDeploymentChecker{}
		checker.On("Connect", mock.Anything, dev).Return(uint64(61), nil)
		checker.On("Close").Return()
		uc, _ := newListDeployments(dev, checker)

		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)
		assert.Equal(t, "61", result.NetworkKey)
		require.Len(t, result.Deployments, 1)
		assert.Equal(t, "Token", result.Deployments[0].ContractName)
		checker.AssertExpectations(t)
	})

	t.Run("network key override", func(t *testing.T) {
		uc, _ := newListDeployments(mordor, &MockDeploymentChecker{})

		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{NetworkKey: "61"})
		require.NoError(t, err)
		require.Len(t, result.Deployments, 1)
		assert.Equal(t, "0x3333333333333333333333333333333333333333", result.Deployments[0].Address)
	})

	t.Run("all networks", func(t *testing.T) {
		uc, _ := newListDeployments(nil, &MockDeploymentChecker{})

		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{All: true})
		require.NoError(t, err)
		require.Len(t, result.Deployments, 3)
		assert.Equal(t, "61", result.Deployments[0].NetworkKey)
		assert.Equal(t, map[string]int{"61": 1, "63": 2}, result.Summary.ByNetwork)
		assert.Empty(t, result.Summary.Undeployed)
	})

	t.Run("check", func(t *testing.T) {
		checker := &MockDeploymentChecker{}
		checker.On("Connect", mock.Anything, mordor).Return(uint64(63), nil)
		checker.On("CheckDeploymentExists", mock.Anything, saleAddr).Return(false, "no code at address", nil)
		checker.On("CheckDeploymentExists", mock.Anything, tokenAddr).Return(true, "", nil)
		checker.On("CheckTransactionExists", mock.Anything, "0xaa").Return(true, uint64(7), "", nil)
		checker.On("Close").Return().Once()
		uc, _ := newListDeployments(mordor, checker)

		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{Check: true})
		require.NoError(t, err)
		require.Len(t, result.Deployments, 2)

		sale, token := result.Deployments[0], result.Deployments[1]
		assert.Equal(t, usecase.DeploymentMissing, sale.Status)
		assert.Equal(t, "no code at address", sale.Reason)
		assert.Equal(t, usecase.DeploymentLive, token.Status)
		assert.Equal(t, uint64(7), token.BlockNumber)
		assert.Equal(t, 1, result.Summary.Missing)
		checker.AssertExpectations(t)
	})

	t.Run("check failure", func(t *testing.T) {
		checker := &MockDeploymentChecker{}
		checker.On("Connect", mock.Anything, mordor).Return(uint64(63), nil)
		checker.On("CheckDeploymentExists", mock.Anything, mock.Anything).Return(false, "", errors.New("connection reset"))
		checker.On("Close").Return()
		uc, _ := newListDeployments(mordor, checker)

		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{Check: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		checker.AssertCalled(t, "Close")
	})

	t.Run("connect failure", func(t *testing.T) {
		checker := &MockDeploymentChecker{}
		checker.On("Connect", mock.Anything, mordor).Return(uint64(0), errors.New("dial tcp: connection refused"))
		uc, _ := newListDeployments(mordor, checker)

		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{Check: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to network mordor")
	})

	t.Run("all and check conflict", func(t *testing.T) {
		uc, finder := newListDeployments(mordor, &MockDeploymentChecker{})

		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{All: true, Check: true})
		require.Error(t, err)
		finder.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
	})
}
