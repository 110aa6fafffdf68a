package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// checkTimeout bounds each lookup against the node
const checkTimeout = 5 * time.Second

// ChainReader is the read-only part of a JSON-RPC client the checker needs
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// DialFunc connects a ChainReader to an RPC endpoint
type DialFunc func(ctx context.Context, rpcURL string) (ChainReader, func(), error)

// CheckerAdapter implements the DeploymentChecker interface using ethclient
type CheckerAdapter struct {
	dial    DialFunc
	client  ChainReader
	closer  func()
	chainID uint64
}

// NewCheckerAdapter creates a new blockchain checker adapter
func NewCheckerAdapter() *CheckerAdapter {
	return NewCheckerAdapterWithDial(dialEthclient)
}

// NewCheckerAdapterWithDial creates a checker that connects through dial
func NewCheckerAdapterWithDial(dial DialFunc) *CheckerAdapter {
	return &CheckerAdapter{dial: dial}
}

func dialEthclient(ctx context.Context, rpcURL string) (ChainReader, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// Connect establishes connection to the blockchain
func (c *CheckerAdapter) Connect(ctx context.Context, network *config.Network) (uint64, error) {
	client, closer, err := c.dial(ctx, network.RPCURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	// Verify chain ID matches
	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		closer()
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && networkChainID.Uint64() != network.ChainID {
		closer()
		return 0, fmt.Errorf("%w: expected chain ID %d, endpoint reports %d", domain.ErrNetworkMismatch, network.ChainID, networkChainID.Uint64())
	}

	c.client = client
	c.closer = closer
	c.chainID = networkChainID.Uint64()
	return c.chainID, nil
}

// CheckDeploymentExists checks if a contract exists at the given address
func (c *CheckerAdapter) CheckDeploymentExists(ctx context.Context, address string) (exists bool, reason string, err error) {
	if c.client == nil {
		return false, "", fmt.Errorf("not connected to blockchain")
	}
	if !common.IsHexAddress(address) {
		return false, "invalid address", nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	code, err := c.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to get code at %s: %w", address, err)
	}

	// If no code at address, contract doesn't exist
	if len(code) == 0 {
		return false, "no code at address", nil
	}

	return true, "", nil
}

// CheckTransactionExists checks if a transaction exists on-chain
func (c *CheckerAdapter) CheckTransactionExists(ctx context.Context, txHash string) (exists bool, blockNumber uint64, reason string, err error) {
	if c.client == nil {
		return false, 0, "", fmt.Errorf("not connected to blockchain")
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, 0, "transaction not found on-chain", nil
		}
		return false, 0, "", fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	if receipt.BlockNumber != nil {
		return true, receipt.BlockNumber.Uint64(), "", nil
	}

	return true, 0, "", nil
}

// Close releases the connection, if any
func (c *CheckerAdapter) Close() {
	if c.closer != nil {
		c.closer()
	}
	c.client = nil
	c.closer = nil
}

// Ensure the adapter implements the interface
var _ usecase.DeploymentChecker = (*CheckerAdapter)(nil)
