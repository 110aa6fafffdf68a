package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// Backend is the part of a JSON-RPC client the deployer needs.
// *ethclient.Client and the simulated backend client both satisfy it.
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// SignerLoader provides the signer on first use, so read-only operations
// work without a key.
type SignerLoader func() (*Signer, error)

// EthDeployer deploys contract creation code over JSON-RPC
type EthDeployer struct {
	backend           Backend
	closer            func()
	configuredChainID uint64
	gasBufferPct      uint64
	loadSigner        SignerLoader
	log               *slog.Logger

	mu      sync.Mutex
	chainID *big.Int
	signer  *Signer
	sent    map[common.Hash]*types.Transaction
}

// NewEthDeployer creates a deployer over backend. A configuredChainID of 0
// means the chain id is taken from the endpoint.
func NewEthDeployer(backend Backend, configuredChainID, gasBufferPct uint64, loadSigner SignerLoader, log *slog.Logger) *EthDeployer {
	if log == nil {
		log = slog.Default()
	}
	return &EthDeployer{
		backend:           backend,
		configuredChainID: configuredChainID,
		gasBufferPct:      gasBufferPct,
		loadSigner:        loadSigner,
		log:               log,
		sent:              make(map[common.Hash]*types.Transaction),
	}
}

// ChainID returns the chain id of the endpoint, checked against the configured one
func (d *EthDeployer) ChainID(ctx context.Context) (uint64, error) {
	id, err := d.chainIDBig(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (d *EthDeployer) chainIDBig(ctx context.Context) (*big.Int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chainID != nil {
		return d.chainID, nil
	}

	networkChainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if d.configuredChainID != 0 && networkChainID.Uint64() != d.configuredChainID {
		return nil, fmt.Errorf("%w: expected chain ID %d, endpoint reports %d", domain.ErrNetworkMismatch, d.configuredChainID, networkChainID.Uint64())
	}

	d.chainID = networkChainID
	return d.chainID, nil
}

func (d *EthDeployer) getSigner() (*Signer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.signer != nil {
		return d.signer, nil
	}
	if d.loadSigner == nil {
		return nil, fmt.Errorf("no deployment key configured")
	}
	signer, err := d.loadSigner()
	if err != nil {
		return nil, err
	}
	d.signer = signer
	return signer, nil
}

// Submit signs and sends a contract creation transaction for the artifact's bytecode
func (d *EthDeployer) Submit(ctx context.Context, artifact *domain.Artifact) (*domain.PendingTx, error) {
	code, err := decodeCreationCode(artifact.Bytecode)
	if err != nil {
		return nil, err
	}

	signer, err := d.getSigner()
	if err != nil {
		return nil, err
	}

	chainID, err := d.chainIDBig(ctx)
	if err != nil {
		return nil, err
	}

	from := signer.Address()

	nonce, err := d.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	gasLimit, err := d.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		Data: code,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit = gasLimit * (100 + d.gasBufferPct) / 100

	tx := types.NewContractCreation(nonce, big.NewInt(0), gasLimit, gasPrice, code)
	signedTx, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("sign deployment transaction: %w", err)
	}

	if err := d.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("send deployment transaction: %w", err)
	}

	d.mu.Lock()
	d.sent[signedTx.Hash()] = signedTx
	d.mu.Unlock()

	expected := crypto.CreateAddress(from, nonce)
	d.log.Debug("deployment transaction submitted",
		slog.String("contract", artifact.ContractName),
		slog.String("tx_hash", signedTx.Hash().Hex()),
		slog.String("expected_address", expected.Hex()),
		slog.Uint64("nonce", nonce),
		slog.Uint64("gas_limit", gasLimit),
	)

	return &domain.PendingTx{
		Hash:            signedTx.Hash().Hex(),
		ExpectedAddress: expected.Hex(),
		Sender:          from.Hex(),
		Nonce:           nonce,
		ChainID:         chainID.Uint64(),
		SubmittedAt:     time.Now(),
	}, nil
}

// AwaitConfirmation waits until the transaction is mined or timeout expires
func (d *EthDeployer) AwaitConfirmation(ctx context.Context, pending *domain.PendingTx, timeout time.Duration) (*domain.Confirmation, error) {
	hash := common.HexToHash(pending.Hash)

	d.mu.Lock()
	tx, ok := d.sent[hash]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("transaction %s was not sent by this deployer", pending.Hash)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, d.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for receipt of %s: %w", pending.Hash, err)
	}

	d.mu.Lock()
	delete(d.sent, hash)
	d.mu.Unlock()

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s in block %s (gas used %d)", domain.ErrReverted, pending.Hash, receipt.BlockNumber, receipt.GasUsed)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("receipt of %s has no contract address", pending.Hash)
	}

	d.log.Debug("deployment confirmed",
		slog.String("tx_hash", receipt.TxHash.Hex()),
		slog.String("address", receipt.ContractAddress.Hex()),
		slog.Uint64("gas_used", receipt.GasUsed),
	)

	return &domain.Confirmation{
		Address:         receipt.ContractAddress.Hex(),
		TransactionHash: receipt.TxHash.Hex(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
	}, nil
}

// Close releases the connection
func (d *EthDeployer) Close() {
	if d.closer != nil {
		d.closer()
	}
}

// decodeCreationCode parses the hex bytecode of an artifact
func decodeCreationCode(bytecode string) ([]byte, error) {
	s := strings.TrimSpace(bytecode)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if s == "0x" || s == "0X" {
		return nil, domain.ErrEmptyBytecode
	}
	if strings.Contains(s, "__") {
		return nil, fmt.Errorf("bytecode contains unlinked library placeholders")
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return code, nil
}

// DeployerFactoryAdapter dials networks over JSON-RPC
type DeployerFactoryAdapter struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	once   sync.Once
	signer *Signer
	err    error
}

// NewDeployerFactoryAdapter creates a new deployer factory
func NewDeployerFactoryAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *DeployerFactoryAdapter {
	return &DeployerFactoryAdapter{
		cfg: cfg,
		log: log,
	}
}

// Connect dials the network's RPC endpoint
func (f *DeployerFactoryAdapter) Connect(ctx context.Context, network *config.Network) (usecase.Deployer, error) {
	if network == nil || network.RPCURL == "" {
		return nil, errors.New("network has no RPC URL")
	}

	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	d := NewEthDeployer(client, network.ChainID, f.cfg.Deploy.GasLimitBufferPct, f.loadSigner, f.log)
	d.closer = client.Close
	return d, nil
}

func (f *DeployerFactoryAdapter) loadSigner() (*Signer, error) {
	f.once.Do(func() {
		f.signer, f.err = NewSignerFromConfig(f.cfg.Signer)
	})
	return f.signer, f.err
}

// Ensure the adapters implement the interfaces
var (
	_ usecase.Deployer        = (*EthDeployer)(nil)
	_ usecase.DeployerFactory = (*DeployerFactoryAdapter)(nil)
)
