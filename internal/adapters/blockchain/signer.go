package blockchain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// Signer holds the key that signs deployment transactions
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner wraps a private key
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewSignerFromConfig loads the key from a hex private key or an encrypted
// keystore file.
func NewSignerFromConfig(sc config.SignerConfig) (*Signer, error) {
	switch {
	case sc.PrivateKey != "" && sc.Keystore != "":
		return nil, fmt.Errorf("both signer.private_key and signer.keystore are set, use one")
	case sc.PrivateKey != "":
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(sc.PrivateKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer.private_key: %w", err)
		}
		return NewSigner(key), nil
	case sc.Keystore != "":
		data, err := os.ReadFile(sc.Keystore)
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore: %w", err)
		}
		key, err := keystore.DecryptKey(data, sc.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore %s: %w", sc.Keystore, err)
		}
		return NewSigner(key.PrivateKey), nil
	default:
		return nil, fmt.Errorf("no deployment key configured: set EMERALD_SIGNER_PRIVATE_KEY or signer.keystore in emerald.toml")
	}
}

// Address returns the account that pays for deployments
func (s *Signer) Address() common.Address {
	return s.address
}

// SignTx signs tx with the latest signer for the chain (EIP-155 replay protection)
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
