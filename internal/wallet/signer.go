package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a deployment account.
type Signer interface {
	Address() string
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// KeystoreSigner fetches the private key from a keystore at signing time so
// the key never sits in memory longer than one transaction.
type KeystoreSigner struct {
	wallet *Wallet
	ks     KeyStore
}

// NewKeystoreSigner creates a signer for the given wallet.
func NewKeystoreSigner(w *Wallet, ks KeyStore) *KeystoreSigner {
	return &KeystoreSigner{wallet: w, ks: ks}
}

// Address returns the wallet's address.
func (s *KeystoreSigner) Address() string {
	return s.wallet.Address
}

// SignTx signs a transaction and returns the raw signed bytes.
func (s *KeystoreSigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return signWith(tx, chainID, privKey)
}

// KeySigner signs with an in-memory private key. Used by tests and one-off
// scripted deployments where keychain round-trips are unwanted.
type KeySigner struct {
	key  *ecdsa.PrivateKey
	addr string
}

// NewKeySigner parses a hex private key into a signer.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &KeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the signer's address.
func (s *KeySigner) Address() string { return s.addr }

// SignTx signs a transaction and returns the raw signed bytes.
func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	return signWith(tx, chainID, s.key)
}

func signWith(tx *types.Transaction, chainID *big.Int, key *ecdsa.PrivateKey) ([]byte, error) {
	signer := types.NewLondonSigner(chainID)
	signed, err := types.SignTx(tx, signer, key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}
