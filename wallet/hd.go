package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/boscora/impacta-go/auth"
)

const (
	// BIP44 path constants.
	PurposeBIP44     = 44
	CoinTypeBoscora  = 1515
	IdentityAccount  = 0
	IdentityChain    = 0
	MaxIdentityIndex = 1<<31 - 1

	// Hardened is the BIP32 hardened derivation offset.
	Hardened = 0x80000000
)

// Wallet derives signing identities from a seed.
type Wallet struct {
	chain   *bip32.ExtendedKey // m/44'/1515'/0'/0
	network auth.Network
}

// Identity is a derived signing key and the account address it controls.
type Identity struct {
	Index   uint32
	Path    string
	Key     *ec.PrivateKey
	Address auth.Address
}

// NewWallet derives the identity chain of seed for network.
func NewWallet(seed []byte, network auth.Network) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	params := &chaincfg.TestNet
	if network.Mainnet {
		params = &chaincfg.MainNet
	}
	key, err := bip32.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	for _, step := range []uint32{PurposeBIP44 + Hardened, CoinTypeBoscora + Hardened, IdentityAccount + Hardened, IdentityChain} {
		if key, err = key.Child(step); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
		}
	}
	return &Wallet{chain: key, network: network}, nil
}

// Network returns the network identities are addressed on.
func (w *Wallet) Network() auth.Network { return w.network }

// Identity derives the identity at index.
func (w *Wallet) Identity(index uint32) (*Identity, error) {
	if index > MaxIdentityIndex {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	child, err := w.chain.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %w", ErrDerivationFailed, index, err)
	}
	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	addr, err := auth.AccountAddress(priv.PubKey(), w.network)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Index:   index,
		Path:    fmt.Sprintf("m/44'/%d'/%d'/%d/%d", CoinTypeBoscora, IdentityAccount, IdentityChain, index),
		Key:     priv,
		Address: addr,
	}, nil
}
