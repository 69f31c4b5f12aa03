// Package auth implements identities and single-use, call-scoped
// authorization proofs.
//
// An account address is the base58check P2PKH address of HASH160 of a
// compressed secp256k1 public key. A contract address is the P2PKH-style
// address of HASH160(deployer || salt).
package auth

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Address identifies an account or a contract instance.
type Address string

func (a Address) String() string { return string(a) }

// Validate checks that a decodes as a base58check address.
func (a Address) Validate() error {
	if a == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if _, err := script.NewAddressFromString(string(a)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidAddress, string(a), err)
	}
	return nil
}

// Network binds addresses and signatures to one ledger.
type Network struct {
	Name       string
	Passphrase string
	Mainnet    bool // selects the address version byte
}

// Predefined networks.
var (
	MainNet = Network{Name: "mainnet", Passphrase: "Boscora Impact Ledger ; mainnet", Mainnet: true}
	TestNet = Network{Name: "testnet", Passphrase: "Boscora Impact Ledger ; testnet"}
)

// NetworkByName returns the predefined network with the given name.
func NetworkByName(name string) (Network, error) {
	switch name {
	case MainNet.Name:
		return MainNet, nil
	case TestNet.Name:
		return TestNet, nil
	default:
		return Network{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
	}
}

// AccountAddress returns the address controlled by pub on network.
func AccountAddress(pub *ec.PublicKey, network Network) (Address, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: public key", ErrNilParam)
	}
	return hashAddress(bsvhash.Hash160(pub.Compressed()), network)
}

// ContractAddress returns the address of the contract deployed by deployer with salt.
func ContractAddress(deployer Address, salt []byte, network Network) (Address, error) {
	if deployer == "" {
		return "", fmt.Errorf("%w: deployer", ErrNilParam)
	}
	preimage := make([]byte, 0, len(deployer)+len(salt))
	preimage = append(preimage, deployer...)
	preimage = append(preimage, salt...)
	return hashAddress(bsvhash.Hash160(preimage), network)
}

func hashAddress(h []byte, network Network) (Address, error) {
	addr, err := script.NewAddressFromPublicKeyHash(h, network.Mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return Address(addr.AddressString), nil
}
