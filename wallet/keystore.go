// Package wallet holds the identities that sign contract invocations.
//
// One BIP39 seed derives every identity at m/44'/1515'/0'/0/{index}. The
// seed is sealed in the data directory with Argon2id and AES-256-GCM, bound
// to the network it was created for; the name-to-index table lives next to
// it in plain JSON.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"

	"github.com/boscora/impacta-go/auth"
)

// File names inside the data directory.
const (
	SeedFile  = "wallet.enc"
	StateFile = "identities.json"
)

// Mnemonic entropy sizes.
const (
	Mnemonic12Words = 128
	Mnemonic24Words = 256
)

// Seed file layout: version || salt || nonce || AES-GCM(seed), with the
// version byte and network name as additional data.
const (
	SeedFileVersion byte = 1

	saltLen    = 16
	nonceLen   = 12
	headerLen  = 1 + saltLen + nonceLen
	kdfTime    = 3
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	kdfKeyLen  = 32
)

// GenerateMnemonic creates a new BIP39 mnemonic with entropyBits of entropy.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether mnemonic is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP39 seed.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: derive seed: %w", err)
	}
	return seed, nil
}

// Keystore is a wallet opened from a data directory.
type Keystore struct {
	dir    string
	wallet *Wallet
	state  *State
}

// Create encrypts seed into dir and starts an empty identity table.
func Create(dir string, seed []byte, password string, network auth.Network) (*Keystore, error) {
	seedPath := filepath.Join(dir, SeedFile)
	if _, err := os.Stat(seedPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, seedPath)
	}
	w, err := NewWallet(seed, network)
	if err != nil {
		return nil, err
	}
	encrypted, err := sealSeed(seed, password, network)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("wallet: create directory: %w", err)
	}
	if err := os.WriteFile(seedPath, encrypted, 0600); err != nil {
		return nil, fmt.Errorf("wallet: write seed: %w", err)
	}
	ks := &Keystore{dir: dir, wallet: w, state: NewState()}
	return ks, ks.Save()
}

// Open decrypts the wallet in dir.
func Open(dir, password string, network auth.Network) (*Keystore, error) {
	encrypted, err := os.ReadFile(filepath.Join(dir, SeedFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("wallet: read seed: %w", err)
	}
	seed, err := openSeed(encrypted, password, network)
	if err != nil {
		return nil, err
	}
	w, err := NewWallet(seed, network)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	if err != nil {
		return nil, fmt.Errorf("wallet: read identities: %w", err)
	}
	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("wallet: parse identities: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &Keystore{dir: dir, wallet: w, state: state}, nil
}

// Save writes the identity table.
func (k *Keystore) Save() error {
	data, err := json.MarshalIndent(k.state, "", "  ")
	if err != nil {
		return fmt.Errorf("wallet: marshal identities: %w", err)
	}
	if err := os.WriteFile(filepath.Join(k.dir, StateFile), data, 0600); err != nil {
		return fmt.Errorf("wallet: write identities: %w", err)
	}
	return nil
}

// Add creates and persists a new named identity.
func (k *Keystore) Add(name string) (*Identity, error) {
	named, err := k.state.Add(name)
	if err != nil {
		return nil, err
	}
	if err := k.Save(); err != nil {
		return nil, err
	}
	return k.wallet.Identity(named.Index)
}

// Identity returns the identity called name.
func (k *Keystore) Identity(name string) (*Identity, error) {
	named, err := k.state.Lookup(name)
	if err != nil {
		return nil, err
	}
	return k.wallet.Identity(named.Index)
}

// Identities returns all named identities in index order.
func (k *Keystore) Identities() []NamedIdentity { return k.state.List() }

// Wallet returns the underlying wallet.
func (k *Keystore) Wallet() *Wallet { return k.wallet }

// sealSeed encrypts seed for network. Salt and nonce are fresh per call.
func sealSeed(seed []byte, password string, network auth.Network) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	out := make([]byte, headerLen, headerLen+len(seed)+16)
	out[0] = SeedFileVersion
	if _, err := rand.Read(out[1:headerLen]); err != nil {
		return nil, fmt.Errorf("wallet: generate salt: %w", err)
	}
	gcm, err := seedCipher(password, out[1:1+saltLen])
	if err != nil {
		return nil, err
	}
	return gcm.Seal(out, out[1+saltLen:headerLen], seed, seedAAD(network)), nil
}

func openSeed(data []byte, password string, network auth.Network) ([]byte, error) {
	if len(data) <= headerLen {
		return nil, ErrDecryptionFailed
	}
	if data[0] != SeedFileVersion {
		return nil, fmt.Errorf("%w: seed file version %d", ErrUnsupportedVersion, data[0])
	}
	gcm, err := seedCipher(password, data[1:1+saltLen])
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	seed, err := gcm.Open(nil, data[1+saltLen:headerLen], data[headerLen:], seedAAD(network))
	if err != nil || len(seed) == 0 {
		return nil, ErrDecryptionFailed
	}
	return seed, nil
}

func seedAAD(network auth.Network) []byte {
	return append([]byte{SeedFileVersion}, network.Name...)
}

func seedCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: create GCM: %w", err)
	}
	return gcm, nil
}
