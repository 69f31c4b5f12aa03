package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrIndexOutOfRange indicates an identity index at or beyond the hardened boundary.
	ErrIndexOutOfRange = errors.New("wallet: identity index exceeds maximum (2^31-1)")

	// ErrIdentityNotFound indicates no identity has the given name.
	ErrIdentityNotFound = errors.New("wallet: identity not found")

	// ErrIdentityExists indicates the identity name is already taken.
	ErrIdentityExists = errors.New("wallet: identity already exists")

	// ErrInvalidName indicates an empty or malformed identity name.
	ErrInvalidName = errors.New("wallet: invalid identity name")

	// ErrDecryptionFailed indicates a wrong password, a different network or corrupted data.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed (wrong password, network or corrupted data)")

	// ErrUnsupportedVersion indicates a seed file written by an unknown format version.
	ErrUnsupportedVersion = errors.New("wallet: unsupported seed file version")

	// ErrInvalidSeed indicates the seed is empty or invalid.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrWalletNotFound indicates the data directory holds no wallet.
	ErrWalletNotFound = errors.New("wallet: not initialized")

	// ErrWalletExists indicates a wallet is already initialized.
	ErrWalletExists = errors.New("wallet: already initialized")
)
