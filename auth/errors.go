package auth

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("auth: required parameter is nil")

	// ErrInvalidAddress indicates an address fails base58check decoding.
	ErrInvalidAddress = errors.New("auth: invalid address")

	// ErrInvalidPublicKey indicates the proof's public key cannot be parsed.
	ErrInvalidPublicKey = errors.New("auth: invalid public key")

	// ErrInvalidSignature indicates the proof signature does not verify.
	ErrInvalidSignature = errors.New("auth: invalid signature")

	// ErrProofExpired indicates the proof's expiration ledger has passed.
	ErrProofExpired = errors.New("auth: proof expired")

	// ErrNonceUsed indicates the proof was already consumed by an earlier invocation.
	ErrNonceUsed = errors.New("auth: nonce already used")

	// ErrNotAuthorized indicates no supplied proof authorizes the call.
	ErrNotAuthorized = errors.New("auth: not authorized")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("auth: invalid network name")

	// ErrEncodeArgs indicates call arguments could not be canonically encoded.
	ErrEncodeArgs = errors.New("auth: cannot encode arguments")
)
