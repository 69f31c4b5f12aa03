package host

import "errors"

var (
	// ErrContractNotFound indicates no contract code is attached at the address.
	ErrContractNotFound = errors.New("host: contract not found")

	// ErrContractExists indicates a contract instance already exists at the address.
	ErrContractExists = errors.New("host: contract already exists")

	// ErrUnknownMethod indicates the contract does not export the method.
	ErrUnknownMethod = errors.New("host: unknown method")

	// ErrInvalidArgs indicates missing or mistyped call arguments.
	ErrInvalidArgs = errors.New("host: invalid arguments")

	// ErrCallDepth indicates the cross-contract call stack is too deep.
	ErrCallDepth = errors.New("host: call depth exceeded")

	// ErrUnexpectedResult indicates a call returned a value of the wrong type.
	ErrUnexpectedResult = errors.New("host: unexpected result type")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("host: required parameter is nil")
)
