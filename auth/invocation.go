package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Invocation names one contract call: target, method and canonically
// encoded arguments. Sub lists the nested calls the same signer authorizes
// once this one has been authorized.
type Invocation struct {
	Contract Address         `json:"contract"`
	Method   string          `json:"method"`
	Args     json.RawMessage `json:"args"`
	Sub      []Invocation    `json:"sub,omitempty"`
}

// EncodeArgs returns the canonical encoding of call arguments.
func EncodeArgs(args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeArgs, err)
	}
	return b, nil
}

// NewInvocation builds an invocation without sub-invocations.
func NewInvocation(contract Address, method string, args ...any) (Invocation, error) {
	enc, err := EncodeArgs(args...)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Contract: contract, Method: method, Args: enc}, nil
}

// SameCall reports whether inv and other name the same call, ignoring sub-invocations.
func (inv Invocation) SameCall(other Invocation) bool {
	return inv.Contract == other.Contract &&
		inv.Method == other.Method &&
		bytes.Equal(inv.Args, other.Args)
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s.%s(%s)", inv.Contract, inv.Method, inv.Args)
}
