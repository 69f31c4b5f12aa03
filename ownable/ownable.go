// Package ownable records a contract's single administrative identity and
// gates privileged methods on its authorization.
package ownable

import (
	"fmt"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/ledger"
)

// OwnerKey is the instance-tier key holding the owner address.
var OwnerKey = ledger.Named("Owner")

// MethodGetOwner is the method name contracts export for Owner.
const MethodGetOwner = "get_owner"

// SetOwner records addr as the contract's owner.
func SetOwner(env *host.Env, addr auth.Address) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	return env.Instance().Set(OwnerKey, addr)
}

// Owner returns the contract's owner.
func Owner(env *host.Env) (auth.Address, error) {
	var addr auth.Address
	ok, err := env.Instance().Get(OwnerKey, &addr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOwnerNotSet
	}
	return addr, nil
}

// EnforceOwner fails with ErrUnauthorized unless the owner authorized the
// current call.
func EnforceOwner(env *host.Env) error {
	owner, err := Owner(env)
	if err != nil {
		return err
	}
	if err := env.RequireAuth(owner); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}
