// Package token is a fungible payment token hosted on the contract runtime.
//
// Balances are signed 128-bit amounts in the token's smallest unit. The
// admin mints supply; holders move it with transfer, which requires the
// sender's authorization.
package token

import (
	"fmt"
	"math/big"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/ownable"
)

// Method names.
const (
	MethodMint     = "mint"
	MethodTransfer = "transfer"
	MethodBalance  = "balance"
	MethodDecimals = "decimals"
	MethodName     = "name"
	MethodSymbol   = "symbol"
)

// balanceTTL is how far every balance write pushes the entry's lifetime.
const balanceTTL = 30 * ledger.LedgersPerDay

// TransferEvent is published for every successful transfer.
type TransferEvent struct {
	From   auth.Address
	To     auth.Address
	Amount *big.Int
}

// MintEvent is published when the admin creates supply.
type MintEvent struct {
	To     auth.Address
	Amount *big.Int
}

type info struct {
	Decimals uint32
	Name     string
	Symbol   string
}

var infoKey = ledger.Named("TokenInfo")

// BalanceKey is the persistent key holding addr's balance.
func BalanceKey(addr auth.Address) ledger.Key { return ledger.StringKey("Balance", string(addr)) }

// Contract is the token contract code.
type Contract struct{}

var (
	_ host.Contract    = Contract{}
	_ host.Constructor = Contract{}
)

// Construct expects (admin auth.Address, decimals uint32, name string, symbol string).
func (Contract) Construct(env *host.Env, args []any) error {
	if err := host.ArgCount(args, 4); err != nil {
		return err
	}
	admin, err := host.Arg[auth.Address](args, 0)
	if err != nil {
		return err
	}
	var in info
	if in.Decimals, err = host.Arg[uint32](args, 1); err != nil {
		return err
	}
	if in.Name, err = host.Arg[string](args, 2); err != nil {
		return err
	}
	if in.Symbol, err = host.Arg[string](args, 3); err != nil {
		return err
	}
	if err := ownable.SetOwner(env, admin); err != nil {
		return err
	}
	if err := env.Instance().Set(infoKey, in); err != nil {
		return err
	}
	return env.ExtendInstanceTTL(ledger.MinPersistentTTL, balanceTTL)
}

// Call dispatches a token method.
func (c Contract) Call(env *host.Env, method string, args []any) (any, error) {
	switch method {
	case MethodMint:
		if err := host.ArgCount(args, 2); err != nil {
			return nil, err
		}
		to, err := host.Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		amount, err := host.Arg[*big.Int](args, 1)
		if err != nil {
			return nil, err
		}
		return nil, mint(env, to, amount)

	case MethodTransfer:
		if err := host.ArgCount(args, 3); err != nil {
			return nil, err
		}
		from, err := host.Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		to, err := host.Arg[auth.Address](args, 1)
		if err != nil {
			return nil, err
		}
		amount, err := host.Arg[*big.Int](args, 2)
		if err != nil {
			return nil, err
		}
		return nil, transfer(env, from, to, amount)

	case MethodBalance:
		addr, err := host.Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		return balance(env, addr)

	case MethodDecimals, MethodName, MethodSymbol:
		var in info
		if _, err := env.Instance().Get(infoKey, &in); err != nil {
			return nil, err
		}
		switch method {
		case MethodDecimals:
			return in.Decimals, nil
		case MethodName:
			return in.Name, nil
		}
		return in.Symbol, nil

	case ownable.MethodGetOwner:
		return ownable.Owner(env)
	}
	return nil, fmt.Errorf("%w: %s", host.ErrUnknownMethod, method)
}

func mint(env *host.Env, to auth.Address, amount *big.Int) error {
	if err := ownable.EnforceOwner(env); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if err := credit(env, to, amount); err != nil {
		return err
	}
	env.Publish(MethodMint, MintEvent{To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func transfer(env *host.Env, from, to auth.Address, amount *big.Int) error {
	if err := env.RequireAuth(from); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	if err := to.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	have, err := balance(env, from)
	if err != nil {
		return err
	}
	if have.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %w: %s has %s, needs %s", ErrTransferRejected, ErrInsufficientBalance, from, have, amount)
	}
	if err := setBalance(env, from, have.Sub(have, amount)); err != nil {
		return err
	}
	if err := credit(env, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	env.Publish(MethodTransfer, TransferEvent{From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if amount.BitLen() > 127 {
		return fmt.Errorf("%w: %s", ErrOverflow, amount)
	}
	return nil
}

func credit(env *host.Env, to auth.Address, amount *big.Int) error {
	have, err := balance(env, to)
	if err != nil {
		return err
	}
	have.Add(have, amount)
	if have.BitLen() > 127 {
		return fmt.Errorf("%w: %s", ErrOverflow, to)
	}
	return setBalance(env, to, have)
}

func balance(env *host.Env, addr auth.Address) (*big.Int, error) {
	v := new(big.Int)
	if _, err := env.Persistent().Get(BalanceKey(addr), v); err != nil {
		return nil, err
	}
	return v, nil
}

func setBalance(env *host.Env, addr auth.Address, v *big.Int) error {
	store := env.Persistent()
	if err := store.Set(BalanceKey(addr), v); err != nil {
		return err
	}
	if err := store.ExtendTTL(BalanceKey(addr), ledger.MinPersistentTTL, balanceTTL); err != nil {
		return err
	}
	return env.ExtendInstanceTTL(ledger.MinPersistentTTL, balanceTTL)
}
