package host

import (
	"context"

	"go.uber.org/zap"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/ledger"
)

// Invoker runs contract methods. The Host runs them as top-level
// invocations; an Env runs them as nested calls inside its own invocation.
type Invoker interface {
	InvokeContract(ctx context.Context, contract auth.Address, method string, args ...any) (any, error)
}

// Env is a contract frame's handle on the runtime.
type Env struct {
	ctx      context.Context
	inv      *invocation
	contract auth.Address
	method   string
	args     []any
	depth    int
}

// Compile-time interface checks.
var (
	_ Invoker = (*Env)(nil)
	_ Invoker = (*Host)(nil)
	_ Invoker = viewer{}
)

// Context returns the context of the top-level invocation.
func (e *Env) Context() context.Context { return e.ctx }

// CurrentContract returns the address of the executing contract.
func (e *Env) CurrentContract() auth.Address { return e.contract }

// Sequence returns the ledger sequence the invocation executes at.
func (e *Env) Sequence() uint32 { return e.inv.state.Sequence() }

// Network returns the network of the host.
func (e *Env) Network() auth.Network { return e.inv.host.network }

// Instance returns the contract's instance-tier storage.
func (e *Env) Instance() ledger.Scope { return e.scope(ledger.Instance) }

// Persistent returns the contract's persistent-tier storage.
func (e *Env) Persistent() ledger.Scope { return e.scope(ledger.Persistent) }

// Temporary returns the contract's temporary-tier storage.
func (e *Env) Temporary() ledger.Scope { return e.scope(ledger.Temporary) }

func (e *Env) scope(tier ledger.Tier) ledger.Scope {
	return e.inv.state.Scope(string(e.contract), tier)
}

// ExtendInstanceTTL keeps the contract instance and its instance tier alive.
func (e *Env) ExtendInstanceTTL(threshold, extendTo uint32) error {
	return e.inv.state.ExtendInstanceTTL(string(e.contract), threshold, extendTo)
}

// RequireAuth fails unless addr authorized this exact frame: contract,
// method and arguments.
func (e *Env) RequireAuth(addr auth.Address) error {
	call, err := auth.NewInvocation(e.contract, e.method, e.args...)
	if err != nil {
		return err
	}
	return e.inv.auth.Require(addr, call)
}

// Call invokes a method of another contract inside this unit of work. The
// callee's failure is the caller's failure.
func (e *Env) Call(contract auth.Address, method string, args ...any) (any, error) {
	return e.inv.call(e.ctx, e.depth+1, Call{Contract: contract, Method: method, Args: args})
}

// InvokeContract implements Invoker.
func (e *Env) InvokeContract(ctx context.Context, contract auth.Address, method string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Call(contract, method, args...)
}

// Publish records a contract event. Events surface only if the invocation commits.
func (e *Env) Publish(topic string, data any) {
	e.inv.events = append(e.inv.events, Event{Contract: e.contract, Topic: topic, Data: data})
}

// Events returns the events published so far in this invocation.
func (e *Env) Events() []Event {
	return append([]Event(nil), e.inv.events...)
}

// Logger returns the host logger annotated with the frame.
func (e *Env) Logger() *zap.Logger {
	return e.inv.host.log.With(
		zap.String("contract", e.contract.String()),
		zap.String("method", e.method),
	)
}
