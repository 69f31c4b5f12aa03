// Package host runs contracts against the ledger.
//
// Every top-level invocation is one ledger unit of work: contract frames,
// cross-contract calls, authorization checks and nonce consumption all share
// it, and any error discards every write made during the invocation.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/ledger"
)

// MaxCallDepth bounds nested cross-contract calls.
const MaxCallDepth = 8

// DefaultProofLifetime is how many ledgers a Signer's proofs stay valid.
const DefaultProofLifetime uint32 = 100

// Contract is code attached to a contract address.
type Contract interface {
	Call(env *Env, method string, args []any) (any, error)
}

// Constructor is implemented by contracts that initialize their instance at deploy time.
type Constructor interface {
	Construct(env *Env, args []any) error
}

// Call is a contract method invocation.
type Call struct {
	Contract auth.Address
	Method   string
	Args     []any
}

// Event is a contract event published during a successful invocation.
type Event struct {
	Contract auth.Address
	Topic    string
	Data     any
}

// Result is the outcome of a committed invocation.
type Result struct {
	Value    any
	Events   []Event
	Sequence uint32
}

// Simulation is the outcome of a rolled-back dry run, including the
// authorization each address must sign for the real invocation.
type Simulation struct {
	Result
	Auth []auth.Requirement
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.log = l }
}

// WithMetrics sets the host metrics.
func WithMetrics(m *Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// WithProofLifetime sets how many ledgers Signer proofs stay valid.
func WithProofLifetime(n uint32) Option {
	return func(h *Host) { h.proofLifetime = n }
}

// Host attaches contract code to addresses and executes invocations.
type Host struct {
	store         ledger.Store
	network       auth.Network
	log           *zap.Logger
	metrics       *Metrics
	proofLifetime uint32

	mu        sync.RWMutex
	contracts map[auth.Address]Contract
}

// New returns a Host over store.
func New(store ledger.Store, network auth.Network, opts ...Option) *Host {
	h := &Host{
		store:         store,
		network:       network,
		log:           zap.NewNop(),
		proofLifetime: DefaultProofLifetime,
		contracts:     make(map[auth.Address]Contract),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Network returns the network the host signs and verifies for.
func (h *Host) Network() auth.Network { return h.network }

// Sequence returns the current ledger sequence.
func (h *Host) Sequence() (uint32, error) { return h.store.Sequence() }

// AdvanceLedger closes n ledgers.
func (h *Host) AdvanceLedger(n uint32) (uint32, error) {
	seq, err := h.store.AdvanceSequence(n)
	if err != nil {
		return 0, err
	}
	h.log.Debug("ledger advanced", zap.Uint32("sequence", seq))
	return seq, nil
}

// Deploy creates a contract instance at the address derived from deployer
// and salt, attaches c and runs its constructor in one unit of work. An
// address can be constructed only once.
func (h *Host) Deploy(ctx context.Context, deployer auth.Address, salt string, c Contract, args ...any) (auth.Address, error) {
	if c == nil {
		return "", fmt.Errorf("%w: contract", ErrNilParam)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addr, err := auth.ContractAddress(deployer, []byte(salt), h.network)
	if err != nil {
		return "", err
	}

	err = h.store.Update(func(txn ledger.Txn) error {
		st := ledger.NewState(txn)
		if err := st.CreateInstance(string(addr)); err != nil {
			if errors.Is(err, ledger.ErrInstanceExists) {
				return fmt.Errorf("%w: %s", ErrContractExists, addr)
			}
			return err
		}
		ctor, ok := c.(Constructor)
		if !ok {
			if len(args) > 0 {
				return fmt.Errorf("%w: contract takes no constructor arguments", ErrInvalidArgs)
			}
			return nil
		}
		inv := &invocation{host: h, state: st, auth: auth.NewEnforcer(h.network, st.Sequence(), nonceStore{st})}
		env := &Env{ctx: ctx, inv: inv, contract: addr, method: "__constructor", args: args}
		if err := ctor.Construct(env, args); err != nil {
			return fmt.Errorf("construct %s: %w", addr, err)
		}
		return nil
	})
	if err != nil {
		h.log.Warn("deploy failed", zap.String("contract", addr.String()), zap.Error(err))
		return "", err
	}

	h.mu.Lock()
	h.contracts[addr] = c
	h.mu.Unlock()
	h.log.Info("contract deployed", zap.String("contract", addr.String()), zap.String("salt", salt))
	return addr, nil
}

// Attach binds code to an existing contract instance, e.g. after reopening a ledger.
func (h *Host) Attach(addr auth.Address, c Contract) error {
	if c == nil {
		return fmt.Errorf("%w: contract", ErrNilParam)
	}
	err := h.store.View(func(txn ledger.Txn) error {
		return ledger.NewState(txn).CheckInstance(string(addr))
	})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.contracts[addr] = c
	h.mu.Unlock()
	return nil
}

func (h *Host) contract(addr auth.Address) (Contract, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.contracts[addr]
	return c, ok
}

// Invoke executes call as one atomic unit of work, authorizing RequireAuth
// checks with proofs.
func (h *Host) Invoke(ctx context.Context, call Call, proofs ...*auth.Proof) (*Result, error) {
	return h.run(ctx, call, modeInvoke, func(st *ledger.State) auth.Authorizer {
		return auth.NewEnforcer(h.network, st.Sequence(), nonceStore{st}, proofs...)
	})
}

// View executes call in a read-only transaction. Any write fails with
// ledger.ErrReadOnly, and RequireAuth always fails.
func (h *Host) View(ctx context.Context, call Call) (*Result, error) {
	return h.run(ctx, call, modeView, func(st *ledger.State) auth.Authorizer {
		return auth.NewEnforcer(h.network, st.Sequence(), nonceStore{st})
	})
}

// Simulate executes call, records the authorization it needs and rolls back.
func (h *Host) Simulate(ctx context.Context, call Call) (*Simulation, error) {
	rec := auth.NewRecorder()
	res, err := h.run(ctx, call, modeSimulate, func(*ledger.State) auth.Authorizer { return rec })
	if err != nil {
		return nil, err
	}
	return &Simulation{Result: *res, Auth: rec.Requirements()}, nil
}

// InvokeContract implements Invoker without authorization proofs.
func (h *Host) InvokeContract(ctx context.Context, contract auth.Address, method string, args ...any) (any, error) {
	res, err := h.Invoke(ctx, Call{Contract: contract, Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ReadOnly returns an Invoker that runs every call through View.
func (h *Host) ReadOnly() Invoker { return viewer{h} }

type viewer struct{ host *Host }

func (v viewer) InvokeContract(ctx context.Context, contract auth.Address, method string, args ...any) (any, error) {
	res, err := v.host.View(ctx, Call{Contract: contract, Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Restore revives an archived contract instance and the given archived
// persistent entries of that contract, each with the minimum TTL. Live
// entries are left as they are. Restoring needs no authorization.
func (h *Host) Restore(ctx context.Context, contract auth.Address, keys ...ledger.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := h.store.Update(func(txn ledger.Txn) error {
		st := ledger.NewState(txn)
		if err := st.RestoreInstance(string(contract)); err != nil {
			return err
		}
		sc := st.Scope(string(contract), ledger.Persistent)
		for _, k := range keys {
			if err := sc.Restore(k); err != nil {
				return fmt.Errorf("restore %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		h.log.Warn("restore failed", zap.String("contract", contract.String()), zap.Error(err))
		return err
	}
	h.log.Info("restored", zap.String("contract", contract.String()), zap.Int("keys", len(keys)))
	return nil
}

type runMode uint8

const (
	modeInvoke runMode = iota
	modeSimulate
	modeView
)

var errSimulated = errors.New("host: simulation rollback")

func (h *Host) run(ctx context.Context, call Call, mode runMode, authz func(*ledger.State) auth.Authorizer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	var res Result
	body := func(txn ledger.Txn) error {
		st := ledger.NewState(txn)
		inv := &invocation{host: h, state: st, auth: authz(st)}
		v, err := inv.call(ctx, 0, call)
		if err != nil {
			return err
		}
		res = Result{Value: v, Events: inv.events, Sequence: st.Sequence()}
		if mode == modeSimulate {
			return errSimulated
		}
		return nil
	}
	var err error
	if mode == modeView {
		err = h.store.View(body)
	} else {
		err = h.store.Update(body)
	}

	outcome := OutcomeCommitted
	switch {
	case mode == modeSimulate && errors.Is(err, errSimulated):
		outcome, err = OutcomeSimulated, nil
	case err != nil:
		outcome = OutcomeRolledBack
	case mode == modeView:
		outcome = OutcomeViewed
	}
	elapsed := time.Since(start)
	h.metrics.observe(call.Contract.String(), call.Method, outcome, elapsed)

	fields := []zap.Field{
		zap.String("contract", call.Contract.String()),
		zap.String("method", call.Method),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		h.log.Warn("invocation failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	h.log.Debug("invocation", append(fields, zap.Int("events", len(res.Events)))...)
	return &res, nil
}

// invocation is the state shared by all frames of one top-level invocation.
type invocation struct {
	host   *Host
	state  *ledger.State
	auth   auth.Authorizer
	events []Event
}

func (inv *invocation) call(ctx context.Context, depth int, call Call) (any, error) {
	if depth >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	c, ok := inv.host.contract(call.Contract)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, call.Contract)
	}
	if err := inv.state.CheckInstance(string(call.Contract)); err != nil {
		return nil, err
	}
	env := &Env{ctx: ctx, inv: inv, contract: call.Contract, method: call.Method, args: call.Args, depth: depth}
	v, err := c.Call(env, call.Method, call.Args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call.Method, err)
	}
	return v, nil
}

// nonceStore keeps consumed nonces in the signer's temporary tier until the proof expires.
type nonceStore struct {
	state *ledger.State
}

func (n nonceStore) ConsumeNonce(signer auth.Address, nonce string, liveUntil uint32) error {
	sc := n.state.Scope(string(signer), ledger.Temporary)
	k := ledger.StringKey("Nonce", nonce)
	used, err := sc.Has(k)
	if err != nil {
		return err
	}
	if used {
		return auth.ErrNonceUsed
	}
	return sc.SetUntil(k, true, liveUntil)
}
