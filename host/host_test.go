package host

import (
	"context"
	"errors"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/ledger"
)

var errBoom = errors.New("boom")

// counter is a minimal contract exercising storage, auth and nested calls.
type counter struct{}

func (counter) Construct(env *Env, args []any) error {
	start, err := Arg[uint32](args, 0)
	if err != nil {
		return err
	}
	return env.Instance().Set(ledger.Named("Count"), start)
}

func (counter) Call(env *Env, method string, args []any) (any, error) {
	switch method {
	case "get":
		var n uint32
		if _, err := env.Instance().Get(ledger.Named("Count"), &n); err != nil {
			return nil, err
		}
		return n, nil
	case "incr":
		by, err := Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		if err := env.RequireAuth(by); err != nil {
			return nil, err
		}
		var n uint32
		if _, err := env.Instance().Get(ledger.Named("Count"), &n); err != nil {
			return nil, err
		}
		n++
		if err := env.Instance().Set(ledger.Named("Count"), n); err != nil {
			return nil, err
		}
		env.Publish("incr", n)
		return n, nil
	case "incr_then_fail":
		if err := env.Instance().Set(ledger.Named("Count"), uint32(999)); err != nil {
			return nil, err
		}
		env.Publish("incr", uint32(999))
		return nil, errBoom
	case "auth_then_fail":
		by, err := Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		if err := env.RequireAuth(by); err != nil {
			return nil, err
		}
		return nil, errBoom
	case "proxy":
		target, err := Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		inner, err := Arg[string](args, 1)
		if err != nil {
			return nil, err
		}
		return env.Call(target, inner, args[2:]...)
	case "recurse":
		return env.Call(env.CurrentContract(), "recurse")
	case "publish_twice":
		env.Publish("a", uint32(1))
		env.Publish("b", uint32(2))
		return len(env.Events()), nil
	}
	return nil, ErrUnknownMethod
}

type fixture struct {
	host    *Host
	store   ledger.Store
	key     *ec.PrivateKey
	user    auth.Address
	counter auth.Address
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := ledger.NewMemStore()
	h := New(store, auth.TestNet, opts...)
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	user, err := auth.AccountAddress(key.PubKey(), auth.TestNet)
	require.NoError(t, err)
	addr, err := h.Deploy(context.Background(), user, "counter", counter{}, uint32(0))
	require.NoError(t, err)
	return &fixture{host: h, store: store, key: key, user: user, counter: addr}
}

func (f *fixture) count(t *testing.T) uint32 {
	t.Helper()
	n, err := As[uint32](f.host.InvokeContract(context.Background(), f.counter, "get"))
	require.NoError(t, err)
	return n
}

// ---------------------------------------------------------------------------
// Deploy
// ---------------------------------------------------------------------------

func TestDeploy_RunsConstructorOnce(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, uint32(0), f.count(t))

	_, err := f.host.Deploy(context.Background(), f.user, "counter", counter{}, uint32(5))
	assert.ErrorIs(t, err, ErrContractExists)
	assert.Equal(t, uint32(0), f.count(t), "re-construction must not touch state")
}

func TestDeploy_ConstructorFailureLeavesNoInstance(t *testing.T) {
	f := newFixture(t)
	addr, err := f.host.Deploy(context.Background(), f.user, "bad", counter{}, "not-a-number")
	assert.ErrorIs(t, err, ErrInvalidArgs)
	assert.Empty(t, addr)

	// The instance was rolled back, so the same salt deploys cleanly.
	_, err = f.host.Deploy(context.Background(), f.user, "bad", counter{}, uint32(1))
	assert.NoError(t, err)
}

func TestAttach(t *testing.T) {
	f := newFixture(t)
	h2 := New(f.store, auth.TestNet)
	require.NoError(t, h2.Attach(f.counter, counter{}))
	n, err := As[uint32](h2.InvokeContract(context.Background(), f.counter, "get"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)

	assert.ErrorIs(t, h2.Attach("nowhere", counter{}), ledger.ErrInstanceNotFound)
	assert.ErrorIs(t, h2.Attach(f.counter, nil), ErrNilParam)
}

// ---------------------------------------------------------------------------
// Invoke
// ---------------------------------------------------------------------------

func TestInvoke_ContractNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.Invoke(context.Background(), Call{Contract: "nowhere", Method: "get"})
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestInvoke_UnknownMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.InvokeContract(context.Background(), f.counter, "nope")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestInvoke_FailureRollsBackWritesAndEvents(t *testing.T) {
	f := newFixture(t)
	res, err := f.host.Invoke(context.Background(), Call{Contract: f.counter, Method: "incr_then_fail"})
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, res)
	assert.Equal(t, uint32(0), f.count(t))
}

func TestInvoke_NestedFailureRollsBackCaller(t *testing.T) {
	f := newFixture(t)
	other, err := f.host.Deploy(context.Background(), f.user, "other", counter{}, uint32(0))
	require.NoError(t, err)

	_, err = f.host.InvokeContract(context.Background(), f.counter, "proxy", other, "incr_then_fail")
	assert.ErrorIs(t, err, errBoom)

	n, err := As[uint32](f.host.InvokeContract(context.Background(), other, "get"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)
}

func TestInvoke_CallDepth(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.InvokeContract(context.Background(), f.counter, "recurse")
	assert.ErrorIs(t, err, ErrCallDepth)
}

func TestInvoke_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.host.InvokeContract(ctx, f.counter, "get")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvoke_RequireAuthWithoutProof(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.InvokeContract(context.Background(), f.counter, "incr", f.user)
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
	assert.Equal(t, uint32(0), f.count(t))
}

// ---------------------------------------------------------------------------
// Simulate and Signer
// ---------------------------------------------------------------------------

func TestSimulate_RecordsAuthAndRollsBack(t *testing.T) {
	f := newFixture(t)
	sim, err := f.host.Simulate(context.Background(), Call{Contract: f.counter, Method: "incr", Args: []any{f.user}})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sim.Value)
	require.Len(t, sim.Auth, 1)
	assert.Equal(t, f.user, sim.Auth[0].Address)
	assert.Equal(t, "incr", sim.Auth[0].Invocation.Method)
	require.Len(t, sim.Events, 1)

	assert.Equal(t, uint32(0), f.count(t), "simulation must not commit")
}

func TestSigner_Invoke(t *testing.T) {
	f := newFixture(t)
	s, err := f.host.Signer(f.key)
	require.NoError(t, err)

	res, err := s.Invoke(context.Background(), Call{Contract: f.counter, Method: "incr", Args: []any{f.user}})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Value)
	require.Len(t, res.Events, 1)
	assert.Equal(t, Event{Contract: f.counter, Topic: "incr", Data: uint32(1)}, res.Events[0])

	n, err := As[uint32](s.InvokeContract(context.Background(), f.counter, "incr", f.user))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)
}

func TestSigner_NestedAuth(t *testing.T) {
	f := newFixture(t)
	other, err := f.host.Deploy(context.Background(), f.user, "other", counter{}, uint32(10))
	require.NoError(t, err)
	s, err := f.host.Signer(f.key)
	require.NoError(t, err)

	n, err := As[uint32](s.InvokeContract(context.Background(), f.counter, "proxy", other, "incr", f.user))
	require.NoError(t, err)
	assert.Equal(t, uint32(11), n)
}

func TestSigner_WrongKeyCannotAuthorize(t *testing.T) {
	f := newFixture(t)
	stranger, err := ec.NewPrivateKey()
	require.NoError(t, err)
	s, err := f.host.Signer(stranger)
	require.NoError(t, err)

	_, err = s.Invoke(context.Background(), Call{Contract: f.counter, Method: "incr", Args: []any{f.user}})
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
	assert.Equal(t, uint32(0), f.count(t))
}

func TestSigner_NilKey(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.Signer(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestProof_ReplayRejected(t *testing.T) {
	f := newFixture(t)
	call := Call{Contract: f.counter, Method: "incr", Args: []any{f.user}}
	s, err := f.host.Signer(f.key)
	require.NoError(t, err)
	proofs, err := s.Authorize(context.Background(), call)
	require.NoError(t, err)
	require.Len(t, proofs, 1)

	_, err = f.host.Invoke(context.Background(), call, proofs...)
	require.NoError(t, err)

	_, err = f.host.Invoke(context.Background(), call, proofs...)
	assert.ErrorIs(t, err, auth.ErrNonceUsed)
	assert.Equal(t, uint32(1), f.count(t))
}

func TestProof_RolledBackInvocationDoesNotConsumeNonce(t *testing.T) {
	f := newFixture(t)
	root, err := auth.NewInvocation(f.counter, "auth_then_fail", f.user)
	require.NoError(t, err)
	seq, err := f.host.Sequence()
	require.NoError(t, err)
	proof, err := auth.Sign(f.key, auth.TestNet, seq+10, root)
	require.NoError(t, err)

	call := Call{Contract: f.counter, Method: "auth_then_fail", Args: []any{f.user}}
	for i := 0; i < 2; i++ {
		_, err = f.host.Invoke(context.Background(), call, proof)
		assert.ErrorIs(t, err, errBoom, "attempt %d must fail on the contract, not the nonce", i)
	}

	require.NoError(t, f.store.View(func(txn ledger.Txn) error {
		used, err := ledger.NewState(txn).Scope(string(f.user), ledger.Temporary).Has(ledger.StringKey("Nonce", proof.Nonce))
		require.NoError(t, err)
		assert.False(t, used)
		return nil
	}))
}

func TestProof_Expired(t *testing.T) {
	f := newFixture(t, WithProofLifetime(2))
	call := Call{Contract: f.counter, Method: "incr", Args: []any{f.user}}
	s, err := f.host.Signer(f.key)
	require.NoError(t, err)
	proofs, err := s.Authorize(context.Background(), call)
	require.NoError(t, err)

	_, err = f.host.AdvanceLedger(3)
	require.NoError(t, err)
	_, err = f.host.Invoke(context.Background(), call, proofs...)
	assert.ErrorIs(t, err, auth.ErrProofExpired)
}

// ---------------------------------------------------------------------------
// View and Restore
// ---------------------------------------------------------------------------

func TestView_ReadsWithoutWriting(t *testing.T) {
	f := newFixture(t)

	res, err := f.host.View(context.Background(), Call{Contract: f.counter, Method: "get"})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.Value)

	_, err = f.host.View(context.Background(), Call{Contract: f.counter, Method: "incr_then_fail"})
	assert.ErrorIs(t, err, ledger.ErrReadOnly)
	assert.Equal(t, uint32(0), f.count(t))

	n, err := As[uint32](f.host.ReadOnly().InvokeContract(context.Background(), f.counter, "get"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)
}

func TestView_RefusesAuthorization(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.View(context.Background(), Call{Contract: f.counter, Method: "incr", Args: []any{f.user}})
	assert.ErrorIs(t, err, auth.ErrNotAuthorized)
}

func TestEnv_Events(t *testing.T) {
	f := newFixture(t)
	res, err := f.host.Invoke(context.Background(), Call{Contract: f.counter, Method: "publish_twice"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Value)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "b", res.Events[1].Topic)
}

func TestRestore_RevivesArchivedInstance(t *testing.T) {
	f := newFixture(t)
	_, err := f.host.AdvanceLedger(ledger.MinPersistentTTL)
	require.NoError(t, err)

	_, err = f.host.InvokeContract(context.Background(), f.counter, "get")
	assert.ErrorIs(t, err, ledger.ErrEntryArchived)

	record := ledger.U32Key("Record", 1)
	err = f.host.Restore(context.Background(), f.counter, record)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound, "missing persistent key")

	require.NoError(t, f.host.Restore(context.Background(), f.counter))
	assert.Equal(t, uint32(0), f.count(t))

	_, err = f.host.AdvanceLedger(ledger.MinPersistentTTL - 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), f.count(t), "restored instance lives the minimum TTL")

	err = f.host.Restore(context.Background(), auth.Address("1BoatSLRHtKNngkdXEeobR76b53LETtpyT"))
	assert.ErrorIs(t, err, ledger.ErrInstanceNotFound)
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestMetrics_CountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	f := newFixture(t, WithMetrics(m))

	f.count(t)
	_, _ = f.host.InvokeContract(context.Background(), f.counter, "incr_then_fail")
	_, err = f.host.Simulate(context.Background(), Call{Contract: f.counter, Method: "get"})
	require.NoError(t, err)

	_, err = f.host.View(context.Background(), Call{Contract: f.counter, Method: "get"})
	require.NoError(t, err)

	c := f.counter.String()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues(c, "get", OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues(c, "incr_then_fail", OutcomeRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues(c, "get", OutcomeSimulated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues(c, "get", OutcomeViewed)))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}

// ---------------------------------------------------------------------------
// Args
// ---------------------------------------------------------------------------

func TestArgs(t *testing.T) {
	args := []any{uint32(7), "x"}

	n, err := Arg[uint32](args, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), n)

	_, err = Arg[uint32](args, 1)
	assert.ErrorIs(t, err, ErrInvalidArgs)
	_, err = Arg[uint32](args, 2)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	assert.NoError(t, ArgCount(args, 2))
	assert.ErrorIs(t, ArgCount(args, 3), ErrInvalidArgs)

	s, err := As[string](nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s)
	_, err = As[string](uint32(1), nil)
	assert.ErrorIs(t, err, ErrUnexpectedResult)
	_, err = As[string]("x", errBoom)
	assert.ErrorIs(t, err, errBoom)
}
