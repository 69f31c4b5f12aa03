package host

import (
	"context"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/boscora/impacta-go/auth"
)

// Signer invokes contracts on behalf of a set of keys. Each invocation is
// simulated first to learn which addresses must authorize which calls; the
// Signer signs the trees for addresses it holds keys for and submits.
// Trees for other addresses stay unsigned, so the invocation fails.
type Signer struct {
	host *Host
	keys map[auth.Address]*ec.PrivateKey
}

// Compile-time interface check.
var _ Invoker = (*Signer)(nil)

// Signer returns a Signer holding keys.
func (h *Host) Signer(keys ...*ec.PrivateKey) (*Signer, error) {
	s := &Signer{host: h, keys: make(map[auth.Address]*ec.PrivateKey, len(keys))}
	for _, k := range keys {
		if k == nil {
			return nil, fmt.Errorf("%w: private key", ErrNilParam)
		}
		addr, err := auth.AccountAddress(k.PubKey(), h.network)
		if err != nil {
			return nil, err
		}
		s.keys[addr] = k
	}
	return s, nil
}

// Authorize simulates call and returns proofs for every requirement the Signer can sign.
func (s *Signer) Authorize(ctx context.Context, call Call) ([]*auth.Proof, error) {
	sim, err := s.host.Simulate(ctx, call)
	if err != nil {
		return nil, err
	}
	var proofs []*auth.Proof
	for _, req := range sim.Auth {
		key, ok := s.keys[req.Address]
		if !ok {
			continue
		}
		p, err := auth.Sign(key, s.host.network, sim.Sequence+s.host.proofLifetime, req.Invocation)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, nil
}

// Invoke authorizes and executes call.
func (s *Signer) Invoke(ctx context.Context, call Call) (*Result, error) {
	proofs, err := s.Authorize(ctx, call)
	if err != nil {
		return nil, err
	}
	return s.host.Invoke(ctx, call, proofs...)
}

// InvokeContract implements Invoker.
func (s *Signer) InvokeContract(ctx context.Context, contract auth.Address, method string, args ...any) (any, error) {
	res, err := s.Invoke(ctx, Call{Contract: contract, Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}
