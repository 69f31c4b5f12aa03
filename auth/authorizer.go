package auth

import "fmt"

// Authorizer decides the RequireAuth checks of one top-level invocation.
type Authorizer interface {
	// Require succeeds if addr authorized call in the current invocation.
	Require(addr Address, call Invocation) error
}

// NonceStore records consumed nonces. Implementations write inside the
// invocation's unit of work so a rolled-back invocation consumes nothing.
type NonceStore interface {
	ConsumeNonce(signer Address, nonce string, liveUntil uint32) error
}

// Enforcer checks RequireAuth calls against supplied proofs.
//
// A proof's root authorizes one call equal to it; a sub-invocation becomes
// eligible once its parent has been matched. Every node authorizes at most
// one call, and a proof's nonce is consumed on its first match.
type Enforcer struct {
	network  Network
	sequence uint32
	nonces   NonceStore
	proofs   []*tracked
}

type tracked struct {
	proof     *Proof
	signer    Address
	signerErr error
	checked   bool
	verifyErr error
	consumed  bool
	matched   map[*Invocation]bool
}

// NewEnforcer returns an Enforcer for one invocation at sequence.
func NewEnforcer(network Network, sequence uint32, nonces NonceStore, proofs ...*Proof) *Enforcer {
	e := &Enforcer{network: network, sequence: sequence, nonces: nonces}
	for _, p := range proofs {
		if p == nil {
			continue
		}
		t := &tracked{proof: p, matched: make(map[*Invocation]bool)}
		t.signer, t.signerErr = p.Signer(network)
		e.proofs = append(e.proofs, t)
	}
	return e
}

// Require implements Authorizer.
func (e *Enforcer) Require(addr Address, call Invocation) error {
	var proofErr error
	for _, t := range e.proofs {
		if t.signerErr != nil {
			proofErr = t.signerErr
			continue
		}
		if t.signer != addr {
			continue
		}
		if !t.checked {
			t.verifyErr = t.proof.Verify(e.network, e.sequence)
			t.checked = true
		}
		if t.verifyErr != nil {
			proofErr = t.verifyErr
			continue
		}

		node := t.eligible(call)
		if node == nil {
			continue
		}
		if !t.consumed {
			if e.nonces == nil {
				return fmt.Errorf("%w: no nonce store", ErrNotAuthorized)
			}
			if err := e.nonces.ConsumeNonce(addr, t.proof.Nonce, t.proof.ExpirationLedger); err != nil {
				return fmt.Errorf("%w: %w", ErrNotAuthorized, err)
			}
			t.consumed = true
		}
		t.matched[node] = true
		return nil
	}
	if proofErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotAuthorized, addr, proofErr)
	}
	return fmt.Errorf("%w: %s did not authorize %s", ErrNotAuthorized, addr, call)
}

// eligible returns the first unmatched node equal to call whose parent is matched.
func (t *tracked) eligible(call Invocation) *Invocation {
	root := &t.proof.Root
	if !t.matched[root] {
		if root.SameCall(call) {
			return root
		}
		return nil
	}
	return t.eligibleUnder(root, call)
}

func (t *tracked) eligibleUnder(node *Invocation, call Invocation) *Invocation {
	for i := range node.Sub {
		child := &node.Sub[i]
		if t.matched[child] {
			if n := t.eligibleUnder(child, call); n != nil {
				return n
			}
			continue
		}
		if child.SameCall(call) {
			return child
		}
	}
	return nil
}

// Requirement is one address's recorded authorization tree.
type Requirement struct {
	Address    Address
	Invocation Invocation
}

// Recorder accepts every RequireAuth call and records, per address, the
// tree a signer must sign for the invocation to succeed. The first call
// for an address becomes the root; later ones become its sub-invocations.
type Recorder struct {
	order []Address
	roots map[Address]*Invocation
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{roots: make(map[Address]*Invocation)}
}

// Require implements Authorizer.
func (r *Recorder) Require(addr Address, call Invocation) error {
	root, ok := r.roots[addr]
	if !ok {
		c := call
		r.roots[addr] = &c
		r.order = append(r.order, addr)
		return nil
	}
	root.Sub = append(root.Sub, call)
	return nil
}

// Requirements returns the recorded trees in first-seen order.
func (r *Recorder) Requirements() []Requirement {
	out := make([]Requirement, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, Requirement{Address: addr, Invocation: *r.roots[addr]})
	}
	return out
}
