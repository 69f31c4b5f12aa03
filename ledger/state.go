package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// State layers TTL and archival rules over a raw Txn. A State lives for one
// unit of work.
type State struct {
	txn Txn
}

// NewState wraps txn.
func NewState(txn Txn) *State { return &State{txn: txn} }

// Sequence returns the ledger sequence of the unit of work.
func (s *State) Sequence() uint32 { return s.txn.Sequence() }

// CreateInstance writes the instance marker for contract with the minimum
// persistent TTL.
func (s *State) CreateInstance(contract string) error {
	e, err := s.txn.Get(Instance, instanceKey(contract))
	if err != nil {
		return err
	}
	if e != nil {
		return fmt.Errorf("%w: %s", ErrInstanceExists, contract)
	}
	return s.txn.Put(Instance, instanceKey(contract), &Entry{LiveUntil: s.Sequence() + MinPersistentTTL - 1})
}

// CheckInstance reports whether contract has a live instance.
func (s *State) CheckInstance(contract string) error {
	e, err := s.txn.Get(Instance, instanceKey(contract))
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, contract)
	}
	if e.LiveUntil < s.Sequence() {
		return fmt.Errorf("%w: instance %s", ErrEntryArchived, contract)
	}
	return nil
}

// ExtendInstanceTTL extends the lifetime of contract's instance tier.
func (s *State) ExtendInstanceTTL(contract string, threshold, extendTo uint32) error {
	if err := s.CheckInstance(contract); err != nil {
		return err
	}
	return s.extend(Instance, instanceKey(contract), threshold, extendTo)
}

// RestoreInstance revives an archived contract instance with the minimum
// persistent TTL. Restoring a live instance is a no-op.
func (s *State) RestoreInstance(contract string) error {
	key := instanceKey(contract)
	e, err := s.txn.Get(Instance, key)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, contract)
	}
	seq := s.Sequence()
	if e.LiveUntil >= seq {
		return nil
	}
	e.LiveUntil = seq + MinPersistentTTL - 1
	return s.txn.Put(Instance, key, e)
}

// InstanceTTL returns the remaining ledgers of contract's instance tier.
func (s *State) InstanceTTL(contract string) (uint32, error) {
	if err := s.CheckInstance(contract); err != nil {
		return 0, err
	}
	e, err := s.txn.Get(Instance, instanceKey(contract))
	if err != nil {
		return 0, err
	}
	return e.LiveUntil - s.Sequence(), nil
}

// Scope returns contract's view of one storage tier.
func (s *State) Scope(contract string, tier Tier) Scope {
	return Scope{state: s, contract: contract, tier: tier}
}

// load fetches the entry behind key applying the tier's expiry rule.
// Archived persistent entries fail; expired temporary entries read as absent.
func (s *State) load(tier Tier, contract string, key []byte) (*Entry, error) {
	if tier == Instance {
		if err := s.CheckInstance(contract); err != nil {
			return nil, err
		}
	}
	e, err := s.txn.Get(tier, key)
	if err != nil || e == nil {
		return nil, err
	}
	if tier == Instance || e.LiveUntil >= s.Sequence() {
		return e, nil
	}
	if tier == Temporary {
		return nil, nil
	}
	return nil, ErrEntryArchived
}

func (s *State) extend(tier Tier, key []byte, threshold, extendTo uint32) error {
	e, err := s.txn.Get(tier, key)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrEntryNotFound
	}
	seq := s.Sequence()
	if extendTo > MaxEntryTTL {
		extendTo = MaxEntryTTL
	}
	if e.LiveUntil-seq >= threshold {
		return nil
	}
	if target := seq + extendTo; target > e.LiveUntil {
		e.LiveUntil = target
		return s.txn.Put(tier, key, e)
	}
	return nil
}

// Scope is one contract's view of one storage tier. Keys are contract-local.
type Scope struct {
	state    *State
	contract string
	tier     Tier
}

// Tier returns the storage tier of the scope.
func (sc Scope) Tier() Tier { return sc.tier }

// Has reports whether a live entry exists for k.
func (sc Scope) Has(k Key) (bool, error) {
	e, err := sc.state.load(sc.tier, sc.contract, encodeKey(sc.contract, k))
	if err != nil {
		return false, fmt.Errorf("%w: %s %s", err, sc.tier, k)
	}
	return e != nil, nil
}

// Get decodes the entry for k into v. It returns false if no live entry exists.
func (sc Scope) Get(k Key, v any) (bool, error) {
	if v == nil {
		return false, ErrNilParam
	}
	e, err := sc.state.load(sc.tier, sc.contract, encodeKey(sc.contract, k))
	if err != nil {
		return false, fmt.Errorf("%w: %s %s", err, sc.tier, k)
	}
	if e == nil {
		return false, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(e.Value)).Decode(v); err != nil {
		return false, fmt.Errorf("ledger: decode %s %s: %w", sc.tier, k, err)
	}
	return true, nil
}

// Set writes v under k. A new entry starts with the tier's minimum TTL; an
// existing live entry keeps its TTL. Archived entries must be restored first.
func (sc Scope) Set(k Key, v any) error {
	key := encodeKey(sc.contract, k)
	e, err := sc.state.load(sc.tier, sc.contract, key)
	if err != nil {
		return fmt.Errorf("%w: %s %s", err, sc.tier, k)
	}
	liveUntil := uint32(0)
	switch {
	case e != nil:
		liveUntil = e.LiveUntil
	case sc.tier == Persistent:
		liveUntil = sc.state.Sequence() + MinPersistentTTL - 1
	case sc.tier == Temporary:
		liveUntil = sc.state.Sequence() + MinTemporaryTTL - 1
	}
	return sc.put(key, k, v, liveUntil)
}

// SetUntil writes v under k and pins its TTL to liveUntil. Only valid on
// the temporary tier, where entries are never restored.
func (sc Scope) SetUntil(k Key, v any, liveUntil uint32) error {
	if sc.tier != Temporary {
		return fmt.Errorf("%w: SetUntil on %s", ErrInvalidTier, sc.tier)
	}
	if maxUntil := sc.state.Sequence() + MaxEntryTTL - 1; liveUntil > maxUntil {
		liveUntil = maxUntil
	}
	return sc.put(encodeKey(sc.contract, k), k, v, liveUntil)
}

func (sc Scope) put(key []byte, k Key, v any, liveUntil uint32) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("ledger: encode %s %s: %w", sc.tier, k, err)
	}
	return sc.state.txn.Put(sc.tier, key, &Entry{Value: buf.Bytes(), LiveUntil: liveUntil})
}

// Remove deletes the entry for k.
func (sc Scope) Remove(k Key) error {
	if sc.tier == Instance {
		if err := sc.state.CheckInstance(sc.contract); err != nil {
			return err
		}
	}
	return sc.state.txn.Delete(sc.tier, encodeKey(sc.contract, k))
}

// ExtendTTL extends the entry for k to extendTo ledgers from now when fewer
// than threshold ledgers remain. On the instance tier it extends the
// instance itself.
func (sc Scope) ExtendTTL(k Key, threshold, extendTo uint32) error {
	if sc.tier == Instance {
		return sc.state.ExtendInstanceTTL(sc.contract, threshold, extendTo)
	}
	key := encodeKey(sc.contract, k)
	e, err := sc.state.load(sc.tier, sc.contract, key)
	if err != nil {
		return fmt.Errorf("%w: %s %s", err, sc.tier, k)
	}
	if e == nil {
		return fmt.Errorf("%w: %s %s", ErrEntryNotFound, sc.tier, k)
	}
	return sc.state.extend(sc.tier, key, threshold, extendTo)
}

// TTL returns the number of ledgers the entry for k stays live after the current one.
func (sc Scope) TTL(k Key) (uint32, error) {
	if sc.tier == Instance {
		return sc.state.InstanceTTL(sc.contract)
	}
	e, err := sc.state.load(sc.tier, sc.contract, encodeKey(sc.contract, k))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s", err, sc.tier, k)
	}
	if e == nil {
		return 0, fmt.Errorf("%w: %s %s", ErrEntryNotFound, sc.tier, k)
	}
	return e.LiveUntil - sc.state.Sequence(), nil
}

// Restore revives an archived persistent entry with the minimum TTL. On the
// instance tier it restores the instance itself. Restoring a live entry is a
// no-op.
func (sc Scope) Restore(k Key) error {
	if sc.tier == Instance {
		return sc.state.RestoreInstance(sc.contract)
	}
	if sc.tier != Persistent {
		return fmt.Errorf("%w: %s tier", ErrNotRestorable, sc.tier)
	}
	key := encodeKey(sc.contract, k)
	e, err := sc.state.txn.Get(Persistent, key)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, k)
	}
	seq := sc.state.Sequence()
	if e.LiveUntil >= seq {
		return nil
	}
	e.LiveUntil = seq + MinPersistentTTL - 1
	return sc.state.txn.Put(Persistent, key, e)
}
