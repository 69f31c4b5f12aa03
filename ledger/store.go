package ledger

import (
	"maps"
	"sync"
)

// TTL bounds, in ledgers.
const (
	MinPersistentTTL uint32 = 4096
	MinTemporaryTTL  uint32 = 16
	MaxEntryTTL      uint32 = 3110400

	// LedgersPerDay assumes five-second ledger close times.
	LedgersPerDay uint32 = 17280
)

// Entry is the stored form of a ledger value.
type Entry struct {
	Value     []byte
	LiveUntil uint32 // last ledger sequence at which the entry is live
}

// Txn is one atomic unit of work against the ledger. Writes made through a
// Txn become visible only if the enclosing Update returns nil.
type Txn interface {
	// Get returns the raw entry for key, or nil if none exists.
	Get(tier Tier, key []byte) (*Entry, error)

	// Put writes the raw entry for key.
	Put(tier Tier, key []byte, e *Entry) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(tier Tier, key []byte) error

	// Sequence returns the ledger sequence the transaction executes at.
	Sequence() uint32
}

// Store persists ledger entries and the ledger sequence.
type Store interface {
	// Update runs fn in a read-write transaction. If fn returns an error
	// every write made by fn is discarded.
	Update(fn func(Txn) error) error

	// View runs fn in a read-only transaction.
	View(fn func(Txn) error) error

	// Sequence returns the current ledger sequence.
	Sequence() (uint32, error)

	// AdvanceSequence closes n ledgers and returns the new sequence.
	AdvanceSequence(n uint32) (uint32, error)

	// Close releases the underlying resources.
	Close() error
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu   sync.RWMutex
	data map[Tier]map[string]Entry
	seq  uint32
}

// NewMemStore creates an empty in-memory ledger at sequence 1.
func NewMemStore() *MemStore {
	return &MemStore{data: newTierMaps(), seq: 1}
}

func newTierMaps() map[Tier]map[string]Entry {
	return map[Tier]map[string]Entry{
		Instance:   {},
		Persistent: {},
		Temporary:  {},
	}
}

// Update runs fn against a private copy of the ledger and swaps it in on success.
func (s *MemStore) Update(fn func(Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[Tier]map[string]Entry, len(s.data))
	for tier, m := range s.data {
		work[tier] = maps.Clone(m)
	}
	if err := fn(&memTxn{data: work, seq: s.seq, writable: true}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// View runs fn against the current ledger without allowing writes.
func (s *MemStore) View(fn func(Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTxn{data: s.data, seq: s.seq})
}

// Sequence returns the current ledger sequence.
func (s *MemStore) Sequence() (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq, nil
}

// AdvanceSequence closes n ledgers.
func (s *MemStore) AdvanceSequence(n uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq += n
	return s.seq, nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

type memTxn struct {
	data     map[Tier]map[string]Entry
	seq      uint32
	writable bool
}

func (t *memTxn) Get(tier Tier, key []byte) (*Entry, error) {
	if !tier.valid() {
		return nil, ErrInvalidTier
	}
	e, ok := t.data[tier][string(key)]
	if !ok {
		return nil, nil
	}
	return &Entry{Value: append([]byte(nil), e.Value...), LiveUntil: e.LiveUntil}, nil
}

func (t *memTxn) Put(tier Tier, key []byte, e *Entry) error {
	if !tier.valid() {
		return ErrInvalidTier
	}
	if !t.writable {
		return ErrReadOnly
	}
	if e == nil {
		return ErrNilParam
	}
	t.data[tier][string(key)] = Entry{Value: append([]byte(nil), e.Value...), LiveUntil: e.LiveUntil}
	return nil
}

func (t *memTxn) Delete(tier Tier, key []byte) error {
	if !tier.valid() {
		return ErrInvalidTier
	}
	if !t.writable {
		return ErrReadOnly
	}
	delete(t.data[tier], string(key))
	return nil
}

func (t *memTxn) Sequence() uint32 { return t.seq }
