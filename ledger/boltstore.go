package ledger

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketInstance   = []byte("instance")
	bucketPersistent = []byte("persistent")
	bucketTemporary  = []byte("temporary")
	bucketMeta       = []byte("meta")

	metaSequence = []byte("sequence")
)

// BoltStore persists the ledger in a bbolt database, one bucket per tier.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketInstance, bucketPersistent, bucketTemporary, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta.Get(metaSequence) == nil {
			return meta.Put(metaSequence, seqBytes(1))
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Update runs fn inside a bbolt read-write transaction.
func (s *BoltStore) Update(fn func(Txn) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTxn{tx: tx, seq: readSequence(tx)})
	})
}

// View runs fn inside a bbolt read-only transaction.
func (s *BoltStore) View(fn func(Txn) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTxn{tx: tx, seq: readSequence(tx)})
	})
}

// Sequence returns the current ledger sequence.
func (s *BoltStore) Sequence() (uint32, error) {
	var seq uint32
	err := s.db.View(func(tx *bbolt.Tx) error {
		seq = readSequence(tx)
		return nil
	})
	return seq, err
}

// AdvanceSequence closes n ledgers.
func (s *BoltStore) AdvanceSequence(n uint32) (uint32, error) {
	var seq uint32
	err := s.db.Update(func(tx *bbolt.Tx) error {
		seq = readSequence(tx) + n
		return tx.Bucket(bucketMeta).Put(metaSequence, seqBytes(seq))
	})
	if err != nil {
		return 0, fmt.Errorf("boltstore: advance sequence: %w", err)
	}
	return seq, nil
}

func seqBytes(seq uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, seq)
	return b
}

func readSequence(tx *bbolt.Tx) uint32 {
	v := tx.Bucket(bucketMeta).Get(metaSequence)
	if len(v) != 4 {
		return 1
	}
	return binary.BigEndian.Uint32(v)
}

func tierBucket(tier Tier) ([]byte, error) {
	switch tier {
	case Instance:
		return bucketInstance, nil
	case Persistent:
		return bucketPersistent, nil
	case Temporary:
		return bucketTemporary, nil
	default:
		return nil, ErrInvalidTier
	}
}

type boltTxn struct {
	tx  *bbolt.Tx
	seq uint32
}

func (t *boltTxn) Get(tier Tier, key []byte) (*Entry, error) {
	name, err := tierBucket(tier)
	if err != nil {
		return nil, err
	}
	data := t.tx.Bucket(name).Get(key)
	if data == nil {
		return nil, nil
	}
	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("boltstore: decode %s entry: %w", tier, err)
	}
	return &e, nil
}

func (t *boltTxn) Put(tier Tier, key []byte, e *Entry) error {
	if e == nil {
		return ErrNilParam
	}
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	name, err := tierBucket(tier)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("boltstore: encode %s entry: %w", tier, err)
	}
	if err := t.tx.Bucket(name).Put(key, buf.Bytes()); err != nil {
		return fmt.Errorf("boltstore: put %s entry: %w", tier, err)
	}
	return nil
}

func (t *boltTxn) Delete(tier Tier, key []byte) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	name, err := tierBucket(tier)
	if err != nil {
		return err
	}
	if err := t.tx.Bucket(name).Delete(key); err != nil {
		return fmt.Errorf("boltstore: delete %s entry: %w", tier, err)
	}
	return nil
}

func (t *boltTxn) Sequence() uint32 { return t.seq }
