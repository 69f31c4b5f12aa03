package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStore_SequencePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	seq, err := s.Sequence()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), seq)

	seq, err = s.AdvanceSequence(41)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), seq)
	require.NoError(t, s.Update(func(txn Txn) error {
		st := NewState(txn)
		if err := st.CreateInstance(testContract); err != nil {
			return err
		}
		return st.Scope(testContract, Persistent).Set(U32Key("Geo", 5), geo{-1, 1})
	}))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	seq, err = s.Sequence()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), seq)

	require.NoError(t, s.View(func(txn Txn) error {
		var got geo
		ok, err := NewState(txn).Scope(testContract, Persistent).Get(U32Key("Geo", 5), &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, geo{-1, 1}, got)
		return nil
	}))
}

func TestBoltStore_InvalidTier(t *testing.T) {
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer s.Close()

	err = s.Update(func(txn Txn) error {
		_, err := txn.Get(Tier(9), []byte("k"))
		return err
	})
	assert.ErrorIs(t, err, ErrInvalidTier)
}
