// Package nft keeps non-fungible ownership for a contract: who owns each
// token id, how many tokens each address holds, and the collection's
// display metadata.
package nft

import (
	"fmt"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/ledger"
)

// Ownership records are kept alive for this many ledgers on every write.
const ownershipTTL = 30 * ledger.LedgersPerDay

// Metadata describes the collection.
type Metadata struct {
	BaseURI string
	Name    string
	Symbol  string
}

// MintEvent is published when a token gets its first owner.
type MintEvent struct {
	To      auth.Address
	TokenID uint32
}

var metadataKey = ledger.Named("Metadata")

// OwnerKey is the persistent key holding the owner of a token.
func OwnerKey(id uint32) ledger.Key { return ledger.U32Key("Owner", id) }

// BalanceKey is the persistent key holding an address's token count.
func BalanceKey(addr auth.Address) ledger.Key { return ledger.StringKey("Balance", string(addr)) }

// SetMetadata stores the collection metadata in the instance tier.
func SetMetadata(env *host.Env, md Metadata) error {
	return env.Instance().Set(metadataKey, md)
}

// GetMetadata returns the collection metadata.
func GetMetadata(env *host.Env) (Metadata, error) {
	var md Metadata
	ok, err := env.Instance().Get(metadataKey, &md)
	if err != nil {
		return Metadata{}, err
	}
	if !ok {
		return Metadata{}, ErrMetadataNotSet
	}
	return md, nil
}

// Name returns the collection name.
func Name(env *host.Env) (string, error) {
	md, err := GetMetadata(env)
	return md.Name, err
}

// Symbol returns the collection symbol.
func Symbol(env *host.Env) (string, error) {
	md, err := GetMetadata(env)
	return md.Symbol, err
}

// BaseURI returns the collection base URI.
func BaseURI(env *host.Env) (string, error) {
	md, err := GetMetadata(env)
	return md.BaseURI, err
}

// Mint assigns token id to to and bumps to's balance. It does not check
// authorization; the calling contract decides who may mint.
func Mint(env *host.Env, to auth.Address, id uint32) error {
	if err := to.Validate(); err != nil {
		return err
	}
	store := env.Persistent()
	taken, err := store.Has(OwnerKey(id))
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %d", ErrTokenAlreadyMinted, id)
	}
	if err := store.Set(OwnerKey(id), to); err != nil {
		return err
	}
	if err := store.ExtendTTL(OwnerKey(id), ledger.MinPersistentTTL, ownershipTTL); err != nil {
		return err
	}

	n, err := Balance(env, to)
	if err != nil {
		return err
	}
	if err := store.Set(BalanceKey(to), n+1); err != nil {
		return err
	}
	if err := store.ExtendTTL(BalanceKey(to), ledger.MinPersistentTTL, ownershipTTL); err != nil {
		return err
	}

	env.Publish("mint", MintEvent{To: to, TokenID: id})
	return nil
}

// ExtendTTL keeps the ownership record of token id and its owner's balance
// alive for extendTo ledgers when fewer than threshold remain.
func ExtendTTL(env *host.Env, id uint32, threshold, extendTo uint32) error {
	owner, err := OwnerOf(env, id)
	if err != nil {
		return err
	}
	store := env.Persistent()
	if err := store.ExtendTTL(OwnerKey(id), threshold, extendTo); err != nil {
		return err
	}
	return store.ExtendTTL(BalanceKey(owner), threshold, extendTo)
}

// OwnerOf returns the owner of token id.
func OwnerOf(env *host.Env, id uint32) (auth.Address, error) {
	var owner auth.Address
	ok, err := env.Persistent().Get(OwnerKey(id), &owner)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrNonExistentToken, id)
	}
	return owner, nil
}

// Balance returns the number of tokens addr holds.
func Balance(env *host.Env, addr auth.Address) (uint32, error) {
	var n uint32
	if _, err := env.Persistent().Get(BalanceKey(addr), &n); err != nil {
		return 0, err
	}
	return n, nil
}
