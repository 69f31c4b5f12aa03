package ledger

import (
	"encoding/binary"
	"fmt"
)

// Tier selects the storage class of an entry.
type Tier uint8

const (
	// Instance entries share the lifetime of their contract instance.
	Instance Tier = iota + 1
	// Persistent entries carry their own TTL and are archived, not lost, when it runs out.
	Persistent
	// Temporary entries carry their own TTL and are dropped when it runs out.
	Temporary
)

func (t Tier) String() string {
	switch t {
	case Instance:
		return "instance"
	case Persistent:
		return "persistent"
	case Temporary:
		return "temporary"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

func (t Tier) valid() bool {
	return t >= Instance && t <= Temporary
}

// Key names one entry within a contract's storage. Name selects the key
// variant (e.g. "Geo"), ID carries the identifier embedded in it.
type Key struct {
	Name string
	ID   string
	kind idKind
}

type idKind uint8

const (
	idNone idKind = iota
	idU32
	idString
)

// Named returns a key variant without an embedded identifier.
func Named(name string) Key { return Key{Name: name} }

// U32Key returns a key variant carrying a numeric identifier. The identifier
// is encoded big-endian so keys of one variant iterate in numeric order.
func U32Key(name string, id uint32) Key {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, id)
	return Key{Name: name, ID: string(b), kind: idU32}
}

// StringKey returns a key variant carrying a string identifier such as an address.
func StringKey(name, id string) Key { return Key{Name: name, ID: id, kind: idString} }

func (k Key) String() string {
	switch {
	case k.kind == idU32 && len(k.ID) == 4:
		return fmt.Sprintf("%s(%d)", k.Name, binary.BigEndian.Uint32([]byte(k.ID)))
	case k.ID == "":
		return k.Name
	default:
		return fmt.Sprintf("%s(%s)", k.Name, k.ID)
	}
}

// encodeKey lays out contract || 0x00 || name || 0x00 || id.
func encodeKey(contract string, k Key) []byte {
	buf := make([]byte, 0, len(contract)+len(k.Name)+len(k.ID)+2)
	buf = append(buf, contract...)
	buf = append(buf, 0)
	buf = append(buf, k.Name...)
	buf = append(buf, 0)
	buf = append(buf, k.ID...)
	return buf
}

// instanceKey is the marker entry whose TTL governs a contract's instance tier.
func instanceKey(contract string) []byte {
	return encodeKey(contract, Key{Name: "\x00instance"})
}
