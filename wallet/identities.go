package wallet

import (
	"fmt"
	"sort"
	"strings"
)

// NamedIdentity maps a name to a derivation index.
type NamedIdentity struct {
	Name  string `json:"name"`
	Index uint32 `json:"index"`
}

// State is the persisted identity table. Indices are never reused.
type State struct {
	Identities []NamedIdentity `json:"identities"`
	NextIndex  uint32          `json:"next_index"`
}

// NewState returns an empty State.
func NewState() *State {
	return &State{Identities: []NamedIdentity{}}
}

// Validate checks a decoded State for duplicate names or indices and for
// a NextIndex that would reuse an index.
func (s *State) Validate() error {
	names := make(map[string]bool, len(s.Identities))
	indices := make(map[uint32]string, len(s.Identities))
	for _, id := range s.Identities {
		if names[id.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrIdentityExists, id.Name)
		}
		names[id.Name] = true
		if prev, ok := indices[id.Index]; ok {
			return fmt.Errorf("wallet: identities %q and %q share index %d", prev, id.Name, id.Index)
		}
		indices[id.Index] = id.Name
		if id.Index >= s.NextIndex {
			return fmt.Errorf("wallet: next index %d would reuse index of %q", s.NextIndex, id.Name)
		}
	}
	return nil
}

// Add allocates the next index to name.
func (s *State) Add(name string) (NamedIdentity, error) {
	if name == "" || strings.ContainsAny(name, " \t\n/") {
		return NamedIdentity{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, err := s.Lookup(name); err == nil {
		return NamedIdentity{}, fmt.Errorf("%w: %q", ErrIdentityExists, name)
	}
	if s.NextIndex > MaxIdentityIndex {
		return NamedIdentity{}, ErrIndexOutOfRange
	}
	id := NamedIdentity{Name: name, Index: s.NextIndex}
	s.Identities = append(s.Identities, id)
	s.NextIndex++
	return id, nil
}

// Lookup returns the identity called name.
func (s *State) Lookup(name string) (NamedIdentity, error) {
	for _, id := range s.Identities {
		if id.Name == name {
			return id, nil
		}
	}
	return NamedIdentity{}, fmt.Errorf("%w: %q", ErrIdentityNotFound, name)
}

// List returns the identities sorted by index.
func (s *State) List() []NamedIdentity {
	out := append([]NamedIdentity(nil), s.Identities...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
