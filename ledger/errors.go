package ledger

import "errors"

var (
	// ErrEntryNotFound indicates the key has no live or archived entry.
	ErrEntryNotFound = errors.New("ledger: entry not found")

	// ErrEntryArchived indicates the entry's TTL ran out and it must be restored before use.
	ErrEntryArchived = errors.New("ledger: entry archived")

	// ErrInstanceNotFound indicates no contract instance exists at the address.
	ErrInstanceNotFound = errors.New("ledger: contract instance not found")

	// ErrInstanceExists indicates a contract instance was already created at the address.
	ErrInstanceExists = errors.New("ledger: contract instance already exists")

	// ErrReadOnly indicates a write was attempted inside a read-only view.
	ErrReadOnly = errors.New("ledger: read-only transaction")

	// ErrInvalidTier indicates an unknown storage tier.
	ErrInvalidTier = errors.New("ledger: invalid storage tier")

	// ErrNotRestorable indicates the entry is not in the persistent tier or is not archived.
	ErrNotRestorable = errors.New("ledger: entry is not restorable")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")
)
