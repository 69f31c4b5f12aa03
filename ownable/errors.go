package ownable

import "errors"

var (
	// ErrOwnerNotSet indicates the contract has no administrative identity recorded.
	ErrOwnerNotSet = errors.New("ownable: owner not set")

	// ErrUnauthorized indicates the administrative identity did not authorize the call.
	ErrUnauthorized = errors.New("ownable: unauthorized")
)
