package impact

import "errors"

var (
	// ErrInvalidHealthCode indicates a health code outside 0..3.
	ErrInvalidHealthCode = errors.New("impact: invalid health status code")

	// ErrAmountOutOfRange indicates a quantity that does not fit a signed 128-bit integer.
	ErrAmountOutOfRange = errors.New("impact: amount out of i128 range")

	// ErrNilAmount indicates a required quantity is nil.
	ErrNilAmount = errors.New("impact: amount is nil")
)
