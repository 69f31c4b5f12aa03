package token

import "errors"

var (
	// ErrTransferRejected indicates a transfer did not take place.
	ErrTransferRejected = errors.New("token: transfer rejected")

	// ErrInsufficientBalance indicates the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrInvalidAmount indicates a non-positive or missing amount.
	ErrInvalidAmount = errors.New("token: invalid amount")

	// ErrOverflow indicates a balance would exceed the signed 128-bit range.
	ErrOverflow = errors.New("token: balance overflow")
)
