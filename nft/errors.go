package nft

import "errors"

var (
	// ErrTokenAlreadyMinted indicates the token id already has an owner.
	ErrTokenAlreadyMinted = errors.New("nft: token already minted")

	// ErrNonExistentToken indicates the token id has no owner.
	ErrNonExistentToken = errors.New("nft: non-existent token")

	// ErrMetadataNotSet indicates the collection metadata was never initialized.
	ErrMetadataNotSet = errors.New("nft: metadata not set")
)
