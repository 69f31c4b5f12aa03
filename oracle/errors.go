package oracle

import "errors"

// ErrRecordNotFound indicates no metrics are stored for the asset.
var ErrRecordNotFound = errors.New("oracle: record not found")
