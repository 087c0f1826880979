package model

import "errors"

// ErrInvalidHTML is returned when a fetched page does not have the shape the
// site contract promises: a missing href/src attribute, an asset reference
// without a file name, or a profile link without a screen name.
var ErrInvalidHTML = errors.New("invalid HTML")
