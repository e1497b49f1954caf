package store

import "errors"

// ErrStorageCorrupt marks a stored value that can no longer be decoded.
var ErrStorageCorrupt = errors.New("stored data is corrupt")
