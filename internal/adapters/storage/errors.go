package storage

import "errors"

// ErrStorage wraps filesystem failures while persisting uploads.
var ErrStorage = errors.New("storage failed")
