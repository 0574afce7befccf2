package record

import "errors"

// Sentinel errors for the record package.
// Use errors.Is to check: errors.Is(err, record.ErrNotFound)
var (
	ErrNotFound        = errors.New("record: not found")
	ErrInvalidSettings = errors.New("record: invalid settings")
)
