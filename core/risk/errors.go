package risk

import "errors"

var (
	ErrNotFound = errors.New("student not found")
	// ErrCorruptData means the persisted document could not be parsed.
	ErrCorruptData = errors.New("corrupt student data")
)
