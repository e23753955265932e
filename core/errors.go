package core

import "github.com/pkg/errors"

type shutdown struct {
	message string
}

// NewShutdownError returns an error that makes the API server shut down gracefully once it has been handled.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
