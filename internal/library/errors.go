package library

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotRegistered is returned by Duration and Extract for names
	// that were never registered.
	ErrSourceNotRegistered = errors.New("source not registered")

	// ErrSourceNotFound is returned by the Loader when neither the source
	// directory nor the download URL has the motion.
	ErrSourceNotFound = errors.New("source not found")
)

// SourceError names the source an operation failed on.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Name, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
