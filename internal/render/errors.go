package render

import (
	"errors"
	"fmt"

	"github.com/roach88/doublets/internal/link"
)

// FormatError reports a store failure while rendering. No partial output
// accompanies it.
type FormatError struct {
	// Ref is the reference being rendered when the store failed.
	Ref link.Ref

	// Err is the store error.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("format %d: %v", e.Ref, e.Err)
}

// Unwrap returns the store error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError returns true if err is or wraps a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
