package variants

import (
	"errors"
	"fmt"

	"github.com/roach88/doublets/internal/link"
)

// ErrCapacityExceeded indicates the Catalan table has no entry for the
// requested size.
var ErrCapacityExceeded = errors.New("catalan table capacity exceeded")

// ErrorCode categorizes enumeration errors.
type ErrorCode string

const (
	// ErrCodeEmptySequence indicates a sequence with no elements.
	ErrCodeEmptySequence ErrorCode = "EMPTY_SEQUENCE"

	// ErrCodeCapacityExceeded indicates the sequence is longer than the
	// Catalan table covers.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeCreationRejected indicates the store refused a composition.
	ErrCodeCreationRejected ErrorCode = "CREATION_REJECTED"
)

// EnumerationError reports why an enumeration stopped.
type EnumerationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Source and Target are the pair being composed, for
	// ErrCodeCreationRejected.
	Source link.Ref
	Target link.Ref

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EnumerationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Code == ErrCodeCreationRejected {
		msg = fmt.Sprintf("%s (source=%d, target=%d)", msg, e.Source, e.Target)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// IsCapacityError returns true if err is an enumeration capacity error.
// Uses errors.As to handle wrapped errors.
func IsCapacityError(err error) bool {
	return hasCode(err, ErrCodeCapacityExceeded)
}

// IsCreationRejected returns true if err is a rejected composition.
// Uses errors.As to handle wrapped errors.
func IsCreationRejected(err error) bool {
	return hasCode(err, ErrCodeCreationRejected)
}

// IsEmptySequence returns true if err reports an empty input sequence.
func IsEmptySequence(err error) bool {
	return hasCode(err, ErrCodeEmptySequence)
}

func hasCode(err error, code ErrorCode) bool {
	var ee *EnumerationError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}
