package codec

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// SerializationTextCode tags encode failures so callers can map them to a
// form error.
const SerializationTextCode = "STRUCTURED_CONTENT_SERIALIZATION"

var (
	// ErrNoHeader is returned by a HeaderParser when the input does not open
	// with one of its delimiters. It is not a failure: the whole input is body.
	ErrNoHeader = errors.New("codec: no header")
	// ErrUnterminatedHeader reports an opening delimiter without a closing one.
	ErrUnterminatedHeader = errors.New("codec: header not terminated")
	// ErrNotMapping reports a header that decodes to something other than a
	// key/value mapping.
	ErrNotMapping = errors.New("codec: header is not a mapping")
)

// SerializationError is returned by Encode when the metadata cannot be
// represented in the writer notation.
type SerializationError struct {
	Notation string
	Reason   string
	// Err is a go-errors error in CategoryValidation carrying
	// SerializationTextCode.
	Err   error
	cause error
}

func newSerializationError(notation, reason string, cause error) *SerializationError {
	if cause == nil {
		cause = errors.New(reason)
	}
	return &SerializationError{
		Notation: notation,
		Reason:   reason,
		cause:    cause,
		Err: goerrors.Wrap(cause, goerrors.CategoryValidation, "structured content serialization failed").
			WithTextCode(SerializationTextCode),
	}
}

func (e *SerializationError) Error() string {
	if e.cause == nil || e.cause.Error() == e.Reason {
		return fmt.Sprintf("codec: cannot serialize metadata as %s: %s", e.Notation, e.Reason)
	}
	return fmt.Sprintf("codec: cannot serialize metadata as %s: %s: %v", e.Notation, e.Reason, e.cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// HeaderError wraps a failure of a single parser in the chain.
type HeaderError struct {
	Parser string
	Err    error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("codec: %s header: %v", e.Parser, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}
