package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUpstreamFailure = errors.New("upstream failure")
)

// LookupError carries a user facing detail message for one of the error
// kinds above. errors.Is(err, ErrNotFound) works through it.
type LookupError struct {
	Kind   error
	Detail string
}

func (e *LookupError) Error() string { return e.Kind.Error() + ": " + e.Detail }

func (e *LookupError) Unwrap() error { return e.Kind }

func InvalidInput(detail string) error {
	return &LookupError{Kind: ErrInvalidInput, Detail: detail}
}

func NotFound(detail string) error {
	return &LookupError{Kind: ErrNotFound, Detail: detail}
}

func UpstreamFailure(detail string) error {
	return &LookupError{Kind: ErrUpstreamFailure, Detail: detail}
}
