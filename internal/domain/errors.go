package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedSpec    = errors.New("malformed take-profit spec")
	ErrInvalidInput     = errors.New("invalid input")
	ErrFetch            = errors.New("price fetch failed")
	ErrPriceUnavailable = errors.New("price data unavailable")
)

// MalformedSpecError points at the ladder token that could not be parsed.
// Index is 1-based, 0 when the whole spec is at fault.
type MalformedSpecError struct {
	Index  int
	Token  string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedSpec, e.Reason)
	}
	return fmt.Sprintf("%s: entry %d %q: %s", ErrMalformedSpec, e.Index, e.Token, e.Reason)
}

func (e *MalformedSpecError) Unwrap() error { return ErrMalformedSpec }

// FetchError is returned by price sources on network, status or payload failures.
type FetchError struct {
	Source string
	Asset  string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s/%s: %v", ErrFetch, e.Source, e.Asset, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }
