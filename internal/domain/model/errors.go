package model

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// ErrInvalidInput marks malformed or out-of-domain request data. It is
	// always returned before any calculation starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTerm marks an amortization term that is not a positive
	// number of months.
	ErrInvalidTerm = errors.New("invalid term")
)
