package allocation

import "errors"

// The engine's failure taxonomy. Every error returned by this package
// wraps exactly one of these bases, so callers can classify with
// errors.Is and map to their own status codes.
var (
	// ErrValidation indicates malformed input, e.g. an empty
	// participant name or an unknown item ID.
	ErrValidation = errors.New("validation error")

	// ErrInvariant indicates an attempt to break a structural
	// guarantee, e.g. removing the host or editing a settled bill.
	ErrInvariant = errors.New("invariant violation")

	// ErrInvalidTransition indicates an illegal bill status change.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrPrecondition indicates an operation attempted before its
	// prerequisites held, e.g. closing a bill while somebody still
	// owes money.
	ErrPrecondition = errors.New("precondition failed")
)
