package types

import "errors"

// Errors returned by the ledger components. Every operation failing with one
// of these has been rolled back completely, so callers may retry with fresh
// input (for example a new nonce) without cleaning anything up.
var (
	// ErrUnauthorized is returned when the caller lacks the required role
	// (owner, admin, gateway, revealer, minter or registered election).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState is returned when the operation is not valid in the
	// current phase or while the component is locked.
	ErrInvalidState = errors.New("invalid state")
	// ErrDuplicateEntry is returned when re-adding an existing member, nonce
	// or vote id.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrNotFound is returned when referencing an unknown entity, group,
	// registry member or vote id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientBalance is returned when spending or transferring more
	// voting rights than available.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
