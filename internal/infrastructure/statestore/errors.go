package statestore

import "errors"

// Domain-specific errors for state store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDisabled is returned by Open when persistence is disabled in config.
	ErrDisabled = errors.New("statestore: persistence disabled")

	// ErrNoHistory is returned when no successful connection has been recorded.
	ErrNoHistory = errors.New("statestore: no connection history")
)
