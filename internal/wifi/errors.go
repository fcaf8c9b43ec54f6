package wifi

import "errors"

// Domain-specific errors for Wi-Fi operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidSSID is returned when the SSID is empty or exceeds 32 bytes.
	ErrInvalidSSID = errors.New("wifi: SSID must be 1-32 bytes")

	// ErrInvalidPassphrase is returned when a passphrase is outside 8-64 bytes.
	ErrInvalidPassphrase = errors.New("wifi: passphrase must be 8-64 bytes")

	// ErrConnectTimeout is returned when association does not complete in time.
	ErrConnectTimeout = errors.New("wifi: connection timeout")

	// ErrAssociationFailed is returned when the radio rejects the association.
	ErrAssociationFailed = errors.New("wifi: association failed")

	// ErrIPTimeout is returned when no address is assigned within the wait window.
	ErrIPTimeout = errors.New("wifi: timeout waiting for IP address")

	// ErrNotConnected is returned when an operation requires an active association.
	ErrNotConnected = errors.New("wifi: not connected")
)
