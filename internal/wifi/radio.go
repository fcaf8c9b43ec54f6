package wifi

import "net/netip"

// Radio is the underlying wireless stack the coordinator drives.
//
// It is deliberately narrow: the driver owns scanning, key negotiation,
// roaming, and DHCP; the coordinator only configures credentials, starts
// an association attempt, and polls for results. WPACtl implements Radio
// for Linux devices running wpa_supplicant; tests use a fake.
type Radio interface {
	// Configure stores network credentials in the radio.
	// It does not start an association attempt.
	Configure(ssid, passphrase string) error

	// StartAssociation begins connecting to the configured network.
	// It returns without waiting for the association to complete.
	StartAssociation() error

	// Associated reports whether the radio is currently associated.
	Associated() (bool, error)

	// IPInfo returns the address assigned to the wireless interface.
	// A zero netip.Addr means no address has been assigned yet.
	IPInfo() (netip.Addr, error)

	// Disassociate drops the current association.
	Disassociate() error
}

// SignalReporter is implemented by radios that can report link quality.
// The coordinator uses it for telemetry when available.
type SignalReporter interface {
	// SignalStrength returns the current RSSI in dBm (negative).
	SignalStrength() (int, error)
}
