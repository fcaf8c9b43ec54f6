// Package indicator renders connection state on an optional status LED.
//
// Devices with a visible RGB LED show link state at a glance:
//
//   - Blue pulse: connecting
//   - Dim green: connected
//   - Red pulse: connection failed
//
// The LED driver itself is board support and stays behind the StatusLed
// interface; this package owns only the state-to-colour mapping and the
// pulse animation. A nil *Link is a no-op, so headless devices pass nil.
package indicator
