// Package agent supervises a Gray Link device's network uplink.
//
// The agent owns the startup and shutdown order that the individual
// packages leave open: Wi-Fi association first, then the IP wait, then
// the MQTT session, then command subscriptions. Teardown runs in
// reverse so the broker receives the retained offline status over a
// still-working link before the radio disassociates.
//
// Collaborators are optional: a device can run headless (no LED),
// without persistence (no state store), and without telemetry. The
// agent degrades to logging in each case.
package agent
