package wifi

import (
	"context"
	"fmt"
	"net/netip"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// wpa_cli constants.
const (
	// wpaCommandTimeout bounds each wpa_cli invocation so a wedged
	// supplicant cannot hang the poll loop.
	wpaCommandTimeout = 3 * time.Second

	// wpaStateCompleted is the supplicant state for a completed association.
	wpaStateCompleted = "COMPLETED"
)

// WPACtl drives wpa_supplicant through the wpa_cli control utility.
//
// It is the Radio implementation for Linux devices where wpa_supplicant
// is externally managed (systemd on every supported gateway image). The
// supplicant owns scanning, key negotiation, and roaming; WPACtl issues
// control commands and parses status output.
type WPACtl struct {
	iface     string
	networkID string

	// runner executes a wpa_cli command and returns its output.
	// Replaced in tests.
	runner func(ctx context.Context, args ...string) (string, error)
}

// NewWPACtl creates a wpa_cli-backed radio for the given interface.
//
// Parameters:
//   - iface: Wireless interface name (e.g. "wlan0")
func NewWPACtl(iface string) *WPACtl {
	w := &WPACtl{iface: iface}
	w.runner = w.execWPACli
	return w
}

// execWPACli runs a single wpa_cli command against the interface.
func (w *WPACtl) execWPACli(ctx context.Context, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, wpaCommandTimeout)
	defer cancel()

	full := append([]string{"-i", w.iface}, args...)
	cmd := exec.CommandContext(cmdCtx, "wpa_cli", full...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("wpa_cli %s timed out after %v", args[0], wpaCommandTimeout)
		}
		return "", fmt.Errorf("wpa_cli %s: %w", args[0], err)
	}

	return strings.TrimSpace(string(output)), nil
}

// command runs a wpa_cli command and verifies the supplicant accepted it.
func (w *WPACtl) command(args ...string) (string, error) {
	out, err := w.runner(context.Background(), args...)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(out, "FAIL") {
		return "", fmt.Errorf("wpa_cli %s: supplicant returned FAIL", args[0])
	}
	return out, nil
}

// Configure registers the network with the supplicant.
//
// It adds a network block, sets the SSID and either a WPA passphrase or
// open key management, and leaves it disabled until StartAssociation.
func (w *WPACtl) Configure(ssid, passphrase string) error {
	id, err := w.command("add_network")
	if err != nil {
		return err
	}
	w.networkID = id

	if _, err := w.command("set_network", id, "ssid", strconv.Quote(ssid)); err != nil {
		return err
	}

	if passphrase == "" {
		if _, err := w.command("set_network", id, "key_mgmt", "NONE"); err != nil {
			return err
		}
		return nil
	}

	if _, err := w.command("set_network", id, "psk", strconv.Quote(passphrase)); err != nil {
		return err
	}
	return nil
}

// StartAssociation selects the configured network, which triggers the
// supplicant to associate. Returns immediately.
func (w *WPACtl) StartAssociation() error {
	if w.networkID == "" {
		return fmt.Errorf("wpa_cli: no network configured")
	}
	_, err := w.command("select_network", w.networkID)
	return err
}

// Associated reports whether the supplicant state is COMPLETED.
func (w *WPACtl) Associated() (bool, error) {
	status, err := w.command("status")
	if err != nil {
		return false, err
	}
	return parseStatusField(status, "wpa_state") == wpaStateCompleted, nil
}

// IPInfo returns the address from the supplicant status output.
// A zero netip.Addr means DHCP has not finished.
func (w *WPACtl) IPInfo() (netip.Addr, error) {
	status, err := w.command("status")
	if err != nil {
		return netip.Addr{}, err
	}

	raw := parseStatusField(status, "ip_address")
	if raw == "" {
		return netip.Addr{}, nil
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parsing supplicant ip_address %q: %w", raw, err)
	}
	return addr, nil
}

// SignalStrength returns the RSSI from a signal_poll, in dBm.
func (w *WPACtl) SignalStrength() (int, error) {
	out, err := w.command("signal_poll")
	if err != nil {
		return 0, err
	}

	raw := parseStatusField(out, "RSSI")
	if raw == "" {
		return 0, fmt.Errorf("wpa_cli signal_poll: no RSSI in output")
	}

	rssi, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing RSSI %q: %w", raw, err)
	}
	return rssi, nil
}

// Disassociate drops the current association.
func (w *WPACtl) Disassociate() error {
	_, err := w.command("disconnect")
	return err
}

// parseStatusField extracts a key=value field from wpa_cli output.
func parseStatusField(output, key string) string {
	for _, line := range strings.Split(output, "\n") {
		k, v, found := strings.Cut(strings.TrimSpace(line), "=")
		if found && k == key {
			return v
		}
	}
	return ""
}
