package wifi

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/nerrad567/gray-link/internal/indicator"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for association.
	defaultConnectTimeout = 10 * time.Second

	// defaultPollInterval is the poll cadence during association and IP wait.
	defaultPollInterval = 100 * time.Millisecond

	// failureBurstSteps is how many indicator ticks the failure pulse runs
	// before Connect surfaces its error.
	failureBurstSteps = 20

	// Credential length limits per IEEE 802.11.
	maxSSIDBytes       = 32
	minPassphraseBytes = 8
	maxPassphraseBytes = 64
)

// Config holds Wi-Fi network credentials for a connection attempt.
//
// Config is immutable once passed to Connect; build it with NewConfig
// and WithTimeout.
type Config struct {
	// SSID is the network name (1-32 bytes).
	SSID string

	// Passphrase is the WPA passphrase (8-64 bytes, empty for open networks).
	Passphrase string

	// ConnectTimeout bounds the association wait. Zero means 10 seconds.
	ConnectTimeout time.Duration
}

// NewConfig creates a Wi-Fi configuration with the default timeout.
func NewConfig(ssid, passphrase string) Config {
	return Config{
		SSID:       ssid,
		Passphrase: passphrase,
	}
}

// WithTimeout returns a copy of the configuration with the given
// association timeout.
func (c Config) WithTimeout(d time.Duration) Config {
	c.ConnectTimeout = d
	return c
}

// validate checks credential lengths before they reach the radio.
func (c Config) validate() error {
	if c.SSID == "" || len(c.SSID) > maxSSIDBytes {
		return fmt.Errorf("%w: %q is %d bytes", ErrInvalidSSID, c.SSID, len(c.SSID))
	}
	if c.Passphrase != "" {
		if len(c.Passphrase) < minPassphraseBytes || len(c.Passphrase) > maxPassphraseBytes {
			return fmt.Errorf("%w: got %d bytes", ErrInvalidPassphrase, len(c.Passphrase))
		}
	}
	return nil
}

// Logger is the logging interface used by the coordinator.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options carries the optional collaborators for a connection attempt.
type Options struct {
	// Indicator drives a status LED through connecting/connected/failed
	// states. Nil means no visual feedback.
	Indicator *indicator.Link

	// Logger receives connection progress. Nil means silent.
	Logger Logger

	// PollInterval overrides the association/IP poll cadence.
	// Zero means the 100ms default. Tests shorten it.
	PollInterval time.Duration
}

// Manager coordinates the connection lifecycle over a Radio.
//
// It owns no protocol logic: association, key exchange, and DHCP all
// happen inside the radio. The manager sequences them, bounds the
// waits, and surfaces failures as errors.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Manager struct {
	radio     Radio
	cfg       Config
	link      *indicator.Link
	logger    Logger
	pollEvery time.Duration

	// connectedAt records when association completed, for uptime reporting.
	connectedAt time.Time
	mu          sync.RWMutex
}

// Connect configures credentials on the radio and waits for association.
//
// It performs:
//  1. Credential validation (SSID and passphrase length limits)
//  2. Radio configuration
//  3. Association start, retried if the radio rejects the trigger
//  4. Bounded polling until associated or timeout
//
// If an indicator is configured it pulses during the attempt, turns
// steady on success, and runs a short failure burst before an error
// returns.
//
// Parameters:
//   - ctx: Context for cancellation (cancellation aborts the wait)
//   - radio: The underlying wireless stack
//   - cfg: Network credentials and timeout
//   - opts: Optional indicator, logger, and poll cadence
//
// Returns:
//   - *Manager: Connected manager ready for WaitForIP
//   - error: ErrConnectTimeout, ErrAssociationFailed, validation errors,
//     or ctx.Err() if cancelled
func Connect(ctx context.Context, radio Radio, cfg Config, opts Options) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	pollEvery := opts.PollInterval
	if pollEvery <= 0 {
		pollEvery = defaultPollInterval
	}

	m := &Manager{
		radio:     radio,
		cfg:       cfg,
		link:      opts.Indicator,
		logger:    logger,
		pollEvery: pollEvery,
	}

	logger.Info("connecting to Wi-Fi network", "ssid", cfg.SSID)

	if err := radio.Configure(cfg.SSID, cfg.Passphrase); err != nil {
		return nil, fmt.Errorf("%w: configuring radio: %w", ErrAssociationFailed, err)
	}

	if err := m.awaitAssociation(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.connectedAt = time.Now()
	m.mu.Unlock()

	if err := m.link.Connected(); err != nil {
		// A broken LED must not take the link down with it.
		logger.Warn("status LED error", "error", err)
	}

	logger.Info("Wi-Fi associated", "ssid", cfg.SSID)
	return m, nil
}

// awaitAssociation drives the association loop until connected, timeout,
// or cancellation.
func (m *Manager) awaitAssociation(ctx context.Context) error {
	timeout := m.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	start := time.Now()
	started := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Since(start) >= timeout {
			m.logger.Error("Wi-Fi connection timeout", "ssid", m.cfg.SSID, "timeout", timeout)
			m.failureBurst()
			return fmt.Errorf("%w: no association after %v", ErrConnectTimeout, timeout)
		}

		if !started {
			if err := m.radio.StartAssociation(); err != nil {
				m.logger.Warn("failed to start association, will retry", "error", err)
			} else {
				started = true
				m.logger.Debug("association attempt initiated")
			}
		}

		if started {
			associated, err := m.radio.Associated()
			switch {
			case err != nil:
				// Radio errors reset the attempt rather than aborting:
				// transient supplicant restarts look like this.
				m.logger.Error("association state error", "error", err)
				started = false
			case associated:
				return nil
			}
		}

		if err := m.link.Connecting(); err != nil {
			m.logger.Warn("status LED error", "error", err)
		}

		time.Sleep(m.pollEvery)
	}
}

// failureBurst runs a short red pulse so a headless device shows why it
// is about to give up.
func (m *Manager) failureBurst() {
	if m.link == nil {
		return
	}
	for i := 0; i < failureBurstSteps; i++ {
		if err := m.link.Failed(); err != nil {
			return
		}
		time.Sleep(m.pollEvery)
	}
}

// WaitForIP polls until the radio reports an assigned address.
//
// Association alone is not enough to talk to a broker; DHCP has to
// finish too. WaitForIP bounds that wait.
//
// Parameters:
//   - ctx: Context for cancellation
//   - timeout: Maximum time to wait for an address
//
// Returns:
//   - netip.Addr: The assigned address
//   - error: ErrIPTimeout if the window expires, or ctx.Err() if cancelled
func (m *Manager) WaitForIP(ctx context.Context, timeout time.Duration) (netip.Addr, error) {
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return netip.Addr{}, ctx.Err()
		default:
		}

		associated, err := m.radio.Associated()
		if err == nil && associated {
			addr, ipErr := m.radio.IPInfo()
			if ipErr == nil && addr.IsValid() && !addr.IsUnspecified() {
				m.logger.Info("Wi-Fi address assigned", "ip", addr.String())
				return addr, nil
			}
		}

		if time.Since(start) >= timeout {
			m.logger.Warn("timeout waiting for Wi-Fi address", "timeout", timeout)
			return netip.Addr{}, fmt.Errorf("%w: after %v", ErrIPTimeout, timeout)
		}

		time.Sleep(m.pollEvery)
	}
}

// IsConnected reports whether the radio is currently associated.
func (m *Manager) IsConnected() bool {
	associated, err := m.radio.Associated()
	return err == nil && associated
}

// SignalStrength returns the current RSSI in dBm, if the radio reports it.
//
// Returns:
//   - int: RSSI in dBm (negative)
//   - error: ErrNotConnected if unassociated, or if the radio cannot report
func (m *Manager) SignalStrength() (int, error) {
	if !m.IsConnected() {
		return 0, ErrNotConnected
	}

	reporter, ok := m.radio.(SignalReporter)
	if !ok {
		return 0, fmt.Errorf("%w: radio does not report signal strength", ErrNotConnected)
	}

	rssi, err := reporter.SignalStrength()
	if err != nil {
		return 0, fmt.Errorf("reading signal strength: %w", err)
	}
	return rssi, nil
}

// ConnectedSince returns when the current association completed.
// The zero time means the manager never connected.
func (m *Manager) ConnectedSince() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectedAt
}

// SSID returns the configured network name.
func (m *Manager) SSID() string {
	return m.cfg.SSID
}

// Close disassociates from the network and turns the indicator off.
//
// Returns:
//   - error: If the radio fails to disassociate
func (m *Manager) Close() error {
	if err := m.link.Off(); err != nil {
		m.logger.Warn("status LED error", "error", err)
	}

	if err := m.radio.Disassociate(); err != nil {
		return fmt.Errorf("disassociating: %w", err)
	}

	m.logger.Info("Wi-Fi disassociated", "ssid", m.cfg.SSID)
	return nil
}
