package agent

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/nerrad567/gray-link/internal/indicator"
	"github.com/nerrad567/gray-link/internal/infrastructure/config"
	"github.com/nerrad567/gray-link/internal/infrastructure/logging"
	"github.com/nerrad567/gray-link/internal/infrastructure/statestore"
	"github.com/nerrad567/gray-link/internal/infrastructure/telemetry"
	"github.com/nerrad567/gray-link/internal/mqtt"
	"github.com/nerrad567/gray-link/internal/wifi"
)

// defaultHealthInterval is how often the agent checks its links and
// flushes telemetry.
const defaultHealthInterval = 30 * time.Second

// Session is the MQTT surface the agent drives. *mqtt.Client satisfies it;
// tests substitute a fake to exercise the supervisor without a broker.
type Session interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SubscribeRouter(router *mqtt.Router, qos byte) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	SetOnConnect(func())
	SetOnDisconnect(func(err error))
	SetLogger(mqtt.Logger)
	HealthCheck(ctx context.Context) error
	IsConnected() bool
	ClientID() string
	Close() error
}

// Metrics is the telemetry surface the agent writes to. *telemetry.Client
// satisfies it; tests substitute a recorder.
type Metrics interface {
	WriteLinkMetric(ssid string, rssiDBm int, connectDuration time.Duration)
	WriteSessionEvent(event, broker string)
	WriteUptime(uptime time.Duration)
}

var _ Metrics = (*telemetry.Client)(nil)

// Options configures optional agent collaborators. Zero values disable
// the corresponding behaviour.
type Options struct {
	// Led drives connection status feedback. Nil means headless.
	Led indicator.StatusLed

	// Store persists connection history. Nil disables persistence.
	Store *statestore.Store

	// Telemetry ships link metrics and session events. Nil disables
	// shipping. Leave unset rather than passing a typed nil client.
	Telemetry Metrics

	// Logger for agent events. Defaults to logging.Default().
	Logger *logging.Logger

	// HealthInterval overrides the periodic health check cadence.
	HealthInterval time.Duration
}

// Agent supervises the device's network uplink: it brings Wi-Fi up,
// waits for an address, opens the MQTT session, wires command handling,
// and keeps both links healthy until the context is cancelled. Shutdown
// runs in reverse order so the broker sees a graceful offline before
// the radio disassociates.
type Agent struct {
	cfg    *config.Config
	radio  wifi.Radio
	link   *indicator.Link
	store  *statestore.Store
	telem  Metrics
	logger *logging.Logger

	healthEvery time.Duration

	// dial opens the MQTT session; replaced in tests.
	dial func(config.MQTTConfig, string) (Session, error)

	wifiMgr *wifi.Manager
	session Session
	ip      netip.Addr
	started time.Time

	// connectDuration is how long the last successful association took,
	// from attempt start to address assignment.
	connectDuration time.Duration
}

// New creates an agent for the given configuration and radio.
//
// Parameters:
//   - cfg: Full validated configuration
//   - radio: Wi-Fi radio implementation (e.g. wifi.NewWPACtl)
//   - opts: Optional collaborators (LED, store, telemetry, logger)
//
// Returns:
//   - *Agent: Ready to Run
func New(cfg *config.Config, radio wifi.Radio, opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	healthEvery := opts.HealthInterval
	if healthEvery <= 0 {
		healthEvery = defaultHealthInterval
	}

	return &Agent{
		cfg:         cfg,
		radio:       radio,
		link:        indicator.NewLink(opts.Led),
		store:       opts.Store,
		telem:       opts.Telemetry,
		logger:      logger,
		healthEvery: healthEvery,
		dial: func(mqttCfg config.MQTTConfig, deviceID string) (Session, error) {
			return mqtt.Connect(mqttCfg, deviceID)
		},
	}
}

// Run brings the uplink online and supervises it until ctx is cancelled.
//
// Startup order:
//  1. Associate with the configured Wi-Fi network
//  2. Wait for a usable IP address
//  3. Record the attempt in the state store
//  4. Connect the MQTT session (retained online status, LWT armed)
//  5. Subscribe device command topics
//  6. Publish the initial state report
//
// On cancellation the shutdown runs in reverse: the MQTT session closes
// first (publishing the retained offline status) and the radio
// disassociates last.
//
// Returns:
//   - error: nil on clean shutdown, or the startup failure
func (a *Agent) Run(ctx context.Context) error {
	a.started = time.Now()

	if err := a.connectWiFi(ctx); err != nil {
		return err
	}
	defer func() {
		a.logger.Info("disassociating Wi-Fi")
		if closeErr := a.wifiMgr.Close(); closeErr != nil {
			a.logger.Error("error closing Wi-Fi", "error", closeErr)
		}
	}()

	if err := a.connectMQTT(); err != nil {
		return err
	}
	defer func() {
		a.logger.Info("closing MQTT session")
		if closeErr := a.session.Close(); closeErr != nil {
			a.logger.Error("error closing MQTT", "error", closeErr)
		}
	}()

	if err := a.subscribeCommands(); err != nil {
		return err
	}

	if err := a.publishStateReport(); err != nil {
		a.logger.Warn("initial state report failed", "error", err)
	}

	a.logger.Info("uplink established",
		"ssid", a.cfg.WiFi.SSID,
		"ip", a.ip.String(),
		"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
	)

	a.supervise(ctx)

	a.logger.Info("shutdown signal received, cleaning up")
	return nil
}

// connectWiFi associates, waits for an address, and records the attempt.
func (a *Agent) connectWiFi(ctx context.Context) error {
	wifiCfg := wifi.NewConfig(a.cfg.WiFi.SSID, a.cfg.WiFi.Passphrase).
		WithTimeout(a.cfg.WiFi.GetConnectTimeout())

	// The attempt clock starts here, not at Run, so recorded durations
	// measure the association itself.
	attemptStart := time.Now()

	mgr, err := wifi.Connect(ctx, a.radio, wifiCfg, wifi.Options{
		Indicator: a.link,
		Logger:    a.logger,
	})
	if err != nil {
		a.recordAttempt(ctx, false, err, netip.Addr{}, time.Since(attemptStart))
		return fmt.Errorf("connecting Wi-Fi: %w", err)
	}
	a.wifiMgr = mgr

	ip, err := mgr.WaitForIP(ctx, a.cfg.WiFi.GetIPTimeout())
	if err != nil {
		a.recordAttempt(ctx, false, err, netip.Addr{}, time.Since(attemptStart))
		return fmt.Errorf("waiting for IP: %w", err)
	}
	a.ip = ip
	a.connectDuration = time.Since(attemptStart)

	a.recordAttempt(ctx, true, nil, ip, a.connectDuration)
	a.reportLinkMetric()

	a.logger.Info("Wi-Fi connected", "ssid", a.cfg.WiFi.SSID, "ip", ip.String())
	return nil
}

// connectMQTT opens the broker session and wires lifecycle logging and
// session-event telemetry.
func (a *Agent) connectMQTT() error {
	session, err := a.dial(a.cfg.MQTT, a.cfg.Device.ID)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	a.session = session

	broker := fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port)

	session.SetLogger(a.logger)
	session.SetOnConnect(func() {
		a.logger.Info("MQTT reconnected")
		a.reportSessionEvent("connect", broker)
		if reportErr := a.publishStateReport(); reportErr != nil {
			a.logger.Warn("state report after reconnect failed", "error", reportErr)
		}
	})
	session.SetOnDisconnect(func(err error) {
		a.logger.Warn("MQTT disconnected", "error", err)
		a.reportSessionEvent("disconnect", broker)
	})

	a.reportSessionEvent("connect", broker)

	a.logger.Info("MQTT connected",
		"broker", broker,
		"client_id", session.ClientID(),
	)
	return nil
}

// reportSessionEvent counts session transitions when telemetry is on.
func (a *Agent) reportSessionEvent(event, broker string) {
	if a.telem == nil {
		return
	}
	a.telem.WriteSessionEvent(event, broker)
}

// supervise runs the periodic health and telemetry loop until cancelled.
func (a *Agent) supervise(ctx context.Context) {
	ticker := time.NewTicker(a.healthEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.checkHealth(ctx)
		}
	}
}

// checkHealth verifies both links and ships telemetry samples.
func (a *Agent) checkHealth(ctx context.Context) {
	if !a.wifiMgr.IsConnected() {
		a.logger.Warn("Wi-Fi link down", "ssid", a.cfg.WiFi.SSID)
		a.link.Failed()
	}

	if err := a.session.HealthCheck(ctx); err != nil {
		a.logger.Warn("MQTT health check failed", "error", err)
	}

	if a.store != nil {
		if err := a.store.HealthCheck(ctx); err != nil {
			a.logger.Warn("state store health check failed", "error", err)
		}
	}

	a.reportLinkMetric()
	if a.telem != nil {
		a.telem.WriteUptime(time.Since(a.started))
	}
}

// recordAttempt persists a connection attempt when the store is enabled.
func (a *Agent) recordAttempt(ctx context.Context, success bool, attemptErr error, ip netip.Addr, took time.Duration) {
	if a.store == nil {
		return
	}

	attempt := statestore.Attempt{
		SSID:     a.cfg.WiFi.SSID,
		Success:  success,
		Duration: took,
		At:       time.Now(),
	}
	if attemptErr != nil {
		attempt.Error = attemptErr.Error()
	}
	if ip.IsValid() {
		attempt.IP = ip.String()
	}

	if err := a.store.RecordAttempt(ctx, attempt); err != nil {
		a.logger.Warn("recording connection attempt failed", "error", err)
	}
}

// reportLinkMetric ships the current signal strength when telemetry is on.
func (a *Agent) reportLinkMetric() {
	if a.telem == nil || a.wifiMgr == nil {
		return
	}

	rssi, err := a.wifiMgr.SignalStrength()
	if err != nil {
		// Radio may not expose signal polling; skip the sample.
		return
	}
	a.telem.WriteLinkMetric(a.cfg.WiFi.SSID, rssi, a.connectDuration)
}
