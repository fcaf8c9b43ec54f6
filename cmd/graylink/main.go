// Gray Link - Network Uplink Agent
//
// This is the main entry point for the Gray Link agent. Gray Link keeps
// embedded Linux field devices connected: it associates with the
// configured Wi-Fi network, waits for a usable address, and maintains a
// resilient MQTT session with presence reporting and remote commands.
//
// The agent is designed for unattended operation: connection history is
// persisted locally, link metrics ship to InfluxDB when configured, and
// a status LED (where fitted) shows connection state at a glance.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-link/internal/agent"
	"github.com/nerrad567/gray-link/internal/infrastructure/config"
	"github.com/nerrad567/gray-link/internal/infrastructure/logging"
	"github.com/nerrad567/gray-link/internal/infrastructure/statestore"
	"github.com/nerrad567/gray-link/internal/infrastructure/telemetry"
	"github.com/nerrad567/gray-link/internal/wifi"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Link",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the connection history store (optional)
	var store *statestore.Store
	store, err = statestore.Open(ctx, cfg.State)
	switch {
	case errors.Is(err, statestore.ErrDisabled):
		log.Info("state store disabled")
		store = nil
	case err != nil:
		return fmt.Errorf("opening state store: %w", err)
	default:
		defer func() {
			log.Info("closing state store")
			if closeErr := store.Close(); closeErr != nil {
				log.Error("error closing state store", "error", closeErr)
			}
		}()
		log.Info("state store opened", "path", cfg.State.Path)
	}

	// Connect to InfluxDB (optional)
	var telem *telemetry.Client
	telem, err = telemetry.Connect(cfg.Telemetry, cfg.Device.ID)
	switch {
	case errors.Is(err, telemetry.ErrDisabled):
		log.Info("telemetry disabled")
		telem = nil
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telem.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		telem.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)
	}

	// The radio talks to wpa_supplicant over wpa_cli
	radio := wifi.NewWPACtl(cfg.WiFi.Interface)

	// Run the uplink supervisor until the context is cancelled
	opts := agent.Options{
		Store:  store,
		Logger: log,
	}
	if telem != nil {
		opts.Telemetry = telem
	}
	uplink := agent.New(cfg, radio, opts)
	if err := uplink.Run(ctx); err != nil {
		return fmt.Errorf("running agent: %w", err)
	}

	log.Info("Gray Link stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
