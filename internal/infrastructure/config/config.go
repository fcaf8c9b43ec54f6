package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Link agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	WiFi      WiFiConfig      `yaml:"wifi"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	State     StateConfig     `yaml:"state"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies the device this agent runs on.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// WiFiConfig contains Wi-Fi network credentials and connection settings.
type WiFiConfig struct {
	// SSID is the network name to associate with (max 32 bytes).
	SSID string `yaml:"ssid"`

	// Passphrase is the WPA passphrase (8-64 bytes, empty for open networks).
	Passphrase string `yaml:"passphrase"`

	// ConnectTimeout is the maximum time to wait for association (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// IPTimeout is the maximum time to wait for address assignment (seconds).
	IPTimeout int `yaml:"ip_timeout"`

	// Interface is the wireless interface name (e.g. "wlan0").
	Interface string `yaml:"interface"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Will      MQTTWillConfig      `yaml:"will"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
// An empty ClientID causes the client to generate one at connect time.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// Leave Username empty for anonymous access (local development only).
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MQTTWillConfig contains Last Will and Testament settings.
//
// When Topic is empty the client uses the device status topic with a retained
// offline payload. The broker publishes the will only on a non-graceful
// disconnect; a clean shutdown suppresses it.
type MQTTWillConfig struct {
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"`
	QoS     int    `yaml:"qos"`
	Retain  bool   `yaml:"retain"`
}

// StateConfig contains link state persistence settings.
type StateConfig struct {
	// Enabled controls whether connection state is persisted at all.
	// When false the agent runs stateless, like a device without NVS.
	Enabled bool `yaml:"enabled"`

	// Path is the filesystem path to the SQLite state file.
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int `yaml:"busy_timeout"`
}

// TelemetryConfig contains InfluxDB link telemetry settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. A .env file in the working directory, if present (populates the process
//     environment without overwriting existing variables)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLINK_SECTION_KEY
// For example: GRAYLINK_WIFI_PASSPHRASE, GRAYLINK_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Pull in a .env file if one exists. Missing files are fine; devices in
	// the field carry secrets in the environment, .env is for development.
	_ = godotenv.Load()

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:   "graylink-device",
			Name: "Gray Link",
		},
		WiFi: WiFiConfig{
			ConnectTimeout: 10,
			IPTimeout:      10,
			Interface:      "wlan0",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Will: MQTTWillConfig{
				QoS:    1,
				Retain: true,
			},
		},
		State: StateConfig{
			Enabled:     true,
			Path:        "./data/graylink.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLINK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("GRAYLINK_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}

	// Wi-Fi credentials
	if v := os.Getenv("GRAYLINK_WIFI_SSID"); v != "" {
		cfg.WiFi.SSID = v
	}
	if v := os.Getenv("GRAYLINK_WIFI_PASSPHRASE"); v != "" {
		cfg.WiFi.Passphrase = v
	}
	if v := os.Getenv("GRAYLINK_WIFI_INTERFACE"); v != "" {
		cfg.WiFi.Interface = v
	}

	// MQTT
	if v := os.Getenv("GRAYLINK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLINK_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("GRAYLINK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// State
	if v := os.Getenv("GRAYLINK_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}

	// Telemetry
	if v := os.Getenv("GRAYLINK_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Maximum credential lengths per IEEE 802.11.
const (
	maxSSIDBytes       = 32
	minPassphraseBytes = 8
	maxPassphraseBytes = 64
)

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	// Wi-Fi validation
	if c.WiFi.SSID == "" {
		errs = append(errs, "wifi.ssid is required (set GRAYLINK_WIFI_SSID environment variable)")
	} else if len(c.WiFi.SSID) > maxSSIDBytes {
		errs = append(errs, fmt.Sprintf("wifi.ssid exceeds maximum length of %d bytes", maxSSIDBytes))
	}
	if c.WiFi.Passphrase != "" {
		if len(c.WiFi.Passphrase) < minPassphraseBytes || len(c.WiFi.Passphrase) > maxPassphraseBytes {
			errs = append(errs, fmt.Sprintf("wifi.passphrase must be %d-%d bytes", minPassphraseBytes, maxPassphraseBytes))
		}
	}
	if c.WiFi.ConnectTimeout <= 0 {
		errs = append(errs, "wifi.connect_timeout must be positive")
	}
	if c.WiFi.Interface == "" {
		errs = append(errs, "wifi.interface is required")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Will.QoS < 0 || c.MQTT.Will.QoS > 2 {
		errs = append(errs, "mqtt.will.qos must be 0, 1, or 2")
	}
	if c.MQTT.Reconnect.InitialDelay > c.MQTT.Reconnect.MaxDelay {
		errs = append(errs, "mqtt.reconnect.initial_delay must not exceed max_delay")
	}

	// State validation
	if c.State.Enabled && c.State.Path == "" {
		errs = append(errs, "state.path is required when state.enabled is true")
	}

	// Telemetry validation
	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry.enabled is true")
		}
		if c.Telemetry.Token == "" {
			errs = append(errs, "telemetry.token is required when telemetry.enabled is true (set GRAYLINK_TELEMETRY_TOKEN environment variable)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectTimeout returns the Wi-Fi association timeout as a Duration.
func (c *WiFiConfig) GetConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// GetIPTimeout returns the address acquisition timeout as a Duration.
func (c *WiFiConfig) GetIPTimeout() time.Duration {
	return time.Duration(c.IPTimeout) * time.Second
}
