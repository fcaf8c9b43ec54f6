package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
device:
  id: "sensor-hub-test"
wifi:
  ssid: "TestNet"
  passphrase: "correcthorse"
  connect_timeout: 5
mqtt:
  broker:
    host: "10.0.0.2"
    port: 1883
    client_id: "test-client"
  qos: 1
state:
  path: "/tmp/graylink-test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "sensor-hub-test" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "sensor-hub-test")
	}

	if cfg.WiFi.SSID != "TestNet" {
		t.Errorf("WiFi.SSID = %q, want %q", cfg.WiFi.SSID, "TestNet")
	}

	if cfg.MQTT.Broker.Host != "10.0.0.2" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "10.0.0.2")
	}

	// Defaults should fill unset fields
	if cfg.MQTT.Reconnect.MaxDelay != 60 {
		t.Errorf("MQTT.Reconnect.MaxDelay = %d, want 60", cfg.MQTT.Reconnect.MaxDelay)
	}
	if cfg.WiFi.Interface != "wlan0" {
		t.Errorf("WiFi.Interface = %q, want %q", cfg.WiFi.Interface, "wlan0")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingSSID(t *testing.T) {
	configPath := writeConfig(t, `
device:
  id: "sensor-hub-test"
mqtt:
  broker:
    host: "localhost"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for missing SSID, got nil")
	}
	if !strings.Contains(err.Error(), "wifi.ssid") {
		t.Errorf("Load() error = %v, want mention of wifi.ssid", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
wifi:
  ssid: "FileNet"
mqtt:
  broker:
    host: "filehost"
`)

	t.Setenv("GRAYLINK_WIFI_SSID", "EnvNet")
	t.Setenv("GRAYLINK_WIFI_PASSPHRASE", "envpassphrase!")
	t.Setenv("GRAYLINK_MQTT_HOST", "envhost")
	t.Setenv("GRAYLINK_MQTT_PORT", "8883")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WiFi.SSID != "EnvNet" {
		t.Errorf("WiFi.SSID = %q, want env override %q", cfg.WiFi.SSID, "EnvNet")
	}
	if cfg.WiFi.Passphrase != "envpassphrase!" {
		t.Errorf("WiFi.Passphrase = %q, want env override", cfg.WiFi.Passphrase)
	}
	if cfg.MQTT.Broker.Host != "envhost" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "envhost")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.WiFi.SSID = "TestNet"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "ssid too long",
			mutate:  func(c *Config) { c.WiFi.SSID = strings.Repeat("x", 33) },
			wantErr: "wifi.ssid",
		},
		{
			name:    "passphrase too short",
			mutate:  func(c *Config) { c.WiFi.Passphrase = "short" },
			wantErr: "wifi.passphrase",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid will qos",
			mutate:  func(c *Config) { c.MQTT.Will.QoS = -1 },
			wantErr: "mqtt.will.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "reconnect delays inverted",
			mutate:  func(c *Config) { c.MQTT.Reconnect.InitialDelay = 120 },
			wantErr: "mqtt.reconnect",
		},
		{
			name:    "state enabled without path",
			mutate:  func(c *Config) { c.State.Path = "" },
			wantErr: "state.path",
		},
		{
			name: "telemetry enabled without token",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.URL = "http://localhost:8086"
			},
			wantErr: "telemetry.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetConnectTimeout(t *testing.T) {
	cfg := WiFiConfig{ConnectTimeout: 15, IPTimeout: 8}

	if got := cfg.GetConnectTimeout().Seconds(); got != 15 {
		t.Errorf("GetConnectTimeout() = %vs, want 15s", got)
	}
	if got := cfg.GetIPTimeout().Seconds(); got != 8 {
		t.Errorf("GetIPTimeout() = %vs, want 8s", got)
	}
}
