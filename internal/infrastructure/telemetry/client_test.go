package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-link/internal/infrastructure/config"
	"github.com/nerrad567/gray-link/internal/infrastructure/telemetry"
)

// testConfig returns a configuration for the local dev InfluxDB.
func testConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "graylink-dev-token",
		Org:           "graylink",
		Bucket:        "link",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// connectOrSkip skips the test if InfluxDB is not running locally.
func connectOrSkip(t *testing.T) *telemetry.Client {
	t.Helper()
	client, err := telemetry.Connect(testConfig(), "test-device")
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	return client
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := telemetry.Connect(cfg, "test-device")
	if !errors.Is(err, telemetry.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:19999"

	_, err := telemetry.Connect(cfg, "test-device")
	if err == nil {
		t.Fatal("Connect() expected error for unreachable server")
	}
	if !errors.Is(err, telemetry.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteAndFlush(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	client.WriteLinkMetric("TestNet", -60, 1500*time.Millisecond)
	client.WriteSessionEvent("connect", "127.0.0.1:1883")
	client.WriteUptime(42 * time.Second)
	client.Flush()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	client := &telemetry.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}
