package mqtt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nerrad567/gray-link/internal/infrastructure/config"
)

func TestClientID_Configured(t *testing.T) {
	cfg := config.MQTTBrokerConfig{ClientID: "field-unit-3"}
	if got := clientID(cfg); got != "field-unit-3" {
		t.Errorf("clientID() = %q, want configured ID", got)
	}
}

func TestClientID_Generated(t *testing.T) {
	cfg := config.MQTTBrokerConfig{}

	first := clientID(cfg)
	second := clientID(cfg)

	if !strings.HasPrefix(first, "graylink-") {
		t.Errorf("clientID() = %q, want graylink- prefix", first)
	}
	if first == second {
		t.Error("generated client IDs should be unique")
	}
}

func TestBuildClientOptions_BrokerURL(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883},
	}

	opts := buildClientOptions(cfg, "test-id")
	servers := opts.Servers
	if len(servers) != 1 {
		t.Fatalf("Servers len = %d, want 1", len(servers))
	}
	if got := servers[0].String(); got != "tcp://broker.local:1883" {
		t.Errorf("broker URL = %q, want tcp scheme", got)
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 8883, TLS: true},
	}

	opts := buildClientOptions(cfg, "test-id")
	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig not set for TLS broker")
	}
	if opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Errorf("TLS MinVersion = %d, want %d", opts.TLSConfig.MinVersion, tlsMinVersion)
	}
}

func TestBuildClientOptions_Auth(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883},
		Auth:   config.MQTTAuthConfig{Username: "device", Password: "secret"},
	}

	opts := buildClientOptions(cfg, "test-id")
	if opts.Username != "device" {
		t.Errorf("Username = %q, want %q", opts.Username, "device")
	}
	if opts.Password != "secret" {
		t.Errorf("Password not carried through")
	}
}

func TestConfigureLWT_DefaultStatusTopic(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883},
		Will:   config.MQTTWillConfig{QoS: 1, Retain: true},
	}

	opts := buildClientOptions(cfg, "test-id")
	configureLWT(opts, cfg.Will, "dev1", "test-id")

	if opts.WillTopic != "graylink/dev1/status" {
		t.Errorf("WillTopic = %q, want device status topic", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will should be retained by default config")
	}

	var payload map[string]string
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("will payload is not valid JSON: %v", err)
	}
	if payload["status"] != "offline" {
		t.Errorf("will status = %q, want offline", payload["status"])
	}
	if payload["reason"] != "unexpected_disconnect" {
		t.Errorf("will reason = %q, want unexpected_disconnect", payload["reason"])
	}
}

func TestConfigureLWT_CustomTopic(t *testing.T) {
	will := config.MQTTWillConfig{
		Topic:   "custom/offline",
		Payload: "gone",
		QoS:     0,
		Retain:  false,
	}

	opts := buildClientOptions(config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883},
	}, "test-id")
	configureLWT(opts, will, "dev1", "test-id")

	if opts.WillTopic != "custom/offline" {
		t.Errorf("WillTopic = %q, want custom topic", opts.WillTopic)
	}
	if string(opts.WillPayload) != "gone" {
		t.Errorf("WillPayload = %q, want custom payload", opts.WillPayload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("test-id")
	offline := buildOfflinePayload("test-id")

	var got map[string]string
	if err := json.Unmarshal([]byte(online), &got); err != nil {
		t.Fatalf("online payload invalid JSON: %v", err)
	}
	if got["status"] != "online" || got["client_id"] != "test-id" {
		t.Errorf("online payload = %v", got)
	}
	if got["timestamp"] == "" {
		t.Error("online payload missing timestamp")
	}

	if err := json.Unmarshal([]byte(offline), &got); err != nil {
		t.Fatalf("offline payload invalid JSON: %v", err)
	}
	if got["status"] != "offline" || got["reason"] != "graceful_shutdown" {
		t.Errorf("offline payload = %v", got)
	}
}
