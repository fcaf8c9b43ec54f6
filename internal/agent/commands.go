package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-link/internal/mqtt"
)

// stateReport is published to the device state topic, retained, so any
// subscriber can read the current uplink details without waiting for
// the next report.
type stateReport struct {
	DeviceID    string `json:"device_id"`
	Name        string `json:"name,omitempty"`
	SSID        string `json:"ssid"`
	IP          string `json:"ip"`
	RSSIDBm     *int   `json:"rssi_dbm,omitempty"`
	ConnectedAt string `json:"connected_at"`
	ReportedAt  string `json:"reported_at"`
}

// commandAck is published to the event topic after a command completes.
type commandAck struct {
	Command string `json:"command"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
	At      string `json:"at"`
}

// subscribeCommands wires the device command topics through a router.
//
// Supported commands:
//   - ping: acknowledge on the event topic (liveness probe)
//   - identify: flash the status LED so a technician can find the unit
//   - report: publish a fresh state report immediately
func (a *Agent) subscribeCommands() error {
	router := mqtt.NewRouter()
	topics := mqtt.Topics{}
	deviceID := a.cfg.Device.ID

	router.Handle(topics.Command(deviceID, "ping"), a.handlePing)
	router.Handle(topics.Command(deviceID, "identify"), a.handleIdentify)
	router.Handle(topics.Command(deviceID, "report"), a.handleReport)

	qos := byte(a.cfg.MQTT.QoS) // #nosec G115 -- QoS validated by config
	if err := a.session.SubscribeRouter(router, qos); err != nil {
		return fmt.Errorf("subscribing commands: %w", err)
	}

	a.logger.Info("command topics subscribed", "topics", router.Topics())
	return nil
}

func (a *Agent) handlePing(_ string, _ []byte) error {
	return a.publishAck("ping", "pong", nil)
}

func (a *Agent) handleIdentify(_ string, _ []byte) error {
	// Brief attention pattern, then back to steady connected state.
	go func() {
		for i := 0; i < 6; i++ {
			a.link.Connecting()
			time.Sleep(150 * time.Millisecond)
			a.link.Off()
			time.Sleep(150 * time.Millisecond)
		}
		a.link.Connected()
	}()
	return a.publishAck("identify", "blinking", nil)
}

func (a *Agent) handleReport(_ string, _ []byte) error {
	err := a.publishStateReport()
	return a.publishAck("report", "published", err)
}

// publishAck reports command completion on the device event topic.
func (a *Agent) publishAck(command, result string, cmdErr error) error {
	ack := commandAck{
		Command: command,
		Result:  result,
		At:      time.Now().UTC().Format(time.RFC3339),
	}
	if cmdErr != nil {
		ack.Result = "failed"
		ack.Error = cmdErr.Error()
	}

	payload, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("encoding ack: %w", err)
	}

	topic := mqtt.Topics{}.Event(a.cfg.Device.ID, command)
	qos := byte(a.cfg.MQTT.QoS) // #nosec G115 -- QoS validated by config
	return a.session.Publish(topic, payload, qos, false)
}

// publishStateReport publishes the current uplink details, retained.
func (a *Agent) publishStateReport() error {
	report := stateReport{
		DeviceID:   a.cfg.Device.ID,
		Name:       a.cfg.Device.Name,
		SSID:       a.cfg.WiFi.SSID,
		IP:         a.ip.String(),
		ReportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if a.wifiMgr != nil {
		report.ConnectedAt = a.wifiMgr.ConnectedSince().UTC().Format(time.RFC3339)
		if rssi, err := a.wifiMgr.SignalStrength(); err == nil {
			report.RSSIDBm = &rssi
		}
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding state report: %w", err)
	}

	return a.session.PublishRetained(mqtt.Topics{}.State(a.cfg.Device.ID), payload)
}
