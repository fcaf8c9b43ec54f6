package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLinkMetric records a Wi-Fi link quality measurement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - ssid: Network the device is associated with
//   - rssiDBm: Received signal strength in dBm (0 if unknown)
//   - connectDuration: How long the last association took
//
// Example:
//
//	client.WriteLinkMetric("FactoryFloor", -61, 1200*time.Millisecond)
func (c *Client) WriteLinkMetric(ssid string, rssiDBm int, connectDuration time.Duration) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"connect_duration_ms": connectDuration.Milliseconds(),
	}
	if rssiDBm != 0 {
		fields["rssi_dbm"] = rssiDBm
	}

	point := write.NewPoint(
		"wifi_link",
		map[string]string{
			"device_id": c.deviceID,
			"ssid":      ssid,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionEvent records an MQTT session lifecycle event.
//
// Used for tracking session stability over time (connects, disconnects,
// reconnects). Event values: "connect", "disconnect", "reconnect".
//
// Parameters:
//   - event: The session event name
//   - broker: Broker address the event relates to
func (c *Client) WriteSessionEvent(event string, broker string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"mqtt_session",
		map[string]string{
			"device_id": c.deviceID,
			"broker":    broker,
			"event":     event,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteUptime records agent uptime in seconds.
//
// Written periodically by the agent's health ticker so dashboards can
// distinguish restarts from telemetry gaps.
func (c *Client) WriteUptime(uptime time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"agent",
		map[string]string{
			"device_id": c.deviceID,
		},
		map[string]interface{}{
			"uptime_seconds": int64(uptime.Seconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
