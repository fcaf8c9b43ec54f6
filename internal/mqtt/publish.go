package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound payloads at 1MB. Anything a field
// device legitimately publishes is orders of magnitude smaller; a
// bigger payload is a bug upstream.
const maxPayloadSize = 1 << 20

// Publish sends a message and waits for the broker's acknowledgment,
// bounded by the publish timeout.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "graylink/sensor-hub-07/state")
//   - payload: The message payload, at most 1MB
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should keep this as the topic's
//     last-known value. Use for state and presence, not for commands
//     or events.
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
//
// Example:
//
//	topic := mqtt.Topics{}.State("sensor-hub-07")
//	err := client.Publish(topic, []byte(`{"link":"up"}`), 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	// Check connection state
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Publish with timeout
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload
// with the configured default QoS, not retained.
//
// For full control over QoS and retain, use Publish.
func (c *Client) PublishString(topic string, payload string) error {
	return c.Publish(topic, []byte(payload), byte(c.cfg.QoS), false) // #nosec G115 -- QoS validated by config
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state updates where new subscribers should receive the current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true) // #nosec G115 -- QoS validated by config
}
