package mqtt

import "fmt"

// TopicPrefix is the base for all Gray Link topics.
//
// The scheme is device-centric: graylink/{device_id}/{category}[/...].
// Retained status lives on its own topic so new subscribers learn
// presence immediately.
const TopicPrefix = "graylink"

// Topics provides builders for Gray Link MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.Status("sensor-hub-07")
//	// Returns: "graylink/sensor-hub-07/status"
type Topics struct{}

// Status returns the retained presence topic for a device.
//
// Example: graylink/sensor-hub-07/status
func (Topics) Status(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, deviceID)
}

// State returns the topic for device state reports.
//
// Example: graylink/sensor-hub-07/state
func (Topics) State(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefix, deviceID)
}

// Command returns the topic for a specific command to a device.
//
// Example: graylink/sensor-hub-07/command/reboot
func (Topics) Command(deviceID, command string) string {
	return fmt.Sprintf("%s/%s/command/%s", TopicPrefix, deviceID, command)
}

// Event returns the topic for device events.
//
// Example: graylink/sensor-hub-07/event/link_restored
func (Topics) Event(deviceID, event string) string {
	return fmt.Sprintf("%s/%s/event/%s", TopicPrefix, deviceID, event)
}

// Telemetry returns the topic for device telemetry samples.
//
// Example: graylink/sensor-hub-07/telemetry
func (Topics) Telemetry(deviceID string) string {
	return fmt.Sprintf("%s/%s/telemetry", TopicPrefix, deviceID)
}

// AllCommands returns a pattern matching every command to a device.
//
// Pattern: graylink/sensor-hub-07/command/+
func (Topics) AllCommands(deviceID string) string {
	return fmt.Sprintf("%s/%s/command/+", TopicPrefix, deviceID)
}

// AllStatuses returns a pattern matching every device's presence topic.
//
// Pattern: graylink/+/status
func (Topics) AllStatuses() string {
	return fmt.Sprintf("%s/+/status", TopicPrefix)
}

// AllTopics returns a pattern matching all Gray Link topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: graylink/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
