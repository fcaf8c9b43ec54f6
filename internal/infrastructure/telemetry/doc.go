// Package telemetry records link quality metrics to InfluxDB.
//
// Field devices are diagnosed remotely; this package streams the data
// that makes that possible: Wi-Fi signal strength and association
// durations, MQTT session lifecycle events, and agent uptime.
//
// Writes are non-blocking and batched by the InfluxDB client. Write
// failures surface asynchronously via SetOnError. Telemetry is optional:
// Connect returns ErrDisabled when telemetry.enabled is false and the
// agent runs without it.
package telemetry
