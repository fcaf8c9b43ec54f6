// Package config provides configuration loading for the Gray Link agent.
//
// Configuration is loaded from a YAML file with environment variable
// overrides for secrets and deployment-specific values. A .env file in
// the working directory is honoured for development convenience.
//
// # Loading Order
//
//  1. Hardcoded defaults
//  2. YAML file values
//  3. .env file (development only, never overwrites real environment)
//  4. GRAYLINK_* environment variables
//
// # Example
//
//	device:
//	  id: "sensor-hub-07"
//	wifi:
//	  ssid: "FactoryFloor"
//	  connect_timeout: 10
//	mqtt:
//	  broker:
//	    host: "10.0.4.2"
//	    port: 1883
//	  qos: 1
//
// # Security
//
// Wi-Fi passphrases, MQTT passwords, and telemetry tokens should come
// from the environment (GRAYLINK_WIFI_PASSPHRASE, GRAYLINK_MQTT_PASSWORD,
// GRAYLINK_TELEMETRY_TOKEN), not from the YAML file.
package config
