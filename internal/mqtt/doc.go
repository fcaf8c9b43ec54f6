// Package mqtt provides a resilient MQTT session for Gray Link devices.
//
// The package wraps the Eclipse Paho client with the behaviours a field
// device needs out of the box:
//
//   - Automatic reconnection with exponential backoff
//   - Subscription restoration after reconnect
//   - Retained online/offline presence on the device status topic
//   - Last Will and Testament announcing unexpected disconnects
//   - Multi-topic dispatch via Router
//   - Panic recovery in message handlers
//
// Presence semantics: on every (re)connect the client publishes a retained
// "online" payload to graylink/{device}/status, and the broker holds a
// matching "offline" will. Close publishes an explicit retained offline
// payload before the clean disconnect, so a graceful shutdown never
// triggers the will.
//
// Basic usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	router := mqtt.NewRouter()
//	router.Handle(mqtt.Topics{}.AllCommands(cfg.Device.ID), handleCommand)
//	if err := client.SubscribeRouter(router, 1); err != nil {
//	    return err
//	}
//
// All operations return wrapped sentinel errors (ErrNotConnected,
// ErrPublishFailed, ...) suitable for errors.Is checks.
package mqtt
