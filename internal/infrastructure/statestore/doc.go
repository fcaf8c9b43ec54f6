// Package statestore persists link state for the Gray Link agent.
//
// Firmware devices hand their Wi-Fi stack a non-volatile storage handle so
// credentials and connection history survive power cycles. On embedded Linux
// the equivalent is a small SQLite file: this package owns it.
//
// It stores:
//   - Known networks with their last assigned address
//   - A bounded history of connection attempts (success, error, duration)
//
// The store is optional. When state.enabled is false in config.yaml the
// agent runs stateless and Open returns ErrDisabled.
//
// # Usage
//
//	store, err := statestore.Open(ctx, cfg.State)
//	if err != nil && !errors.Is(err, statestore.ErrDisabled) {
//	    return err
//	}
//	defer store.Close()
//
//	store.RecordAttempt(ctx, statestore.Attempt{
//	    SSID: "FactoryFloor", Success: true, IP: "10.0.4.17",
//	})
package statestore
