// Package wifi coordinates the Wi-Fi connection lifecycle.
//
// This package manages:
//   - Credential configuration and association with a bounded timeout
//   - Address acquisition polling (WaitForIP)
//   - Optional status LED feedback during the attempt
//   - Signal strength reporting for telemetry
//
// # Architecture
//
// The radio driver stays behind the Radio interface: wpa_supplicant on
// Linux gateways (via WPACtl), fakes in tests. The coordinator adds no
// protocol logic of its own; it sequences configure, associate, and
// wait-for-address, and turns stalled steps into errors instead of
// hangs.
//
//	agent → wifi.Manager → Radio (wpa_supplicant / vendor stack)
//
// # Usage
//
//	radio := wifi.NewWPACtl("wlan0")
//	cfg := wifi.NewConfig("FactoryFloor", passphrase).WithTimeout(10 * time.Second)
//
//	mgr, err := wifi.Connect(ctx, radio, cfg, wifi.Options{Logger: log})
//	if err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	ip, err := mgr.WaitForIP(ctx, 10*time.Second)
package wifi
