package indicator

// StatusLed is the minimal surface of an RGB status LED driver.
//
// Implementations wrap whatever the board provides (sysfs LEDs, SPI
// NeoPixels, a GPIO expander). The coordinator only ever sets a colour;
// effect timing lives on this side of the interface.
type StatusLed interface {
	// SetColor sets the LED to the given 8-bit RGB colour.
	SetColor(r, g, b uint8) error
}

// Noop is a StatusLed that discards every colour change. Useful on
// headless hardware and in tests that only exercise lifecycle flow.
type Noop struct{}

// SetColor implements StatusLed and does nothing.
func (Noop) SetColor(_, _, _ uint8) error { return nil }

// Link state colours.
var (
	colorConnecting = [3]uint8{0, 0, 255}  // blue
	colorConnected  = [3]uint8{0, 20, 0}   // dim green
	colorFailed     = [3]uint8{255, 0, 0}  // red
)

// Link drives a StatusLed through connection lifecycle states.
//
// A nil *Link is valid and does nothing, so callers can thread an
// optional indicator through without nil checks at every call site.
type Link struct {
	led   StatusLed
	pulse *Pulse
}

// NewLink creates a link state indicator for the given LED.
// A nil led yields a nil *Link, whose methods all no-op, so headless
// devices pass nil straight through.
func NewLink(led StatusLed) *Link {
	if led == nil {
		return nil
	}
	return &Link{
		led:   led,
		pulse: NewPulse(),
	}
}

// Connecting renders one step of the connecting animation (blue pulse).
// Call it once per poll tick while association is in progress.
func (l *Link) Connecting() error {
	if l == nil {
		return nil
	}
	r, g, b := l.pulse.Next(colorConnecting[0], colorConnecting[1], colorConnecting[2])
	return l.led.SetColor(r, g, b)
}

// Connected renders the steady connected colour (dim green).
func (l *Link) Connected() error {
	if l == nil {
		return nil
	}
	return l.led.SetColor(colorConnected[0], colorConnected[1], colorConnected[2])
}

// Failed renders one step of the failure animation (red pulse).
// The coordinator runs a short burst of these before surfacing its error.
func (l *Link) Failed() error {
	if l == nil {
		return nil
	}
	r, g, b := l.pulse.Next(colorFailed[0], colorFailed[1], colorFailed[2])
	return l.led.SetColor(r, g, b)
}

// Off turns the LED off.
func (l *Link) Off() error {
	if l == nil {
		return nil
	}
	return l.led.SetColor(0, 0, 0)
}
