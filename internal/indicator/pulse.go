package indicator

// Pulse animation constants.
const (
	// pulseSteps is the number of steps in one full brighten-dim cycle.
	pulseSteps = 40

	// minBrightness keeps the LED faintly visible at the bottom of the pulse.
	minBrightness = 8
	maxBrightness = 255
)

// Pulse scales a base colour through a triangle-wave brightness cycle.
//
// Each call to Next advances the animation by one step. At the poll
// interval the coordinators use (50ms), a full cycle takes two seconds.
// Pulse is deterministic, which keeps it testable; it is not safe for
// concurrent use, matching its single-goroutine call pattern.
type Pulse struct {
	step int
}

// NewPulse creates a pulse animation starting at minimum brightness.
func NewPulse() *Pulse {
	return &Pulse{}
}

// Next returns the base colour scaled to the current brightness and
// advances the animation one step.
func (p *Pulse) Next(r, g, b uint8) (uint8, uint8, uint8) {
	brightness := p.brightness()
	p.step = (p.step + 1) % pulseSteps

	scale := func(c uint8) uint8 {
		return uint8(uint16(c) * uint16(brightness) / maxBrightness)
	}
	return scale(r), scale(g), scale(b)
}

// brightness computes the triangle wave value for the current step.
func (p *Pulse) brightness() uint8 {
	half := pulseSteps / 2
	pos := p.step
	if pos >= half {
		pos = pulseSteps - pos
	}

	span := maxBrightness - minBrightness
	return uint8(minBrightness + span*pos/half)
}
