package wifi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/gray-link/internal/indicator"
)

// recordingLed captures colours for indicator feedback assertions.
type recordingLed struct {
	colors [][3]uint8
}

func (r *recordingLed) SetColor(red, green, blue uint8) error {
	r.colors = append(r.colors, [3]uint8{red, green, blue})
	return nil
}

func TestConnect_IndicatorEndsGreen(t *testing.T) {
	led := &recordingLed{}
	radio := &fakeRadio{associatedIn: 3}

	opts := fastOpts()
	opts.Indicator = indicator.NewLink(led)

	_, err := Connect(context.Background(), radio, NewConfig("TestNet", ""), opts)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if len(led.colors) == 0 {
		t.Fatal("indicator never updated")
	}

	last := led.colors[len(led.colors)-1]
	want := [3]uint8{0, 20, 0}
	if last != want {
		t.Errorf("final colour = %v, want steady green %v", last, want)
	}

	// Earlier frames should be the blue connecting pulse.
	first := led.colors[0]
	if first[0] != 0 || first[1] != 0 {
		t.Errorf("first colour = %v, want blue channel only", first)
	}
}

func TestConnect_IndicatorFailureBurst(t *testing.T) {
	led := &recordingLed{}
	radio := &fakeRadio{associatedIn: 1 << 30}

	opts := fastOpts()
	opts.Indicator = indicator.NewLink(led)

	cfg := NewConfig("TestNet", "").WithTimeout(10 * time.Millisecond)
	_, err := Connect(context.Background(), radio, cfg, opts)
	if !errors.Is(err, ErrConnectTimeout) {
		t.Fatalf("Connect() error = %v, want ErrConnectTimeout", err)
	}

	// The tail of the colour log should be the red failure pulse.
	last := led.colors[len(led.colors)-1]
	if last[1] != 0 || last[2] != 0 {
		t.Errorf("final colour = %v, want red channel only", last)
	}
}
