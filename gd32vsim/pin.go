package gd32vsim

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	gd32v "github.com/4Kamei/bronzebeard"
)

// Pin exposes one simulated GPIO pad as a periph.io gpio.PinIO. It acts
// from the outside of the chip: Out drives the pad the way an external
// signal would, and Read observes the pad, so a test can wire a Pin up
// against a program that configures the same pin from the inside.
//
// A Pin stays valid across Reset.
type Pin struct {
	d    *Device
	base uint32
	pin  uint8
}

var _ gpio.PinIO = (*Pin)(nil)

// Pin returns the pad for the given port base and pin index. The port
// does not need its clock enabled; pads exist regardless of gating.
func (d *Device) Pin(portBase uint32, pin uint8) (*Pin, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ports[portBase]; !ok {
		return nil, fmt.Errorf("gd32vsim: no port at %#08x", portBase)
	}
	if pin > 15 {
		return nil, fmt.Errorf("gd32vsim: pin %d out of range", pin)
	}
	return &Pin{d: d, base: portBase, pin: pin}, nil
}

// state resolves the backing port. Callers hold d.mu. Resolving per
// call keeps the Pin attached after Reset swaps the port map.
func (p *Pin) state() *portState {
	return p.d.ports[p.base]
}

func portName(base uint32) string {
	return fmt.Sprintf("P%c", rune('A'+(base-gd32v.GPIOABase)/0x400))
}

// Name returns the conventional pad name, e.g. "PA9".
func (p *Pin) Name() string {
	return fmt.Sprintf("%s%d", portName(p.base), p.pin)
}

func (p *Pin) String() string {
	return p.Name()
}

// Number returns a flat index across ports: PA0 is 0, PB0 is 16.
func (p *Pin) Number() int {
	return int((p.base-gd32v.GPIOABase)/0x400)*16 + int(p.pin)
}

// Function reports whether the program configured the pin as an input
// or an output.
func (p *Pin) Function() string {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	if p.state().outMask()&(1<<p.pin) != 0 {
		return "Out"
	}
	return "In"
}

// Halt is a no-op; a pad has no ongoing operation to stop.
func (p *Pin) Halt() error {
	return nil
}

// In configures the pin as an input by writing the control field
// directly, the same way boot code would. Edge detection is not
// modeled.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return fmt.Errorf("gd32vsim: edges are not supported")
	}
	var ctl gd32v.Ctl
	switch pull {
	case gpio.Float, gpio.PullNoChange:
		ctl = gd32v.CtlInFloating
	case gpio.PullUp, gpio.PullDown:
		ctl = gd32v.CtlInPullUpDown
	default:
		return fmt.Errorf("gd32vsim: pull %s is not supported", pull)
	}
	_, shift, field := gd32v.PinField(p.pin, gd32v.ModeInput, ctl)

	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	port := p.state()
	reg := &port.ctl0
	if p.pin >= 8 {
		reg = &port.ctl1
	}
	*reg = *reg&^(0xf<<shift) | field<<shift
	// Pull direction is selected through OCTL while the pin is an
	// input, per the GPIO chapter of the user manual.
	switch pull {
	case gpio.PullUp:
		port.octl |= 1 << p.pin
	case gpio.PullDown:
		port.octl &^= 1 << p.pin
	}
	return nil
}

// Read returns the pad level.
func (p *Pin) Read() gpio.Level {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	return p.state().pads()&(1<<p.pin) != 0
}

// WaitForEdge always reports false; edges are not modeled.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull decodes the configured input pull from the control field.
func (p *Pin) Pull() gpio.Pull {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	port := p.state()
	reg := port.ctl0
	shift := uint32(p.pin) % 8 * 4
	if p.pin >= 8 {
		reg = port.ctl1
	}
	field := reg >> shift & 0xf
	if field&0b11 != 0 {
		// Output mode; pull does not apply.
		return gpio.PullNoChange
	}
	switch gd32v.Ctl(field >> 2) {
	case gd32v.CtlInFloating:
		return gpio.Float
	case gd32v.CtlInPullUpDown:
		if port.octl&(1<<p.pin) != 0 {
			return gpio.PullUp
		}
		return gpio.PullDown
	default:
		return gpio.PullNoChange
	}
}

// DefaultPull reports the reset state, a floating input.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

// Out drives the pad from the outside, as a connected signal would.
// The program sees the new level through ISTAT.
func (p *Pin) Out(l gpio.Level) error {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	port := p.state()
	if l {
		port.istat |= 1 << p.pin
	} else {
		port.istat &^= 1 << p.pin
	}
	return nil
}

// PWM is not modeled.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("gd32vsim: pwm is not supported")
}
