package gd32vsim

import (
	"testing"

	"periph.io/x/conn/v3/gpio"

	gd32v "github.com/4Kamei/bronzebeard"
)

func TestPinNames(t *testing.T) {
	d := New(Config{})

	testCases := []struct {
		base   uint32
		pin    uint8
		name   string
		number int
	}{
		{gd32v.GPIOABase, 9, "PA9", 9},
		{gd32v.GPIOABase, 10, "PA10", 10},
		{gd32v.GPIOBBase, 0, "PB0", 16},
		{gd32v.GPIOCBase, 13, "PC13", 45},
		{gd32v.GPIOEBase, 15, "PE15", 79},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := d.Pin(tc.base, tc.pin)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tc.name {
				t.Errorf("Name() = %q, want %q", p.Name(), tc.name)
			}
			if p.Number() != tc.number {
				t.Errorf("Number() = %d, want %d", p.Number(), tc.number)
			}
		})
	}
}

func TestPinBadArgs(t *testing.T) {
	d := New(Config{})

	if _, err := d.Pin(0x12345678, 0); err == nil {
		t.Error("bogus port base should be rejected")
	}
	if _, err := d.Pin(gd32v.GPIOABase, 16); err == nil {
		t.Error("pin 16 should be rejected")
	}
}

func TestPinDrivesPad(t *testing.T) {
	d := powerUp(t)
	port := gd32v.NewPort(d, gd32v.GPIOABase)

	pin, err := d.Pin(gd32v.GPIOABase, 10)
	if err != nil {
		t.Fatal(err)
	}

	// The outside drives the pad, the program reads it through ISTAT.
	if err := pin.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if !port.In(10) {
		t.Error("PA10 should read high")
	}
	if err := pin.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if port.In(10) {
		t.Error("PA10 should read low")
	}
}

func TestPinReadsProgramOutput(t *testing.T) {
	d := powerUp(t)
	port := gd32v.NewPort(d, gd32v.GPIOABase)

	pin, err := d.Pin(gd32v.GPIOABase, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := pin.Function(); got != "In" {
		t.Errorf("Function() = %q, want In", got)
	}

	// The program configures PA2 as an output and toggles it; the pad
	// follows.
	port.Configure(2, gd32v.ModeOutput2MHz, gd32v.CtlOutPushPull)
	if got := pin.Function(); got != "Out" {
		t.Errorf("Function() = %q, want Out", got)
	}
	port.Set(2)
	if pin.Read() != gpio.High {
		t.Error("pad should follow the set")
	}
	port.Clear(2)
	if pin.Read() != gpio.Low {
		t.Error("pad should follow the clear")
	}
}

func TestPinIn(t *testing.T) {
	d := New(Config{})

	pin, err := d.Pin(gd32v.GPIOABase, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := pin.Pull(); got != gpio.Float {
		t.Errorf("Pull() = %v at reset, want Float", got)
	}
	if got := pin.DefaultPull(); got != gpio.Float {
		t.Errorf("DefaultPull() = %v, want Float", got)
	}

	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if got := pin.Pull(); got != gpio.PullUp {
		t.Errorf("Pull() = %v, want PullUp", got)
	}

	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if got := pin.Pull(); got != gpio.PullDown {
		t.Errorf("Pull() = %v, want PullDown", got)
	}

	if err := pin.In(gpio.Float, gpio.BothEdges); err == nil {
		t.Error("edge request should be rejected")
	}
}

func TestPinUnsupported(t *testing.T) {
	d := New(Config{})

	pin, err := d.Pin(gd32v.GPIOABase, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pin.WaitForEdge(0) {
		t.Error("WaitForEdge should report false")
	}
	if err := pin.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("PWM should be rejected")
	}
}

func TestPinSurvivesReset(t *testing.T) {
	d := powerUp(t)
	port := gd32v.NewPort(d, gd32v.GPIOABase)

	pin, err := d.Pin(gd32v.GPIOABase, 1)
	if err != nil {
		t.Fatal(err)
	}
	port.Configure(1, gd32v.ModeOutput2MHz, gd32v.CtlOutPushPull)
	port.Set(1)
	if pin.Read() != gpio.High {
		t.Fatal("pad should read high before reset")
	}

	d.Reset()

	// The pin handle still observes the device, now back at power-on.
	if got := pin.Function(); got != "In" {
		t.Errorf("Function() = %q after reset, want In", got)
	}
	if pin.Read() != gpio.Low {
		t.Error("pad should read low after reset")
	}
}
