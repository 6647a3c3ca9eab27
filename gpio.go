package gd32v

import (
	"fmt"
)

// GPIO port register blocks, 0x400 apart on APB2.
const (
	GPIOABase uint32 = 0x40010800
	GPIOBBase uint32 = 0x40010c00
	GPIOCBase uint32 = 0x40011000
	GPIODBase uint32 = 0x40011400
	GPIOEBase uint32 = 0x40011800
)

// GPIO register offsets.
const (
	GPIOCtl0  uint32 = 0x00 // pins 0-7, one 4-bit field each
	GPIOCtl1  uint32 = 0x04 // pins 8-15
	GPIOIstat uint32 = 0x08 // pad input status, read-only
	GPIOOctl  uint32 = 0x0c // output control
	GPIOBop   uint32 = 0x10 // bit operate: [15:0] set, [31:16] clear
	GPIOBc    uint32 = 0x14 // bit clear: [15:0] clear
	GPIOLock  uint32 = 0x18
)

// GPIOCtlReset is the reset value of CTL0 and CTL1: every pin an input,
// floating.
const GPIOCtlReset uint32 = 0x44444444

// Mode is the 2-bit pin mode: input, or output at a maximum toggle speed.
type Mode uint32

const (
	ModeInput       Mode = 0b00
	ModeOutput10MHz Mode = 0b01
	ModeOutput2MHz  Mode = 0b10
	ModeOutput50MHz Mode = 0b11
)

// Ctl is the 2-bit pin control field. Its meaning depends on the mode.
type Ctl uint32

// Controls for input pins.
const (
	CtlInAnalog     Ctl = 0b00
	CtlInFloating   Ctl = 0b01
	CtlInPullUpDown Ctl = 0b10
)

// Controls for output pins.
const (
	CtlOutPushPull  Ctl = 0b00
	CtlOutOpenDrain Ctl = 0b01
	CtlAltPushPull  Ctl = 0b10
	CtlAltOpenDrain Ctl = 0b11
)

// PinField computes where a pin's configuration lives: the control
// register offset (CTL0 for pins 0-7, CTL1 for 8-15), the shift of its
// 4-bit field within that register, and the unshifted field value
// (ctl<<2 | mode).
//
// Pure arithmetic, no register access.
func PinField(pin uint8, mode Mode, ctl Ctl) (offset uint32, shift uint32, field uint32) {
	offset = GPIOCtl0
	if pin >= 8 {
		offset = GPIOCtl1
		pin -= 8
	}
	shift = uint32(pin) * 4
	field = uint32(ctl)<<2 | uint32(mode)
	return offset, shift, field
}

func checkPin(pin uint8) {
	if pin > 15 {
		panic(fmt.Sprintf("gd32v: pin %d out of range", pin))
	}
}

// Port drives one GPIO port.
type Port struct {
	bus  Bus
	base uint32
}

// NewPort returns a driver for the GPIO port at base on bus.
func NewPort(bus Bus, base uint32) *Port {
	return &Port{bus: bus, base: base}
}

// Configure sets the 4-bit mode/control field for one pin.
//
// The update is a read-modify-write that leaves every other pin's field
// in the shared control register untouched. Nothing here serializes
// concurrent calls on the same port: the echo firmware is single
// threaded, concurrent callers must bring their own lock.
func (p *Port) Configure(pin uint8, mode Mode, ctl Ctl) {
	checkPin(pin)
	offset, shift, field := PinField(pin, mode, ctl)
	addr := p.base + offset
	v := p.bus.Read32(addr)
	v &^= 0xf << shift
	v |= field << shift
	p.bus.Write32(addr, v)
}

// Set drives an output pin high through the bit-operate register, a
// single write with no read-modify-write hazard.
func (p *Port) Set(pin uint8) {
	checkPin(pin)
	p.bus.Write32(p.base+GPIOBop, 1<<pin)
}

// Clear drives an output pin low through the bit-clear register.
func (p *Port) Clear(pin uint8) {
	checkPin(pin)
	p.bus.Write32(p.base+GPIOBc, 1<<pin)
}

// In reports the pad level of pin.
func (p *Port) In(pin uint8) bool {
	checkPin(pin)
	return p.bus.Read32(p.base+GPIOIstat)&(1<<pin) != 0
}
