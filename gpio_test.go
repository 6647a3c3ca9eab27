package gd32v

import (
	"strconv"
	"testing"
)

func TestPinField(t *testing.T) {
	testCases := []struct {
		pin    uint8
		mode   Mode
		ctl    Ctl
		offset uint32
		shift  uint32
		field  uint32
	}{
		// The two pins the echo firmware configures.
		{9, ModeOutput50MHz, CtlAltPushPull, GPIOCtl1, 4, 0b1011},
		{10, ModeInput, CtlInFloating, GPIOCtl1, 8, 0b0100},
		// Register boundaries.
		{0, ModeInput, CtlInFloating, GPIOCtl0, 0, 0b0100},
		{7, ModeOutput2MHz, CtlOutOpenDrain, GPIOCtl0, 28, 0b0110},
		{8, ModeOutput10MHz, CtlOutPushPull, GPIOCtl1, 0, 0b0001},
		{15, ModeOutput50MHz, CtlAltOpenDrain, GPIOCtl1, 28, 0b1111},
		// LED pins.
		{13, ModeOutput50MHz, CtlOutPushPull, GPIOCtl1, 20, 0b0011},
		{1, ModeOutput50MHz, CtlOutPushPull, GPIOCtl0, 4, 0b0011},
	}

	for i, tc := range testCases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			offset, shift, field := PinField(tc.pin, tc.mode, tc.ctl)
			if offset != tc.offset || shift != tc.shift || field != tc.field {
				t.Errorf("PinField(%d, %#b, %#b) = (%#x, %d, %#04b), want (%#x, %d, %#04b)",
					tc.pin, tc.mode, tc.ctl, offset, shift, field,
					tc.offset, tc.shift, tc.field)
			}
		})
	}
}

// TestConfigureTouchesOnlyOwnField checks, for every pin, that a
// configure leaves the other 28 bits of the shared control register and
// the whole sibling register exactly as they were.
func TestConfigureTouchesOnlyOwnField(t *testing.T) {
	configs := []struct {
		mode Mode
		ctl  Ctl
	}{
		{ModeOutput50MHz, CtlAltPushPull},
		{ModeInput, CtlInFloating},
		{ModeInput, CtlInAnalog},
		{ModeOutput2MHz, CtlOutOpenDrain},
	}

	for pin := uint8(0); pin <= 15; pin++ {
		for _, cc := range configs {
			// A busy bit pattern so disturbed neighbors show up.
			bus := busMap{
				GPIOABase + GPIOCtl0: 0x12345678,
				GPIOABase + GPIOCtl1: 0x9abcdef0,
			}
			before0 := bus[GPIOABase+GPIOCtl0]
			before1 := bus[GPIOABase+GPIOCtl1]

			NewPort(bus, GPIOABase).Configure(pin, cc.mode, cc.ctl)

			offset, shift, field := PinField(pin, cc.mode, cc.ctl)
			got := bus[GPIOABase+offset]
			var want uint32
			if offset == GPIOCtl0 {
				want = before0
			} else {
				want = before1
			}
			want = want&^(0xf<<shift) | field<<shift
			if got != want {
				t.Errorf("pin %d %#04b: register %#x: want %#08x, got %#08x",
					pin, field, offset, want, got)
			}

			// The sibling register must be untouched.
			other := GPIOABase + GPIOCtl1
			wantOther := before1
			if offset == GPIOCtl1 {
				other = GPIOABase + GPIOCtl0
				wantOther = before0
			}
			if bus[other] != wantOther {
				t.Errorf("pin %d: sibling register changed: want %#08x, got %#08x",
					pin, wantOther, bus[other])
			}
		}
	}
}

func TestConfigureIsReadModifyWrite(t *testing.T) {
	bus := &busScript{reads: map[uint32][]uint32{
		GPIOABase + GPIOCtl1: {GPIOCtlReset},
	}}
	NewPort(bus, GPIOABase).Configure(9, ModeOutput50MHz, CtlAltPushPull)

	want := []busOp{
		{false, GPIOABase + GPIOCtl1, GPIOCtlReset},
		{true, GPIOABase + GPIOCtl1, 0x444444b4},
	}
	if len(bus.log) != len(want) {
		t.Fatalf("want %d bus ops, got %d: %v", len(want), len(bus.log), bus.log)
	}
	for i, op := range want {
		if bus.log[i] != op {
			t.Errorf("op %d: want %v, got %v", i, op, bus.log[i])
		}
	}
}

func TestSetClear(t *testing.T) {
	bus := &busScript{}
	p := NewPort(bus, GPIOCBase)

	p.Set(13)
	p.Clear(13)

	want := []busOp{
		{true, GPIOCBase + GPIOBop, 1 << 13},
		{true, GPIOCBase + GPIOBc, 1 << 13},
	}
	if len(bus.log) != len(want) {
		t.Fatalf("want %d bus ops, got %d: %v", len(want), len(bus.log), bus.log)
	}
	for i, op := range want {
		if bus.log[i] != op {
			t.Errorf("op %d: want %v, got %v", i, op, bus.log[i])
		}
	}
}

func TestConfigureBadPinPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("configure of pin 16 did not panic")
		}
	}()
	NewPort(busMap{}, GPIOABase).Configure(16, ModeInput, CtlInFloating)
}
