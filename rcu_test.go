package gd32v

import (
	"testing"
)

func TestEnableAPB2Overwrites(t *testing.T) {
	// Junk left by a bootloader must not survive: the enable word
	// replaces the register, it does not accumulate.
	bus := busMap{RCUBase + RCUAPB2En: 0xffffffff}
	rcu := NewRCU(bus, RCUBase)

	mask := APB2AFEn | APB2PAEn | APB2USART0En
	rcu.EnableAPB2(mask)

	if got := bus[RCUBase+RCUAPB2En]; got != mask {
		t.Errorf("want %#08x, got %#08x", mask, got)
	}
}

func TestEnableAPB2Idempotent(t *testing.T) {
	bus := busMap{}
	rcu := NewRCU(bus, RCUBase)
	mask := APB2AFEn | APB2PAEn | APB2USART0En

	rcu.EnableAPB2(mask)
	once := bus[RCUBase+RCUAPB2En]
	rcu.EnableAPB2(mask)

	if got := bus[RCUBase+RCUAPB2En]; got != once {
		t.Errorf("second enable changed the register: %#08x -> %#08x", once, got)
	}
}

func TestEnableAPB2SingleWrite(t *testing.T) {
	bus := &busScript{}
	NewRCU(bus, RCUBase).EnableAPB2(0x4005)

	want := []busOp{{true, RCUBase + RCUAPB2En, 0x4005}}
	if len(bus.log) != 1 || bus.log[0] != want[0] {
		t.Errorf("want exactly %v, got %v", want, bus.log)
	}
}

func TestLonganClockMask(t *testing.T) {
	// The mask the echo firmware writes, bit for bit.
	if mask := APB2AFEn | APB2PAEn | APB2USART0En; mask != 0b0100000000000101 {
		t.Errorf("want %#016b, got %#016b", 0b0100000000000101, mask)
	}
}
