package gd32v

import (
	"periph.io/x/conn/v3/physic"
)

// USART0Base is the register block of USART0, the serial port wired to
// the Longan Nano's USB-UART header.
const USART0Base uint32 = 0x40013800

// USART register offsets.
const (
	USARTStat uint32 = 0x00
	USARTData uint32 = 0x04
	USARTBaud uint32 = 0x08
	USARTCtl0 uint32 = 0x0c
)

// USARTStatReset is the reset value of STAT: transmit side idle, nothing
// received.
const USARTStatReset uint32 = 0x000000c0

// STAT bits.
const (
	StatPERR  uint32 = 1 << 0 // parity error
	StatFERR  uint32 = 1 << 1 // frame error
	StatNERR  uint32 = 1 << 2 // noise error
	StatORERR uint32 = 1 << 3 // overrun: a byte arrived before DATA was read
	StatIDLE  uint32 = 1 << 4 // idle line detected
	StatRBNE  uint32 = 1 << 5 // receive buffer not empty
	StatTC    uint32 = 1 << 6 // transmission complete
	StatTBE   uint32 = 1 << 7 // transmit buffer empty
)

// CTL0 bits.
const (
	Ctl0REN uint32 = 1 << 2  // receiver enable
	Ctl0TEN uint32 = 1 << 3  // transmitter enable
	Ctl0UEN uint32 = 1 << 13 // peripheral enable
)

// usartEnable is the CTL0 word the echo firmware runs with: peripheral,
// transmitter and receiver on, everything else at reset defaults. The
// zeroed word-length and parity bits leave the frame format at the
// hardware default of 8 data bits, no parity, 1 stop bit.
const usartEnable = Ctl0UEN | Ctl0TEN | Ctl0REN

// Divisor returns the baud-rate divisor for a peripheral clock and baud
// rate: floor(clock / baud), exactly as the hardware divides.
//
// No rounding correction is applied; the residual baud error is
// accepted as-is.
func Divisor(clock physic.Frequency, baud uint32) (uint32, error) {
	if baud == 0 {
		return 0, errZeroBaud
	}
	div := uint64(clock/physic.Hertz) / uint64(baud)
	if div == 0 {
		return 0, errZeroDivisor
	}
	if div > 0xffff {
		return 0, errDivisorRange
	}
	return uint32(div), nil
}

// USART drives one USART peripheral.
type USART struct {
	bus  Bus
	base uint32
}

// NewUSART returns a driver for the USART at base on bus.
func NewUSART(bus Bus, base uint32) *USART {
	return &USART{bus: bus, base: base}
}

// Init programs the baud divisor, then switches the peripheral on with
// receiver and transmitter enabled.
//
// The divisor is written first so the baud generator is settled before
// UEN takes effect. Both writes replace the register contents. The
// clock domain and the TX/RX pins must already be set up.
func (u *USART) Init(divisor uint32) {
	u.bus.Write32(u.base+USARTBaud, divisor)
	u.bus.Write32(u.base+USARTCtl0, usartEnable)
}

// ReadByte blocks until the receive buffer holds a byte, then returns
// it.
//
// It busy-polls the status register until RBNE is set; there is no
// timeout and no cancellation. The wait performs reads only. Error
// flags (overrun, framing, noise) are not inspected: a corrupted byte
// is returned like any other.
func (u *USART) ReadByte() byte {
	for u.bus.Read32(u.base+USARTStat)&StatRBNE == 0 {
	}
	return byte(u.bus.Read32(u.base + USARTData))
}

// WriteByte blocks until the transmit buffer is free, then writes b to
// it.
//
// It busy-polls the status register until TBE is set; there is no
// timeout.
func (u *USART) WriteByte(b byte) {
	for u.bus.Read32(u.base+USARTStat)&StatTBE == 0 {
	}
	u.bus.Write32(u.base+USARTData, uint32(b))
}
