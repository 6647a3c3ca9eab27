package gd32v

import (
	"periph.io/x/conn/v3/physic"
)

// USART0 header pins on GPIO port A.
const (
	LonganTxPin uint8 = 9
	LonganRxPin uint8 = 10
)

// The Longan Nano RGB LED. Active low: clearing a pin lights its color.
const (
	LonganLEDRedPort   uint32 = GPIOCBase
	LonganLEDGreenPort uint32 = GPIOABase
	LonganLEDBluePort  uint32 = GPIOABase
)

const (
	LonganLEDRedPin   uint8 = 13
	LonganLEDGreenPin uint8 = 1
	LonganLEDBluePin  uint8 = 2
)

// Config describes the board wiring and clocking for a Dev.
type Config struct {
	// Clock is the peripheral clock feeding the USART baud generator.
	Clock physic.Frequency
	// Baud is the serial line rate.
	Baud uint32
	// ClockMask is the complete APB2 enable word for every clock domain
	// the program needs. It is written as-is, never merged with the
	// register's prior contents.
	ClockMask uint32
	// RCU, Port and USART are the base addresses of the register blocks.
	RCU   uint32
	Port  uint32
	USART uint32
	// TxPin and RxPin are the USART pin numbers on Port.
	TxPin uint8
	RxPin uint8
	// Debug is used for register trace output.
	Debug Logger
}

// ConfigLonganNano returns the echo firmware's configuration for the
// Longan Nano: USART0 on PA9/PA10 at 115200 baud, clocked from the
// 8 MHz internal RC oscillator the chip boots on.
func ConfigLonganNano() Config {
	return Config{
		Clock:     8 * physic.MegaHertz,
		Baud:      115200,
		ClockMask: APB2AFEn | APB2PAEn | APB2USART0En,
		RCU:       RCUBase,
		Port:      GPIOABase,
		USART:     USART0Base,
		TxPin:     LonganTxPin,
		RxPin:     LonganRxPin,
	}
}
