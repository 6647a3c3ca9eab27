package gd32v

import (
	"errors"
)

// Configuration errors.
var (
	errZeroBaud = errors.New("gd32v: baud rate is zero")

	// errZeroDivisor is used when the clock is slower than the baud rate.
	//
	// A divisor of zero would disable the baud generator entirely.
	errZeroDivisor = errors.New("gd32v: baud divisor is zero")

	// errDivisorRange is used when the divisor overflows the BAUD register.
	//
	// The register holds a 16-bit value; anything larger cannot be
	// programmed and the requested rate is unreachable from this clock.
	errDivisorRange = errors.New("gd32v: baud divisor does not fit 16 bits")
)
