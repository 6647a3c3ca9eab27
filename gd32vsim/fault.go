package gd32vsim

import (
	"fmt"
)

// FaultKind classifies a hardware condition the echo firmware never
// checks for. The device journals them so hosts and tests can.
type FaultKind int

const (
	// FaultClockNotReady is an access to a peripheral whose clock
	// domain is not enabled. On hardware the access is undefined; the
	// model reads zero and drops writes.
	FaultClockNotReady FaultKind = iota

	// FaultReceiveOverrun is a byte arriving before the previous one
	// was read. The old byte stays, the new one is lost, ORERR is set.
	FaultReceiveOverrun

	// FaultFramingError is a byte delivered with FERR raised.
	FaultFramingError

	// FaultUnmappedAccess is a read or write outside the modeled
	// register file.
	FaultUnmappedAccess
)

func (k FaultKind) String() string {
	switch k {
	case FaultClockNotReady:
		return "clock not ready"
	case FaultReceiveOverrun:
		return "receive overrun"
	case FaultFramingError:
		return "framing error"
	case FaultUnmappedAccess:
		return "unmapped access"
	default:
		return "unknown"
	}
}

// Fault is one journal entry.
type Fault struct {
	Kind FaultKind
	Addr uint32
}

func (f Fault) String() string {
	return fmt.Sprintf("%s at %#08x", f.Kind, f.Addr)
}
