package gd32v

// Reset and clock unit. Every peripheral sits in a clock domain that is
// gated off at power-on; registers of a gated peripheral are dead until
// the domain is enabled here.
const (
	RCUBase uint32 = 0x40021000

	// RCUAPB2En is the offset of the APB2 enable register.
	RCUAPB2En uint32 = 0x18
)

// APB2 clock-enable bits.
const (
	APB2AFEn     uint32 = 1 << 0 // alternate-function I/O
	APB2PAEn     uint32 = 1 << 2 // GPIO port A
	APB2PBEn     uint32 = 1 << 3 // GPIO port B
	APB2PCEn     uint32 = 1 << 4 // GPIO port C
	APB2PDEn     uint32 = 1 << 5 // GPIO port D
	APB2PEEn     uint32 = 1 << 6 // GPIO port E
	APB2USART0En uint32 = 1 << 14
)

// RCU drives the reset and clock unit.
type RCU struct {
	bus  Bus
	base uint32
}

// NewRCU returns an RCU driver at base on bus.
func NewRCU(bus Bus, base uint32) *RCU {
	return &RCU{bus: bus, base: base}
}

// EnableAPB2 enables the APB2 clock domains in mask with a single write.
//
// The write replaces the register contents, it does not merge with
// them: the caller combines the bits for every domain it needs into one
// mask. Calling it again with the same mask is a no-op for the
// hardware. Peripheral registers must not be touched before their
// domain is enabled here.
func (r *RCU) EnableAPB2(mask uint32) {
	r.bus.Write32(r.base+RCUAPB2En, mask)
}
