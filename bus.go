package gd32v

// Bus is a 32-bit wide register bank.
//
// Reads and writes have hardware side effects and must hit the bank on
// every call: implementations may not cache, merge or reorder accesses.
type Bus interface {
	// Read32 reads the 32-bit register at addr.
	Read32(addr uint32) uint32
	// Write32 writes v to the 32-bit register at addr.
	Write32(addr uint32, v uint32)
}
