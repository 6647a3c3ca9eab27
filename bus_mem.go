package gd32v

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devMemName = "/dev/mem"

// MemBus backs the register bus with a /dev/mem mapping of a physical
// address window.
//
// Accesses go through sync/atomic loads and stores so the compiler can
// neither elide nor reorder them, which stands in for volatile access
// to memory-mapped registers.
type MemBus struct {
	f    *os.File
	mem  []byte
	base uint32
}

// OpenMem maps size bytes of physical address space starting at base.
//
// The window must be page aligned and cover every register the caller
// intends to touch; addresses outside it panic.
func OpenMem(base, size uint32) (*MemBus, error) {
	f, err := os.OpenFile(devMemName, os.O_RDWR|os.O_SYNC, 0660)
	if err != nil {
		return nil, fmt.Errorf("gd32v: %s: %w", devMemName, err)
	}
	mem, err := unix.Mmap(int(f.Fd()), int64(base), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gd32v: mmap %#08x+%#x: %w", base, size, err)
	}
	return &MemBus{f: f, mem: mem, base: base}, nil
}

// Read32 implements Bus.
func (m *MemBus) Read32(addr uint32) uint32 {
	return atomic.LoadUint32(m.reg(addr))
}

// Write32 implements Bus.
func (m *MemBus) Write32(addr uint32, v uint32) {
	atomic.StoreUint32(m.reg(addr), v)
}

func (m *MemBus) reg(addr uint32) *uint32 {
	if addr < m.base || addr-m.base > uint32(len(m.mem)-4) {
		panic(fmt.Sprintf("gd32v: address %#08x outside mapped window", addr))
	}
	return (*uint32)(unsafe.Pointer(&m.mem[addr-m.base]))
}

// Close unmaps the window and closes /dev/mem.
func (m *MemBus) Close() error {
	err := unix.Munmap(m.mem)
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	m.mem = nil
	return err
}
