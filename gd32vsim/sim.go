// Package gd32vsim is a software model of the GD32VF103 peripherals the
// echo firmware touches: the clock unit, GPIO ports A-E and USART0.
//
// Device implements the gd32v.Bus interface with hardware semantics on
// the bus side: reset values, clock gating, receive overrun. The host
// side feeds the serial line, drains transmitted bytes, drives pads and
// inspects a journal of conditions the firmware itself never checks
// for.
package gd32vsim

import (
	"sync"
	"time"

	"gopkg.in/eapache/queue.v1"

	gd32v "github.com/4Kamei/bronzebeard"
)

// Config configures a simulated device.
type Config struct {
	// Debug is used for host-side event logging.
	Debug gd32v.Logger
}

const (
	// A reader spinning on an empty receive buffer sleeps after this
	// many status polls so it does not burn a host CPU.
	idleAfter = 64
	pollIdle  = 50 * time.Microsecond

	// consolePoll paces the blocking host-side console waits.
	consolePoll = 100 * time.Microsecond

	// maxFaults caps the journal. A program spinning on a gated
	// register would otherwise grow it without bound.
	maxFaults = 1024
)

type portState struct {
	ctl0  uint32
	ctl1  uint32
	istat uint32 // externally driven pad levels
	octl  uint32
	lock  uint32
}

func newPortState() *portState {
	return &portState{ctl0: gd32v.GPIOCtlReset, ctl1: gd32v.GPIOCtlReset}
}

// outMask reports which pins are configured as outputs.
func (p *portState) outMask() uint32 {
	var mask uint32
	for pin := uint(0); pin < 16; pin++ {
		ctl := p.ctl0
		shift := pin * 4
		if pin >= 8 {
			ctl = p.ctl1
			shift = (pin - 8) * 4
		}
		if ctl>>shift&0b11 != 0 {
			mask |= 1 << pin
		}
	}
	return mask
}

// pads is the ISTAT view: driven pins read back the program's output
// level, inputs read the externally driven level.
func (p *portState) pads() uint32 {
	out := p.outMask()
	return p.istat&^out | p.octl&out
}

type usartState struct {
	stat uint32
	data uint32
	baud uint32
	ctl0 uint32

	// txLag re-arms TBE on the status read after a data write.
	txLag int
}

// Device is a simulated GD32VF103 peripheral file.
type Device struct {
	mu  sync.Mutex
	log gd32v.Logger

	apb2en uint32
	ports  map[uint32]*portState
	usart  usartState

	tx *queue.Queue // host-bound bytes, unbounded

	idlePolls int

	faults        []Fault
	faultsDropped int
}

// New returns a device in its power-on state.
func New(cfg Config) *Device {
	d := &Device{log: cfg.Debug}
	if d.log == nil {
		d.log = nopLogger{}
	}
	d.reset()
	return d
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

func (d *Device) reset() {
	d.apb2en = 0
	d.ports = map[uint32]*portState{
		gd32v.GPIOABase: newPortState(),
		gd32v.GPIOBBase: newPortState(),
		gd32v.GPIOCBase: newPortState(),
		gd32v.GPIODBase: newPortState(),
		gd32v.GPIOEBase: newPortState(),
	}
	d.usart = usartState{stat: gd32v.USARTStatReset}
	d.tx = queue.New()
	d.idlePolls = 0
	d.faults = nil
	d.faultsDropped = 0
}

// Reset returns every register to its power-on value and clears the
// fault journal and the console queue.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

// portBase returns the base of the GPIO block containing addr, or 0.
func (d *Device) portBase(addr uint32) uint32 {
	for base := range d.ports {
		if addr >= base && addr-base <= gd32v.GPIOLock {
			return base
		}
	}
	return 0
}

// portClockBit is the APB2EN bit gating the port at base.
func portClockBit(base uint32) uint32 {
	return gd32v.APB2PAEn << ((base - gd32v.GPIOABase) / 0x400)
}

func (d *Device) clocked(bit uint32) bool {
	return d.apb2en&bit != 0
}

func (d *Device) fault(kind FaultKind, addr uint32) {
	if len(d.faults) >= maxFaults {
		d.faultsDropped++
		return
	}
	f := Fault{Kind: kind, Addr: addr}
	d.faults = append(d.faults, f)
	d.log.Printf("fault: %s", f)
}

// Faults returns a copy of the fault journal.
func (d *Device) Faults() []Fault {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Fault, len(d.faults))
	copy(out, d.faults)
	return out
}

// FaultsDropped reports journal entries discarded once the cap was hit.
func (d *Device) FaultsDropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.faultsDropped
}

// Read32 implements gd32v.Bus.
func (d *Device) Read32(addr uint32) uint32 {
	d.mu.Lock()
	v, idle := d.read(addr)
	d.mu.Unlock()
	if idle {
		time.Sleep(pollIdle)
	}
	return v
}

// read dispatches a bus read. The second return asks the caller to
// throttle: the program is spinning on an empty receive buffer.
func (d *Device) read(addr uint32) (uint32, bool) {
	switch {
	case addr == gd32v.RCUBase+gd32v.RCUAPB2En:
		return d.apb2en, false

	case d.portBase(addr) != 0:
		base := d.portBase(addr)
		if !d.clocked(portClockBit(base)) {
			d.fault(FaultClockNotReady, addr)
			return 0, false
		}
		return d.readPort(d.ports[base], addr-base, addr), false

	case addr >= gd32v.USART0Base && addr-gd32v.USART0Base <= gd32v.USARTCtl0:
		if !d.clocked(gd32v.APB2USART0En) {
			d.fault(FaultClockNotReady, addr)
			return 0, false
		}
		return d.readUSART(addr)

	default:
		d.fault(FaultUnmappedAccess, addr)
		return 0, false
	}
}

func (d *Device) readPort(p *portState, offset, addr uint32) uint32 {
	switch offset {
	case gd32v.GPIOCtl0:
		return p.ctl0
	case gd32v.GPIOCtl1:
		return p.ctl1
	case gd32v.GPIOIstat:
		return p.pads()
	case gd32v.GPIOOctl:
		return p.octl
	case gd32v.GPIOBop, gd32v.GPIOBc:
		// Write-only registers read as zero.
		return 0
	case gd32v.GPIOLock:
		return p.lock
	default:
		d.fault(FaultUnmappedAccess, addr)
		return 0
	}
}

func (d *Device) readUSART(addr uint32) (uint32, bool) {
	switch addr - gd32v.USART0Base {
	case gd32v.USARTStat:
		v := d.usart.stat
		idle := false
		if v&gd32v.StatRBNE == 0 {
			d.idlePolls++
			if d.idlePolls >= idleAfter {
				d.idlePolls = 0
				idle = true
			}
		} else {
			d.idlePolls = 0
		}
		if d.usart.txLag > 0 {
			d.usart.txLag--
			if d.usart.txLag == 0 {
				d.usart.stat |= gd32v.StatTBE | gd32v.StatTC
			}
		}
		return v, idle

	case gd32v.USARTData:
		// Reading the data register hands over the byte and clears the
		// receive flags, overrun and noise conditions included.
		v := d.usart.data
		d.usart.stat &^= gd32v.StatRBNE | gd32v.StatORERR | gd32v.StatFERR |
			gd32v.StatNERR | gd32v.StatPERR
		return v, false

	case gd32v.USARTBaud:
		return d.usart.baud, false

	case gd32v.USARTCtl0:
		return d.usart.ctl0, false

	default:
		d.fault(FaultUnmappedAccess, addr)
		return 0, false
	}
}

// Write32 implements gd32v.Bus.
func (d *Device) Write32(addr uint32, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.write(addr, v)
}

func (d *Device) write(addr, v uint32) {
	switch {
	case addr == gd32v.RCUBase+gd32v.RCUAPB2En:
		// Overwrite, never merge.
		d.apb2en = v

	case d.portBase(addr) != 0:
		base := d.portBase(addr)
		if !d.clocked(portClockBit(base)) {
			d.fault(FaultClockNotReady, addr)
			return
		}
		d.writePort(d.ports[base], addr-base, addr, v)

	case addr >= gd32v.USART0Base && addr-gd32v.USART0Base <= gd32v.USARTCtl0:
		if !d.clocked(gd32v.APB2USART0En) {
			d.fault(FaultClockNotReady, addr)
			return
		}
		d.writeUSART(addr, v)

	default:
		d.fault(FaultUnmappedAccess, addr)
	}
}

func (d *Device) writePort(p *portState, offset, addr, v uint32) {
	switch offset {
	case gd32v.GPIOCtl0:
		p.ctl0 = v
	case gd32v.GPIOCtl1:
		p.ctl1 = v
	case gd32v.GPIOIstat:
		// Read-only; the pad levels belong to the outside world.
	case gd32v.GPIOOctl:
		p.octl = v & 0xffff
	case gd32v.GPIOBop:
		// [15:0] set, [31:16] clear; set wins for a pin named in both.
		p.octl = p.octl&^(v>>16&0xffff) | v&0xffff
	case gd32v.GPIOBc:
		p.octl &^= v & 0xffff
	case gd32v.GPIOLock:
		p.lock = v
	default:
		d.fault(FaultUnmappedAccess, addr)
	}
}

func (d *Device) writeUSART(addr, v uint32) {
	switch addr - gd32v.USART0Base {
	case gd32v.USARTStat:
		// Status bits are hardware driven; the model clears them on
		// data reads instead of honoring write-to-clear.
	case gd32v.USARTData:
		if d.usart.ctl0&gd32v.Ctl0UEN == 0 || d.usart.ctl0&gd32v.Ctl0TEN == 0 {
			d.log.Printf("usart: data write %#02x with transmitter off", byte(v))
			return
		}
		d.tx.Add(byte(v))
		d.usart.stat &^= gd32v.StatTBE | gd32v.StatTC
		d.usart.txLag = 1
	case gd32v.USARTBaud:
		d.usart.baud = v & 0xffff
	case gd32v.USARTCtl0:
		d.usart.ctl0 = v
	default:
		d.fault(FaultUnmappedAccess, addr)
	}
}

// Peek reads a register with none of the bus side effects: no clock
// gating, no fault journaling, no flag clearing. It reports false for
// an address outside the model.
func (d *Device) Peek(addr uint32) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case addr == gd32v.RCUBase+gd32v.RCUAPB2En:
		return d.apb2en, true

	case d.portBase(addr) != 0:
		p := d.ports[d.portBase(addr)]
		switch addr - d.portBase(addr) {
		case gd32v.GPIOCtl0:
			return p.ctl0, true
		case gd32v.GPIOCtl1:
			return p.ctl1, true
		case gd32v.GPIOIstat:
			return p.pads(), true
		case gd32v.GPIOOctl:
			return p.octl, true
		case gd32v.GPIOBop, gd32v.GPIOBc:
			return 0, true
		case gd32v.GPIOLock:
			return p.lock, true
		}
		return 0, false

	case addr >= gd32v.USART0Base && addr-gd32v.USART0Base <= gd32v.USARTCtl0:
		switch addr - gd32v.USART0Base {
		case gd32v.USARTStat:
			return d.usart.stat, true
		case gd32v.USARTData:
			return d.usart.data, true
		case gd32v.USARTBaud:
			return d.usart.baud, true
		case gd32v.USARTCtl0:
			return d.usart.ctl0, true
		default:
			return 0, false
		}

	default:
		return 0, false
	}
}

// Poke writes raw device state, bypassing clock gating and the fault
// journal. ISTAT pokes drive pad levels; BOP and BC pokes apply their
// set/clear operation. It reports false for an address outside the
// model.
func (d *Device) Poke(addr uint32, v uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case addr == gd32v.RCUBase+gd32v.RCUAPB2En:
		d.apb2en = v
		return true

	case d.portBase(addr) != 0:
		p := d.ports[d.portBase(addr)]
		switch addr - d.portBase(addr) {
		case gd32v.GPIOCtl0:
			p.ctl0 = v
		case gd32v.GPIOCtl1:
			p.ctl1 = v
		case gd32v.GPIOIstat:
			p.istat = v & 0xffff
		case gd32v.GPIOOctl:
			p.octl = v & 0xffff
		case gd32v.GPIOBop:
			p.octl = p.octl&^(v>>16&0xffff) | v&0xffff
		case gd32v.GPIOBc:
			p.octl &^= v & 0xffff
		case gd32v.GPIOLock:
			p.lock = v
		default:
			return false
		}
		return true

	case addr >= gd32v.USART0Base && addr-gd32v.USART0Base <= gd32v.USARTCtl0:
		switch addr - gd32v.USART0Base {
		case gd32v.USARTStat:
			d.usart.stat = v
		case gd32v.USARTData:
			d.usart.data = v & 0xff
		case gd32v.USARTBaud:
			d.usart.baud = v & 0xffff
		case gd32v.USARTCtl0:
			d.usart.ctl0 = v
		default:
			return false
		}
		return true

	default:
		return false
	}
}
