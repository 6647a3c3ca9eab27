package gd32vsim

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	gd32v "github.com/4Kamei/bronzebeard"
)

// Register is a named peripheral register.
type Register struct {
	Name string
	Addr uint32
}

var regAddrs = buildRegAddrs()

func buildRegAddrs() map[string]uint32 {
	regs := map[string]uint32{
		"RCU_APB2EN":  gd32v.RCUBase + gd32v.RCUAPB2En,
		"USART0_STAT": gd32v.USART0Base + gd32v.USARTStat,
		"USART0_DATA": gd32v.USART0Base + gd32v.USARTData,
		"USART0_BAUD": gd32v.USART0Base + gd32v.USARTBaud,
		"USART0_CTL0": gd32v.USART0Base + gd32v.USARTCtl0,
	}
	ports := []struct {
		name string
		base uint32
	}{
		{"GPIOA", gd32v.GPIOABase},
		{"GPIOB", gd32v.GPIOBBase},
		{"GPIOC", gd32v.GPIOCBase},
		{"GPIOD", gd32v.GPIODBase},
		{"GPIOE", gd32v.GPIOEBase},
	}
	offsets := []struct {
		name   string
		offset uint32
	}{
		{"CTL0", gd32v.GPIOCtl0},
		{"CTL1", gd32v.GPIOCtl1},
		{"ISTAT", gd32v.GPIOIstat},
		{"OCTL", gd32v.GPIOOctl},
		{"BOP", gd32v.GPIOBop},
		{"BC", gd32v.GPIOBc},
		{"LOCK", gd32v.GPIOLock},
	}
	for _, p := range ports {
		for _, o := range offsets {
			regs[p.name+"_"+o.name] = p.base + o.offset
		}
	}
	return regs
}

// Registers lists every named register, sorted by address.
func Registers() []Register {
	names := maps.Keys(regAddrs)
	out := make([]Register, 0, len(names))
	for _, n := range names {
		out = append(out, Register{Name: n, Addr: regAddrs[n]})
	}
	slices.SortFunc(out, func(a, b Register) bool {
		if a.Addr != b.Addr {
			return a.Addr < b.Addr
		}
		return a.Name < b.Name
	})
	return out
}

// LookupRegister resolves a register name to its address. Names are
// matched case-insensitively.
func LookupRegister(name string) (uint32, bool) {
	addr, ok := regAddrs[strings.ToUpper(name)]
	return addr, ok
}

// RegisterName returns the name for addr, or the empty string if the
// address is not a named register.
func RegisterName(addr uint32) string {
	for name, a := range regAddrs {
		if a == addr {
			return name
		}
	}
	return ""
}
