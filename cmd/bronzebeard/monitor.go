package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/peterbourgon/ff/v3/ffcli"

	gd32v "github.com/4Kamei/bronzebeard"
	"github.com/4Kamei/bronzebeard/gd32vsim"
)

type monitorConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	history    string
}

// monitor is one REPL session over a bus.
type monitor struct {
	cfg     *monitorConfig
	bus     gd32v.Bus
	sim     *gd32vsim.Device // nil on a real bus
	dev     *gd32v.Dev
	divisor uint32
	running bool
}

func (c *monitorConfig) Exec(ctx context.Context, _ []string) error {
	bus, closer, err := newBus(c.rootConfig, c.err)
	if err != nil {
		return err
	}
	defer closer.Close()

	bcfg := c.rootConfig.boardConfig()
	dev, err := gd32v.New(bus, bcfg)
	if err != nil {
		return err
	}
	div, err := gd32v.Divisor(bcfg.Clock, bcfg.Baud)
	if err != nil {
		return err
	}

	m := &monitor{cfg: c, bus: bus, dev: dev, divisor: div}
	m.sim, _ = bus.(*gd32vsim.Device)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("gd32v(%s)> ", c.rootConfig.bus),
		HistoryFile:     c.history,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("regs"),
			readline.PcItem("read", readline.PcItemDynamic(completeRegs)),
			readline.PcItem("write", readline.PcItemDynamic(completeRegs)),
			readline.PcItem("boot"),
			readline.PcItem("run"),
			readline.PcItem("tx"),
			readline.PcItem("rx"),
			readline.PcItem("faults"),
			readline.PcItem("reset"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		command, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "regs":
			m.regs()
		case "read", "r":
			m.read(arg)
		case "write", "w":
			m.write(arg)
		case "boot", "b":
			m.boot()
		case "run":
			m.run()
		case "tx":
			m.tx(ctx, arg)
		case "rx":
			m.rx()
		case "faults":
			m.faults()
		case "reset":
			m.reset()
		case "help", "?":
			fmt.Fprint(m.cfg.out, monitorHelp)
		case "exit", "quit", "q":
			return nil
		default:
			fmt.Fprintf(m.cfg.out, "unknown command %q, try help\n", command)
		}
	}
}

const monitorHelp = `  regs             list every named register and its value
  read <reg|addr>  read one register
  write <reg|addr> <value>
  boot             run the bring-up sequence
  run              start the echo loop
  tx <bytes>       send bytes to the receiver, e.g. tx 48 69 or tx "hi"
  rx               collect what the program transmitted
  faults           show the journal of hardware faults
  reset            power-on reset of the device model
  exit             leave the monitor
`

// peek reads a register without bus side effects when the device model
// allows it; on a real bus it is a plain read, side effects included.
func (m *monitor) peek(addr uint32) (uint32, bool) {
	if m.sim != nil {
		return m.sim.Peek(addr)
	}
	return m.bus.Read32(addr), true
}

func (m *monitor) poke(addr, v uint32) bool {
	if m.sim != nil {
		return m.sim.Poke(addr, v)
	}
	m.bus.Write32(addr, v)
	return true
}

func (m *monitor) regs() {
	for _, r := range gd32vsim.Registers() {
		v, ok := m.peek(r.Addr)
		if !ok {
			continue
		}
		fmt.Fprintf(m.cfg.out, "%-12s %#08x  %#08x\n", r.Name, r.Addr, v)
	}
}

func (m *monitor) read(arg string) {
	if arg == "" {
		fmt.Fprintln(m.cfg.out, "usage: read <reg|addr>")
		return
	}
	addr, err := parseAddr(arg)
	if err != nil {
		fmt.Fprintln(m.cfg.out, err)
		return
	}
	v, ok := m.peek(addr)
	if !ok {
		fmt.Fprintf(m.cfg.out, "%#08x is not a device register\n", addr)
		return
	}
	if name := gd32vsim.RegisterName(addr); name != "" {
		fmt.Fprintf(m.cfg.out, "%-12s %#08x = %#08x\n", name, addr, v)
	} else {
		fmt.Fprintf(m.cfg.out, "%#08x = %#08x\n", addr, v)
	}
}

func (m *monitor) write(arg string) {
	target, value, ok := strings.Cut(arg, " ")
	if !ok {
		fmt.Fprintln(m.cfg.out, "usage: write <reg|addr> <value>")
		return
	}
	addr, err := parseAddr(target)
	if err != nil {
		fmt.Fprintln(m.cfg.out, err)
		return
	}
	v, err := parseValue(strings.TrimSpace(value))
	if err != nil {
		fmt.Fprintln(m.cfg.out, err)
		return
	}
	if !m.poke(addr, v) {
		fmt.Fprintf(m.cfg.out, "%#08x is not a device register\n", addr)
		return
	}
	m.read(target)
}

func (m *monitor) boot() {
	m.dev.Init()
	fmt.Fprintf(m.cfg.out, "bring-up complete, baud divisor %d\n", m.divisor)
}

func (m *monitor) run() {
	if m.running {
		fmt.Fprintln(m.cfg.out, "echo loop already running")
		return
	}
	m.running = true
	go m.dev.Echo()
	fmt.Fprintln(m.cfg.out, "echo loop running")
}

func (m *monitor) tx(ctx context.Context, arg string) {
	if m.sim == nil {
		fmt.Fprintln(m.cfg.out, "console commands need -bus sim")
		return
	}
	b, err := parseHexBytes(arg)
	if err != nil {
		fmt.Fprintln(m.cfg.out, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.sim.Feed(ctx, b); err != nil {
		fmt.Fprintf(m.cfg.out, "%v; is the echo loop running? (run)\n", err)
		return
	}
	fmt.Fprintf(m.cfg.out, "sent %d bytes\n", len(b))
}

func (m *monitor) rx() {
	if m.sim == nil {
		fmt.Fprintln(m.cfg.out, "console commands need -bus sim")
		return
	}
	b := m.sim.TakeTx()
	if len(b) == 0 {
		fmt.Fprintln(m.cfg.out, "nothing transmitted")
		return
	}
	fmt.Fprintf(m.cfg.out, "%s  %q\n", prettyHex(b), b)
}

func (m *monitor) faults() {
	if m.sim == nil {
		fmt.Fprintln(m.cfg.out, "the journal needs -bus sim")
		return
	}
	faults := m.sim.Faults()
	if len(faults) == 0 {
		fmt.Fprintln(m.cfg.out, "no faults")
		return
	}
	for _, f := range faults {
		fmt.Fprintln(m.cfg.out, f)
	}
	if n := m.sim.FaultsDropped(); n > 0 {
		fmt.Fprintf(m.cfg.out, "and %d more dropped\n", n)
	}
}

func (m *monitor) reset() {
	if m.sim == nil {
		fmt.Fprintln(m.cfg.out, "reset needs -bus sim")
		return
	}
	m.sim.Reset()
	if m.running {
		fmt.Fprintln(m.cfg.out, "registers reset under a running program; expect clock faults until boot")
	} else {
		fmt.Fprintln(m.cfg.out, "device reset")
	}
}

func completeRegs(string) []string {
	regs := gd32vsim.Registers()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = strings.ToLower(r.Name)
	}
	return names
}

func newMonitorCmd(rootConfig *rootConfig, out, err io.Writer) *ffcli.Command {
	cfg := monitorConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("bronzebeard monitor", flag.ExitOnError)
	fs.StringVar(&cfg.history, "history", "", "readline history file")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "monitor",
		ShortUsage: "monitor [flags]",
		ShortHelp:  "Interactive register monitor and serial console.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
