package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/physic"

	gd32v "github.com/4Kamei/bronzebeard"
)

type rootConfig struct {
	verbose bool
	bus     string
	baud    uint
	clock   physic.Frequency
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.bus, "bus", "sim", "register bus, sim or mem")
	fs.UintVar(&c.baud, "baud", 115200, "serial baud rate")
	c.clock = 8 * physic.MegaHertz
	fs.Var(&c.clock, "clock", "peripheral clock feeding the baud generator")
}

// boardConfig is the Longan Nano wiring with the line settings from the
// flags applied.
func (c *rootConfig) boardConfig() gd32v.Config {
	cfg := gd32v.ConfigLonganNano()
	cfg.Clock = c.clock
	cfg.Baud = uint32(c.baud)
	return cfg
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("bronzebeard", flag.ExitOnError)
	cfg.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "bronzebeard",
		ShortUsage: "bronzebeard [flags] <subcommand>",
		ShortHelp:  "Bring up and exercise the GD32VF103 serial echo from a host.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}), &cfg
}

var bronzebeardLongHelp = `

GENERAL
The tool drives the GD32VF103 register file over a bus. With -bus sim
that is a software model of the chip, wired to the terminal. With
-bus mem the peripheral window is mapped through /dev/mem, which needs
root and a platform that exposes the registers; serial data then flows
on the real pins, and register reads carry their hardware side effects.

Registers are addressed by name (see 'monitor' and its regs command) or
by hex address:

  read USART0_STAT
  read 0x40013800`
