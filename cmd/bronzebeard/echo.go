package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	gd32v "github.com/4Kamei/bronzebeard"
	"github.com/4Kamei/bronzebeard/gd32vsim"
)

type echoConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	trace      bool
}

func (c *echoConfig) Exec(ctx context.Context, _ []string) error {
	zl := newPrinter(c.rootConfig.verbose, c.err)

	bus, closer, err := newBus(c.rootConfig, c.err)
	if err != nil {
		return err
	}
	defer closer.Close()

	bcfg := c.rootConfig.boardConfig()
	if c.trace {
		bcfg.Debug = newLogger(true, c.err)
	}
	dev, err := gd32v.New(bus, bcfg)
	if err != nil {
		return err
	}
	dev.Init()
	zl.Info().
		Stringer("clock", bcfg.Clock).
		Uint32("baud", bcfg.Baud).
		Str("bus", c.rootConfig.bus).
		Msg("bring-up complete")

	// The loop has no terminal state. Its goroutine ends with the
	// process, like the firmware ends with the power.
	go dev.Echo()

	sim, ok := bus.(*gd32vsim.Device)
	if !ok {
		// Real registers: the serial data flows on the chip's pins,
		// there is nothing to pump. Hold until interrupted.
		<-ctx.Done()
		return ctx.Err()
	}

	// Simulated registers: wire the terminal to the serial line. One
	// pump feeds stdin to the receiver, the other prints what the
	// loop transmits; on stdin EOF the command exits once every fed
	// byte has come back out.
	g, gctx := errgroup.WithContext(ctx)
	fed := make(chan int, 1)
	g.Go(func() error { return c.pumpIn(gctx, sim, fed) })
	g.Go(func() error { return c.pumpOut(gctx, sim, fed) })

	err = g.Wait()
	if faults := sim.Faults(); len(faults) > 0 {
		zl.Warn().Int("count", len(faults)).Msg("device journaled faults")
		for _, f := range faults {
			zl.Warn().Stringer("fault", f).Msg("journal")
		}
	}
	return err
}

func (c *echoConfig) pumpIn(ctx context.Context, sim *gd32vsim.Device, fed chan<- int) error {
	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := c.in.Read(buf)
		if n > 0 {
			if ferr := sim.Feed(ctx, buf[:n]); ferr != nil {
				return ferr
			}
			total += n
		}
		switch {
		case errors.Is(err, io.EOF):
			fed <- total
			return nil
		case err != nil:
			return err
		}
	}
}

func (c *echoConfig) pumpOut(ctx context.Context, sim *gd32vsim.Device, fed <-chan int) error {
	const poll = 2 * time.Millisecond

	total := -1
	drained := 0
	tick := time.NewTicker(poll)
	defer tick.Stop()
	for {
		if b := sim.TakeTx(); len(b) > 0 {
			if _, err := c.out.Write(b); err != nil {
				return err
			}
			drained += len(b)
			continue
		}
		if total >= 0 && drained >= total {
			return nil
		}
		select {
		case total = <-fed:
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func newEchoCmd(rootConfig *rootConfig, in io.Reader, out, err io.Writer) *ffcli.Command {
	cfg := echoConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("bronzebeard echo", flag.ExitOnError)
	fs.BoolVar(&cfg.trace, "trace", false, "trace every register access")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "echo",
		ShortUsage: "echo [flags]",
		ShortHelp:  "Run the serial echo loop against the selected bus.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
