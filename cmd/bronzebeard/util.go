package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog"
	"periph.io/x/host/v3"

	gd32v "github.com/4Kamei/bronzebeard"
	"github.com/4Kamei/bronzebeard/gd32vsim"
)

// The APB2 window holding every register the firmware touches,
// GPIO ports through RCU. Page aligned for mmap.
const (
	peripheralBase uint32 = 0x40010000
	peripheralSize uint32 = 0x12000
)

// newBus opens the register bus selected by -bus. The closer releases
// the /dev/mem mapping; for the simulator it is a no-op.
func newBus(c *rootConfig, errW io.Writer) (gd32v.Bus, io.Closer, error) {
	switch c.bus {
	case "sim":
		d := gd32vsim.New(gd32vsim.Config{Debug: newLogger(c.verbose, errW)})
		return d, nopCloser{}, nil
	case "mem":
		if _, err := host.Init(); err != nil {
			return nil, nil, err
		}
		m, err := gd32v.OpenMem(peripheralBase, peripheralSize)
		if err != nil {
			return nil, nil, err
		}
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("gd32v: unknown bus %q", c.bus)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger returns a Printf logger for register and console traces,
// or nil when the trace should stay off.
func newLogger(verbose bool, w io.Writer) gd32v.Logger {
	if !verbose {
		return nil
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	return &zl
}

// newPrinter returns the structured logger for command lifecycle
// events. Info and below are dropped unless -v is given.
func newPrinter(verbose bool, w io.Writer) zerolog.Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	if !verbose {
		zl = zl.Level(zerolog.WarnLevel)
	}
	return zl
}

// parseAddr resolves a register name or a hex address.
func parseAddr(s string) (uint32, error) {
	if addr, ok := gd32vsim.LookupRegister(s); ok {
		return addr, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("gd32v: %q is neither a register name nor an address", s)
	}
	return uint32(addr), nil
}

// parseValue parses a register value: 0x-prefixed hex, plain decimal,
// or 0-prefixed octal, as strconv base 0 does.
func parseValue(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("gd32v: bad value %q", s)
	}
	return uint32(v), nil
}

// parseHexBytes decodes a byte string like "48 65 6c", "48656c" or
// "0x48,0x65". A quoted Go string literal is taken verbatim.
func parseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("gd32v: bad string literal: %w", err)
		}
		return []byte(unq), nil
	}
	clean := strings.NewReplacer(" ", "", ",", "", "0x", "", "0X", "").Replace(s)
	if clean == "" {
		return nil, fmt.Errorf("gd32v: no bytes in %q", s)
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("gd32v: bad hex %q: %w", s, err)
	}
	return b, nil
}

func prettyHex(data []byte) string {
	return prettyHexIndent(data, "    ", "")
}

func prettyHexIndent(data []byte, prefix string, space string) string {
	var buf strings.Builder

	// prefix and space every 16 byte, and 2 hex, and one space/newline
	cols := 16
	size := (len(data)/cols+1)*(len(prefix)+len(space)+1) + len(data)*3
	buf.Grow(size)

	for i := range data {
		if i > 0 {
			switch i % cols {
			case 0:
				buf.WriteByte('\n')
			case cols / 2:
				buf.WriteByte(' ')
				buf.WriteString(space)
			default:
				buf.WriteByte(' ')
			}
		}
		if i%cols == 0 {
			buf.WriteString(prefix)
		}

		buf.WriteString(fmt.Sprintf("%02X", data[i:i+1]))
	}

	return buf.String()
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(j)
	return err
}

func addLongHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}

	cmd.LongHelp += bronzebeardLongHelp

	return cmd
}
