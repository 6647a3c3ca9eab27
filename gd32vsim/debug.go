package gd32vsim

import (
	"encoding/hex"
	"strings"
)

// hexDump lazily formats bytes the way `hexdump -C` does.
//
// It implements fmt.Stringer, so the dump is only rendered when a debug
// logger actually prints it.
type hexDump []byte

func (h hexDump) String() string {
	var buf strings.Builder
	d := hex.Dumper(&buf)
	_, _ = d.Write(h)
	_ = d.Close()
	return strings.TrimSuffix(buf.String(), "\n")
}
