package gd32vsim

import "testing"

func TestHexDump(t *testing.T) {
	got := hexDump([]byte("foobar")).String()
	want := "00000000  66 6f 6f 62 61 72                                 |foobar|"
	if got != want {
		t.Errorf("%q != %q", got, want)
	}
}

func TestHexDumpEmpty(t *testing.T) {
	if got := hexDump(nil).String(); got != "" {
		t.Errorf("%q != \"\"", got)
	}
}
