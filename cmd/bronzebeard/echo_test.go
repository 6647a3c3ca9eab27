package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func TestEchoExecRoundTrips(t *testing.T) {
	root := rootConfig{
		bus:   "sim",
		baud:  115200,
		clock: 8 * physic.MegaHertz,
	}
	var out bytes.Buffer
	cfg := echoConfig{
		rootConfig: &root,
		in:         strings.NewReader("round trip\n"),
		out:        &out,
		err:        io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := cfg.Exec(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "round trip\n" {
		t.Errorf("echoed %q, want %q", got, "round trip\n")
	}
}

func TestEchoExecEmptyInput(t *testing.T) {
	root := rootConfig{
		bus:   "sim",
		baud:  115200,
		clock: 8 * physic.MegaHertz,
	}
	var out bytes.Buffer
	cfg := echoConfig{
		rootConfig: &root,
		in:         strings.NewReader(""),
		out:        &out,
		err:        io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := cfg.Exec(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("echoed %q from empty input", out.String())
	}
}

func TestEchoExecRejectsUnknownBus(t *testing.T) {
	root := rootConfig{
		bus:   "uart",
		baud:  115200,
		clock: 8 * physic.MegaHertz,
	}
	cfg := echoConfig{
		rootConfig: &root,
		in:         strings.NewReader(""),
		out:        io.Discard,
		err:        io.Discard,
	}
	if err := cfg.Exec(context.Background(), nil); err == nil {
		t.Error("unknown bus should be rejected")
	}
}
