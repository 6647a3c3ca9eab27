package gd32vsim

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	gd32v "github.com/4Kamei/bronzebeard"
)

func TestPushWhileReceiverOff(t *testing.T) {
	d := New(Config{})

	// No clock, no UEN: the byte vanishes without a journal entry.
	d.Push(0x41)

	if stat := peek(t, d, gd32v.USART0Base+gd32v.USARTStat); stat&gd32v.StatRBNE != 0 {
		t.Errorf("STAT = %#02x, RBNE should stay clear", stat)
	}
	if n := len(d.Faults()); n != 0 {
		t.Errorf("%d faults, want none", n)
	}
}

func TestFeedReceiverOff(t *testing.T) {
	d := New(Config{})

	err := d.Feed(context.Background(), []byte{0x41})
	if !errors.Is(err, errReceiverOff) {
		t.Errorf("err = %v, want %v", err, errReceiverOff)
	}
}

func TestFeedPacesBytes(t *testing.T) {
	d := powerUp(t)
	in := []byte("hello, nano")

	done := make(chan []byte)
	go func() {
		// The program side: poll for RBNE, read DATA, repeat.
		var got []byte
		for len(got) < len(in) {
			for d.Read32(gd32v.USART0Base+gd32v.USARTStat)&gd32v.StatRBNE == 0 {
			}
			got = append(got, byte(d.Read32(gd32v.USART0Base+gd32v.USARTData)))
		}
		done <- got
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Feed(ctx, in); err != nil {
		t.Fatal(err)
	}

	got := <-done
	if !bytes.Equal(got, in) {
		t.Errorf("received %q, want %q", got, in)
	}
	// Paced delivery never overruns.
	if n := len(d.Faults()); n != 0 {
		t.Errorf("%d faults: %v", n, d.Faults())
	}
}

func TestFeedCanceled(t *testing.T) {
	d := powerUp(t)
	d.Push(0x41) // occupy the receive buffer so Feed has to wait

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Feed(ctx, []byte{0x42})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want %v", err, context.Canceled)
	}
}

func TestDrain(t *testing.T) {
	d := powerUp(t)

	d.Write32(gd32v.USART0Base+gd32v.USARTData, 0x41)
	d.Write32(gd32v.USART0Base+gd32v.USARTData, 0x42)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got, err := d.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x41, 0x42}) {
		t.Errorf("drained %#v, want [0x41 0x42]", got)
	}
}

func TestDrainCanceled(t *testing.T) {
	d := powerUp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Drain(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want %v", err, context.Canceled)
	}
}
