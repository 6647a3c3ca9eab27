package gd32vsim

import (
	"context"
	"errors"
	"time"

	gd32v "github.com/4Kamei/bronzebeard"
)

// errReceiverOff is used when bytes are fed to a disabled receiver.
var errReceiverOff = errors.New("gd32vsim: receiver is disabled")

// Push models one byte arriving on the receive line.
//
// If the previous byte is still unread, the hardware keeps the old byte
// and raises the overrun flag; the new byte is dropped and the journal
// records a receive overrun. Bytes arriving while the receiver is
// disabled vanish, as they do on a line nobody listens to.
func (d *Device) Push(b byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push(b, 0)
}

// InjectFramingError delivers b with the framing error flag raised, as
// after a line glitch or a baud-rate mismatch, and journals it.
func (d *Device) InjectFramingError(b byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.push(b, gd32v.StatFERR)
}

func (d *Device) push(b byte, flags uint32) {
	if !d.receiverOn() {
		d.log.Printf("usart: dropped %#02x, receiver off", b)
		return
	}
	if d.usart.stat&gd32v.StatRBNE != 0 {
		d.usart.stat |= gd32v.StatORERR
		d.fault(FaultReceiveOverrun, gd32v.USART0Base+gd32v.USARTData)
		d.log.Printf("usart: overrun, dropped %#02x", b)
		return
	}
	d.usart.data = uint32(b)
	d.usart.stat |= gd32v.StatRBNE | flags
	if flags&gd32v.StatFERR != 0 {
		d.fault(FaultFramingError, gd32v.USART0Base+gd32v.USARTData)
	}
}

func (d *Device) receiverOn() bool {
	return d.clocked(gd32v.APB2USART0En) &&
		d.usart.ctl0&gd32v.Ctl0UEN != 0 &&
		d.usart.ctl0&gd32v.Ctl0REN != 0
}

// Feed delivers p on the receive line, pacing each byte so none is
// lost: the next byte goes out only once the program has read the
// previous one. It blocks until every byte is consumed, the receiver
// turns out to be disabled, or ctx is done.
func (d *Device) Feed(ctx context.Context, p []byte) error {
	if len(p) > 0 {
		d.log.Printf("   rx >> feed %d", len(p))
		d.log.Printf("%s", hexDump(p))
	}
	for _, b := range p {
		if err := d.feedByte(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) feedByte(ctx context.Context, b byte) error {
	for {
		d.mu.Lock()
		if !d.receiverOn() {
			d.mu.Unlock()
			return errReceiverOff
		}
		if d.usart.stat&gd32v.StatRBNE == 0 {
			d.usart.data = uint32(b)
			d.usart.stat |= gd32v.StatRBNE
			d.mu.Unlock()
			return nil
		}
		d.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(consolePoll):
		}
	}
}

// TakeTx returns the bytes the program has transmitted so far without
// blocking; nil when there are none.
func (d *Device) TakeTx() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx.Length() == 0 {
		return nil
	}
	out := make([]byte, 0, d.tx.Length())
	for d.tx.Length() > 0 {
		out = append(out, d.tx.Remove().(byte))
	}
	return out
}

// Drain blocks until the program has transmitted at least one byte,
// then returns everything queued.
func (d *Device) Drain(ctx context.Context) ([]byte, error) {
	for {
		if out := d.TakeTx(); len(out) > 0 {
			d.log.Printf("   tx << drain %d", len(out))
			d.log.Printf("%s", hexDump(out))
			return out, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(consolePoll):
		}
	}
}
