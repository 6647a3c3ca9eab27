package gd32v

type busDebug struct {
	id   string
	l    Logger
	next Bus
}

func (b *busDebug) Read32(addr uint32) uint32 {
	v := b.next.Read32(addr)
	b.l.Printf("%5s <<  read  %#08x = %#08x", b.id, addr, v)
	return v
}

func (b *busDebug) Write32(addr uint32, v uint32) {
	b.l.Printf("%5s >>  write %#08x = %#08x", b.id, addr, v)
	b.next.Write32(addr, v)
}
