package gd32v

// Dev is one board: the wired-together peripheral drivers and the echo
// program.
type Dev struct {
	rcu   *RCU
	port  *Port
	usart *USART
	cfg   Config
	div   uint32
	log   Logger
}

// New wires the peripheral drivers for cfg on bus.
//
// It validates that the baud divisor is computable for the configured
// clock. Nothing is written to the hardware until Init.
func New(bus Bus, cfg Config) (*Dev, error) {
	div, err := Divisor(cfg.Clock, cfg.Baud)
	if err != nil {
		return nil, err
	}
	log := getLogger(cfg)
	if cfg.Debug != nil {
		// Tracing is opt-in: the wait loops read the bus in a tight spin.
		bus = &busDebug{"gd32v", log, bus}
	}
	return &Dev{
		rcu:   NewRCU(bus, cfg.RCU),
		port:  NewPort(bus, cfg.Port),
		usart: NewUSART(bus, cfg.USART),
		cfg:   cfg,
		div:   div,
		log:   log,
	}, nil
}

// Init runs the bring-up sequence once: enable the clock domains,
// configure the TX pin (alternate-function push-pull, 50 MHz) and the
// RX pin (floating input), then program and enable the USART.
//
// The order is load bearing: the clock write gates the other blocks,
// and the USART samples its pins from the moment it is enabled.
func (d *Dev) Init() {
	d.rcu.EnableAPB2(d.cfg.ClockMask)
	d.port.Configure(d.cfg.TxPin, ModeOutput50MHz, CtlAltPushPull)
	d.port.Configure(d.cfg.RxPin, ModeInput, CtlInFloating)
	d.usart.Init(d.div)
}

// Echo receives one byte and transmits it back, forever.
//
// There is no terminal state: on hardware the loop runs until reset or
// power loss, on a simulated bus until the hosting process exits.
func (d *Dev) Echo() {
	for {
		d.usart.WriteByte(d.usart.ReadByte())
	}
}
