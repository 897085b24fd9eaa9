package aqm1248a

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var errBus = errors.New("bus failure")

// transfer is one chip-select framed write with the RS level at send time.
type transfer struct {
	rs gpio.Level
	w  []byte
}

// recorder is a fake SPI port that records every write.
type recorder struct {
	rs *gpiotest.Pin

	freq physic.Frequency
	mode spi.Mode
	bits int

	transfers []transfer
	failAt    int // fail the failAt'th write (1 based), 0 never fails
	writes    int
	maxTx     int
	closed    bool
}

func (r *recorder) String() string {
	return "recorder"
}

func (r *recorder) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	r.freq, r.mode, r.bits = f, mode, bits
	if r.maxTx > 0 {
		return &limitedRecorder{r}, nil
	}
	return r, nil
}

func (r *recorder) LimitSpeed(f physic.Frequency) error {
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func (r *recorder) Tx(w, _ []byte) error {
	r.writes++
	if r.failAt > 0 && r.writes == r.failAt {
		return errBus
	}
	r.transfers = append(r.transfers, transfer{
		rs: r.rs.Read(),
		w:  append([]byte(nil), w...),
	})
	return nil
}

func (r *recorder) TxPackets(p []spi.Packet) error {
	for _, packet := range p {
		if err := r.Tx(packet.W, packet.R); err != nil {
			return err
		}
	}
	return nil
}

func (r *recorder) Duplex() conn.Duplex {
	return conn.Half
}

// bytes returns all recorded bytes with the given RS level.
func (r *recorder) bytes(rs gpio.Level) []byte {
	var out []byte
	for _, t := range r.transfers {
		if t.rs == rs {
			out = append(out, t.w...)
		}
	}
	return out
}

// commands returns every recorded command byte, in order.
func (r *recorder) commands() []byte {
	return r.bytes(gpio.Low)
}

func (r *recorder) reset() {
	r.transfers = nil
	r.writes = 0
}

// limitedRecorder reports a maximum transfer size.
type limitedRecorder struct {
	*recorder
}

func (r *limitedRecorder) MaxTxSize() int {
	return r.maxTx
}

// resetPin records every level written to it.
type resetPin struct {
	gpiotest.Pin
	mu     sync.Mutex
	levels []gpio.Level
	err    error
}

func (p *resetPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	p.levels = append(p.levels, l)
	p.mu.Unlock()
	return p.Pin.Out(l)
}

type fixture struct {
	rec   *recorder
	rs    *gpiotest.Pin
	reset *resetPin
	conn  Conn
}

func newFixture() (*fixture, error) {
	f := &fixture{
		rs:    &gpiotest.Pin{N: "RS", Num: 25},
		reset: &resetPin{Pin: gpiotest.Pin{N: "RESET", Num: 24}},
	}
	f.rec = &recorder{rs: f.rs}
	c, err := NewSPIConn(f.rec, f.rs, f.reset)
	if err != nil {
		return nil, err
	}
	f.conn = c
	return f, nil
}
