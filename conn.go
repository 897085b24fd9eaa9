package aqm1248a

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Conn errors.
var (
	ErrResetPin = errors.New("aqm1248a: reset GPIO pin is invalid")
	ErrRSPin    = errors.New("aqm1248a: register select (RS) GPIO pin is invalid")
)

// Bus parameters of the AQM1248A.
const (
	SPISpeed = 5 * physic.MegaHertz
	SPIMode  = spi.Mode3
	SPIBits  = 8
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection and release the bus.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends command bytes, each in its own transfer.
	Command(...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

// SPIConfig describes the SPI bus configuration. Pins are referred to by
// their gpioreg names.
type SPIConfig struct {
	// Bus is the spireg port name, empty for the first available port.
	Bus string

	// CLK, MOSI and CS are the pins the bus is expected to use. They are
	// fixed by the port, a mismatch is only logged.
	CLK  string
	MOSI string
	CS   string

	// RS is the register select (data/command) pin.
	RS string

	// Reset pin
	Reset string
}

// DefaultSPIConfig are the default configuration values, matching SPI0 on a
// Raspberry Pi header.
var DefaultSPIConfig = SPIConfig{
	Bus:   "",
	CLK:   "GPIO11",
	MOSI:  "GPIO10",
	CS:    "GPIO8",
	RS:    "GPIO25",
	Reset: "GPIO24",
}

type spiConn struct {
	port  spi.Port
	bus   spi.Conn
	rs    gpio.PinOut
	reset gpio.PinOut
	maxTx int
}

// OpenSPI opens the configured SPI port and pins.
func OpenSPI(config *SPIConfig) (Conn, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}

	rs := gpioreg.ByName(config.RS)
	if rs == nil {
		return nil, fmt.Errorf("%w: %q", ErrRSPin, config.RS)
	}
	reset := gpioreg.ByName(config.Reset)
	if reset == nil {
		return nil, fmt.Errorf("%w: %q", ErrResetPin, config.Reset)
	}

	p, err := spireg.Open(config.Bus)
	if err != nil {
		return nil, err
	}

	c, err := NewSPIConn(p, rs, reset)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	c.(*spiConn).checkPins(config)
	return c, nil
}

// NewSPIConn connects to the display on p, using rs as the register select
// pin and reset as the reset pin. If p implements spi.PortCloser it is closed by
// Close.
func NewSPIConn(p spi.Port, rs, reset gpio.PinOut) (Conn, error) {
	if rs == nil || rs == gpio.INVALID {
		return nil, ErrRSPin
	}
	if reset == nil || reset == gpio.INVALID {
		return nil, ErrResetPin
	}

	// Both control pins are outputs from here on. RS idles in command mode.
	if err := rs.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("aqm1248a: RS pin %s: %w", rs, err)
	}

	bus, err := p.Connect(SPISpeed, SPIMode, SPIBits)
	if err != nil {
		return nil, fmt.Errorf("aqm1248a: connect %s: %w", p, err)
	}

	c := &spiConn{
		port:  p,
		bus:   bus,
		rs:    rs,
		reset: reset,
	}
	if l, ok := bus.(conn.Limits); ok {
		c.maxTx = l.MaxTxSize()
	}
	return c, nil
}

func (c *spiConn) checkPins(config *SPIConfig) {
	p, ok := c.bus.(spi.Pins)
	if !ok {
		return
	}
	for _, pin := range []struct {
		role, want string
		got        gpio.PinOut
	}{
		{"CLK", config.CLK, p.CLK()},
		{"MOSI", config.MOSI, p.MOSI()},
		{"CS", config.CS, p.CS()},
	} {
		if pin.want == "" || pin.got == nil {
			continue
		}
		if name := pin.got.Name(); name != pin.want {
			logger.Warn().
				Str("pin", pin.role).
				Str("configured", pin.want).
				Str("port", name).
				Msg("SPI port uses a different pin than configured")
		}
	}
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	if closer, ok := c.port.(spi.PortCloser); ok {
		return closer.Close()
	}
	return nil
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

func (c *spiConn) Command(cmds ...byte) (err error) {
	if len(cmds) == 0 {
		return
	}
	if err = c.rs.Out(gpio.Low); err != nil {
		return
	}
	for _, cmd := range cmds {
		if err = c.bus.Tx([]byte{cmd}, nil); err != nil {
			return fmt.Errorf("aqm1248a: command %#02x: %w", cmd, err)
		}
	}
	return
}

func (c *spiConn) Data(data ...byte) (err error) {
	if len(data) == 0 {
		return
	}
	if err = c.rs.Out(gpio.High); err != nil {
		return
	}
	return c.writeChunked(data)
}

func (c *spiConn) writeChunked(data []byte) (err error) {
	if c.maxTx <= 0 || len(data) <= c.maxTx {
		return c.bus.Tx(data, nil)
	}

	logger.Debug().
		Int("bytes", len(data)).
		Int("chunks", (len(data)+c.maxTx-1)/c.maxTx).
		Msg("write data in chunks")
	for buffer := data; len(buffer) > 0; {
		n := min(len(buffer), c.maxTx)
		if err = c.bus.Tx(buffer[:n], nil); err != nil {
			return
		}
		buffer = buffer[n:]
	}
	return
}
