// Package aqm1248a is a driver for the AQM1248A 128x48 monochrome LCD module.
//
// The module is built around an ST7565 compatible controller which is driven
// over SPI with an additional register select (RS) pin that tells commands
// and pixel data apart. The display RAM is organized in 6 pages of 128
// columns, each column byte holding 8 vertical pixels with bit 0 on top.
//
// A Dev is not safe for concurrent use; callers must serialize calls to one
// instance. Independent instances on separate buses share no state.
package aqm1248a

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

func init() {
	if os.Getenv("DISPLAY_DEBUG") != "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("driver", "aqm1248a").Logger().
			Level(zerolog.DebugLevel)
	}
}

// SetLogger replaces the logger used by the driver. It is not safe to call
// while displays are in use.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Errors
var (
	ErrRange  = errors.New("aqm1248a: value out of range")
	ErrLength = errors.New("aqm1248a: invalid pixel data length")
	ErrBounds = errors.New("aqm1248a: out of display bounds")
	ErrClosed = errors.New("aqm1248a: display is closed")
)

// InitError is returned when the power-up sequence could not be completed.
// A display that failed to initialize must not be used.
type InitError struct {
	// Step is the name of the initialization step that failed.
	Step string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("aqm1248a: init %s: %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// DisplayMode turns the display on or off.
type DisplayMode uint8

// Display modes.
const (
	DisplayOn DisplayMode = iota
	DisplayOff
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayOn:
		return "on"
	case DisplayOff:
		return "off"
	default:
		return fmt.Sprintf("DisplayMode(%d)", uint8(m))
	}
}

// DisplayColor selects normal or reverse video.
type DisplayColor uint8

// Display colors.
const (
	ColorNormal DisplayColor = iota
	ColorInverted
)

func (c DisplayColor) String() string {
	switch c {
	case ColorNormal:
		return "normal"
	case ColorInverted:
		return "inverted"
	default:
		return fmt.Sprintf("DisplayColor(%d)", uint8(c))
	}
}

// SleepMode puts the controller in or out of its low power state.
type SleepMode uint8

// Sleep modes.
const (
	SleepEnabled SleepMode = iota
	SleepDisabled
)

func (m SleepMode) String() string {
	switch m {
	case SleepEnabled:
		return "enabled"
	case SleepDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("SleepMode(%d)", uint8(m))
	}
}

// Rotation defines the panel orientation.
type Rotation uint8

// Supported rotations.
const (
	Standard Rotation = iota
	Flip              // Rotate 180°
)

func (r Rotation) String() string {
	switch r {
	case Standard:
		return "0°"
	case Flip:
		return "180°"
	default:
		return fmt.Sprintf("Rotation(%d)", uint8(r))
	}
}

// ParseRotation parses a rotation name: "standard" (also "0" or empty) or
// "flip" (also "180").
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "", "standard", "0":
		return Standard, nil
	case "flip", "180":
		return Flip, nil
	default:
		return 0, fmt.Errorf("%w: rotation %q", ErrRange, s)
	}
}
