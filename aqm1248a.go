package aqm1248a

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/aqm1248a/pixel"
)

// Power-up defaults.
const (
	DefaultContrast = 3
	DefaultVolume   = 0x1C
)

const (
	// powerSettle is the time the internal voltage converters need between
	// power control stages.
	powerSettle = 2 * time.Millisecond

	// resetPulse is how long the reset pin is held low.
	resetPulse = 10 * time.Microsecond
)

// initStep is one named step of the power-up sequence. Each command byte is
// sent as its own transfer; settle is waited after the step completes.
type initStep struct {
	name   string
	cmds   []byte
	settle time.Duration
}

var initSequence = []initStep{
	{name: "display off", cmds: []byte{byte(CmdDisplayOff)}},
	{name: "scan direction", cmds: []byte{byte(CmdScanNormal)}},
	{name: "common output", cmds: []byte{byte(CmdCommonOutputReverse)}},
	{name: "bias", cmds: []byte{byte(CmdBias1_7)}},
	{name: "power control 1", cmds: []byte{byte(CmdPowerControl1)}, settle: powerSettle},
	{name: "power control 2", cmds: []byte{byte(CmdPowerControl2)}, settle: powerSettle},
	{name: "power control 3", cmds: []byte{byte(CmdPowerControl3)}},
	{name: "default contrast", cmds: []byte{
		CmdRegisterRatio.With(DefaultContrast),
		byte(CmdElectronicVolumeSet),
		CmdElectronicVolume.With(DefaultVolume),
	}},
	{name: "all points normal", cmds: []byte{byte(CmdAllPointsNormal)}},
	{name: "start line", cmds: []byte{CmdStartLine.With(0)}},
	{name: "display normal", cmds: []byte{byte(CmdDisplayNormal)}},
	{name: "display on", cmds: []byte{byte(CmdDisplayOn)}},
}

// Dev is an AQM1248A display.
type Dev struct {
	c      Conn
	fb     Framebuffer
	closed bool
}

// New initializes the display connected to c. On failure an *InitError is
// returned and c is left open for the caller to close.
func New(c Conn) (*Dev, error) {
	d := &Dev{c: c}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI opens the SPI connection described by config and initializes the
// display. The connection is closed if initialization fails.
func NewSPI(config *SPIConfig) (*Dev, error) {
	c, err := OpenSPI(config)
	if err != nil {
		return nil, err
	}
	d, err := New(c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dev) init() error {
	if err := d.c.Reset(gpio.High); err != nil {
		return &InitError{Step: "reset pin", Err: err}
	}
	for _, step := range initSequence {
		logger.Debug().Str("step", step.name).Hex("cmds", step.cmds).Msg("init")
		if err := d.c.Command(step.cmds...); err != nil {
			return &InitError{Step: step.name, Err: err}
		}
		if step.settle > 0 {
			time.Sleep(step.settle)
		}
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("AQM1248A LCD %dx%d on %s", Width, Height, d.c)
}

func (d *Dev) command(cmds ...byte) error {
	if d.closed {
		return ErrClosed
	}
	return d.c.Command(cmds...)
}

func (d *Dev) data(data ...byte) error {
	if d.closed {
		return ErrClosed
	}
	return d.c.Data(data...)
}

// Close releases the bus. The display keeps showing its last contents.
func (d *Dev) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.c.Close()
}

// Halt turns the display off.
func (d *Dev) Halt() error {
	return d.SetDisplayMode(DisplayOff)
}

// Reset pulses the hardware reset pin. The controller loses its
// configuration and needs a new Dev to be usable again.
func (d *Dev) Reset() error {
	if d.closed {
		return ErrClosed
	}
	if err := d.c.Reset(gpio.Low); err != nil {
		return err
	}
	time.Sleep(resetPulse)
	return d.c.Reset(gpio.High)
}

// SoftReset sends the internal reset command, which restores the controller
// registers to their defaults without touching the display RAM.
func (d *Dev) SoftReset() error {
	return d.command(byte(CmdInternalReset))
}

// SetPixelData copies a full frame into the framebuffer without sending it.
// data must be FramebufferSize bytes in page order.
func (d *Dev) SetPixelData(data []byte) error {
	return d.fb.Load(data)
}

// Flush clears the framebuffer and sends it to the display.
func (d *Dev) Flush() error {
	if d.closed {
		return ErrClosed
	}
	d.fb.Clear()
	return d.Refresh()
}

// Refresh sends the framebuffer to the display, page by page. The column
// address does not wrap into the next page, so each page starts at column 0.
func (d *Dev) Refresh() (err error) {
	for page := 0; page < Pages; page++ {
		if err = d.SetPageAddress(uint8(page)); err != nil {
			return
		}
		if err = d.SetColumnAddress(0); err != nil {
			return
		}
		off := page * Columns
		if err = d.data(d.fb.pix[off : off+Columns]...); err != nil {
			return fmt.Errorf("aqm1248a: page %d: %w", page, err)
		}
	}
	return
}

// SetDisplayMode turns the display on or off. Display RAM is retained.
func (d *Dev) SetDisplayMode(mode DisplayMode) error {
	switch mode {
	case DisplayOn:
		return d.command(byte(CmdDisplayOn))
	case DisplayOff:
		return d.command(byte(CmdDisplayOff))
	default:
		return fmt.Errorf("%w: display mode %d", ErrRange, mode)
	}
}

// SetDisplayColor selects normal or reverse video.
func (d *Dev) SetDisplayColor(c DisplayColor) error {
	switch c {
	case ColorNormal:
		return d.command(byte(CmdDisplayNormal))
	case ColorInverted:
		return d.command(byte(CmdDisplayReverse))
	default:
		return fmt.Errorf("%w: display color %d", ErrRange, c)
	}
}

// SetContrast sets the voltage regulator ratio (0-7), the coarse contrast.
func (d *Dev) SetContrast(ratio uint8) error {
	if ratio > maxRatio {
		return fmt.Errorf("%w: contrast ratio %d > %d", ErrRange, ratio, maxRatio)
	}
	return d.command(CmdRegisterRatio.With(ratio))
}

// SetContrastDetail sets the electronic volume (0-63), the fine contrast.
func (d *Dev) SetContrastDetail(volume uint8) error {
	if volume > maxVolume {
		return fmt.Errorf("%w: volume %d > %d", ErrRange, volume, maxVolume)
	}
	return d.command(byte(CmdElectronicVolumeSet), CmdElectronicVolume.With(volume))
}

// SetSleepMode enters or leaves sleep mode.
func (d *Dev) SetSleepMode(mode SleepMode) error {
	switch mode {
	case SleepEnabled:
		return d.command(byte(CmdSetSleep))
	case SleepDisabled:
		return d.command(byte(CmdSetNormal))
	default:
		return fmt.Errorf("%w: sleep mode %d", ErrRange, mode)
	}
}

// SetPageAddress selects the page for following data writes. The controller
// accepts 0-15, the panel shows pages 0 to Pages-1.
func (d *Dev) SetPageAddress(page uint8) error {
	if page > maxPage {
		return fmt.Errorf("%w: page %d > %d", ErrRange, page, maxPage)
	}
	return d.command(CmdPageAddress.With(page))
}

// SetColumnAddress selects the column for following data writes. The
// controller increments the column after every data byte.
func (d *Dev) SetColumnAddress(col uint8) error {
	return d.command(
		CmdColumnHigh.With(col>>4),
		CmdColumnLow.With(col&0x0F),
	)
}

// SetStartLine sets the RAM line shown at the top of the display (0-63).
func (d *Dev) SetStartLine(line uint8) error {
	if line > maxStartLine {
		return fmt.Errorf("%w: start line %d > %d", ErrRange, line, maxStartLine)
	}
	return d.command(CmdStartLine.With(line))
}

// SetAllPointsOn lights every pixel regardless of the display RAM.
func (d *Dev) SetAllPointsOn(on bool) error {
	if on {
		return d.command(byte(CmdAllPointsOn))
	}
	return d.command(byte(CmdAllPointsNormal))
}

// SetRotation flips the segment and common scan directions.
func (d *Dev) SetRotation(rotation Rotation) error {
	switch rotation {
	case Standard:
		return d.command(byte(CmdScanNormal), byte(CmdCommonOutputReverse))
	case Flip:
		return d.command(byte(CmdScanReverse), byte(CmdCommonOutputNormal))
	default:
		return fmt.Errorf("%w: rotation %d", ErrRange, rotation)
	}
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return pixel.MonoModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw renders src into the framebuffer and refreshes the display. It
// implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.fb.Image(), r, src, sp, draw.Src)
	return d.Refresh()
}

var _ display.Drawer = (*Dev)(nil)
