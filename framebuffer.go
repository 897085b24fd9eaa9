package aqm1248a

import (
	"fmt"

	"github.com/BeatGlow/aqm1248a/pixel"
)

// Display geometry.
const (
	Width           = 128
	Height          = 48
	Pages           = Height / 8
	Columns         = Width
	FramebufferSize = Pages * Columns
)

// Framebuffer is the display RAM image: Pages pages of Columns bytes, each
// byte holding 8 vertically stacked pixels with bit 0 on top.
type Framebuffer struct {
	pix [FramebufferSize]byte
}

func checkBounds(page, col int) error {
	if page < 0 || page >= Pages {
		return fmt.Errorf("%w: page %d not in [0,%d]", ErrBounds, page, Pages-1)
	}
	if col < 0 || col >= Columns {
		return fmt.Errorf("%w: column %d not in [0,%d]", ErrBounds, col, Columns-1)
	}
	return nil
}

// Page returns the bytes of one page. The slice aliases the framebuffer.
func (fb *Framebuffer) Page(page int) ([]byte, error) {
	if err := checkBounds(page, 0); err != nil {
		return nil, err
	}
	off := page * Columns
	return fb.pix[off : off+Columns : off+Columns], nil
}

// At returns the byte at page, column.
func (fb *Framebuffer) At(page, col int) (byte, error) {
	if err := checkBounds(page, col); err != nil {
		return 0, err
	}
	return fb.pix[page*Columns+col], nil
}

// Set stores the byte at page, column.
func (fb *Framebuffer) Set(page, col int, b byte) error {
	if err := checkBounds(page, col); err != nil {
		return err
	}
	fb.pix[page*Columns+col] = b
	return nil
}

// Load replaces the whole framebuffer. The framebuffer is left unchanged if
// data is not exactly FramebufferSize bytes.
func (fb *Framebuffer) Load(data []byte) error {
	if len(data) != FramebufferSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrLength, len(data), FramebufferSize)
	}
	copy(fb.pix[:], data)
	return nil
}

// Clear zeroes all pixels.
func (fb *Framebuffer) Clear() {
	fb.Image().Clear()
}

// Bytes returns the framebuffer contents in page order. The slice aliases
// the framebuffer.
func (fb *Framebuffer) Bytes() []byte {
	return fb.pix[:]
}

// Image returns a drawable view of the framebuffer.
func (fb *Framebuffer) Image() pixel.Image {
	img, err := pixel.WrapMonoVerticalLSB(fb.pix[:], Width, Height)
	if err != nil {
		// The geometry constants always match the array size.
		panic(err)
	}
	return img
}
