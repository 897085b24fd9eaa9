package pixel

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Image is a drawable image that can be cleared and filled.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pages.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

// MonoVerticalLSBImage is a 1-bit per pixel monochrome image stored as pages
// of 8 pixel rows. Each byte is one column of a page, bit 0 is the top row.
type MonoVerticalLSBImage struct {
	Buffer
}

// WrapMonoVerticalLSB returns an image of w by h pixels backed by pix. Writes
// to the image are visible in pix.
func WrapMonoVerticalLSB(pix []byte, w, h int) (*MonoVerticalLSBImage, error) {
	if need := pages(h) * w; len(pix) != need {
		return nil, fmt.Errorf("pixel: %dx%d image needs %d bytes, got %d", w, h, need, len(pix))
	}
	return &MonoVerticalLSBImage{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    pix,
			Stride: w,
		},
	}, nil
}

// pages rounds the height up to whole 8 pixel pages.
func pages(h int) int {
	return ((h + 7) & ^7) / 8
}

func (p *MonoVerticalLSBImage) ColorModel() color.Model {
	return MonoModel
}

// PixOffset returns the index of the byte holding (x, y) and the bit mask of
// the pixel within that byte.
func (p *MonoVerticalLSBImage) PixOffset(x, y int) (int, byte) {
	return y/8*p.Stride + x, byte(1) << uint(y&7)
}

func (p *MonoVerticalLSBImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	pos, bit := p.PixOffset(x, y)
	return Mono{
		On: p.Pix[pos]&bit != 0,
	}
}

func (p *MonoVerticalLSBImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	pos, bit := p.PixOffset(x, y)
	if monoModel(c).(Mono).On {
		p.Pix[pos] |= bit
	} else {
		p.Pix[pos] &^= bit
	}
}

func (p *MonoVerticalLSBImage) Fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

var _ Image = (*MonoVerticalLSBImage)(nil)
