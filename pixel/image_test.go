package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestMonoVerticalLSBImage(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return newTestImage(size.X, size.Y)
	}, MonoModel)
}

func newTestImage(w, h int) *MonoVerticalLSBImage {
	i, err := WrapMonoVerticalLSB(make([]byte, pages(h)*w), w, h)
	if err != nil {
		panic(err)
	}
	return i
}

func TestMonoVerticalLSBImageLayout(t *testing.T) {
	i := newTestImage(128, 48)
	if len(i.Pix) != 768 {
		t.Fatalf("expected 768 bytes, got %d", len(i.Pix))
	}

	tests := []struct {
		x, y int
		pos  int
		bit  byte
	}{
		{0, 0, 0, 0x01},
		{0, 7, 0, 0x80},
		{1, 0, 1, 0x01},
		{127, 8, 255, 0x01},
		{5, 13, 128 + 5, 0x20},
		{127, 47, 767, 0x80},
	}
	for _, test := range tests {
		i.Clear()
		i.Set(test.x, test.y, On)
		for pos, v := range i.Pix {
			want := byte(0)
			if pos == test.pos {
				want = test.bit
			}
			if v != want {
				t.Fatalf("set (%d,%d): byte %d is %#02x, expected %#02x", test.x, test.y, pos, v, want)
			}
		}
	}
}

func TestWrapMonoVerticalLSB(t *testing.T) {
	pix := make([]byte, 2*16)
	i, err := WrapMonoVerticalLSB(pix, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	i.Set(3, 9, On)
	if pix[16+3] != 0x02 {
		t.Errorf("expected write through to backing bytes, got %#02x", pix[16+3])
	}
	pix[0] = 0x01
	if v := i.At(0, 0); v != On {
		t.Errorf("expected backing byte change to be visible, got %v", v)
	}

	if _, err = WrapMonoVerticalLSB(make([]byte, 31), 16, 16); err == nil {
		t.Error("expected error for short buffer")
	}
}

func testImage(t *testing.T, f func(image.Point) Image, model color.Model) {
	t.Helper()
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(2, 2),
		image.Pt(128, 48),
		image.Pt(256, 64),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(it *testing.T) {
			i := f(test)

			if v := i.Bounds().Size(); !v.Eq(test) {
				it.Errorf("expected image size %s, got %s", test, v)
			}

			if v := i.ColorModel(); v != model {
				it.Errorf("expected color model %T, got %T", model, v)
			}

			it.Run("in-bounds", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						c := testRandomColor()
						i.Set(x, y, c)
						if v := i.ColorModel().Convert(c); i.At(x, y) != v {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
							return
						}
					}
				}
			})

			it.Run("out-bounds", func(itt *testing.T) {
				for y := -test.Y; y < test.Y*2; y++ {
					for x := -test.X; x < test.X*2; x++ {
						i.Set(x, y, testRandomColor())
						if x < 0 || y < 0 || x >= test.X || y >= test.Y {
							if v := i.At(x, y); v != color.Transparent {
								itt.Fatalf("pixel (%d,%d) is %#+v, expected transparent", x, y, v)
								return
							}
						}
					}
				}
			})

			it.Run("fill", func(itt *testing.T) {
				c := testRandomColor()
				i.Fill(c)
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.ColorModel().Convert(c); i.At(x, y) != v {
						itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
						return
					}
				}
			})

			it.Run("clear", func(itt *testing.T) {
				i.Clear()
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := monoModel(i.At(x, y)); v != Off {
						itt.Fatalf("pixel (%d,%d) is not off", x, y)
					}
				}
			})
		})
	}
}

func testRandomColor() color.Color {
	return color.RGBA{
		R: uint8(rand.Intn(255)),
		G: uint8(rand.Intn(255)),
		B: uint8(rand.Intn(255)),
		A: 0xFF,
	}
}
