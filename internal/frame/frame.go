// Package frame builds full display frames in the AQM1248A page layout.
package frame

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/BeatGlow/aqm1248a"
	"github.com/BeatGlow/aqm1248a/pixel"
)

// Frame is one step of a refresh loop. A frame without data clears the
// display.
type Frame struct {
	Name string
	Data []byte
}

// Blank returns the frame that flushes the display.
func Blank() Frame {
	return Frame{Name: "blank"}
}

// Fill returns a frame with every pixel on.
func Fill() Frame {
	var fb aqm1248a.Framebuffer
	fb.Image().Fill(pixel.On)
	return Frame{Name: "fill", Data: fb.Bytes()}
}

// Pattern returns a border with a checkerboard inside.
func Pattern() Frame {
	var (
		fb  aqm1248a.Framebuffer
		img = fb.Image()
		r   = img.Bounds()
	)
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, pixel.On)
		img.Set(x, r.Max.Y-1, pixel.On)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, pixel.On)
		img.Set(r.Max.X-1, y, pixel.On)
	}
	for y := r.Min.Y + 2; y < r.Max.Y-2; y++ {
		for x := r.Min.X + 2; x < r.Max.X-2; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, pixel.On)
			}
		}
	}
	return Frame{Name: "pattern", Data: fb.Bytes()}
}

// Text renders s with the 7x13 basic font, one line per newline, clipped at
// the display edges.
func Text(s string) Frame {
	var fb aqm1248a.Framebuffer
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  fb.Image(),
		Src:  image.NewUniform(pixel.On),
		Face: face,
	}
	for i, line := range strings.Split(s, "\n") {
		d.Dot = fixed.P(1, (i+1)*face.Height-face.Descent)
		d.DrawString(line)
	}
	return Frame{Name: "text", Data: fb.Bytes()}
}

// Load reads a frame from path. Files ending in .bin hold raw framebuffer
// bytes, anything else is decoded as an image and thresholded to mono.
func Load(path string) (Frame, error) {
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		b, err := os.ReadFile(path)
		if err != nil {
			return Frame{}, err
		}
		var fb aqm1248a.Framebuffer
		if err = fb.Load(b); err != nil {
			return Frame{}, fmt.Errorf("frame: %s: %w", path, err)
		}
		return Frame{Name: name, Data: fb.Bytes()}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Frame{}, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("frame: %s: %w", path, err)
	}
	var fb aqm1248a.Framebuffer
	img := fb.Image()
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return Frame{Name: name, Data: fb.Bytes()}, nil
}

// Parse resolves a frame description: "blank", "fill", "pattern",
// "text:<message>" (with \n for line breaks) or a file path.
func Parse(desc string) (Frame, error) {
	switch {
	case desc == "blank":
		return Blank(), nil
	case desc == "fill":
		return Fill(), nil
	case desc == "pattern":
		return Pattern(), nil
	case strings.HasPrefix(desc, "text:"):
		return Text(strings.ReplaceAll(strings.TrimPrefix(desc, "text:"), `\n`, "\n")), nil
	case desc == "":
		return Frame{}, fmt.Errorf("frame: empty description")
	default:
		return Load(desc)
	}
}

// ParseAll resolves every description in order.
func ParseAll(descs []string) ([]Frame, error) {
	frames := make([]Frame, 0, len(descs))
	for _, desc := range descs {
		f, err := Parse(desc)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
