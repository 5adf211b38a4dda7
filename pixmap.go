package picodraw

import (
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// RGBA is a straight-alpha color with float32 components. Channels are
// not premultiplied and not clamped until conversion to 8-bit.
type RGBA struct {
	R, G, B, A float32
}

// Pixmap is a rectangular float32 pixel buffer. Render targets keep full
// float precision so repeated blending does not accumulate quantization
// error; conversion to 8-bit happens once, at ToImage.
type Pixmap struct {
	width  int
	height int
	data   []float32 // RGBA, 4 floats per pixel
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]float32, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Size returns the pixmap dimensions.
func (p *Pixmap) Size() Size {
	return Size{Width: p.width, Height: p.height}
}

// Data returns the raw pixel data (RGBA, 4 floats per pixel).
func (p *Pixmap) Data() []float32 {
	return p.data
}

// SetPixel overwrites a single pixel. Out of range coordinates are
// ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return RGBA{}
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: p.data[i+0],
		G: p.data[i+1],
		B: p.data[i+2],
		A: p.data[i+3],
	}
}

// BlendPixel composites c over the existing pixel with source-over.
func (p *Pixmap) BlendPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	inv := 1 - c.A
	p.data[i+0] = c.R*c.A + p.data[i+0]*inv
	p.data[i+1] = c.G*c.A + p.data[i+1]*inv
	p.data[i+2] = c.B*c.A + p.data[i+2]*inv
	p.data[i+3] = c.A + p.data[i+3]*inv
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
	}
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ToImage converts the pixmap to an 8-bit image.RGBA.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := 0; i < len(p.data); i += 4 {
		img.Pix[i+0] = uint8(clamp255(p.data[i+0]*255 + 0.5))
		img.Pix[i+1] = uint8(clamp255(p.data[i+1]*255 + 0.5))
		img.Pix[i+2] = uint8(clamp255(p.data[i+2]*255 + 0.5))
		img.Pix[i+3] = uint8(clamp255(p.data[i+3]*255 + 0.5))
	}
	return img
}

// FromImage creates a pixmap from an arbitrary image. Non-RGBA source
// formats are converted through the draw package first.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	}

	pm := NewPixmap(bounds.Dx(), bounds.Dy())
	for i := 0; i < len(pm.data); i++ {
		pm.data[i] = float32(rgba.Pix[i]) / 255
	}
	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, p.ToImage())
}
