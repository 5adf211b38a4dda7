package picodraw

import (
	"image"
	"image/color"
	"testing"
)

func TestPixmapSetGet(t *testing.T) {
	pm := NewPixmap(4, 4)
	c := RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1}
	pm.SetPixel(2, 1, c)
	if got := pm.GetPixel(2, 1); got != c {
		t.Errorf("GetPixel = %+v, want %+v", got, c)
	}
	if got := pm.GetPixel(-1, 0); got != (RGBA{}) {
		t.Errorf("out of range read = %+v, want zero", got)
	}
	pm.SetPixel(10, 10, c) // must not panic
}

func TestPixmapBlendSourceOver(t *testing.T) {
	pm := NewPixmap(1, 1)
	pm.SetPixel(0, 0, RGBA{R: 1, A: 1})

	pm.BlendPixel(0, 0, RGBA{B: 1, A: 0.5})
	got := pm.GetPixel(0, 0)
	if got.R != 0.5 || got.B != 0.5 || got.A != 1 {
		t.Errorf("blend = %+v, want R=0.5 B=0.5 A=1", got)
	}

	// Fully opaque source replaces.
	pm.BlendPixel(0, 0, RGBA{G: 1, A: 1})
	if got := pm.GetPixel(0, 0); got != (RGBA{G: 1, A: 1}) {
		t.Errorf("opaque blend = %+v, want pure green", got)
	}

	// Fully transparent source is a no-op.
	pm.BlendPixel(0, 0, RGBA{R: 1, A: 0})
	if got := pm.GetPixel(0, 0); got != (RGBA{G: 1, A: 1}) {
		t.Errorf("transparent blend changed pixel: %+v", got)
	}
}

func TestPixmapClear(t *testing.T) {
	pm := NewPixmap(3, 2)
	pm.Clear(RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1})
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := pm.GetPixel(x, y); got != (RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1}) {
				t.Fatalf("pixel (%d,%d) = %+v", x, y, got)
			}
		}
	}
}

func TestPixmapToImage(t *testing.T) {
	pm := NewPixmap(2, 1)
	pm.SetPixel(0, 0, RGBA{R: 1, A: 1})
	pm.SetPixel(1, 0, RGBA{G: 0.5, A: 1})

	img := pm.ToImage()
	if r, _, _, a := img.At(0, 0).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("pixel 0 = r%04x a%04x, want ffff ffff", r, a)
	}
	if img.Pix[4+1] != 128 {
		t.Errorf("green of pixel 1 = %d, want 128", img.Pix[4+1])
	}

	// Values above 1 clamp on conversion.
	pm.SetPixel(0, 0, RGBA{R: 3, A: 1})
	if pix := pm.ToImage().Pix[0]; pix != 255 {
		t.Errorf("overbright red = %d, want 255", pix)
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 1, color.NRGBA{B: 255, A: 255})

	pm := FromImage(src)
	if pm.Width() != 2 || pm.Height() != 2 {
		t.Fatalf("size = %dx%d, want 2x2", pm.Width(), pm.Height())
	}
	if got := pm.GetPixel(0, 0); got.R != 1 || got.A != 1 {
		t.Errorf("pixel (0,0) = %+v, want red", got)
	}
	if got := pm.GetPixel(1, 1); got.B != 1 {
		t.Errorf("pixel (1,1) = %+v, want blue", got)
	}
	if got := pm.GetPixel(1, 0); got.A != 0 {
		t.Errorf("pixel (1,0) = %+v, want transparent", got)
	}
}
