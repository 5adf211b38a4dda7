package gpu

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/picodraw"
)

// textureRes tracks one texture of the backend. Pixel data is staged
// CPU-side in RGBA8; the device texture is created and uploaded on the
// first submission that binds it.
type textureRes struct {
	width  int
	height int
	format gputypes.TextureFormat

	// pixels holds staged RGBA8 data for static textures; nil for
	// render targets, which only ever live on the GPU.
	pixels []byte

	renderTarget bool

	// tex and view are set once the submitter realized the resource on
	// the device.
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

// releaseDevice drops the device texture, if one was created. The
// staged pixels stay so the resource could be realized again.
func (t *textureRes) releaseDevice() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

func (t *textureRes) size() picodraw.Size {
	return picodraw.Size{Width: t.width, Height: t.height}
}

// stageImage converts an arbitrary image into an RGBA8 staging buffer.
func stageImage(img image.Image) *textureRes {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	}
	return &textureRes{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		format: gputypes.TextureFormatRGBA8Unorm,
		pixels: rgba.Pix,
	}
}

// newRenderTarget tracks an offscreen render target resource.
func newRenderTarget(size picodraw.Size) *textureRes {
	return &textureRes{
		width:        size.Width,
		height:       size.Height,
		format:       gputypes.TextureFormatRGBA8Unorm,
		renderTarget: true,
	}
}
