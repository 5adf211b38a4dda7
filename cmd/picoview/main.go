// Command picoview opens a window and animates a shader rendered by the
// software backend every frame.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/picodraw"
	"github.com/gogpu/picodraw/software"
)

func main() {
	var (
		size    = flag.Int("size", 512, "window size in pixels")
		workers = flag.Int("workers", 0, "rasterizer workers (0 = GOMAXPROCS)")
	)
	flag.Parse()

	if err := run(*size, *workers); err != nil {
		fmt.Fprintln(os.Stderr, "picoview:", err)
		os.Exit(1)
	}
}

// plasma traces a classic plasma effect. The animation phase arrives as
// a per-quad input so the graph is traced once and replayed per frame.
func plasma(g *picodraw.Builder) picodraw.Float4 {
	phase := g.ReadFloat()

	uv := g.Position().Div(g.Resolution()).Scale(g.Const(8))
	a := uv.X().Add(phase).Sin()
	b := uv.Y().Add(phase.Mul(g.Const(1.3))).Sin()
	c := uv.X().Add(uv.Y()).Add(phase.Mul(g.Const(0.7))).Sin()
	v := a.Add(b).Add(c).Div(g.Const(3))

	half := g.Const(0.5)
	r := v.Mul(g.Const(3.1)).Sin().Mul(half).Add(half)
	gr := v.Mul(g.Const(3.1)).Add(g.Const(2.1)).Sin().Mul(half).Add(half)
	bl := v.Mul(g.Const(3.1)).Add(g.Const(4.2)).Sin().Mul(half).Add(half)
	return g.Vec4(r, gr, bl, g.Const(1))
}

type game struct {
	backend *software.Backend
	shader  picodraw.Shader
	buf     *picodraw.CommandBuffer
	size    picodraw.Size

	frame int
	img   *ebiten.Image
}

func (g *game) Update() error {
	g.frame++

	g.buf.Reset()
	f := g.buf.Screen(g.size)
	if err := f.Quad(g.shader, picodraw.BoundsForSize(g.size)).
		Float(float32(g.frame) / 40).
		End(); err != nil {
		return err
	}
	return g.backend.Draw(g.buf)
}

func (g *game) Draw(screen *ebiten.Image) {
	pm := g.backend.Screen()
	if pm == nil {
		return
	}
	if g.img == nil {
		g.img = ebiten.NewImage(g.size.Width, g.size.Height)
	}
	g.img.WritePixels(pm.ToImage().Pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.size.Width, g.size.Height
}

func run(size, workers int) error {
	graph, err := picodraw.Collect(plasma)
	if err != nil {
		return err
	}

	backend := software.New(software.WithWorkers(workers))
	defer backend.Close()

	shader, err := backend.CreateShader(graph)
	if err != nil {
		return err
	}

	g := &game{
		backend: backend,
		shader:  shader,
		buf:     picodraw.NewCommandBuffer(),
		size:    picodraw.Size{Width: size, Height: size},
	}

	ebiten.SetWindowTitle("picoview")
	ebiten.SetWindowSize(size, size)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
