// Command picodemo renders an antialiased circle with the software
// backend and writes it to a PNG file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/picodraw"
	"github.com/gogpu/picodraw/software"
)

func main() {
	var (
		out     = flag.String("out", "circle.png", "output PNG path")
		size    = flag.Int("size", 512, "image size in pixels")
		workers = flag.Int("workers", 0, "rasterizer workers (0 = GOMAXPROCS)")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		picodraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(*out, *size, *workers); err != nil {
		fmt.Fprintln(os.Stderr, "picodemo:", err)
		os.Exit(1)
	}
}

// circle traces a filled circle with a one pixel smoothstep edge. The
// center, radius and fill color arrive as per-quad inputs, so one shader
// draws every circle in the scene.
func circle(g *picodraw.Builder) picodraw.Float4 {
	center := g.ReadFloat2()
	radius := g.ReadFloat()
	color := g.ReadFloat4()

	dist := g.Position().Sub(center).Length()
	coverage := g.Const(1).Sub(dist.Smoothstep(radius.Sub(g.Const(1)), radius))
	return color.Mul(g.Vec4(g.Const(1), g.Const(1), g.Const(1), coverage))
}

func run(out string, size, workers int) error {
	graph, err := picodraw.Collect(circle)
	if err != nil {
		return err
	}

	backend := software.New(software.WithWorkers(workers))
	defer backend.Close()

	shader, err := backend.CreateShader(graph)
	if err != nil {
		return err
	}

	s := float32(size)
	buf := picodraw.NewCommandBuffer()
	frame := buf.Screen(picodraw.Size{Width: size, Height: size})
	frame.Clear(0.08, 0.09, 0.11, 1)

	full := picodraw.Bounds{MaxX: size, MaxY: size}
	quads := []struct {
		cx, cy, r float32
		c         [4]float32
	}{
		{s * 0.5, s * 0.5, s * 0.36, [4]float32{0.91, 0.34, 0.22, 1}},
		{s * 0.3, s * 0.35, s * 0.14, [4]float32{0.22, 0.55, 0.91, 0.85}},
		{s * 0.68, s * 0.64, s * 0.18, [4]float32{0.95, 0.82, 0.25, 0.9}},
	}
	for _, q := range quads {
		err := frame.Quad(shader, full).
			Float2(q.cx, q.cy).
			Float(q.r).
			Float4(q.c[0], q.c[1], q.c[2], q.c[3]).
			End()
		if err != nil {
			return err
		}
	}

	if err := backend.Draw(buf); err != nil {
		return err
	}
	if err := backend.Screen().SavePNG(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", out, size, size)
	return nil
}
