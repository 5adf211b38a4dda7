// Command picoscene renders a scene described in an HCL file with the
// software backend and writes it to a PNG file.
//
// A scene file declares a scene block with circle and rect shapes:
//
//	scene {
//	  width  = 512
//	  height = 512
//	  clear  = [0.08, 0.09, 0.11, 1.0]
//
//	  circle {
//	    center = [width / 2, height / 2]
//	    radius = 140
//	    color  = [0.91, 0.34, 0.22, 1.0]
//	  }
//
//	  rect {
//	    min    = [40, 40]
//	    max    = [220, 160]
//	    corner = 18
//	    color  = [0.22, 0.55, 0.91, 0.9]
//	  }
//	}
//
// Shape expressions may refer to the width and height variables.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/picodraw"
	"github.com/gogpu/picodraw/software"
)

type sceneFile struct {
	Scene sceneBlock `hcl:"scene,block"`
}

type sceneBlock struct {
	Width  int       `hcl:"width"`
	Height int       `hcl:"height"`
	Clear  []float64 `hcl:"clear,optional"`

	Remain hcl.Body `hcl:",remain"`
}

// sceneShapes is decoded in a second pass, with width and height bound
// as variables so shape positions can be expressed relative to the
// canvas.
type sceneShapes struct {
	Circles []circleBlock `hcl:"circle,block"`
	Rects   []rectBlock   `hcl:"rect,block"`
}

type circleBlock struct {
	Center  []float64 `hcl:"center"`
	Radius  float64   `hcl:"radius"`
	Color   []float64 `hcl:"color"`
	Feather float64   `hcl:"feather,optional"`
}

type rectBlock struct {
	Min    []float64 `hcl:"min"`
	Max    []float64 `hcl:"max"`
	Color  []float64 `hcl:"color"`
	Corner float64   `hcl:"corner,optional"`
}

func main() {
	var (
		out     = flag.String("out", "scene.png", "output PNG path")
		workers = flag.Int("workers", 0, "rasterizer workers (0 = GOMAXPROCS)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: picoscene [flags] scene.hcl")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *out, *workers); err != nil {
		fmt.Fprintln(os.Stderr, "picoscene:", err)
		os.Exit(1)
	}
}

func loadScene(path string) (*sceneBlock, *sceneShapes, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("parse %s: %w", path, diags)
	}

	var root sceneFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, nil, fmt.Errorf("decode %s: %w", path, diags)
	}
	scene := root.Scene
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, nil, fmt.Errorf("scene size %dx%d is not positive", scene.Width, scene.Height)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"width":  cty.NumberIntVal(int64(scene.Width)),
			"height": cty.NumberIntVal(int64(scene.Height)),
		},
	}
	var shapes sceneShapes
	if diags := gohcl.DecodeBody(scene.Remain, evalCtx, &shapes); diags.HasErrors() {
		return nil, nil, fmt.Errorf("decode shapes in %s: %w", path, diags)
	}
	return &scene, &shapes, nil
}

// circleShader fills a circle with a feathered edge. Inputs: center,
// radius, feather, color.
func circleShader(g *picodraw.Builder) picodraw.Float4 {
	center := g.ReadFloat2()
	radius := g.ReadFloat()
	feather := g.ReadFloat()
	color := g.ReadFloat4()

	dist := g.Position().Sub(center).Length()
	coverage := g.Const(1).Sub(dist.Smoothstep(radius.Sub(feather), radius))
	return color.Mul(g.Vec4(g.Const(1), g.Const(1), g.Const(1), coverage))
}

// rectShader fills a rounded rectangle using a signed distance box.
// Inputs: min, max, corner, color.
func rectShader(g *picodraw.Builder) picodraw.Float4 {
	lo := g.ReadFloat2()
	hi := g.ReadFloat2()
	corner := g.ReadFloat()
	color := g.ReadFloat4()

	half := hi.Sub(lo).Scale(g.Const(0.5))
	center := lo.Add(half)
	q := g.Position().Sub(center).Abs().Sub(half.Sub(corner.Splat2()))
	zero := g.Const2(0, 0)
	outside := q.Max(zero).Length()
	inside := q.X().Max(q.Y()).Min(g.Const(0))
	dist := outside.Add(inside).Sub(corner)

	coverage := g.Const(1).Sub(dist.Smoothstep(g.Const(-1), g.Const(0)))
	return color.Mul(g.Vec4(g.Const(1), g.Const(1), g.Const(1), coverage))
}

func colorOf(c []float64) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	for i := 0; i < len(c) && i < 4; i++ {
		out[i] = float32(c[i])
	}
	return out
}

func run(scenePath, out string, workers int) error {
	scene, shapes, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	circleGraph, err := picodraw.Collect(circleShader)
	if err != nil {
		return err
	}
	rectGraph, err := picodraw.Collect(rectShader)
	if err != nil {
		return err
	}

	backend := software.New(software.WithWorkers(workers))
	defer backend.Close()

	circleSh, err := backend.CreateShader(circleGraph)
	if err != nil {
		return err
	}
	rectSh, err := backend.CreateShader(rectGraph)
	if err != nil {
		return err
	}

	size := picodraw.Size{Width: scene.Width, Height: scene.Height}
	full := picodraw.BoundsForSize(size)

	buf := picodraw.NewCommandBuffer()
	frame := buf.Screen(size)
	if len(scene.Clear) > 0 {
		c := colorOf(scene.Clear)
		frame.Clear(c[0], c[1], c[2], c[3])
	}

	for _, c := range shapes.Circles {
		if len(c.Center) != 2 {
			return fmt.Errorf("circle center wants 2 values, got %d", len(c.Center))
		}
		feather := c.Feather
		if feather <= 0 {
			feather = 1
		}
		col := colorOf(c.Color)
		err := frame.Quad(circleSh, full).
			Float2(float32(c.Center[0]), float32(c.Center[1])).
			Float(float32(c.Radius)).
			Float(float32(feather)).
			Float4(col[0], col[1], col[2], col[3]).
			End()
		if err != nil {
			return err
		}
	}

	for _, r := range shapes.Rects {
		if len(r.Min) != 2 || len(r.Max) != 2 {
			return fmt.Errorf("rect min and max want 2 values each")
		}
		col := colorOf(r.Color)
		err := frame.Quad(rectSh, full).
			Float2(float32(r.Min[0]), float32(r.Min[1])).
			Float2(float32(r.Max[0]), float32(r.Max[1])).
			Float(float32(r.Corner)).
			Float4(col[0], col[1], col[2], col[3]).
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
	fmt.Printf("wrote %s (%dx%d, %d shapes)\n", out, scene.Width, scene.Height,
		len(shapes.Circles)+len(shapes.Rects))
	return nil
}
