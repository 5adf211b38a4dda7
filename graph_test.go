package picodraw

import (
	"errors"
	"testing"
)

// traceCircle is the canonical trace used across tests: a circle with a
// feathered edge driven by three kinds of input.
func traceCircle(g *Builder) Float4 {
	center := g.ReadFloat2()
	radius := g.ReadFloat()
	color := g.ReadFloat4()

	dist := g.Position().Sub(center).Length()
	cov := g.Const(1).Sub(dist.Smoothstep(radius.Sub(g.Const(1)), radius))
	return color.Mul(g.Vec4(g.Const(1), g.Const(1), g.Const(1), cov))
}

func TestCollectBuildsGraph(t *testing.T) {
	g, err := Collect(traceCircle)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if g.Len() == 0 {
		t.Fatal("graph has no nodes")
	}
	if int(g.Output()) != g.Len()-1 {
		t.Errorf("output = %d, want last node %d", g.Output(), g.Len()-1)
	}

	// Operands must always point backwards.
	for i := 0; i < g.Len(); i++ {
		n := g.Node(OpAddr(i))
		for _, a := range n.ArgAddrs() {
			if a >= OpAddr(i) {
				t.Fatalf("node %d references later node %d", i, a)
			}
		}
	}
}

func TestCollectHashDeterministic(t *testing.T) {
	g1, err := Collect(traceCircle)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Collect(traceCircle)
	if err != nil {
		t.Fatal(err)
	}
	if g1.Hash() != g2.Hash() {
		t.Errorf("identical traces hash differently: %x vs %x", g1.Hash(), g2.Hash())
	}

	g3, err := Collect(func(g *Builder) Float4 {
		return g.Const4(0, 0, 0, 0.5)
	})
	if err != nil {
		t.Fatal(err)
	}
	if g1.Hash() == g3.Hash() {
		t.Error("different traces share a hash")
	}
}

func TestCollectMixedBuilders(t *testing.T) {
	var stolen Float1
	_, err := Collect(func(g *Builder) Float4 {
		stolen = g.Const(1)
		return stolen.Splat4()
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Collect(func(g *Builder) Float4 {
		return g.Const(2).Add(stolen).Splat4()
	})
	if err == nil {
		t.Fatal("mixing builders did not fail")
	}
	if !errors.Is(err, ErrTrace) {
		t.Errorf("error is not a trace error: %v", err)
	}
	var te *TraceError
	if !errors.As(err, &te) {
		t.Fatalf("error is %T, want *TraceError", err)
	}
}

func TestCollectForeignOutput(t *testing.T) {
	var out Float4
	_, err := Collect(func(g *Builder) Float4 {
		out = g.Const4(1, 0, 0, 1)
		return out
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Collect(func(g *Builder) Float4 {
		g.Const(0)
		return out
	})
	if !errors.Is(err, ErrTrace) {
		t.Fatalf("foreign output accepted: %v", err)
	}
}

func TestBuilderSources(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		addr func(g *Builder) OpAddr
	}{
		{"position", OpPosition, func(g *Builder) OpAddr { return g.Position().Addr() }},
		{"resolution", OpResolution, func(g *Builder) OpAddr { return g.Resolution().Addr() }},
		{"quadStart", OpQuadStart, func(g *Builder) OpAddr { return g.QuadStart().Addr() }},
		{"quadEnd", OpQuadEnd, func(g *Builder) OpAddr { return g.QuadEnd().Addr() }},
		{"readFloat", OpInputFloat, func(g *Builder) OpAddr { return g.ReadFloat().Addr() }},
		{"readInt", OpInputInt, func(g *Builder) OpAddr { return g.ReadInt().Addr() }},
		{"readTexture", OpInputTexture, func(g *Builder) OpAddr { return g.ReadTexture().Addr() }},
		{"readRenderTexture", OpInputRenderTexture, func(g *Builder) OpAddr { return g.ReadRenderTexture().Addr() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr OpAddr
			g, err := Collect(func(g *Builder) Float4 {
				addr = tt.addr(g)
				return g.Const4(0, 0, 0, 1)
			})
			if err != nil {
				t.Fatal(err)
			}
			if got := g.Node(addr).Op; got != tt.op {
				t.Errorf("op = %s, want %s", got, tt.op)
			}
		})
	}
}

func TestConstFloatNaNNormalized(t *testing.T) {
	nan := float32(0)
	nan = nan / nan

	g1, err := Collect(func(g *Builder) Float4 { return g.Const(nan).Splat4() })
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Collect(func(g *Builder) Float4 { return g.Const(nan).Splat4() })
	if err != nil {
		t.Fatal(err)
	}
	if g1.Hash() != g2.Hash() {
		t.Error("NaN constants hash differently")
	}
}
