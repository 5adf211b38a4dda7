package picodraw

import (
	"errors"
	"math"
	"testing"
)

func mustCollect(t *testing.T, trace func(*Builder) Float4) *Graph {
	t.Helper()
	g, err := Collect(trace)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	return g
}

func TestCompileDedup(t *testing.T) {
	// The same subexpression traced twice collapses to one node.
	g := mustCollect(t, func(g *Builder) Float4 {
		p := g.Position()
		a := p.X().Mul(p.X())
		b := p.X().Mul(p.X())
		return a.Add(b).Splat4()
	})

	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if p.Len() >= g.Len() {
		t.Errorf("no deduplication: program %d nodes, graph %d", p.Len(), g.Len())
	}

	counts := make(map[Op]int)
	for i := 0; i < p.Len(); i++ {
		counts[p.Node(OpAddr(i)).Op]++
	}
	if counts[OpMul] != 1 {
		t.Errorf("Mul nodes = %d, want 1", counts[OpMul])
	}
	if counts[OpExtractX] != 1 {
		t.Errorf("ExtractX nodes = %d, want 1", counts[OpExtractX])
	}
}

func TestCompileInputsNeverDeduped(t *testing.T) {
	// Two structurally identical reads are two distinct slots.
	g := mustCollect(t, func(g *Builder) Float4 {
		a := g.ReadFloat()
		b := g.ReadFloat()
		return a.Add(b).Splat4()
	})

	p, err := Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(p.Inputs()); got != 2 {
		t.Fatalf("slots = %d, want 2", got)
	}
	if p.Inputs()[0].Addr == p.Inputs()[1].Addr {
		t.Error("two reads collapsed into one node")
	}
}

func TestCompileSlotOrder(t *testing.T) {
	g := mustCollect(t, func(g *Builder) Float4 {
		f := g.ReadFloat()
		i := g.ReadInt()
		tex := g.ReadTexture()
		rt := g.ReadRenderTexture()
		f2 := g.ReadFloat()

		uv := g.Position().Div(g.Resolution())
		c := tex.Sample(uv).Add(rt.Sample(uv))
		s := f.Add(i.ToFloat()).Add(f2)
		return c.Mul(s.Splat4())
	})

	p, err := Compile(g)
	if err != nil {
		t.Fatal(err)
	}

	want := []SlotKind{SlotFloat, SlotInt, SlotTexture, SlotRenderTexture, SlotFloat}
	if len(p.Inputs()) != len(want) {
		t.Fatalf("slots = %d, want %d", len(p.Inputs()), len(want))
	}
	for i, in := range p.Inputs() {
		if in.Kind != want[i] {
			t.Errorf("slot %d kind = %s, want %s", i, in.Kind, want[i])
		}
	}
}

func TestCompileTypes(t *testing.T) {
	g := mustCollect(t, traceCircle)
	p, err := Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.TypeOf(p.Output()); got != TypeFloat4 {
		t.Errorf("output type = %s, want float4", got)
	}
	if p.Hash() != g.Hash() {
		t.Error("program hash does not match graph hash")
	}
}

// rawGraph builds a Graph directly, bypassing the typed handles, to
// reach states the public API cannot express.
func rawGraph(output OpAddr, nodes ...Node) *Graph {
	return &Graph{nodes: nodes, output: output, hash: 1}
}

func TestCompileRejectsBadOperands(t *testing.T) {
	g := rawGraph(2,
		Node{Op: OpConstFloat, FloatBits: math.Float32bits(1)},
		Node{Op: OpConstInt, Int: 2},
		Node{Op: OpAdd, Args: [4]OpAddr{0, 1}, NArgs: 2},
	)

	_, err := Compile(g)
	if err == nil {
		t.Fatal("float+int Add compiled")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *ValidationError", err)
	}
	if ve.Addr != 2 || ve.Op != OpAdd {
		t.Errorf("error at node %d op %s, want node 2 op Add", ve.Addr, ve.Op)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("error does not match ErrValidation")
	}
}

func TestCompileRejectsNonFloat4Output(t *testing.T) {
	g := rawGraph(0, Node{Op: OpConstFloat, FloatBits: math.Float32bits(1)})

	_, err := Compile(g)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("scalar output accepted: %v", err)
	}
}

func TestCompileRejectsForwardReference(t *testing.T) {
	g := rawGraph(0,
		Node{Op: OpSplat4, Args: [4]OpAddr{1}, NArgs: 1},
		Node{Op: OpConstFloat, FloatBits: math.Float32bits(1)},
	)

	_, err := Compile(g)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("forward reference accepted: %v", err)
	}
}

func TestCompileScalarComparisonOnly(t *testing.T) {
	g := rawGraph(3,
		Node{Op: OpPosition},
		Node{Op: OpPosition},
		Node{Op: OpLt, Args: [4]OpAddr{0, 1}, NArgs: 2},
		Node{Op: OpConstBool, Bool: true},
	)

	_, err := Compile(g)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("vector comparison accepted: %v", err)
	}
}
