package wgsl

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/picodraw"
)

func generate(t *testing.T, trace func(*picodraw.Builder) picodraw.Float4) *Source {
	t.Helper()
	g, err := picodraw.Collect(trace)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	prog, err := picodraw.Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	src, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return src
}

func TestGenerateLayout(t *testing.T) {
	src := generate(t, func(g *picodraw.Builder) picodraw.Float4 {
		radius := g.ReadFloat()
		steps := g.ReadInt()
		tex := g.ReadTexture()
		alpha := g.ReadFloat()

		c := tex.Sample(g.Const2(0.5, 0.5))
		v := radius.Add(steps.ToFloat()).Mul(alpha)
		return c.Mul(v.Splat4())
	})

	// Bounds take four words, then one word per packed slot. The texture
	// slot is bound, not packed.
	if src.Layout.QuadWords != 7 {
		t.Errorf("QuadWords = %d, want 7", src.Layout.QuadWords)
	}
	wantWords := []int{4, 5, -1, 6}
	if len(src.Layout.SlotWords) != len(wantWords) {
		t.Fatalf("SlotWords = %v, want %v", src.Layout.SlotWords, wantWords)
	}
	for i, w := range wantWords {
		if src.Layout.SlotWords[i] != w {
			t.Errorf("SlotWords[%d] = %d, want %d", i, src.Layout.SlotWords[i], w)
		}
	}
	if len(src.Layout.TextureSlots) != 1 || src.Layout.TextureSlots[0] != 2 {
		t.Errorf("TextureSlots = %v, want [2]", src.Layout.TextureSlots)
	}
}

func TestGenerateSourceShape(t *testing.T) {
	src := generate(t, func(g *picodraw.Builder) picodraw.Float4 {
		v := g.ReadFloat()
		n := g.ReadInt()
		return g.Vec4(v, n.ToFloat(), g.Const(0.25), g.Const(1))
	})

	for _, want := range []string{
		"const QUAD_WORDS: u32 = 6u;",
		"var<storage, read> quad_data: array<u32>;",
		"fn vs_main(",
		"fn fs_main(",
		"@interpolate(flat)",
		"bitcast<f32>(quad_data[base + 4u])",
		"bitcast<i32>(quad_data[base + 5u])",
	} {
		if !strings.Contains(src.WGSL, want) {
			t.Errorf("generated source missing %q\n%s", want, src.WGSL)
		}
	}
	if strings.Contains(src.WGSL, "samp_linear") {
		t.Error("sampler bindings emitted without texture slots")
	}
}

func TestGenerateTextureBindings(t *testing.T) {
	src := generate(t, func(g *picodraw.Builder) picodraw.Float4 {
		a := g.ReadTexture()
		b := g.ReadRenderTexture()
		uv := g.Position().Div(g.Resolution())
		return a.Sample(uv).Add(b.SampleNearest(uv))
	})

	for _, want := range []string{
		"@group(1) @binding(0) var samp_linear: sampler;",
		"@group(1) @binding(1) var samp_nearest: sampler;",
		"@group(1) @binding(2) var tex0: texture_2d<f32>;",
		"@group(1) @binding(3) var tex1: texture_2d<f32>;",
		"textureSample(tex0, samp_linear,",
		"textureSample(tex1, samp_nearest,",
	} {
		if !strings.Contains(src.WGSL, want) {
			t.Errorf("generated source missing %q\n%s", want, src.WGSL)
		}
	}
	// Texture records carry no packed words beyond the bounds.
	if src.Layout.QuadWords != 4 {
		t.Errorf("QuadWords = %d, want 4", src.Layout.QuadWords)
	}
}

func TestNonFiniteConstLiteral(t *testing.T) {
	src := generate(t, func(g *picodraw.Builder) picodraw.Float4 {
		inf := g.Const(float32(math.Inf(1)))
		return g.Vec4(inf, g.Const(0), g.Const(0), g.Const(1))
	})
	if !strings.Contains(src.WGSL, "bitcast<f32>(0x7f800000u)") {
		t.Errorf("infinity not emitted as bitcast:\n%s", src.WGSL)
	}
}

// TestGeneratedShadersCompile pushes generated modules through naga, the
// same validation path the GPU backend uses at shader creation.
func TestGeneratedShadersCompile(t *testing.T) {
	tests := []struct {
		name  string
		trace func(*picodraw.Builder) picodraw.Float4
	}{
		{"arithmetic", func(g *picodraw.Builder) picodraw.Float4 {
			x := g.ReadFloat()
			y := g.ReadFloat()
			v := x.Add(y).Sub(x.Mul(y)).Div(g.Const(2)).Mod(g.Const(3)).Neg()
			return g.Vec4(v, v.Abs(), v.Sign(), g.Const(1))
		}},
		{"math builtins", func(g *picodraw.Builder) picodraw.Float4 {
			x := g.ReadFloat()
			a := x.Sin().Add(x.Cos()).Add(x.Tan())
			b := x.Sqrt().Pow(g.Const(2)).Add(x.Exp().Ln())
			c := x.Floor().Add(x.Fract()).Min(a).Max(b)
			d := x.Atan2(a).Add(x.Atan()).Add(x.Clamp(g.Const(0), g.Const(1)).Asin())
			return g.Vec4(a, b, c, d.Acos())
		}},
		{"mix step smoothstep", func(g *picodraw.Builder) picodraw.Float4 {
			x := g.ReadFloat()
			m := x.Lerp(g.Const(1), g.Const(0.5))
			s := x.Step(g.Const(0.5))
			h := x.Smoothstep(g.Const(0), g.Const(1))
			return g.Vec4(m, s, h, g.Const(1))
		}},
		{"vectors", func(g *picodraw.Builder) picodraw.Float4 {
			p := g.Position()
			v3 := g.Vec3(p.X(), p.Y(), g.Const(1))
			d := p.Dot(p).Add(v3.Cross(v3.Normalize()).Length())
			return d.Splat4()
		}},
		{"ints and bits", func(g *picodraw.Builder) picodraw.Float4 {
			n := g.ReadInt()
			m := n.And(g.ConstInt(0xff)).Or(g.ConstInt(1)).Xor(n).Not()
			q := n.Add(m).Sub(n.Mul(m))
			return g.Vec4(q.ToFloat(), m.ToFloat(), g.Const(0), g.Const(1))
		}},
		{"casts", func(g *picodraw.Builder) picodraw.Float4 {
			x := g.ReadFloat()
			n := x.ToInt()
			return g.Vec4(n.ToFloat(), x, g.Const(0), g.Const(1))
		}},
		{"compare and select", func(g *picodraw.Builder) picodraw.Float4 {
			x := g.ReadFloat()
			y := g.ReadFloat()
			cond := x.Lt(y).And(x.Ge(g.Const(0))).Or(x.Eq(y).Not())
			v := cond.Select(x, y)
			n := cond.Xor(g.ConstBool(true)).SelectInt(g.ConstInt(1), g.ConstInt(2))
			return g.Vec4(v, n.ToFloat(), cond.Select(g.Const(1), g.Const(0)), g.Const(1))
		}},
		{"vector select", func(g *picodraw.Builder) picodraw.Float4 {
			p := g.Position()
			cond := p.X().Gt(p.Y())
			return cond.Select4(g.Const4(1, 0, 0, 1), g.Const4(0, 1, 0, 1))
		}},
		{"quad builtins", func(g *picodraw.Builder) picodraw.Float4 {
			local := g.Position().Sub(g.QuadStart())
			ext := g.QuadEnd().Sub(g.QuadStart())
			uv := local.Div(ext)
			return g.Vec4(uv.X(), uv.Y(), g.Resolution().X().Div(g.Const(1000)), g.Const(1))
		}},
		{"sampling", func(g *picodraw.Builder) picodraw.Float4 {
			tex := g.ReadTexture()
			uv := g.Position().Div(g.Resolution())
			size := tex.Size()
			c := tex.Sample(uv).Add(tex.SampleNearest(uv))
			return c.Mul(size.X().ToFloat().Max(g.Const(1)).Splat4())
		}},
		{"int vectors", func(g *picodraw.Builder) picodraw.Float4 {
			n := g.ReadInt()
			v := g.IVec2(n, n.Add(g.ConstInt(1)))
			w := v.Add(v).ToFloat()
			return g.Vec4(w.X(), w.Y(), g.Const(0), g.Const(1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := generate(t, tt.trace)
			spirv, err := naga.Compile(src.WGSL)
			if err != nil {
				t.Fatalf("naga rejected the module: %v\n%s", err, src.WGSL)
			}
			if len(spirv) == 0 {
				t.Fatal("empty SPIR-V output")
			}
		})
	}
}
