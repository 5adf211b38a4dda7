// Package wgsl translates compiled programs into WGSL shader modules.
// Each quad is one instance of a four vertex triangle strip; its bounds
// and input data live in a storage buffer of u32 words, decoded with
// bitcast in the shaders.
package wgsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/picodraw"
)

// boundsWords is the number of u32 words the quad bounds occupy at the
// start of every quad record.
const boundsWords = 4

// Layout describes how quad records are packed for a program.
type Layout struct {
	// QuadWords is the record size in u32 words: bounds plus one word
	// per non-texture slot.
	QuadWords int

	// SlotWords maps a slot index to its word offset within the record,
	// or -1 for texture slots, which are bound instead of packed.
	SlotWords []int

	// TextureSlots lists the slot indices of texture inputs in binding
	// order. Binding i+2 of group 1 is TextureSlots[i]; bindings 0 and 1
	// are the linear and nearest samplers.
	TextureSlots []int
}

// Source is a generated shader module.
type Source struct {
	// WGSL holds both entry points, vs_main and fs_main.
	WGSL string

	Layout Layout
}

// Generate translates a program into WGSL. Every node becomes one let
// binding in the fragment shader, in program order, so the generated
// source mirrors the deduplicated graph one to one.
func Generate(prog *picodraw.Program) (*Source, error) {
	g := &generator{prog: prog}
	return g.run()
}

type generator struct {
	prog *picodraw.Program
	sb   strings.Builder

	layout Layout

	// texName maps a node address to its texture binding name. Set for
	// texture input nodes only.
	texName map[picodraw.OpAddr]string
}

func (g *generator) run() (*Source, error) {
	g.texName = make(map[picodraw.OpAddr]string)

	// Pack layout: bounds first, then non-texture slots one word each.
	inputs := g.prog.Inputs()
	g.layout.SlotWords = make([]int, len(inputs))
	word := boundsWords
	for i, in := range inputs {
		if in.Kind.IsTexture() {
			g.layout.SlotWords[i] = -1
			g.texName[in.Addr] = fmt.Sprintf("tex%d", len(g.layout.TextureSlots))
			g.layout.TextureSlots = append(g.layout.TextureSlots, i)
			continue
		}
		g.layout.SlotWords[i] = word
		word++
	}
	g.layout.QuadWords = word

	g.header()
	g.vertex()
	if err := g.fragment(); err != nil {
		return nil, err
	}
	return &Source{WGSL: g.sb.String(), Layout: g.layout}, nil
}

func (g *generator) pf(format string, args ...any) {
	fmt.Fprintf(&g.sb, format, args...)
}

func (g *generator) header() {
	g.pf("const QUAD_WORDS: u32 = %du;\n\n", g.layout.QuadWords)
	g.pf("struct Globals {\n")
	g.pf("    resolution: vec2<f32>,\n")
	g.pf("    _pad: vec2<f32>,\n")
	g.pf("}\n\n")
	g.pf("@group(0) @binding(0) var<uniform> globals: Globals;\n")
	g.pf("@group(0) @binding(1) var<storage, read> quad_data: array<u32>;\n")
	if len(g.layout.TextureSlots) > 0 {
		g.pf("@group(1) @binding(0) var samp_linear: sampler;\n")
		g.pf("@group(1) @binding(1) var samp_nearest: sampler;\n")
		for i := range g.layout.TextureSlots {
			g.pf("@group(1) @binding(%d) var tex%d: texture_2d<f32>;\n", i+2, i)
		}
	}
	g.pf("\n")
}

func (g *generator) vertex() {
	g.pf("struct VSOut {\n")
	g.pf("    @builtin(position) pos: vec4<f32>,\n")
	g.pf("    @location(0) @interpolate(flat) quad: u32,\n")
	g.pf("}\n\n")
	g.pf("@vertex\n")
	g.pf("fn vs_main(@builtin(vertex_index) vi: u32, @builtin(instance_index) ii: u32) -> VSOut {\n")
	g.pf("    let base = ii * QUAD_WORDS;\n")
	g.pf("    let x0 = bitcast<f32>(quad_data[base + 0u]);\n")
	g.pf("    let y0 = bitcast<f32>(quad_data[base + 1u]);\n")
	g.pf("    let x1 = bitcast<f32>(quad_data[base + 2u]);\n")
	g.pf("    let y1 = bitcast<f32>(quad_data[base + 3u]);\n")
	g.pf("    let corner = vec2<f32>(f32(vi & 1u), f32(vi >> 1u));\n")
	g.pf("    let p = vec2<f32>(mix(x0, x1, corner.x), mix(y0, y1, corner.y));\n")
	g.pf("    let ndc = vec2<f32>(p.x / globals.resolution.x * 2.0 - 1.0,\n")
	g.pf("                        1.0 - p.y / globals.resolution.y * 2.0);\n")
	g.pf("    var out: VSOut;\n")
	g.pf("    out.pos = vec4<f32>(ndc, 0.0, 1.0);\n")
	g.pf("    out.quad = ii;\n")
	g.pf("    return out;\n")
	g.pf("}\n\n")
}

func (g *generator) fragment() error {
	g.pf("@fragment\n")
	g.pf("fn fs_main(in: VSOut) -> @location(0) vec4<f32> {\n")
	g.pf("    let base = in.quad * QUAD_WORDS;\n")

	for i := 0; i < g.prog.Len(); i++ {
		addr := picodraw.OpAddr(i)
		if g.prog.Node(addr).Op.IsInput() && g.texName[addr] != "" {
			// Texture references are bindings, not expressions.
			continue
		}
		expr, err := g.expr(addr)
		if err != nil {
			return err
		}
		g.pf("    let e%d: %s = %s;\n", i, wgslType(g.prog.TypeOf(addr)), expr)
	}

	g.pf("    return e%d;\n", g.prog.Output())
	g.pf("}\n")
	return nil
}

// wgslType maps a program type to its WGSL spelling.
func wgslType(t picodraw.Type) string {
	switch t {
	case picodraw.TypeFloat1:
		return "f32"
	case picodraw.TypeFloat2:
		return "vec2<f32>"
	case picodraw.TypeFloat3:
		return "vec3<f32>"
	case picodraw.TypeFloat4:
		return "vec4<f32>"
	case picodraw.TypeInt1:
		return "i32"
	case picodraw.TypeInt2:
		return "vec2<i32>"
	case picodraw.TypeInt3:
		return "vec3<i32>"
	case picodraw.TypeInt4:
		return "vec4<i32>"
	case picodraw.TypeBool:
		return "bool"
	}
	return "f32"
}

// floatLit formats a float32 literal. Finite values use decimal
// scientific notation; non-finite values fall back to an exact bitcast.
func floatLit(f float32) string {
	f64 := float64(f)
	if math.IsInf(f64, 0) || math.IsNaN(f64) {
		return fmt.Sprintf("bitcast<f32>(0x%08xu)", math.Float32bits(f))
	}
	return fmt.Sprintf("%gf", f)
}

// slotRef returns the decoded expression for a non-texture input node.
func (g *generator) slotRef(addr picodraw.OpAddr) (string, error) {
	for i, in := range g.prog.Inputs() {
		if in.Addr != addr {
			continue
		}
		w := g.layout.SlotWords[i]
		switch in.Kind {
		case picodraw.SlotFloat:
			return fmt.Sprintf("bitcast<f32>(quad_data[base + %du])", w), nil
		case picodraw.SlotInt:
			return fmt.Sprintf("bitcast<i32>(quad_data[base + %du])", w), nil
		}
	}
	return "", fmt.Errorf("wgsl: node %d is not a packed input", addr)
}

func (g *generator) expr(addr picodraw.OpAddr) (string, error) {
	n := g.prog.Node(addr)
	t := g.prog.TypeOf(addr)
	a := func(i int) string { return fmt.Sprintf("e%d", n.Args[i]) }

	switch n.Op {
	case picodraw.OpPosition:
		return "in.pos.xy", nil
	case picodraw.OpResolution:
		return "globals.resolution", nil
	case picodraw.OpQuadStart:
		return "vec2<f32>(bitcast<f32>(quad_data[base + 0u]), bitcast<f32>(quad_data[base + 1u]))", nil
	case picodraw.OpQuadEnd:
		return "vec2<f32>(bitcast<f32>(quad_data[base + 2u]), bitcast<f32>(quad_data[base + 3u]))", nil

	case picodraw.OpInputFloat, picodraw.OpInputInt:
		return g.slotRef(addr)

	case picodraw.OpConstFloat:
		return floatLit(n.Float()), nil
	case picodraw.OpConstInt:
		return fmt.Sprintf("i32(%d)", n.Int), nil
	case picodraw.OpConstBool:
		if n.Bool {
			return "true", nil
		}
		return "false", nil

	case picodraw.OpAdd:
		return fmt.Sprintf("(%s + %s)", a(0), a(1)), nil
	case picodraw.OpSub:
		return fmt.Sprintf("(%s - %s)", a(0), a(1)), nil
	case picodraw.OpMul:
		return fmt.Sprintf("(%s * %s)", a(0), a(1)), nil
	case picodraw.OpDiv:
		return fmt.Sprintf("(%s / %s)", a(0), a(1)), nil
	case picodraw.OpMod:
		return fmt.Sprintf("(%s %% %s)", a(0), a(1)), nil
	case picodraw.OpNeg:
		return fmt.Sprintf("(-%s)", a(0)), nil

	case picodraw.OpDot:
		return fmt.Sprintf("dot(%s, %s)", a(0), a(1)), nil
	case picodraw.OpCross:
		return fmt.Sprintf("cross(%s, %s)", a(0), a(1)), nil
	case picodraw.OpLength:
		return fmt.Sprintf("length(%s)", a(0)), nil
	case picodraw.OpNormalize:
		return fmt.Sprintf("normalize(%s)", a(0)), nil

	case picodraw.OpSin:
		return fmt.Sprintf("sin(%s)", a(0)), nil
	case picodraw.OpCos:
		return fmt.Sprintf("cos(%s)", a(0)), nil
	case picodraw.OpTan:
		return fmt.Sprintf("tan(%s)", a(0)), nil
	case picodraw.OpAsin:
		return fmt.Sprintf("asin(%s)", a(0)), nil
	case picodraw.OpAcos:
		return fmt.Sprintf("acos(%s)", a(0)), nil
	case picodraw.OpAtan:
		return fmt.Sprintf("atan(%s)", a(0)), nil
	case picodraw.OpAtan2:
		return fmt.Sprintf("atan2(%s, %s)", a(0), a(1)), nil
	case picodraw.OpSqrt:
		return fmt.Sprintf("sqrt(%s)", a(0)), nil
	case picodraw.OpPow:
		return fmt.Sprintf("pow(%s, %s)", a(0), a(1)), nil
	case picodraw.OpExp:
		return fmt.Sprintf("exp(%s)", a(0)), nil
	case picodraw.OpLn:
		return fmt.Sprintf("log(%s)", a(0)), nil

	case picodraw.OpMin:
		return fmt.Sprintf("min(%s, %s)", a(0), a(1)), nil
	case picodraw.OpMax:
		return fmt.Sprintf("max(%s, %s)", a(0), a(1)), nil
	case picodraw.OpClamp:
		return fmt.Sprintf("clamp(%s, %s, %s)", a(0), a(1), a(2)), nil
	case picodraw.OpAbs:
		return fmt.Sprintf("abs(%s)", a(0)), nil
	case picodraw.OpSign:
		return fmt.Sprintf("sign(%s)", a(0)), nil
	case picodraw.OpFloor:
		return fmt.Sprintf("floor(%s)", a(0)), nil
	case picodraw.OpFract:
		return fmt.Sprintf("fract(%s)", a(0)), nil

	case picodraw.OpLerp:
		return fmt.Sprintf("mix(%s, %s, %s)", a(0), a(1), a(2)), nil
	case picodraw.OpStep:
		return fmt.Sprintf("step(%s, %s)", a(0), a(1)), nil
	case picodraw.OpSmoothstep:
		return fmt.Sprintf("smoothstep(%s, %s, %s)", a(0), a(1), a(2)), nil
	case picodraw.OpSelect:
		return fmt.Sprintf("select(%s, %s, %s)", a(2), a(1), a(0)), nil

	case picodraw.OpEq:
		return fmt.Sprintf("(%s == %s)", a(0), a(1)), nil
	case picodraw.OpNe:
		return fmt.Sprintf("(%s != %s)", a(0), a(1)), nil
	case picodraw.OpLt:
		return fmt.Sprintf("(%s < %s)", a(0), a(1)), nil
	case picodraw.OpLe:
		return fmt.Sprintf("(%s <= %s)", a(0), a(1)), nil
	case picodraw.OpGt:
		return fmt.Sprintf("(%s > %s)", a(0), a(1)), nil
	case picodraw.OpGe:
		return fmt.Sprintf("(%s >= %s)", a(0), a(1)), nil

	case picodraw.OpAnd:
		if t == picodraw.TypeBool {
			return fmt.Sprintf("(%s && %s)", a(0), a(1)), nil
		}
		return fmt.Sprintf("(%s & %s)", a(0), a(1)), nil
	case picodraw.OpOr:
		if t == picodraw.TypeBool {
			return fmt.Sprintf("(%s || %s)", a(0), a(1)), nil
		}
		return fmt.Sprintf("(%s | %s)", a(0), a(1)), nil
	case picodraw.OpXor:
		if t == picodraw.TypeBool {
			return fmt.Sprintf("(%s != %s)", a(0), a(1)), nil
		}
		return fmt.Sprintf("(%s ^ %s)", a(0), a(1)), nil
	case picodraw.OpNot:
		if t == picodraw.TypeBool {
			return fmt.Sprintf("(!%s)", a(0)), nil
		}
		return fmt.Sprintf("(~%s)", a(0)), nil

	case picodraw.OpVec2, picodraw.OpVec3, picodraw.OpVec4:
		args := make([]string, n.NArgs)
		for i := range args {
			args[i] = a(i)
		}
		return fmt.Sprintf("%s(%s)", wgslType(t), strings.Join(args, ", ")), nil

	case picodraw.OpSplat2, picodraw.OpSplat3, picodraw.OpSplat4:
		return fmt.Sprintf("%s(%s)", wgslType(t), a(0)), nil

	case picodraw.OpExtractX:
		return a(0) + ".x", nil
	case picodraw.OpExtractY:
		return a(0) + ".y", nil
	case picodraw.OpExtractZ:
		return a(0) + ".z", nil
	case picodraw.OpExtractW:
		return a(0) + ".w", nil

	case picodraw.OpCastFloat, picodraw.OpCastInt:
		return fmt.Sprintf("%s(%s)", wgslType(t), a(0)), nil

	case picodraw.OpSampleLinear:
		tex := g.texName[n.Args[0]]
		return fmt.Sprintf("textureSample(%s, samp_linear, %s)", tex, a(1)), nil
	case picodraw.OpSampleNearest:
		tex := g.texName[n.Args[0]]
		return fmt.Sprintf("textureSample(%s, samp_nearest, %s)", tex, a(1)), nil
	case picodraw.OpTextureSize:
		tex := g.texName[n.Args[0]]
		return fmt.Sprintf("vec2<i32>(textureDimensions(%s))", tex), nil
	}

	return "", fmt.Errorf("wgsl: unsupported op %s at node %d", n.Op, addr)
}
