package software

import (
	"math"

	"github.com/gogpu/picodraw"
)

// value is one evaluated node. Which fields are meaningful follows the
// node's type; vectors occupy the leading lanes.
type value struct {
	f   [4]float32
	i   [4]int32
	b   bool
	tex *picodraw.Pixmap
}

// env carries the per-pixel and per-quad builtin inputs.
type env struct {
	px, py     float32 // pixel center
	resW, resH float32
	qsX, qsY   float32
	qeX, qeY   float32
	slots      []slotValue
}

// 32-bit math helpers. Evaluation goes through float64 and rounds back,
// which matches what a GPU computes for these functions closely enough
// for the tolerance the backends promise.

func sqrt32(x float32) float32  { return float32(math.Sqrt(float64(x))) }
func floor32(x float32) float32 { return float32(math.Floor(float64(x))) }
func trunc32(x float32) float32 { return float32(math.Trunc(float64(x))) }
func abs32(x float32) float32   { return float32(math.Abs(float64(x))) }

func fmod32(x, y float32) float32 {
	return x - y*trunc32(x/y)
}

func sign32(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// castInt32 truncates toward zero with saturation. NaN maps to 0.
func castInt32(x float32) int32 {
	if x != x {
		return 0
	}
	t := trunc32(x)
	if t >= math.MaxInt32 {
		return math.MaxInt32
	}
	if t <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(t)
}

// idiv is integer division with the divide-by-zero result pinned to 0,
// so a bad quad input cannot crash the rasterizer.
func idiv(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	if a == math.MinInt32 && b == -1 {
		return math.MinInt32
	}
	return a / b
}

func imod(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	if a == math.MinInt32 && b == -1 {
		return 0
	}
	return a % b
}

// eval interprets the shader for one pixel. scratch must hold
// len(sh.nodes) values and is reused across pixels.
func (sh *shader) eval(e *env, scratch []value) picodraw.RGBA {
	for addr := range sh.nodes {
		sh.evalNode(addr, e, scratch)
	}
	out := scratch[sh.output]
	return picodraw.RGBA{R: out.f[0], G: out.f[1], B: out.f[2], A: out.f[3]}
}

func (sh *shader) evalNode(addr int, e *env, vs []value) {
	n := &sh.nodes[addr]
	t := sh.types[addr]
	lanes := t.Lanes()
	out := &vs[addr]
	arg := func(i int) *value { return &vs[n.Args[i]] }

	switch n.Op {
	case picodraw.OpPosition:
		out.f[0], out.f[1] = e.px, e.py
	case picodraw.OpResolution:
		out.f[0], out.f[1] = e.resW, e.resH
	case picodraw.OpQuadStart:
		out.f[0], out.f[1] = e.qsX, e.qsY
	case picodraw.OpQuadEnd:
		out.f[0], out.f[1] = e.qeX, e.qeY

	case picodraw.OpInputFloat:
		out.f[0] = e.slots[sh.slotOf[addr]].f
	case picodraw.OpInputInt:
		out.i[0] = e.slots[sh.slotOf[addr]].i
	case picodraw.OpInputTexture, picodraw.OpInputRenderTexture:
		out.tex = e.slots[sh.slotOf[addr]].tex

	case picodraw.OpConstFloat:
		out.f[0] = n.Float()
	case picodraw.OpConstInt:
		out.i[0] = n.Int
	case picodraw.OpConstBool:
		out.b = n.Bool

	case picodraw.OpAdd:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = x.f[l] + y.f[l]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] + y.i[l]
			}
		}

	case picodraw.OpSub:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = x.f[l] - y.f[l]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] - y.i[l]
			}
		}

	case picodraw.OpMul:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = x.f[l] * y.f[l]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] * y.i[l]
			}
		}

	case picodraw.OpDiv:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = x.f[l] / y.f[l]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = idiv(x.i[l], y.i[l])
			}
		}

	case picodraw.OpMod:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = fmod32(x.f[l], y.f[l])
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = imod(x.i[l], y.i[l])
			}
		}

	case picodraw.OpNeg:
		x := arg(0)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = -x.f[l]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = -x.i[l]
			}
		}

	case picodraw.OpMin:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = min(x.f[l], y.f[l])
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = min(x.i[l], y.i[l])
			}
		}

	case picodraw.OpMax:
		x, y := arg(0), arg(1)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = max(x.f[l], y.f[l])
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = max(x.i[l], y.i[l])
			}
		}

	case picodraw.OpAbs:
		x := arg(0)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = abs32(x.f[l])
			}
		} else {
			for l := 0; l < lanes; l++ {
				v := x.i[l]
				if v < 0 {
					v = -v
				}
				out.i[l] = v
			}
		}

	case picodraw.OpSign:
		x := arg(0)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = sign32(x.f[l])
			}
		} else {
			for l := 0; l < lanes; l++ {
				switch {
				case x.i[l] > 0:
					out.i[l] = 1
				case x.i[l] < 0:
					out.i[l] = -1
				default:
					out.i[l] = 0
				}
			}
		}

	case picodraw.OpFloor:
		x := arg(0)
		for l := 0; l < lanes; l++ {
			out.f[l] = floor32(x.f[l])
		}

	case picodraw.OpFract:
		x := arg(0)
		for l := 0; l < lanes; l++ {
			out.f[l] = x.f[l] - floor32(x.f[l])
		}

	case picodraw.OpSin:
		sh.mapFloat(out, arg(0), lanes, math.Sin)
	case picodraw.OpCos:
		sh.mapFloat(out, arg(0), lanes, math.Cos)
	case picodraw.OpTan:
		sh.mapFloat(out, arg(0), lanes, math.Tan)
	case picodraw.OpAsin:
		sh.mapFloat(out, arg(0), lanes, math.Asin)
	case picodraw.OpAcos:
		sh.mapFloat(out, arg(0), lanes, math.Acos)
	case picodraw.OpAtan:
		sh.mapFloat(out, arg(0), lanes, math.Atan)
	case picodraw.OpSqrt:
		sh.mapFloat(out, arg(0), lanes, math.Sqrt)
	case picodraw.OpExp:
		sh.mapFloat(out, arg(0), lanes, math.Exp)
	case picodraw.OpLn:
		sh.mapFloat(out, arg(0), lanes, math.Log)

	case picodraw.OpAtan2:
		x, y := arg(0), arg(1)
		for l := 0; l < lanes; l++ {
			out.f[l] = float32(math.Atan2(float64(x.f[l]), float64(y.f[l])))
		}

	case picodraw.OpPow:
		x, y := arg(0), arg(1)
		for l := 0; l < lanes; l++ {
			out.f[l] = float32(math.Pow(float64(x.f[l]), float64(y.f[l])))
		}

	case picodraw.OpDot:
		x, y := arg(0), arg(1)
		ln := sh.types[n.Args[0]].Lanes()
		var sum float32
		for l := 0; l < ln; l++ {
			sum += x.f[l] * y.f[l]
		}
		out.f[0] = sum

	case picodraw.OpCross:
		x, y := arg(0), arg(1)
		out.f[0] = x.f[1]*y.f[2] - x.f[2]*y.f[1]
		out.f[1] = x.f[2]*y.f[0] - x.f[0]*y.f[2]
		out.f[2] = x.f[0]*y.f[1] - x.f[1]*y.f[0]

	case picodraw.OpLength:
		x := arg(0)
		ln := sh.types[n.Args[0]].Lanes()
		var sum float32
		for l := 0; l < ln; l++ {
			sum += x.f[l] * x.f[l]
		}
		out.f[0] = sqrt32(sum)

	case picodraw.OpNormalize:
		x := arg(0)
		var sum float32
		for l := 0; l < lanes; l++ {
			sum += x.f[l] * x.f[l]
		}
		inv := 1 / sqrt32(sum)
		for l := 0; l < lanes; l++ {
			out.f[l] = x.f[l] * inv
		}

	case picodraw.OpClamp:
		x, lo, hi := arg(0), arg(1), arg(2)
		for l := 0; l < lanes; l++ {
			out.f[l] = clamp32(x.f[l], lo.f[l], hi.f[l])
		}

	case picodraw.OpLerp:
		x, y, tt := arg(0), arg(1), arg(2)
		for l := 0; l < lanes; l++ {
			out.f[l] = x.f[l] + (y.f[l]-x.f[l])*tt.f[l]
		}

	case picodraw.OpStep:
		edge, x := arg(0), arg(1)
		for l := 0; l < lanes; l++ {
			if x.f[l] < edge.f[l] {
				out.f[l] = 0
			} else {
				out.f[l] = 1
			}
		}

	case picodraw.OpSmoothstep:
		e0, e1, x := arg(0), arg(1), arg(2)
		for l := 0; l < lanes; l++ {
			t := clamp32((x.f[l]-e0.f[l])/(e1.f[l]-e0.f[l]), 0, 1)
			out.f[l] = t * t * (3 - 2*t)
		}

	case picodraw.OpSelect:
		cond, ifTrue, ifFalse := arg(0), arg(1), arg(2)
		if cond.b {
			*out = *ifTrue
		} else {
			*out = *ifFalse
		}

	case picodraw.OpEq, picodraw.OpNe, picodraw.OpLt, picodraw.OpLe,
		picodraw.OpGt, picodraw.OpGe:
		x, y := arg(0), arg(1)
		if sh.types[n.Args[0]] == picodraw.TypeFloat1 {
			out.b = cmpFloat(n.Op, x.f[0], y.f[0])
		} else {
			out.b = cmpInt(n.Op, x.i[0], y.i[0])
		}

	case picodraw.OpAnd:
		x, y := arg(0), arg(1)
		if t == picodraw.TypeBool {
			out.b = x.b && y.b
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] & y.i[l]
			}
		}

	case picodraw.OpOr:
		x, y := arg(0), arg(1)
		if t == picodraw.TypeBool {
			out.b = x.b || y.b
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] | y.i[l]
			}
		}

	case picodraw.OpXor:
		x, y := arg(0), arg(1)
		if t == picodraw.TypeBool {
			out.b = x.b != y.b
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[l] ^ y.i[l]
			}
		}

	case picodraw.OpNot:
		x := arg(0)
		if t == picodraw.TypeBool {
			out.b = !x.b
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = ^x.i[l]
			}
		}

	case picodraw.OpVec2, picodraw.OpVec3, picodraw.OpVec4:
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = arg(l).f[0]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = arg(l).i[0]
			}
		}

	case picodraw.OpSplat2, picodraw.OpSplat3, picodraw.OpSplat4:
		x := arg(0)
		if t.IsFloat() {
			for l := 0; l < lanes; l++ {
				out.f[l] = x.f[0]
			}
		} else {
			for l := 0; l < lanes; l++ {
				out.i[l] = x.i[0]
			}
		}

	case picodraw.OpExtractX, picodraw.OpExtractY, picodraw.OpExtractZ,
		picodraw.OpExtractW:
		lane := int(n.Op - picodraw.OpExtractX)
		x := arg(0)
		if t == picodraw.TypeFloat1 {
			out.f[0] = x.f[lane]
		} else {
			out.i[0] = x.i[lane]
		}

	case picodraw.OpCastFloat:
		x := arg(0)
		for l := 0; l < lanes; l++ {
			out.f[l] = float32(x.i[l])
		}

	case picodraw.OpCastInt:
		x := arg(0)
		for l := 0; l < lanes; l++ {
			out.i[l] = castInt32(x.f[l])
		}

	case picodraw.OpSampleLinear:
		tex, uv := arg(0), arg(1)
		c := sampleLinear(tex.tex, uv.f[0], uv.f[1])
		out.f = [4]float32{c.R, c.G, c.B, c.A}

	case picodraw.OpSampleNearest:
		tex, uv := arg(0), arg(1)
		c := sampleNearest(tex.tex, uv.f[0], uv.f[1])
		out.f = [4]float32{c.R, c.G, c.B, c.A}

	case picodraw.OpTextureSize:
		tex := arg(0)
		out.i[0] = int32(tex.tex.Width())
		out.i[1] = int32(tex.tex.Height())
	}
}

func (sh *shader) mapFloat(out, x *value, lanes int, fn func(float64) float64) {
	for l := 0; l < lanes; l++ {
		out.f[l] = float32(fn(float64(x.f[l])))
	}
}

func cmpFloat(op picodraw.Op, a, b float32) bool {
	switch op {
	case picodraw.OpEq:
		return a == b
	case picodraw.OpNe:
		return a != b
	case picodraw.OpLt:
		return a < b
	case picodraw.OpLe:
		return a <= b
	case picodraw.OpGt:
		return a > b
	default:
		return a >= b
	}
}

func cmpInt(op picodraw.Op, a, b int32) bool {
	switch op {
	case picodraw.OpEq:
		return a == b
	case picodraw.OpNe:
		return a != b
	case picodraw.OpLt:
		return a < b
	case picodraw.OpLe:
		return a <= b
	case picodraw.OpGt:
		return a > b
	default:
		return a >= b
	}
}

// sampleNearest reads the texel containing the normalized uv with
// clamp-to-edge addressing.
func sampleNearest(pm *picodraw.Pixmap, u, v float32) picodraw.RGBA {
	x := int(floor32(u * float32(pm.Width())))
	y := int(floor32(v * float32(pm.Height())))
	x = clampIdx(x, pm.Width())
	y = clampIdx(y, pm.Height())
	return pm.GetPixel(x, y)
}

// sampleLinear reads with bilinear filtering between the four texels
// around uv, clamp-to-edge at the borders.
func sampleLinear(pm *picodraw.Pixmap, u, v float32) picodraw.RGBA {
	fx := u*float32(pm.Width()) - 0.5
	fy := v*float32(pm.Height()) - 0.5
	x0f := floor32(fx)
	y0f := floor32(fy)
	tx := fx - x0f
	ty := fy - y0f

	x0 := clampIdx(int(x0f), pm.Width())
	x1 := clampIdx(int(x0f)+1, pm.Width())
	y0 := clampIdx(int(y0f), pm.Height())
	y1 := clampIdx(int(y0f)+1, pm.Height())

	c00 := pm.GetPixel(x0, y0)
	c10 := pm.GetPixel(x1, y0)
	c01 := pm.GetPixel(x0, y1)
	c11 := pm.GetPixel(x1, y1)

	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	mix := func(a, b picodraw.RGBA, t float32) picodraw.RGBA {
		return picodraw.RGBA{
			R: lerp(a.R, b.R, t),
			G: lerp(a.G, b.G, t),
			B: lerp(a.B, b.B, t),
			A: lerp(a.A, b.A, t),
		}
	}
	return mix(mix(c00, c10, tx), mix(c01, c11, tx), ty)
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
