package picodraw

// Handle types returned by Builder operations. A handle names a node in
// the trace; it carries no value. All methods append a new node and
// return a handle to it, so shader code reads like ordinary arithmetic
// while actually building a graph.
//
// There is intentionally no way to read a Bool back as a Go bool. Data
// dependent control flow is expressed with Select, which keeps every
// trace a straight line and every graph valid for all inputs.

// Float1 is a scalar float expression.
type Float1 struct{ v val }

// Float2 is a two component float vector expression.
type Float2 struct{ v val }

// Float3 is a three component float vector expression.
type Float3 struct{ v val }

// Float4 is a four component float vector expression.
type Float4 struct{ v val }

// Int1 is a scalar int expression.
type Int1 struct{ v val }

// Int2 is a two component int vector expression.
type Int2 struct{ v val }

// Int3 is a three component int vector expression.
type Int3 struct{ v val }

// Int4 is a four component int vector expression.
type Int4 struct{ v val }

// Bool is a boolean expression.
type Bool struct{ v val }

// TextureVal is a texture reference expression.
type TextureVal struct{ v val }

// Addr returns the node address a handle denotes. Backends use it when
// walking a graph; shader code has no use for it.
func (x Float1) Addr() OpAddr     { return x.v.addr }
func (x Float2) Addr() OpAddr     { return x.v.addr }
func (x Float3) Addr() OpAddr     { return x.v.addr }
func (x Float4) Addr() OpAddr     { return x.v.addr }
func (x Int1) Addr() OpAddr       { return x.v.addr }
func (x Int2) Addr() OpAddr       { return x.v.addr }
func (x Int3) Addr() OpAddr       { return x.v.addr }
func (x Int4) Addr() OpAddr       { return x.v.addr }
func (x Bool) Addr() OpAddr       { return x.v.addr }
func (x TextureVal) Addr() OpAddr { return x.v.addr }

// Float1 arithmetic.

func (x Float1) Add(y Float1) Float1 { return Float1{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Float1) Sub(y Float1) Float1 { return Float1{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Float1) Mul(y Float1) Float1 { return Float1{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Float1) Div(y Float1) Float1 { return Float1{x.v.b.binary(OpDiv, x.v, y.v)} }

// Mod returns x - y*trunc(x/y), matching WGSL's % on floats.
func (x Float1) Mod(y Float1) Float1 { return Float1{x.v.b.binary(OpMod, x.v, y.v)} }

func (x Float1) Neg() Float1            { return Float1{x.v.b.unary(OpNeg, x.v)} }
func (x Float1) Min(y Float1) Float1    { return Float1{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Float1) Max(y Float1) Float1    { return Float1{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Float1) Abs() Float1            { return Float1{x.v.b.unary(OpAbs, x.v)} }
func (x Float1) Sign() Float1           { return Float1{x.v.b.unary(OpSign, x.v)} }
func (x Float1) Floor() Float1          { return Float1{x.v.b.unary(OpFloor, x.v)} }
func (x Float1) Fract() Float1          { return Float1{x.v.b.unary(OpFract, x.v)} }
func (x Float1) Sin() Float1            { return Float1{x.v.b.unary(OpSin, x.v)} }
func (x Float1) Cos() Float1            { return Float1{x.v.b.unary(OpCos, x.v)} }
func (x Float1) Tan() Float1            { return Float1{x.v.b.unary(OpTan, x.v)} }
func (x Float1) Asin() Float1           { return Float1{x.v.b.unary(OpAsin, x.v)} }
func (x Float1) Acos() Float1           { return Float1{x.v.b.unary(OpAcos, x.v)} }
func (x Float1) Atan() Float1           { return Float1{x.v.b.unary(OpAtan, x.v)} }
func (x Float1) Atan2(y Float1) Float1  { return Float1{x.v.b.binary(OpAtan2, x.v, y.v)} }
func (x Float1) Sqrt() Float1           { return Float1{x.v.b.unary(OpSqrt, x.v)} }
func (x Float1) Pow(y Float1) Float1    { return Float1{x.v.b.binary(OpPow, x.v, y.v)} }
func (x Float1) Exp() Float1            { return Float1{x.v.b.unary(OpExp, x.v)} }
func (x Float1) Ln() Float1             { return Float1{x.v.b.unary(OpLn, x.v)} }
func (x Float1) Clamp(lo, hi Float1) Float1 {
	return Float1{x.v.b.ternary(OpClamp, x.v, lo.v, hi.v)}
}

// Lerp linearly interpolates from x to y by t.
func (x Float1) Lerp(y, t Float1) Float1 { return Float1{x.v.b.ternary(OpLerp, x.v, y.v, t.v)} }

// Step returns 0 where x < edge, else 1.
func (x Float1) Step(edge Float1) Float1 { return Float1{x.v.b.binary(OpStep, edge.v, x.v)} }

// Smoothstep performs hermite interpolation of x between e0 and e1.
func (x Float1) Smoothstep(e0, e1 Float1) Float1 {
	return Float1{x.v.b.ternary(OpSmoothstep, e0.v, e1.v, x.v)}
}

func (x Float1) Eq(y Float1) Bool { return Bool{x.v.b.binary(OpEq, x.v, y.v)} }
func (x Float1) Ne(y Float1) Bool { return Bool{x.v.b.binary(OpNe, x.v, y.v)} }
func (x Float1) Lt(y Float1) Bool { return Bool{x.v.b.binary(OpLt, x.v, y.v)} }
func (x Float1) Le(y Float1) Bool { return Bool{x.v.b.binary(OpLe, x.v, y.v)} }
func (x Float1) Gt(y Float1) Bool { return Bool{x.v.b.binary(OpGt, x.v, y.v)} }
func (x Float1) Ge(y Float1) Bool { return Bool{x.v.b.binary(OpGe, x.v, y.v)} }

// Splat2 broadcasts a scalar to a float2.
func (x Float1) Splat2() Float2 { return Float2{x.v.b.unary(OpSplat2, x.v)} }

// Splat3 broadcasts a scalar to a float3.
func (x Float1) Splat3() Float3 { return Float3{x.v.b.unary(OpSplat3, x.v)} }

// Splat4 broadcasts a scalar to a float4.
func (x Float1) Splat4() Float4 { return Float4{x.v.b.unary(OpSplat4, x.v)} }

// ToInt truncates toward zero.
func (x Float1) ToInt() Int1 { return Int1{x.v.b.unary(OpCastInt, x.v)} }

// Float2 methods.

func (x Float2) Add(y Float2) Float2 { return Float2{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Float2) Sub(y Float2) Float2 { return Float2{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Float2) Mul(y Float2) Float2 { return Float2{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Float2) Div(y Float2) Float2 { return Float2{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Float2) Neg() Float2         { return Float2{x.v.b.unary(OpNeg, x.v)} }
func (x Float2) Min(y Float2) Float2 { return Float2{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Float2) Max(y Float2) Float2 { return Float2{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Float2) Abs() Float2         { return Float2{x.v.b.unary(OpAbs, x.v)} }
func (x Float2) Floor() Float2       { return Float2{x.v.b.unary(OpFloor, x.v)} }
func (x Float2) Fract() Float2       { return Float2{x.v.b.unary(OpFract, x.v)} }

// Scale multiplies every component by s.
func (x Float2) Scale(s Float1) Float2 { return x.Mul(s.Splat2()) }

func (x Float2) Dot(y Float2) Float1 { return Float1{x.v.b.binary(OpDot, x.v, y.v)} }
func (x Float2) Length() Float1      { return Float1{x.v.b.unary(OpLength, x.v)} }
func (x Float2) Normalize() Float2   { return Float2{x.v.b.unary(OpNormalize, x.v)} }
func (x Float2) Lerp(y Float2, t Float2) Float2 {
	return Float2{x.v.b.ternary(OpLerp, x.v, y.v, t.v)}
}
func (x Float2) Clamp(lo, hi Float2) Float2 {
	return Float2{x.v.b.ternary(OpClamp, x.v, lo.v, hi.v)}
}

func (x Float2) X() Float1 { return Float1{x.v.b.unary(OpExtractX, x.v)} }
func (x Float2) Y() Float1 { return Float1{x.v.b.unary(OpExtractY, x.v)} }

func (x Float2) ToInt() Int2 { return Int2{x.v.b.unary(OpCastInt, x.v)} }

// Float3 methods.

func (x Float3) Add(y Float3) Float3 { return Float3{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Float3) Sub(y Float3) Float3 { return Float3{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Float3) Mul(y Float3) Float3 { return Float3{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Float3) Div(y Float3) Float3 { return Float3{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Float3) Neg() Float3         { return Float3{x.v.b.unary(OpNeg, x.v)} }
func (x Float3) Min(y Float3) Float3 { return Float3{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Float3) Max(y Float3) Float3 { return Float3{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Float3) Abs() Float3         { return Float3{x.v.b.unary(OpAbs, x.v)} }
func (x Float3) Floor() Float3       { return Float3{x.v.b.unary(OpFloor, x.v)} }
func (x Float3) Fract() Float3       { return Float3{x.v.b.unary(OpFract, x.v)} }

func (x Float3) Scale(s Float1) Float3 { return x.Mul(s.Splat3()) }

func (x Float3) Dot(y Float3) Float1   { return Float1{x.v.b.binary(OpDot, x.v, y.v)} }
func (x Float3) Cross(y Float3) Float3 { return Float3{x.v.b.binary(OpCross, x.v, y.v)} }
func (x Float3) Length() Float1        { return Float1{x.v.b.unary(OpLength, x.v)} }
func (x Float3) Normalize() Float3     { return Float3{x.v.b.unary(OpNormalize, x.v)} }
func (x Float3) Lerp(y Float3, t Float3) Float3 {
	return Float3{x.v.b.ternary(OpLerp, x.v, y.v, t.v)}
}
func (x Float3) Clamp(lo, hi Float3) Float3 {
	return Float3{x.v.b.ternary(OpClamp, x.v, lo.v, hi.v)}
}

func (x Float3) X() Float1 { return Float1{x.v.b.unary(OpExtractX, x.v)} }
func (x Float3) Y() Float1 { return Float1{x.v.b.unary(OpExtractY, x.v)} }
func (x Float3) Z() Float1 { return Float1{x.v.b.unary(OpExtractZ, x.v)} }

func (x Float3) ToInt() Int3 { return Int3{x.v.b.unary(OpCastInt, x.v)} }

// Float4 methods.

func (x Float4) Add(y Float4) Float4 { return Float4{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Float4) Sub(y Float4) Float4 { return Float4{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Float4) Mul(y Float4) Float4 { return Float4{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Float4) Div(y Float4) Float4 { return Float4{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Float4) Neg() Float4         { return Float4{x.v.b.unary(OpNeg, x.v)} }
func (x Float4) Min(y Float4) Float4 { return Float4{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Float4) Max(y Float4) Float4 { return Float4{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Float4) Abs() Float4         { return Float4{x.v.b.unary(OpAbs, x.v)} }
func (x Float4) Floor() Float4       { return Float4{x.v.b.unary(OpFloor, x.v)} }
func (x Float4) Fract() Float4       { return Float4{x.v.b.unary(OpFract, x.v)} }

func (x Float4) Scale(s Float1) Float4 { return x.Mul(s.Splat4()) }

func (x Float4) Dot(y Float4) Float1 { return Float1{x.v.b.binary(OpDot, x.v, y.v)} }
func (x Float4) Length() Float1      { return Float1{x.v.b.unary(OpLength, x.v)} }
func (x Float4) Normalize() Float4   { return Float4{x.v.b.unary(OpNormalize, x.v)} }
func (x Float4) Lerp(y Float4, t Float4) Float4 {
	return Float4{x.v.b.ternary(OpLerp, x.v, y.v, t.v)}
}
func (x Float4) Clamp(lo, hi Float4) Float4 {
	return Float4{x.v.b.ternary(OpClamp, x.v, lo.v, hi.v)}
}

func (x Float4) X() Float1 { return Float1{x.v.b.unary(OpExtractX, x.v)} }
func (x Float4) Y() Float1 { return Float1{x.v.b.unary(OpExtractY, x.v)} }
func (x Float4) Z() Float1 { return Float1{x.v.b.unary(OpExtractZ, x.v)} }
func (x Float4) W() Float1 { return Float1{x.v.b.unary(OpExtractW, x.v)} }

func (x Float4) ToInt() Int4 { return Int4{x.v.b.unary(OpCastInt, x.v)} }

// Int1 methods.

func (x Int1) Add(y Int1) Int1 { return Int1{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Int1) Sub(y Int1) Int1 { return Int1{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Int1) Mul(y Int1) Int1 { return Int1{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Int1) Div(y Int1) Int1 { return Int1{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Int1) Mod(y Int1) Int1 { return Int1{x.v.b.binary(OpMod, x.v, y.v)} }
func (x Int1) Neg() Int1       { return Int1{x.v.b.unary(OpNeg, x.v)} }
func (x Int1) Min(y Int1) Int1 { return Int1{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Int1) Max(y Int1) Int1 { return Int1{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Int1) Abs() Int1       { return Int1{x.v.b.unary(OpAbs, x.v)} }
func (x Int1) Sign() Int1      { return Int1{x.v.b.unary(OpSign, x.v)} }

// Bitwise logic.
func (x Int1) And(y Int1) Int1 { return Int1{x.v.b.binary(OpAnd, x.v, y.v)} }
func (x Int1) Or(y Int1) Int1  { return Int1{x.v.b.binary(OpOr, x.v, y.v)} }
func (x Int1) Xor(y Int1) Int1 { return Int1{x.v.b.binary(OpXor, x.v, y.v)} }
func (x Int1) Not() Int1       { return Int1{x.v.b.unary(OpNot, x.v)} }

func (x Int1) Eq(y Int1) Bool { return Bool{x.v.b.binary(OpEq, x.v, y.v)} }
func (x Int1) Ne(y Int1) Bool { return Bool{x.v.b.binary(OpNe, x.v, y.v)} }
func (x Int1) Lt(y Int1) Bool { return Bool{x.v.b.binary(OpLt, x.v, y.v)} }
func (x Int1) Le(y Int1) Bool { return Bool{x.v.b.binary(OpLe, x.v, y.v)} }
func (x Int1) Gt(y Int1) Bool { return Bool{x.v.b.binary(OpGt, x.v, y.v)} }
func (x Int1) Ge(y Int1) Bool { return Bool{x.v.b.binary(OpGe, x.v, y.v)} }

func (x Int1) Splat2() Int2 { return Int2{x.v.b.unary(OpSplat2, x.v)} }
func (x Int1) Splat3() Int3 { return Int3{x.v.b.unary(OpSplat3, x.v)} }
func (x Int1) Splat4() Int4 { return Int4{x.v.b.unary(OpSplat4, x.v)} }

// ToFloat converts to float, rounding per IEEE-754.
func (x Int1) ToFloat() Float1 { return Float1{x.v.b.unary(OpCastFloat, x.v)} }

// Int2 methods.

func (x Int2) Add(y Int2) Int2 { return Int2{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Int2) Sub(y Int2) Int2 { return Int2{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Int2) Mul(y Int2) Int2 { return Int2{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Int2) Div(y Int2) Int2 { return Int2{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Int2) Mod(y Int2) Int2 { return Int2{x.v.b.binary(OpMod, x.v, y.v)} }
func (x Int2) Neg() Int2       { return Int2{x.v.b.unary(OpNeg, x.v)} }
func (x Int2) Min(y Int2) Int2 { return Int2{x.v.b.binary(OpMin, x.v, y.v)} }
func (x Int2) Max(y Int2) Int2 { return Int2{x.v.b.binary(OpMax, x.v, y.v)} }
func (x Int2) Abs() Int2       { return Int2{x.v.b.unary(OpAbs, x.v)} }

func (x Int2) X() Int1 { return Int1{x.v.b.unary(OpExtractX, x.v)} }
func (x Int2) Y() Int1 { return Int1{x.v.b.unary(OpExtractY, x.v)} }

func (x Int2) ToFloat() Float2 { return Float2{x.v.b.unary(OpCastFloat, x.v)} }

// Int3 methods.

func (x Int3) Add(y Int3) Int3 { return Int3{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Int3) Sub(y Int3) Int3 { return Int3{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Int3) Mul(y Int3) Int3 { return Int3{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Int3) Div(y Int3) Int3 { return Int3{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Int3) Neg() Int3       { return Int3{x.v.b.unary(OpNeg, x.v)} }

func (x Int3) X() Int1 { return Int1{x.v.b.unary(OpExtractX, x.v)} }
func (x Int3) Y() Int1 { return Int1{x.v.b.unary(OpExtractY, x.v)} }
func (x Int3) Z() Int1 { return Int1{x.v.b.unary(OpExtractZ, x.v)} }

func (x Int3) ToFloat() Float3 { return Float3{x.v.b.unary(OpCastFloat, x.v)} }

// Int4 methods.

func (x Int4) Add(y Int4) Int4 { return Int4{x.v.b.binary(OpAdd, x.v, y.v)} }
func (x Int4) Sub(y Int4) Int4 { return Int4{x.v.b.binary(OpSub, x.v, y.v)} }
func (x Int4) Mul(y Int4) Int4 { return Int4{x.v.b.binary(OpMul, x.v, y.v)} }
func (x Int4) Div(y Int4) Int4 { return Int4{x.v.b.binary(OpDiv, x.v, y.v)} }
func (x Int4) Neg() Int4       { return Int4{x.v.b.unary(OpNeg, x.v)} }

func (x Int4) X() Int1 { return Int1{x.v.b.unary(OpExtractX, x.v)} }
func (x Int4) Y() Int1 { return Int1{x.v.b.unary(OpExtractY, x.v)} }
func (x Int4) Z() Int1 { return Int1{x.v.b.unary(OpExtractZ, x.v)} }
func (x Int4) W() Int1 { return Int1{x.v.b.unary(OpExtractW, x.v)} }

func (x Int4) ToFloat() Float4 { return Float4{x.v.b.unary(OpCastFloat, x.v)} }

// Bool methods. And and Or evaluate both operands; there is no short
// circuit in a shader.

func (x Bool) And(y Bool) Bool { return Bool{x.v.b.binary(OpAnd, x.v, y.v)} }
func (x Bool) Or(y Bool) Bool  { return Bool{x.v.b.binary(OpOr, x.v, y.v)} }
func (x Bool) Xor(y Bool) Bool { return Bool{x.v.b.binary(OpXor, x.v, y.v)} }
func (x Bool) Not() Bool       { return Bool{x.v.b.unary(OpNot, x.v)} }

// Select returns ifTrue where the condition holds, else ifFalse. Both
// branches are always evaluated.
func (c Bool) Select(ifTrue, ifFalse Float1) Float1 {
	return Float1{c.v.b.ternary(OpSelect, c.v, ifTrue.v, ifFalse.v)}
}

func (c Bool) Select2(ifTrue, ifFalse Float2) Float2 {
	return Float2{c.v.b.ternary(OpSelect, c.v, ifTrue.v, ifFalse.v)}
}

func (c Bool) Select3(ifTrue, ifFalse Float3) Float3 {
	return Float3{c.v.b.ternary(OpSelect, c.v, ifTrue.v, ifFalse.v)}
}

func (c Bool) Select4(ifTrue, ifFalse Float4) Float4 {
	return Float4{c.v.b.ternary(OpSelect, c.v, ifTrue.v, ifFalse.v)}
}

func (c Bool) SelectInt(ifTrue, ifFalse Int1) Int1 {
	return Int1{c.v.b.ternary(OpSelect, c.v, ifTrue.v, ifFalse.v)}
}

// TextureVal methods.

// Sample reads the texture with bilinear filtering at normalized uv.
func (t TextureVal) Sample(uv Float2) Float4 {
	return Float4{t.v.b.binary(OpSampleLinear, t.v, uv.v)}
}

// SampleNearest reads the texel containing normalized uv.
func (t TextureVal) SampleNearest(uv Float2) Float4 {
	return Float4{t.v.b.binary(OpSampleNearest, t.v, uv.v)}
}

// Size returns the texture dimensions in texels.
func (t TextureVal) Size() Int2 {
	return Int2{t.v.b.unary(OpTextureSize, t.v)}
}
