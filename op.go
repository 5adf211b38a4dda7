package picodraw

import "math"

// Op identifies the operation performed by a graph node.
type Op uint8

const (
	// Builtin sources. These take no operands; their value is supplied by
	// the backend for every fragment (position) or every quad (bounds) or
	// every frame (resolution).
	OpPosition Op = iota
	OpResolution
	OpQuadStart
	OpQuadEnd

	// Per-quad input reads. Each occurrence registers one InputSlot; two
	// reads are two slots even when structurally identical, so input nodes
	// are never deduplicated.
	OpInputFloat
	OpInputInt
	OpInputTexture
	OpInputRenderTexture

	// Literals.
	OpConstFloat
	OpConstInt
	OpConstBool

	// Arithmetic. Operand types must match; element-wise on vectors.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	// Vector math.
	OpDot
	OpCross
	OpLength
	OpNormalize

	// Transcendentals (float only).
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpAtan2
	OpSqrt
	OpPow
	OpExp
	OpLn

	// Common numeric functions.
	OpMin
	OpMax
	OpClamp
	OpAbs
	OpSign
	OpFloor
	OpFract

	// Interpolation and selection.
	OpLerp
	OpStep
	OpSmoothstep
	OpSelect

	// Comparisons (scalar float/int operands, bool result).
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logic. Bools use logical semantics, ints bitwise.
	OpAnd
	OpOr
	OpXor
	OpNot

	// Construction, widening and component access.
	OpVec2
	OpVec3
	OpVec4
	OpSplat2
	OpSplat3
	OpSplat4
	OpExtractX
	OpExtractY
	OpExtractZ
	OpExtractW

	// Casts between int and float of the same width.
	OpCastFloat
	OpCastInt

	// Texture access. UV coordinates are normalized [0,1].
	OpSampleLinear
	OpSampleNearest
	OpTextureSize

	opCount
)

// opNames maps Op values to their string representation.
var opNames = [...]string{
	OpPosition:           "Position",
	OpResolution:         "Resolution",
	OpQuadStart:          "QuadStart",
	OpQuadEnd:            "QuadEnd",
	OpInputFloat:         "InputFloat",
	OpInputInt:           "InputInt",
	OpInputTexture:       "InputTexture",
	OpInputRenderTexture: "InputRenderTexture",
	OpConstFloat:         "ConstFloat",
	OpConstInt:           "ConstInt",
	OpConstBool:          "ConstBool",
	OpAdd:                "Add",
	OpSub:                "Sub",
	OpMul:                "Mul",
	OpDiv:                "Div",
	OpMod:                "Mod",
	OpNeg:                "Neg",
	OpDot:                "Dot",
	OpCross:              "Cross",
	OpLength:             "Length",
	OpNormalize:          "Normalize",
	OpSin:                "Sin",
	OpCos:                "Cos",
	OpTan:                "Tan",
	OpAsin:               "Asin",
	OpAcos:               "Acos",
	OpAtan:               "Atan",
	OpAtan2:              "Atan2",
	OpSqrt:               "Sqrt",
	OpPow:                "Pow",
	OpExp:                "Exp",
	OpLn:                 "Ln",
	OpMin:                "Min",
	OpMax:                "Max",
	OpClamp:              "Clamp",
	OpAbs:                "Abs",
	OpSign:               "Sign",
	OpFloor:              "Floor",
	OpFract:              "Fract",
	OpLerp:               "Lerp",
	OpStep:               "Step",
	OpSmoothstep:         "Smoothstep",
	OpSelect:             "Select",
	OpEq:                 "Eq",
	OpNe:                 "Ne",
	OpLt:                 "Lt",
	OpLe:                 "Le",
	OpGt:                 "Gt",
	OpGe:                 "Ge",
	OpAnd:                "And",
	OpOr:                 "Or",
	OpXor:                "Xor",
	OpNot:                "Not",
	OpVec2:               "Vec2",
	OpVec3:               "Vec3",
	OpVec4:               "Vec4",
	OpSplat2:             "Splat2",
	OpSplat3:             "Splat3",
	OpSplat4:             "Splat4",
	OpExtractX:           "ExtractX",
	OpExtractY:           "ExtractY",
	OpExtractZ:           "ExtractZ",
	OpExtractW:           "ExtractW",
	OpCastFloat:          "CastFloat",
	OpCastInt:            "CastInt",
	OpSampleLinear:       "SampleLinear",
	OpSampleNearest:      "SampleNearest",
	OpTextureSize:        "TextureSize",
}

// String returns the string representation of an Op.
func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Unknown"
}

// IsInput reports whether op reads a per-quad input slot.
func (op Op) IsInput() bool {
	switch op {
	case OpInputFloat, OpInputInt, OpInputTexture, OpInputRenderTexture:
		return true
	}
	return false
}

// Type is the result type of a graph node.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeFloat1
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeInt1
	TypeInt2
	TypeInt3
	TypeInt4
	TypeBool
	TypeTextureStatic
	TypeTextureRender
)

// typeNames maps Type values to their string representation.
var typeNames = [...]string{
	TypeInvalid:       "invalid",
	TypeFloat1:        "float1",
	TypeFloat2:        "float2",
	TypeFloat3:        "float3",
	TypeFloat4:        "float4",
	TypeInt1:          "int1",
	TypeInt2:          "int2",
	TypeInt3:          "int3",
	TypeInt4:          "int4",
	TypeBool:          "bool",
	TypeTextureStatic: "texture",
	TypeTextureRender: "render-texture",
}

// String returns the string representation of a Type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// IsFloat reports whether t is a float scalar or vector.
func (t Type) IsFloat() bool { return t >= TypeFloat1 && t <= TypeFloat4 }

// IsInt reports whether t is an int scalar or vector.
func (t Type) IsInt() bool { return t >= TypeInt1 && t <= TypeInt4 }

// IsNumeric reports whether t is a float or int type of any width.
func (t Type) IsNumeric() bool { return t.IsFloat() || t.IsInt() }

// IsTexture reports whether t references a texture of either kind.
func (t Type) IsTexture() bool { return t == TypeTextureStatic || t == TypeTextureRender }

// Lanes returns the number of components of a numeric type (1 for bool
// and textures).
func (t Type) Lanes() int {
	switch t {
	case TypeFloat2, TypeInt2:
		return 2
	case TypeFloat3, TypeInt3:
		return 3
	case TypeFloat4, TypeInt4:
		return 4
	}
	return 1
}

// floatN returns the float type with n lanes.
func floatN(n int) Type { return TypeFloat1 + Type(n-1) }

// intN returns the int type with n lanes.
func intN(n int) Type { return TypeInt1 + Type(n-1) }

// OpAddr is the index of a node within its owning graph. Operand
// addresses always point at earlier nodes, which keeps every graph
// acyclic by construction.
type OpAddr uint32

// Node is one operation in a shader graph. Operands are stored by
// address, never by pointer, so nodes are plain comparable values.
type Node struct {
	Op    Op
	Args  [4]OpAddr
	NArgs uint8

	// Literal payload, meaningful for OpConst* only. Float is kept as raw
	// bits so NaN payloads hash and compare deterministically.
	FloatBits uint32
	Int       int32
	Bool      bool
}

// Float returns the literal payload of an OpConstFloat node.
func (n Node) Float() float32 { return math.Float32frombits(n.FloatBits) }

// ArgAddrs returns the operand addresses of n.
func (n Node) ArgAddrs() []OpAddr { return n.Args[:n.NArgs] }

// typeCheck computes the result type of n given the types of its
// operands, or TypeInvalid if the operand types do not satisfy the
// operation's signature. This is the single authority both backends rely
// on; neither re-checks types after compilation.
func (n Node) typeCheck(arg func(OpAddr) Type) Type {
	a := func(i int) Type { return arg(n.Args[i]) }

	switch n.Op {
	case OpPosition, OpResolution, OpQuadStart, OpQuadEnd:
		return TypeFloat2

	case OpInputFloat:
		return TypeFloat1
	case OpInputInt:
		return TypeInt1
	case OpInputTexture:
		return TypeTextureStatic
	case OpInputRenderTexture:
		return TypeTextureRender

	case OpConstFloat:
		return TypeFloat1
	case OpConstInt:
		return TypeInt1
	case OpConstBool:
		return TypeBool

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpMin, OpMax:
		l, r := a(0), a(1)
		if l.IsNumeric() && l == r {
			return l
		}

	case OpNeg, OpAbs, OpSign:
		if x := a(0); x.IsNumeric() {
			return x
		}

	case OpSin, OpCos, OpTan, OpAsin, OpAcos, OpAtan, OpSqrt, OpExp, OpLn,
		OpFloor, OpFract:
		if x := a(0); x.IsFloat() {
			return x
		}

	case OpNormalize:
		if x := a(0); x.IsFloat() && x.Lanes() > 1 {
			return x
		}

	case OpAtan2, OpPow, OpStep:
		l, r := a(0), a(1)
		if l.IsFloat() && l == r {
			return l
		}

	case OpDot:
		l, r := a(0), a(1)
		if l.IsFloat() && l.Lanes() > 1 && l == r {
			return TypeFloat1
		}

	case OpCross:
		if a(0) == TypeFloat3 && a(1) == TypeFloat3 {
			return TypeFloat3
		}

	case OpLength:
		if a(0).IsFloat() {
			return TypeFloat1
		}

	case OpClamp, OpLerp, OpSmoothstep:
		x, y, z := a(0), a(1), a(2)
		if x.IsFloat() && x == y && x == z {
			return x
		}

	case OpSelect:
		if a(0) == TypeBool && a(1) == a(2) && a(1).IsNumeric() {
			return a(1)
		}

	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		l, r := a(0), a(1)
		if (l == TypeFloat1 || l == TypeInt1) && l == r {
			return TypeBool
		}

	case OpAnd, OpOr, OpXor:
		l, r := a(0), a(1)
		if (l == TypeBool || l.IsInt()) && l == r {
			return l
		}

	case OpNot:
		if x := a(0); x == TypeBool || x.IsInt() {
			return x
		}

	case OpVec2:
		x, y := a(0), a(1)
		if x == y {
			switch x {
			case TypeFloat1:
				return TypeFloat2
			case TypeInt1:
				return TypeInt2
			}
		}

	case OpVec3:
		x, y, z := a(0), a(1), a(2)
		if x == y && x == z {
			switch x {
			case TypeFloat1:
				return TypeFloat3
			case TypeInt1:
				return TypeInt3
			}
		}

	case OpVec4:
		x, y, z, w := a(0), a(1), a(2), a(3)
		if x == y && x == z && x == w {
			switch x {
			case TypeFloat1:
				return TypeFloat4
			case TypeInt1:
				return TypeInt4
			}
		}

	case OpSplat2, OpSplat3, OpSplat4:
		lanes := 2 + int(n.Op-OpSplat2)
		switch a(0) {
		case TypeFloat1:
			return floatN(lanes)
		case TypeInt1:
			return intN(lanes)
		}

	case OpExtractX, OpExtractY, OpExtractZ, OpExtractW:
		lane := int(n.Op - OpExtractX)
		x := a(0)
		if x.IsNumeric() && lane < x.Lanes() {
			if x.IsFloat() {
				return TypeFloat1
			}
			return TypeInt1
		}

	case OpCastFloat:
		if x := a(0); x.IsInt() {
			return floatN(x.Lanes())
		}

	case OpCastInt:
		if x := a(0); x.IsFloat() {
			return intN(x.Lanes())
		}

	case OpSampleLinear, OpSampleNearest:
		if a(0).IsTexture() && a(1) == TypeFloat2 {
			return TypeFloat4
		}

	case OpTextureSize:
		if a(0).IsTexture() {
			return TypeInt2
		}
	}

	return TypeInvalid
}
