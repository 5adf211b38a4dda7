package picodraw

import (
	"fmt"
	"math"
)

// Graph is a shader expression graph: a finite, acyclic arena of typed
// nodes with a single float4 output. Graphs are produced by Collect and
// are immutable afterwards; the same graph may be compiled by any number
// of backends.
type Graph struct {
	nodes  []Node
	output OpAddr
	hash   uint64
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at addr.
func (g *Graph) Node(addr OpAddr) Node { return g.nodes[addr] }

// Output returns the address of the graph's output node.
func (g *Graph) Output() OpAddr { return g.output }

// Hash returns a structural hash of the graph. Two graphs built from the
// same sequence of operations share a hash, which lets backends reuse
// compiled artifacts across frames without comparing node lists.
func (g *Graph) Hash() uint64 { return g.hash }

// Builder accumulates nodes while a shader function is traced. A Builder
// is only valid inside the Collect callback that created it; it is not
// safe for concurrent use.
type Builder struct {
	nodes []Node
	hash  uint64
	err   error
}

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x100000001b3
)

// push appends a node and folds it into the running structural hash.
func (b *Builder) push(n Node) OpAddr {
	h := b.hash
	for _, x := range [...]uint64{
		uint64(n.Op), uint64(n.NArgs),
		uint64(n.Args[0]), uint64(n.Args[1]), uint64(n.Args[2]), uint64(n.Args[3]),
		uint64(n.FloatBits), uint64(uint32(n.Int)),
	} {
		h ^= x
		h *= fnvPrime64
	}
	if n.Bool {
		h ^= 1
		h *= fnvPrime64
	}
	b.hash = h

	b.nodes = append(b.nodes, n)
	return OpAddr(len(b.nodes) - 1)
}

// fail records the first trace error. Later operations keep appending
// nodes so the trace can finish, but Collect reports the error instead
// of a graph.
func (b *Builder) fail(op Op, format string, args ...any) {
	if b.err == nil {
		b.err = &TraceError{Op: op, Reason: fmt.Sprintf(format, args...)}
	}
}

// checkOwner verifies that every operand handle belongs to this builder.
// Mixing handles from two traces would silently reference the wrong
// arena, so it is rejected as a trace error.
func (b *Builder) checkOwner(op Op, operands ...val) {
	for _, v := range operands {
		if v.b != b {
			b.fail(op, "operand traced by a different builder")
			return
		}
	}
}

// val is the untyped core of every handle: the owning builder plus the
// address of the node the handle denotes.
type val struct {
	b    *Builder
	addr OpAddr
}

func (b *Builder) newVal(n Node) val {
	return val{b: b, addr: b.push(n)}
}

func (b *Builder) nullary(op Op) val {
	return b.newVal(Node{Op: op})
}

func (b *Builder) unary(op Op, x val) val {
	b.checkOwner(op, x)
	return b.newVal(Node{Op: op, Args: [4]OpAddr{x.addr}, NArgs: 1})
}

func (b *Builder) binary(op Op, x, y val) val {
	b.checkOwner(op, x, y)
	return b.newVal(Node{Op: op, Args: [4]OpAddr{x.addr, y.addr}, NArgs: 2})
}

func (b *Builder) ternary(op Op, x, y, z val) val {
	b.checkOwner(op, x, y, z)
	return b.newVal(Node{Op: op, Args: [4]OpAddr{x.addr, y.addr, z.addr}, NArgs: 3})
}

func (b *Builder) quaternary(op Op, x, y, z, w val) val {
	b.checkOwner(op, x, y, z, w)
	return b.newVal(Node{Op: op, Args: [4]OpAddr{x.addr, y.addr, z.addr, w.addr}, NArgs: 4})
}

// Collect traces a shader function into a Graph. The function runs
// exactly once; every operation on the handles it receives appends one
// node. The returned float4 becomes the graph's output (the pixel
// color).
//
// No pixel math executes during tracing: handles carry no values, only
// structure. Conditional values must be expressed with Bool.Select; a
// Bool handle deliberately cannot be read as a Go bool, so the traced
// function cannot branch on shader data.
func Collect(trace func(g *Builder) Float4) (*Graph, error) {
	b := &Builder{hash: fnvOffset64}
	out := trace(b)
	if b.err != nil {
		return nil, b.err
	}
	if out.v.b != b {
		return nil, &TraceError{Op: opCount, Reason: "output traced by a different builder"}
	}
	if len(b.nodes) == 0 {
		return nil, &TraceError{Op: opCount, Reason: "empty trace"}
	}
	return &Graph{nodes: b.nodes, output: out.v.addr, hash: b.hash}, nil
}

// Position returns the fragment position in physical pixels. Backends
// evaluate it at the pixel center (x+0.5, y+0.5).
func (b *Builder) Position() Float2 { return Float2{b.nullary(OpPosition)} }

// Resolution returns the render target size in physical pixels.
func (b *Builder) Resolution() Float2 { return Float2{b.nullary(OpResolution)} }

// QuadStart returns the top-left corner of the current quad in physical
// pixels.
func (b *Builder) QuadStart() Float2 { return Float2{b.nullary(OpQuadStart)} }

// QuadEnd returns the bottom-right corner of the current quad in
// physical pixels.
func (b *Builder) QuadEnd() Float2 { return Float2{b.nullary(OpQuadEnd)} }

// ReadFloat registers a per-quad float input slot and returns its value.
// Slots are ordered by first trace occurrence; the quad recording must
// write them in the same order.
func (b *Builder) ReadFloat() Float1 { return Float1{b.nullary(OpInputFloat)} }

// ReadInt registers a per-quad int input slot and returns its value.
func (b *Builder) ReadInt() Int1 { return Int1{b.nullary(OpInputInt)} }

// ReadFloat2 reads two consecutive float slots as a float2.
func (b *Builder) ReadFloat2() Float2 { return b.Vec2(b.ReadFloat(), b.ReadFloat()) }

// ReadFloat3 reads three consecutive float slots as a float3.
func (b *Builder) ReadFloat3() Float3 {
	return b.Vec3(b.ReadFloat(), b.ReadFloat(), b.ReadFloat())
}

// ReadFloat4 reads four consecutive float slots as a float4.
func (b *Builder) ReadFloat4() Float4 {
	return b.Vec4(b.ReadFloat(), b.ReadFloat(), b.ReadFloat(), b.ReadFloat())
}

// ReadTexture registers a per-quad static texture input slot.
func (b *Builder) ReadTexture() TextureVal { return TextureVal{b.nullary(OpInputTexture)} }

// ReadRenderTexture registers a per-quad render texture input slot.
func (b *Builder) ReadRenderTexture() TextureVal {
	return TextureVal{b.nullary(OpInputRenderTexture)}
}

// constFloat appends a float literal node.
func (b *Builder) constFloat(x float32) val {
	bits := math.Float32bits(x)
	if x != x { // normalize NaN payloads for stable hashing
		bits = 0x7fc00000
	}
	return b.newVal(Node{Op: OpConstFloat, FloatBits: bits})
}

// Const returns a float literal.
func (b *Builder) Const(x float32) Float1 { return Float1{b.constFloat(x)} }

// Const2 returns a float2 literal.
func (b *Builder) Const2(x, y float32) Float2 {
	return b.Vec2(b.Const(x), b.Const(y))
}

// Const3 returns a float3 literal.
func (b *Builder) Const3(x, y, z float32) Float3 {
	return b.Vec3(b.Const(x), b.Const(y), b.Const(z))
}

// Const4 returns a float4 literal.
func (b *Builder) Const4(x, y, z, w float32) Float4 {
	return b.Vec4(b.Const(x), b.Const(y), b.Const(z), b.Const(w))
}

// ConstInt returns an int literal.
func (b *Builder) ConstInt(x int32) Int1 {
	return Int1{b.newVal(Node{Op: OpConstInt, Int: x})}
}

// ConstBool returns a bool literal.
func (b *Builder) ConstBool(x bool) Bool {
	return Bool{b.newVal(Node{Op: OpConstBool, Bool: x})}
}

// Vec2 constructs a float2 from two scalars.
func (b *Builder) Vec2(x, y Float1) Float2 { return Float2{b.binary(OpVec2, x.v, y.v)} }

// Vec3 constructs a float3 from three scalars.
func (b *Builder) Vec3(x, y, z Float1) Float3 { return Float3{b.ternary(OpVec3, x.v, y.v, z.v)} }

// Vec4 constructs a float4 from four scalars.
func (b *Builder) Vec4(x, y, z, w Float1) Float4 {
	return Float4{b.quaternary(OpVec4, x.v, y.v, z.v, w.v)}
}

// IVec2 constructs an int2 from two scalars.
func (b *Builder) IVec2(x, y Int1) Int2 { return Int2{b.binary(OpVec2, x.v, y.v)} }

// IVec3 constructs an int3 from three scalars.
func (b *Builder) IVec3(x, y, z Int1) Int3 { return Int3{b.ternary(OpVec3, x.v, y.v, z.v)} }

// IVec4 constructs an int4 from four scalars.
func (b *Builder) IVec4(x, y, z, w Int1) Int4 {
	return Int4{b.quaternary(OpVec4, x.v, y.v, z.v, w.v)}
}
