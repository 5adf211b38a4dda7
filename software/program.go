package software

import "github.com/gogpu/picodraw"

// shader is a compiled program prepared for interpretation. Nodes and
// types are copied into flat slices for direct indexing in the pixel
// loop, and each input node is resolved to its slot index up front.
type shader struct {
	nodes  []picodraw.Node
	types  []picodraw.Type
	slotOf []int // node addr -> slot index, -1 for non-input nodes
	output picodraw.OpAddr
}

func newShader(prog *picodraw.Program) *shader {
	n := prog.Len()
	sh := &shader{
		nodes:  make([]picodraw.Node, n),
		types:  make([]picodraw.Type, n),
		slotOf: make([]int, n),
		output: prog.Output(),
	}
	for i := 0; i < n; i++ {
		addr := picodraw.OpAddr(i)
		sh.nodes[i] = prog.Node(addr)
		sh.types[i] = prog.TypeOf(addr)
		sh.slotOf[i] = -1
	}
	for slot, in := range prog.Inputs() {
		sh.slotOf[in.Addr] = slot
	}
	return sh
}

// slotValue is one per-quad input resolved against backend resources.
// Exactly one field is meaningful, decided by the shader's slot layout.
type slotValue struct {
	f   float32
	i   int32
	tex *picodraw.Pixmap
}
