package picodraw

// SlotKind classifies a per-quad input slot.
type SlotKind uint8

const (
	SlotFloat SlotKind = iota
	SlotInt
	SlotTexture
	SlotRenderTexture
)

var slotKindNames = [...]string{
	SlotFloat:         "float",
	SlotInt:           "int",
	SlotTexture:       "texture",
	SlotRenderTexture: "render-texture",
}

// String returns the string representation of a SlotKind.
func (k SlotKind) String() string {
	if int(k) < len(slotKindNames) {
		return slotKindNames[k]
	}
	return "invalid"
}

// IsTexture reports whether k is a texture slot of either kind.
func (k SlotKind) IsTexture() bool { return k == SlotTexture || k == SlotRenderTexture }

// InputSlot is one per-quad input of a compiled program. Slots appear in
// the order their reads occurred during tracing, and quad recordings
// must supply values in exactly that order.
type InputSlot struct {
	// Addr is the program node that reads this slot.
	Addr OpAddr
	Kind SlotKind
}

// Program is a validated, deduplicated shader ready for a backend. It
// is immutable and safe for concurrent use.
type Program struct {
	nodes  []Node
	types  []Type
	inputs []InputSlot
	output OpAddr
	hash   uint64
}

// Len returns the number of nodes after deduplication.
func (p *Program) Len() int { return len(p.nodes) }

// Node returns the node at addr.
func (p *Program) Node(addr OpAddr) Node { return p.nodes[addr] }

// TypeOf returns the result type of the node at addr.
func (p *Program) TypeOf(addr OpAddr) Type { return p.types[addr] }

// Inputs returns the per-quad input layout. The returned slice is owned
// by the program and must not be modified.
func (p *Program) Inputs() []InputSlot { return p.inputs }

// Output returns the address of the float4 output node.
func (p *Program) Output() OpAddr { return p.output }

// Hash returns the structural hash inherited from the source graph.
// Backends key compiled artifact caches on it.
func (p *Program) Hash() uint64 { return p.hash }

// dedupKey identifies a node up to structural equality. Nodes are plain
// comparable values, so the node itself serves as the key once its
// operand addresses have been rewritten into program space.
type dedupKey = Node

// Compile validates a graph and lowers it to a Program.
//
// Validation checks every node's signature against its operand types
// and requires a float4 output. Structurally identical subexpressions
// collapse to a single node, except input reads: each read is a
// distinct slot even when two reads look the same, so recordings stay
// unambiguous. Deduplication never changes the input layout or the
// program's meaning.
func Compile(g *Graph) (*Program, error) {
	p := &Program{
		nodes: make([]Node, 0, g.Len()),
		types: make([]Type, 0, g.Len()),
		hash:  g.hash,
	}

	// remap maps graph addresses to program addresses.
	remap := make([]OpAddr, g.Len())
	seen := make(map[dedupKey]OpAddr, g.Len())

	typeOf := func(addr OpAddr) Type { return p.types[addr] }

	for i, n := range g.nodes {
		for j := 0; j < int(n.NArgs); j++ {
			a := n.Args[j]
			if a >= OpAddr(i) {
				return nil, &ValidationError{Addr: OpAddr(i), Op: n.Op, Reason: "operand refers to a later node"}
			}
			n.Args[j] = remap[a]
		}

		if !n.Op.IsInput() {
			if addr, ok := seen[n]; ok {
				remap[i] = addr
				continue
			}
		}

		t := n.typeCheck(typeOf)
		if t == TypeInvalid {
			return nil, &ValidationError{
				Addr:   OpAddr(i),
				Op:     n.Op,
				Reason: "operands " + argTypes(n, typeOf) + " do not match the operation's signature",
			}
		}

		addr := OpAddr(len(p.nodes))
		p.nodes = append(p.nodes, n)
		p.types = append(p.types, t)
		if !n.Op.IsInput() {
			seen[n] = addr
		}
		remap[i] = addr

		switch n.Op {
		case OpInputFloat:
			p.inputs = append(p.inputs, InputSlot{Addr: addr, Kind: SlotFloat})
		case OpInputInt:
			p.inputs = append(p.inputs, InputSlot{Addr: addr, Kind: SlotInt})
		case OpInputTexture:
			p.inputs = append(p.inputs, InputSlot{Addr: addr, Kind: SlotTexture})
		case OpInputRenderTexture:
			p.inputs = append(p.inputs, InputSlot{Addr: addr, Kind: SlotRenderTexture})
		}
	}

	p.output = remap[g.output]
	if got := p.types[p.output]; got != TypeFloat4 {
		return nil, &ValidationError{
			Addr:   g.output,
			Op:     g.nodes[g.output].Op,
			Reason: "output must be float4, got " + got.String(),
		}
	}
	return p, nil
}

// argTypes formats the operand types of a node for error messages.
func argTypes(n Node, typeOf func(OpAddr) Type) string {
	if n.NArgs == 0 {
		return "(none)"
	}
	s := "("
	for i := 0; i < int(n.NArgs); i++ {
		if i > 0 {
			s += ", "
		}
		s += typeOf(n.Args[i]).String()
	}
	return s + ")"
}
