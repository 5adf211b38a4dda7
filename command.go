package picodraw

import "fmt"

// CommandKind identifies a recorded command.
type CommandKind uint8

const (
	CmdBeginScreen CommandKind = iota
	CmdBeginTarget
	CmdClear
	CmdBeginQuad
	CmdEndQuad
	CmdWriteFloat
	CmdWriteInt
	CmdWriteTexture
	CmdWriteRenderTexture
)

var commandKindNames = [...]string{
	CmdBeginScreen:        "BeginScreen",
	CmdBeginTarget:        "BeginTarget",
	CmdClear:              "Clear",
	CmdBeginQuad:          "BeginQuad",
	CmdEndQuad:            "EndQuad",
	CmdWriteFloat:         "WriteFloat",
	CmdWriteInt:           "WriteInt",
	CmdWriteTexture:       "WriteTexture",
	CmdWriteRenderTexture: "WriteRenderTexture",
}

// String returns the string representation of a CommandKind.
func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "Unknown"
}

// Command is one recorded operation. It is a tagged union; Kind decides
// which payload fields are meaningful.
type Command struct {
	Kind CommandKind

	Screen  Size          // CmdBeginScreen
	Target  RenderTexture // CmdBeginTarget, CmdWriteRenderTexture
	Color   [4]float32    // CmdClear
	Shader  Shader        // CmdBeginQuad
	Bounds  Bounds        // CmdBeginQuad
	Float   float32       // CmdWriteFloat
	Int     int32         // CmdWriteInt
	Texture Texture       // CmdWriteTexture
}

// CommandBuffer records passes and quads for a later Draw. Recording
// touches no backend; the same buffer can be replayed by any Context
// whose resources it references, and replayed more than once.
//
// The first recording error latches: every later call becomes a no-op
// and Draw reports the error. Reset clears both the commands and the
// error. A CommandBuffer is not safe for concurrent use.
type CommandBuffer struct {
	commands []Command
	err      error

	inPass bool
	open   *Quad
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Commands returns the recorded command list. Backends iterate it during
// Draw; callers must not modify it.
func (b *CommandBuffer) Commands() []Command { return b.commands }

// Err returns the latched recording error, if any.
func (b *CommandBuffer) Err() error { return b.err }

// Reset discards all recorded commands and clears any latched error.
// The backing storage is kept for reuse.
func (b *CommandBuffer) Reset() {
	b.commands = b.commands[:0]
	b.err = nil
	b.inPass = false
	b.open = nil
}

func (b *CommandBuffer) setErr(cmd CommandKind, format string, args ...any) {
	if b.err == nil {
		b.err = &RecordingError{Cmd: cmd, Reason: fmt.Sprintf(format, args...)}
	}
}

// Finish verifies the buffer ended in a well formed state. Backends call
// it at the start of Draw; applications may call it early to surface
// recording mistakes before the frame is submitted.
func (b *CommandBuffer) Finish() error {
	if b.err != nil {
		return b.err
	}
	if b.open != nil {
		b.setErr(CmdBeginQuad, "quad still open")
		return b.err
	}
	return nil
}

func (b *CommandBuffer) beginPass(cmd Command) *Frame {
	if b.err != nil {
		return &Frame{buf: b}
	}
	if b.open != nil {
		b.setErr(cmd.Kind, "previous quad still open")
		return &Frame{buf: b}
	}
	b.commands = append(b.commands, cmd)
	b.inPass = true
	return &Frame{buf: b}
}

// Screen begins a pass that draws to the screen of the given size.
func (b *CommandBuffer) Screen(size Size) *Frame {
	if size.IsEmpty() {
		b.setErr(CmdBeginScreen, "empty screen size %dx%d", size.Width, size.Height)
		return &Frame{buf: b}
	}
	return b.beginPass(Command{Kind: CmdBeginScreen, Screen: size})
}

// Target begins a pass that draws into a render texture. Quads recorded
// before the first Screen or Target call are a recording error.
func (b *CommandBuffer) Target(t RenderTexture) *Frame {
	if t == 0 {
		b.setErr(CmdBeginTarget, "zero render texture handle")
		return &Frame{buf: b}
	}
	return b.beginPass(Command{Kind: CmdBeginTarget, Target: t})
}

// Frame records into the pass most recently opened on its buffer.
type Frame struct {
	buf *CommandBuffer
}

// Clear fills the current target with a color before later quads draw.
func (f *Frame) Clear(r, g, bl, a float32) {
	b := f.buf
	if b.err != nil {
		return
	}
	if !b.inPass {
		b.setErr(CmdClear, "no pass open")
		return
	}
	if b.open != nil {
		b.setErr(CmdClear, "quad still open")
		return
	}
	b.commands = append(b.commands, Command{Kind: CmdClear, Color: [4]float32{r, g, bl, a}})
}

// Quad opens a quad drawn with the given shader over bounds. The quad's
// input slots must then be written in layout order and the quad closed
// with End before anything else is recorded.
func (f *Frame) Quad(s Shader, bounds Bounds) *Quad {
	b := f.buf
	q := &Quad{buf: b, start: -1}
	if b.err != nil {
		q.failed = true
		return q
	}
	if !b.inPass {
		b.setErr(CmdBeginQuad, "no pass open")
		q.failed = true
		return q
	}
	if b.open != nil {
		b.setErr(CmdBeginQuad, "previous quad still open")
		q.failed = true
		return q
	}
	if !s.Valid() {
		b.setErr(CmdBeginQuad, "invalid shader handle")
		q.failed = true
		return q
	}
	q.shader = s
	q.start = len(b.commands)
	b.commands = append(b.commands, Command{Kind: CmdBeginQuad, Shader: s, Bounds: bounds})
	b.open = q
	return q
}

// Quad records the input data of one open quad. Writes are validated
// against the shader's slot layout as they happen, so a mismatch is
// reported no later than End.
type Quad struct {
	buf    *CommandBuffer
	shader Shader
	start  int
	next   int
	failed bool
	closed bool
}

// fail poisons the quad. The buffer error latches immediately; End will
// roll the quad's commands back.
func (q *Quad) fail(cmd CommandKind, format string, args ...any) {
	q.failed = true
	q.buf.setErr(cmd, format, args...)
}

func (q *Quad) checkWrite(cmd CommandKind, kind SlotKind) bool {
	if q.failed || q.closed {
		if q.closed && !q.failed {
			q.fail(cmd, "write after End")
		}
		return false
	}
	inputs := q.shader.Inputs()
	if q.next >= len(inputs) {
		q.fail(cmd, "write %d of %d slots", q.next+1, len(inputs))
		return false
	}
	if got := inputs[q.next].Kind; got != kind {
		q.fail(cmd, "slot %d wants %s, got %s", q.next, got, kind)
		return false
	}
	q.next++
	return true
}

// Float writes the next float slot.
func (q *Quad) Float(v float32) *Quad {
	if q.checkWrite(CmdWriteFloat, SlotFloat) {
		q.buf.commands = append(q.buf.commands, Command{Kind: CmdWriteFloat, Float: v})
	}
	return q
}

// Float2 writes two consecutive float slots.
func (q *Quad) Float2(x, y float32) *Quad { return q.Float(x).Float(y) }

// Float3 writes three consecutive float slots.
func (q *Quad) Float3(x, y, z float32) *Quad { return q.Float(x).Float(y).Float(z) }

// Float4 writes four consecutive float slots.
func (q *Quad) Float4(x, y, z, w float32) *Quad { return q.Float(x).Float(y).Float(z).Float(w) }

// Int writes the next int slot.
func (q *Quad) Int(v int32) *Quad {
	if q.checkWrite(CmdWriteInt, SlotInt) {
		q.buf.commands = append(q.buf.commands, Command{Kind: CmdWriteInt, Int: v})
	}
	return q
}

// Texture writes the next static texture slot.
func (q *Quad) Texture(t Texture) *Quad {
	if t == 0 {
		q.fail(CmdWriteTexture, "zero texture handle")
		return q
	}
	if q.checkWrite(CmdWriteTexture, SlotTexture) {
		q.buf.commands = append(q.buf.commands, Command{Kind: CmdWriteTexture, Texture: t})
	}
	return q
}

// RenderTexture writes the next render texture slot. Sampling the pass's
// own target is rejected by backends at draw time.
func (q *Quad) RenderTexture(t RenderTexture) *Quad {
	if t == 0 {
		q.fail(CmdWriteRenderTexture, "zero render texture handle")
		return q
	}
	if q.checkWrite(CmdWriteRenderTexture, SlotRenderTexture) {
		q.buf.commands = append(q.buf.commands, Command{Kind: CmdWriteRenderTexture, Target: t})
	}
	return q
}

// End closes the quad. Every slot of the shader's layout must have been
// written exactly once; otherwise End reports a recording error and the
// quad's commands are rolled back so the buffer stays structurally
// sound.
func (q *Quad) End() error {
	b := q.buf
	if q.closed {
		return b.err
	}
	q.closed = true
	if b.open == q {
		b.open = nil
	}
	if !q.failed && q.next != len(q.shader.Inputs()) {
		q.fail(CmdEndQuad, "wrote %d of %d slots", q.next, len(q.shader.Inputs()))
	}
	if q.failed {
		if q.start >= 0 && q.start < len(b.commands) {
			b.commands = b.commands[:q.start]
		}
		return b.err
	}
	b.commands = append(b.commands, Command{Kind: CmdEndQuad})
	return nil
}
