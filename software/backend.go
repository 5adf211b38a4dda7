// Package software implements a CPU rendering backend. Shaders are
// interpreted per pixel and targets are rasterized tile by tile on a
// worker pool, which keeps results bit-identical regardless of worker
// count.
package software

import (
	"image"
	"log/slog"

	"github.com/gogpu/picodraw"
	"github.com/gogpu/picodraw/internal/parallel"
)

// DefaultTileSize is the edge length of a rasterizer tile in pixels.
const DefaultTileSize = 64

// Option configures a Backend.
type Option func(*Backend)

// WithWorkers sets the worker count of the rasterizer pool. Zero or
// negative means GOMAXPROCS. Results do not depend on the worker count.
func WithWorkers(n int) Option {
	return func(b *Backend) { b.workers = n }
}

// WithTileSize overrides the rasterizer tile size in pixels. Intended
// for tests; the default suits real workloads.
func WithTileSize(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.tileSize = n
		}
	}
}

// Backend is the software implementation of picodraw.Context. It owns a
// worker pool, so callers must Close it when done. A Backend is not safe
// for concurrent use.
type Backend struct {
	pool     *parallel.WorkerPool
	workers  int
	tileSize int

	nextID   uint64
	shaders  map[uint64]*shader
	textures map[picodraw.Texture]*picodraw.Pixmap
	targets  map[picodraw.RenderTexture]*picodraw.Pixmap

	// screen is allocated lazily on the first screen pass and resized
	// when the pass size changes.
	screen *picodraw.Pixmap

	log *slog.Logger
}

var _ picodraw.Context = (*Backend)(nil)

// New creates a software backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		tileSize: DefaultTileSize,
		shaders:  make(map[uint64]*shader),
		textures: make(map[picodraw.Texture]*picodraw.Pixmap),
		targets:  make(map[picodraw.RenderTexture]*picodraw.Pixmap),
		log:      picodraw.Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.pool = parallel.New(b.workers)
	b.log.Debug("software backend created",
		"workers", b.pool.Workers(), "tileSize", b.tileSize)
	return b
}

// Close shuts down the worker pool. The backend must not be used after
// Close.
func (b *Backend) Close() {
	b.pool.Close()
}

// Screen returns the pixmap the most recent screen pass rendered into,
// or nil if no screen pass has been drawn yet.
func (b *Backend) Screen() *picodraw.Pixmap {
	return b.screen
}

// CreateShader validates and compiles a graph for interpretation.
func (b *Backend) CreateShader(g *picodraw.Graph) (picodraw.Shader, error) {
	prog, err := picodraw.Compile(g)
	if err != nil {
		return picodraw.Shader{}, err
	}
	sh := newShader(prog)

	b.nextID++
	id := b.nextID
	b.shaders[id] = sh
	b.log.Debug("shader created", "id", id,
		"nodes", prog.Len(), "inputs", len(prog.Inputs()))
	return picodraw.NewShader(id, prog.Inputs()), nil
}

// DeleteShader releases a shader.
func (b *Backend) DeleteShader(s picodraw.Shader) error {
	if _, ok := b.shaders[s.ID()]; !ok {
		return &picodraw.ResourceError{Kind: "shader", Handle: s.ID()}
	}
	delete(b.shaders, s.ID())
	return nil
}

// CreateTexture uploads an image as an immutable texture.
func (b *Backend) CreateTexture(img image.Image) (picodraw.Texture, error) {
	b.nextID++
	t := picodraw.Texture(b.nextID)
	b.textures[t] = picodraw.FromImage(img)
	return t, nil
}

// DeleteTexture releases a texture.
func (b *Backend) DeleteTexture(t picodraw.Texture) error {
	if _, ok := b.textures[t]; !ok {
		return &picodraw.ResourceError{Kind: "texture", Handle: uint64(t)}
	}
	delete(b.textures, t)
	return nil
}

// CreateRenderTexture allocates an offscreen target.
func (b *Backend) CreateRenderTexture(size picodraw.Size) (picodraw.RenderTexture, error) {
	if size.IsEmpty() {
		return 0, &picodraw.ResourceError{Kind: "render texture", Handle: 0}
	}
	b.nextID++
	t := picodraw.RenderTexture(b.nextID)
	b.targets[t] = picodraw.NewPixmap(size.Width, size.Height)
	return t, nil
}

// DeleteRenderTexture releases a render target.
func (b *Backend) DeleteRenderTexture(t picodraw.RenderTexture) error {
	if _, ok := b.targets[t]; !ok {
		return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(t)}
	}
	delete(b.targets, t)
	return nil
}

// RenderTexturePixmap returns the pixmap behind a render texture, or nil
// for an unknown handle. Tests use it to inspect offscreen results.
func (b *Backend) RenderTexturePixmap(t picodraw.RenderTexture) *picodraw.Pixmap {
	return b.targets[t]
}

// Draw replays a command buffer. Passes render strictly in order, so a
// later pass may sample the target an earlier pass produced.
func (b *Backend) Draw(buf *picodraw.CommandBuffer) error {
	if err := buf.Finish(); err != nil {
		return err
	}

	var cur *pass
	flush := func() {
		if cur != nil {
			b.rasterize(cur)
			cur = nil
		}
	}

	for _, cmd := range buf.Commands() {
		switch cmd.Kind {
		case picodraw.CmdBeginScreen:
			flush()
			if b.screen == nil || b.screen.Size() != cmd.Screen {
				b.screen = picodraw.NewPixmap(cmd.Screen.Width, cmd.Screen.Height)
			}
			cur = &pass{target: b.screen}

		case picodraw.CmdBeginTarget:
			flush()
			pm, ok := b.targets[cmd.Target]
			if !ok {
				return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(cmd.Target)}
			}
			cur = &pass{target: pm, targetHandle: cmd.Target}

		case picodraw.CmdClear:
			cur.ops = append(cur.ops, passOp{clear: true, color: picodraw.RGBA{
				R: cmd.Color[0], G: cmd.Color[1], B: cmd.Color[2], A: cmd.Color[3],
			}})

		case picodraw.CmdBeginQuad:
			sh, ok := b.shaders[cmd.Shader.ID()]
			if !ok {
				return &picodraw.ResourceError{Kind: "shader", Handle: cmd.Shader.ID()}
			}
			cur.ops = append(cur.ops, passOp{shader: sh, bounds: cmd.Bounds})

		case picodraw.CmdWriteFloat:
			op := &cur.ops[len(cur.ops)-1]
			op.slots = append(op.slots, slotValue{f: cmd.Float})

		case picodraw.CmdWriteInt:
			op := &cur.ops[len(cur.ops)-1]
			op.slots = append(op.slots, slotValue{i: cmd.Int})

		case picodraw.CmdWriteTexture:
			pm, ok := b.textures[cmd.Texture]
			if !ok {
				return &picodraw.ResourceError{Kind: "texture", Handle: uint64(cmd.Texture)}
			}
			op := &cur.ops[len(cur.ops)-1]
			op.slots = append(op.slots, slotValue{tex: pm})

		case picodraw.CmdWriteRenderTexture:
			if cmd.Target == cur.targetHandle {
				return &picodraw.ResourceError{Kind: "render texture (pass target)", Handle: uint64(cmd.Target)}
			}
			pm, ok := b.targets[cmd.Target]
			if !ok {
				return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(cmd.Target)}
			}
			op := &cur.ops[len(cur.ops)-1]
			op.slots = append(op.slots, slotValue{tex: pm})

		case picodraw.CmdEndQuad:
			// Quad already complete; recording validated the slots.
		}
	}
	flush()
	return nil
}
