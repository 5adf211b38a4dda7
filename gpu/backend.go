// Package gpu implements a GPU rendering backend. Programs are
// translated to WGSL, validated through naga, and drawn as instanced
// quads whose per-quad data lives in a storage buffer.
package gpu

import (
	"image"
	"log/slog"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/naga"

	"github.com/gogpu/picodraw"
	"github.com/gogpu/picodraw/wgsl"
)

// pipeline is a shader prepared for drawing: the generated WGSL, its
// SPIR-V translation and the quad record layout.
type pipeline struct {
	source *wgsl.Source
	spirv  []byte
	inputs []picodraw.InputSlot
	hash   uint64
}

// passItem is one step of a submitted pass, either a clear or a batch of
// instanced quads.
type passItem struct {
	// Clear, when non-nil, fills the target with the color before the
	// next batches draw.
	Clear *[4]float32

	Batch *quadBatch
}

// quadBatch is a run of consecutive quads drawn with one pipeline and
// one set of texture bindings, submitted as a single instanced draw.
type quadBatch struct {
	ShaderID  uint64
	QuadWords int

	// Data is QuadCount records of QuadWords u32 each, packed per the
	// pipeline's layout.
	Data      []uint32
	QuadCount int

	// Textures holds the bound resources in layout binding order.
	Textures []*textureRes
}

// passSubmission is one render pass ready for the GPU.
type passSubmission struct {
	// Target is nil for screen passes.
	Target *textureRes
	Size   picodraw.Size
	Items  []passItem
}

// submitter executes built passes. The device submitter encodes real
// command buffers; tests substitute a recorder to assert on what Draw
// produced without a live GPU.
type submitter interface {
	submit(passes []passSubmission) error
}

// Backend is the GPU implementation of picodraw.Context. It either
// shares a device through a gpucontext.DeviceProvider or owns one it
// created itself. A Backend is not safe for concurrent use.
type Backend struct {
	provider gpucontext.DeviceProvider
	owned    *ownedDevice
	sub      submitter

	nextID    uint64
	pipelines map[uint64]*pipeline
	textures  map[picodraw.Texture]*textureRes
	targets   map[picodraw.RenderTexture]*textureRes

	closed bool

	log *slog.Logger
}

var _ picodraw.Context = (*Backend)(nil)

func newBackend() *Backend {
	return &Backend{
		pipelines: make(map[uint64]*pipeline),
		textures:  make(map[picodraw.Texture]*textureRes),
		targets:   make(map[picodraw.RenderTexture]*textureRes),
		log:       picodraw.Logger(),
	}
}

// New creates a backend on a device the host application owns. The
// provider typically comes from the windowing layer that also owns the
// surface.
func New(provider gpucontext.DeviceProvider) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	b := newBackend()
	b.provider = provider
	b.sub = &deviceSubmitter{backend: b}
	return b, nil
}

// NewOwned creates a backend with its own instance, adapter and device.
// Use it for headless rendering; windowed applications should share the
// host's device through New.
func NewOwned() (*Backend, error) {
	dev, err := openDevice()
	if err != nil {
		return nil, err
	}
	b := newBackend()
	b.owned = dev
	b.sub = &deviceSubmitter{backend: b}
	return b, nil
}

// Close releases all resources. Owned devices are dropped; provided
// devices stay with their provider.
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if ds, ok := b.sub.(*deviceSubmitter); ok {
		ds.release()
	}
	for _, res := range b.textures {
		res.releaseDevice()
	}
	for _, res := range b.targets {
		res.releaseDevice()
	}
	if b.owned != nil {
		b.owned.close()
		b.owned = nil
	}
	b.pipelines = nil
	b.textures = nil
	b.targets = nil
}

// CreateShader validates a graph, generates WGSL and compiles it through
// naga. All translation failures surface here; Draw never compiles.
func (b *Backend) CreateShader(g *picodraw.Graph) (picodraw.Shader, error) {
	if b.closed {
		return picodraw.Shader{}, ErrNotInitialized
	}
	prog, err := picodraw.Compile(g)
	if err != nil {
		return picodraw.Shader{}, err
	}

	src, err := wgsl.Generate(prog)
	if err != nil {
		return picodraw.Shader{}, &picodraw.CompileError{
			Backend: "gpu", Detail: "wgsl generation failed", Err: err,
		}
	}

	spirv, err := naga.Compile(src.WGSL)
	if err != nil {
		return picodraw.Shader{}, &picodraw.CompileError{
			Backend: "gpu", Detail: "shader module rejected", Err: err,
		}
	}

	b.nextID++
	id := b.nextID
	b.pipelines[id] = &pipeline{
		source: src,
		spirv:  spirv,
		inputs: prog.Inputs(),
		hash:   prog.Hash(),
	}
	b.log.Debug("pipeline created", "id", id,
		"quadWords", src.Layout.QuadWords, "spirvBytes", len(spirv))
	return picodraw.NewShader(id, prog.Inputs()), nil
}

// DeleteShader releases a pipeline.
func (b *Backend) DeleteShader(s picodraw.Shader) error {
	if _, ok := b.pipelines[s.ID()]; !ok {
		return &picodraw.ResourceError{Kind: "shader", Handle: s.ID()}
	}
	delete(b.pipelines, s.ID())
	if ds, ok := b.sub.(*deviceSubmitter); ok {
		ds.dropPipeline(s.ID())
	}
	return nil
}

// CreateTexture stages an image for upload as an immutable texture.
func (b *Backend) CreateTexture(img image.Image) (picodraw.Texture, error) {
	if b.closed {
		return 0, ErrNotInitialized
	}
	b.nextID++
	t := picodraw.Texture(b.nextID)
	b.textures[t] = stageImage(img)
	return t, nil
}

// DeleteTexture releases a texture.
func (b *Backend) DeleteTexture(t picodraw.Texture) error {
	res, ok := b.textures[t]
	if !ok {
		return &picodraw.ResourceError{Kind: "texture", Handle: uint64(t)}
	}
	res.releaseDevice()
	delete(b.textures, t)
	return nil
}

// CreateRenderTexture allocates an offscreen target.
func (b *Backend) CreateRenderTexture(size picodraw.Size) (picodraw.RenderTexture, error) {
	if b.closed {
		return 0, ErrNotInitialized
	}
	if size.IsEmpty() {
		return 0, &picodraw.ResourceError{Kind: "render texture", Handle: 0}
	}
	b.nextID++
	t := picodraw.RenderTexture(b.nextID)
	b.targets[t] = newRenderTarget(size)
	return t, nil
}

// DeleteRenderTexture releases a render target.
func (b *Backend) DeleteRenderTexture(t picodraw.RenderTexture) error {
	res, ok := b.targets[t]
	if !ok {
		return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(t)}
	}
	res.releaseDevice()
	delete(b.targets, t)
	return nil
}

// Draw lowers a command buffer into render passes and submits them.
// Consecutive quads that share a pipeline and texture bindings collapse
// into one instanced draw.
func (b *Backend) Draw(buf *picodraw.CommandBuffer) error {
	if b.closed {
		return ErrNotInitialized
	}
	if err := buf.Finish(); err != nil {
		return err
	}

	var (
		passes []passSubmission
		cur    *passSubmission
		curRT  picodraw.RenderTexture

		pipe     *pipeline
		pipeID   uint64
		record   []uint32
		textures []*textureRes
	)

	// flushQuad appends the packed record to the open batch, starting a
	// new batch when the pipeline or bindings changed.
	flushQuad := func() {
		var batch *quadBatch
		if n := len(cur.Items); n > 0 && cur.Items[n-1].Batch != nil {
			last := cur.Items[n-1].Batch
			if last.ShaderID == pipeID && sameTextures(last.Textures, textures) {
				batch = last
			}
		}
		if batch == nil {
			batch = &quadBatch{
				ShaderID:  pipeID,
				QuadWords: pipe.source.Layout.QuadWords,
				Textures:  textures,
			}
			cur.Items = append(cur.Items, passItem{Batch: batch})
		}
		batch.Data = append(batch.Data, record...)
		batch.QuadCount++
	}

	for _, cmd := range buf.Commands() {
		switch cmd.Kind {
		case picodraw.CmdBeginScreen:
			passes = appendPass(passes, cur)
			cur = &passSubmission{Size: cmd.Screen}
			curRT = 0

		case picodraw.CmdBeginTarget:
			res, ok := b.targets[cmd.Target]
			if !ok {
				return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(cmd.Target)}
			}
			passes = appendPass(passes, cur)
			cur = &passSubmission{Target: res, Size: res.size()}
			curRT = cmd.Target

		case picodraw.CmdClear:
			c := cmd.Color
			cur.Items = append(cur.Items, passItem{Clear: &c})

		case picodraw.CmdBeginQuad:
			p, ok := b.pipelines[cmd.Shader.ID()]
			if !ok {
				return &picodraw.ResourceError{Kind: "shader", Handle: cmd.Shader.ID()}
			}
			pipe, pipeID = p, cmd.Shader.ID()
			record = record[:0]
			textures = nil
			record = append(record,
				math.Float32bits(float32(cmd.Bounds.MinX)),
				math.Float32bits(float32(cmd.Bounds.MinY)),
				math.Float32bits(float32(cmd.Bounds.MaxX)),
				math.Float32bits(float32(cmd.Bounds.MaxY)))

		case picodraw.CmdWriteFloat:
			record = append(record, math.Float32bits(cmd.Float))

		case picodraw.CmdWriteInt:
			record = append(record, uint32(cmd.Int))

		case picodraw.CmdWriteTexture:
			res, ok := b.textures[cmd.Texture]
			if !ok {
				return &picodraw.ResourceError{Kind: "texture", Handle: uint64(cmd.Texture)}
			}
			textures = append(textures, res)

		case picodraw.CmdWriteRenderTexture:
			if cmd.Target == curRT && curRT != 0 {
				return &picodraw.ResourceError{Kind: "render texture (pass target)", Handle: uint64(cmd.Target)}
			}
			res, ok := b.targets[cmd.Target]
			if !ok {
				return &picodraw.ResourceError{Kind: "render texture", Handle: uint64(cmd.Target)}
			}
			textures = append(textures, res)

		case picodraw.CmdEndQuad:
			flushQuad()
		}
	}
	passes = appendPass(passes, cur)

	if len(passes) == 0 {
		return nil
	}
	return b.sub.submit(passes)
}

func appendPass(passes []passSubmission, cur *passSubmission) []passSubmission {
	if cur == nil {
		return passes
	}
	return append(passes, *cur)
}

func sameTextures(a, b []*textureRes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
