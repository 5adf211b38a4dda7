package picodraw

import "image"

// Texture is a backend handle to an immutable image uploaded with
// CreateTexture. The zero value is never a valid handle.
type Texture uint64

// RenderTexture is a backend handle to an offscreen render target. A
// frame may draw into it, and later quads may sample it.
type RenderTexture uint64

// Shader is a backend handle to a compiled program together with the
// program's input layout. Shaders are small values; recording a quad
// validates writes against the layout without consulting the backend.
type Shader struct {
	id     uint64
	inputs []InputSlot
}

// NewShader builds a shader handle. Backends call it from CreateShader;
// applications never construct shaders directly.
func NewShader(id uint64, inputs []InputSlot) Shader {
	return Shader{id: id, inputs: inputs}
}

// ID returns the backend identifier of the shader.
func (s Shader) ID() uint64 { return s.id }

// Inputs returns the per-quad input layout of the shader.
func (s Shader) Inputs() []InputSlot { return s.inputs }

// Valid reports whether s refers to a created shader.
func (s Shader) Valid() bool { return s.id != 0 }

// Context is a rendering backend. The two implementations are
// software.Backend, which rasterizes on the CPU, and gpu.Backend, which
// translates programs to WGSL and draws instanced quads.
//
// A Context is not safe for concurrent use. Recording a CommandBuffer
// needs no Context at all; only CreateShader and Draw touch one.
type Context interface {
	// CreateShader compiles a graph for this backend. Translation
	// failures surface here, never from Draw.
	CreateShader(g *Graph) (Shader, error)

	// DeleteShader releases a shader. Drawing with a deleted shader is a
	// resource error.
	DeleteShader(s Shader) error

	// CreateTexture uploads an image as an immutable texture.
	CreateTexture(img image.Image) (Texture, error)

	// DeleteTexture releases a texture.
	DeleteTexture(t Texture) error

	// CreateRenderTexture allocates an offscreen target of the given
	// size in pixels.
	CreateRenderTexture(size Size) (RenderTexture, error)

	// DeleteRenderTexture releases a render target.
	DeleteRenderTexture(t RenderTexture) error

	// Draw replays a finished command buffer. The buffer must have been
	// recorded without error; Draw reports the latched recording error
	// otherwise.
	Draw(buf *CommandBuffer) error
}
