package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/picodraw"
)

// deviceSubmitter encodes passes on the backend's device. Every shader
// gets a render pipeline built lazily from its cached SPIR-V; quad
// records ride in per batch storage buffers and draw as instanced
// triangle strips, four vertices per quad.
type deviceSubmitter struct {
	backend *Backend

	device *wgpu.Device
	queue  *wgpu.Queue

	pipelines   map[uint64]*devicePipeline
	sampLinear  *wgpu.Sampler
	sampNearest *wgpu.Sampler

	// screen is the offscreen target for screen passes, recreated when
	// the frame size changes. Presentation belongs to the host that
	// owns the surface.
	screen     *wgpu.Texture
	screenView *wgpu.TextureView
	screenSize picodraw.Size
}

// devicePipeline is the device half of a shader: module, bind group
// layouts and the render pipeline.
type devicePipeline struct {
	module     *wgpu.ShaderModule
	dataLayout *wgpu.BindGroupLayout
	texLayout  *wgpu.BindGroupLayout
	layout     *wgpu.PipelineLayout
	pipeline   *wgpu.RenderPipeline

	textures int
}

type releasable interface{ Release() }

// deviceError wraps a driver failure, folding hal's lost device signal
// into ErrDeviceLost so callers can match it with errors.Is.
func deviceError(op string, err error) error {
	if errors.Is(err, hal.ErrDeviceLost) {
		return fmt.Errorf("%w: %s: %v", ErrDeviceLost, op, err)
	}
	return fmt.Errorf("gpu: %s: %w", op, err)
}

func (s *deviceSubmitter) submit(passes []passSubmission) error {
	if err := s.ensureDevice(); err != nil {
		return err
	}

	// Per frame resources stay alive until the device drained the
	// submission, then release in reverse creation order.
	var frame []releasable
	defer func() {
		for i := len(frame) - 1; i >= 0; i-- {
			frame[i].Release()
		}
	}()

	cmd, err := s.encodeFrame(passes, &frame)
	if err != nil {
		return err
	}
	if _, err := s.queue.Submit(cmd); err != nil {
		return deviceError("submit frame", err)
	}
	if err := s.device.WaitIdle(); err != nil {
		return deviceError("wait for frame", err)
	}

	s.backend.log.Debug("frame submitted", "passes", len(passes))
	return nil
}

func (s *deviceSubmitter) encodeFrame(passes []passSubmission, frame *[]releasable) (*wgpu.CommandBuffer, error) {
	enc, err := s.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "picodraw-frame",
	})
	if err != nil {
		return nil, deviceError("create encoder", err)
	}
	for i := range passes {
		if err := s.encodePass(enc, &passes[i], frame); err != nil {
			enc.DiscardEncoding()
			return nil, err
		}
	}
	cmd, err := enc.Finish()
	if err != nil {
		return nil, deviceError("finish encoder", err)
	}
	return cmd, nil
}

// encodePass lowers one submission into render passes, one per segment,
// sharing a Globals uniform with the pass resolution.
func (s *deviceSubmitter) encodePass(enc *wgpu.CommandEncoder, p *passSubmission, frame *[]releasable) error {
	view, err := s.passTarget(p)
	if err != nil {
		return err
	}
	globals, err := s.createAndUploadBuffer("globals", globalsBytes(p.Size),
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	*frame = append(*frame, globals)

	for _, seg := range splitSegments(p.Items) {
		rp, err := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "picodraw-pass",
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     seg.load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: seg.clear,
			}},
		})
		if err != nil {
			return deviceError("begin render pass", err)
		}
		for _, batch := range seg.batches {
			if err := s.encodeBatch(rp, batch, globals, frame); err != nil {
				return err
			}
		}
		if err := rp.End(); err != nil {
			return deviceError("end render pass", err)
		}
	}
	return nil
}

// encodeBatch binds the batch's pipeline, quad records and textures and
// issues one instanced draw.
func (s *deviceSubmitter) encodeBatch(rp *wgpu.RenderPassEncoder, batch *quadBatch, globals *wgpu.Buffer, frame *[]releasable) error {
	dp, err := s.pipelineFor(batch.ShaderID)
	if err != nil {
		return err
	}

	quadBuf, err := s.createAndUploadBuffer("quad-data", wordBytes(batch.Data),
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	*frame = append(*frame, quadBuf)

	dataGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "quad-data",
		Layout: dp.dataLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: globals},
			{Binding: 1, Buffer: quadBuf},
		},
	})
	if err != nil {
		return deviceError("create data bind group", err)
	}
	*frame = append(*frame, dataGroup)

	rp.SetPipeline(dp.pipeline)
	rp.SetBindGroup(0, dataGroup, nil)

	if dp.textures > 0 {
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: s.sampLinear},
			{Binding: 1, Sampler: s.sampNearest},
		}
		for i, res := range batch.Textures {
			texView, err := s.ensureTexture(res)
			if err != nil {
				return err
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: uint32(i + 2), TextureView: texView,
			})
		}
		texGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "quad-textures",
			Layout:  dp.texLayout,
			Entries: entries,
		})
		if err != nil {
			return deviceError("create texture bind group", err)
		}
		*frame = append(*frame, texGroup)
		rp.SetBindGroup(1, texGroup, nil)
	}

	rp.Draw(4, uint32(batch.QuadCount), 0, 0)
	return nil
}

// ensureDevice resolves the device lazily on first submission so
// backends built on a provider stay inert until they draw.
func (s *deviceSubmitter) ensureDevice() error {
	if s.device != nil {
		return nil
	}
	b := s.backend
	switch {
	case b.owned != nil:
		s.device = b.owned.device
	case b.provider != nil:
		dev, ok := b.provider.Device().(*wgpu.Device)
		if !ok {
			return fmt.Errorf("gpu: provider device is %T, want *wgpu.Device", b.provider.Device())
		}
		s.device = dev
	default:
		return ErrNotInitialized
	}
	s.queue = s.device.Queue()
	s.pipelines = make(map[uint64]*devicePipeline)
	return s.createSamplers()
}

func (s *deviceSubmitter) createSamplers() error {
	var err error
	s.sampLinear, err = s.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "samp-linear",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return deviceError("create linear sampler", err)
	}
	s.sampNearest, err = s.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "samp-nearest",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return deviceError("create nearest sampler", err)
	}
	return nil
}

func (s *deviceSubmitter) passTarget(p *passSubmission) (*wgpu.TextureView, error) {
	if p.Target != nil {
		return s.ensureTexture(p.Target)
	}
	return s.screenTarget(p.Size)
}

func (s *deviceSubmitter) screenTarget(size picodraw.Size) (*wgpu.TextureView, error) {
	if s.screenView != nil && s.screenSize == size {
		return s.screenView, nil
	}
	if s.screenView != nil {
		s.screenView.Release()
		s.screen.Release()
		s.screenView, s.screen = nil, nil
	}
	tex, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "screen",
		Size: wgpu.Extent3D{
			Width:              uint32(size.Width),
			Height:             uint32(size.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, deviceError("create screen target", err)
	}
	view, err := s.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, deviceError("create screen view", err)
	}
	s.screen, s.screenView, s.screenSize = tex, view, size
	return view, nil
}

// ensureTexture creates the device texture for a staged resource on
// first use and uploads its pixels.
func (s *deviceSubmitter) ensureTexture(res *textureRes) (*wgpu.TextureView, error) {
	if res.view != nil {
		return res.view, nil
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	label := "texture"
	if res.renderTarget {
		usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
		label = "render-target"
	}
	tex, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(res.width),
			Height:             uint32(res.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        res.format,
		Usage:         usage,
	})
	if err != nil {
		return nil, deviceError("create "+label, err)
	}
	view, err := s.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, deviceError("create "+label+" view", err)
	}
	if res.pixels != nil {
		err := s.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: tex},
			res.pixels,
			&wgpu.ImageDataLayout{
				BytesPerRow:  uint32(res.width) * 4,
				RowsPerImage: uint32(res.height),
			},
			&wgpu.Extent3D{
				Width:              uint32(res.width),
				Height:             uint32(res.height),
				DepthOrArrayLayers: 1,
			},
		)
		if err != nil {
			view.Release()
			tex.Release()
			return nil, deviceError("upload "+label, err)
		}
	}
	res.tex, res.view = tex, view
	return view, nil
}

// pipelineFor returns the device pipeline for a shader, building it on
// first use from the SPIR-V the backend compiled.
func (s *deviceSubmitter) pipelineFor(id uint64) (*devicePipeline, error) {
	if dp, ok := s.pipelines[id]; ok {
		return dp, nil
	}
	pipe, ok := s.backend.pipelines[id]
	if !ok {
		return nil, &picodraw.ResourceError{Kind: "shader", Handle: id}
	}
	dp, err := s.buildPipeline(pipe)
	if err != nil {
		return nil, err
	}
	s.pipelines[id] = dp
	return dp, nil
}

func (s *deviceSubmitter) buildPipeline(pipe *pipeline) (dp *devicePipeline, err error) {
	dp = &devicePipeline{textures: len(pipe.source.Layout.TextureSlots)}
	defer func() {
		if err != nil {
			dp.release()
		}
	}()

	words, err := spirvWords(pipe.spirv)
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	dp.module, err = s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "quad-shader",
		SPIRV: words,
	})
	if err != nil {
		return nil, deviceError("create shader module", err)
	}

	stages := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	dp.dataLayout, err = s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "quad-data-layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: stages,
				Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: stages,
				Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		},
	})
	if err != nil {
		return nil, deviceError("create data layout", err)
	}

	layouts := []*wgpu.BindGroupLayout{dp.dataLayout}
	if dp.textures > 0 {
		entries := []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment,
				Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}},
			{Binding: 1, Visibility: wgpu.ShaderStageFragment,
				Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}},
		}
		for i := 0; i < dp.textures; i++ {
			entries = append(entries, wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i + 2),
				Visibility: wgpu.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			})
		}
		dp.texLayout, err = s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "quad-texture-layout",
			Entries: entries,
		})
		if err != nil {
			return nil, deviceError("create texture layout", err)
		}
		layouts = append(layouts, dp.texLayout)
	}

	dp.layout, err = s.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "quad-pipeline-layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, deviceError("create pipeline layout", err)
	}

	blend := gputypes.BlendStateAlpha()
	dp.pipeline, err = s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "quad-pipeline",
		Layout: dp.layout,
		Vertex: wgpu.VertexState{Module: dp.module, EntryPoint: "vs_main"},
		Primitive: wgpu.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &wgpu.FragmentState{
			Module:     dp.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    gputypes.TextureFormatRGBA8Unorm,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, deviceError("create render pipeline", err)
	}
	return dp, nil
}

func (dp *devicePipeline) release() {
	if dp.pipeline != nil {
		dp.pipeline.Release()
		dp.pipeline = nil
	}
	if dp.layout != nil {
		dp.layout.Release()
		dp.layout = nil
	}
	if dp.texLayout != nil {
		dp.texLayout.Release()
		dp.texLayout = nil
	}
	if dp.dataLayout != nil {
		dp.dataLayout.Release()
		dp.dataLayout = nil
	}
	if dp.module != nil {
		dp.module.Release()
		dp.module = nil
	}
}

// dropPipeline releases the device pipeline of a deleted shader.
func (s *deviceSubmitter) dropPipeline(id uint64) {
	if dp, ok := s.pipelines[id]; ok {
		dp.release()
		delete(s.pipelines, id)
	}
}

// release drops every device object the submitter created. The device
// itself stays with its owner.
func (s *deviceSubmitter) release() {
	for id, dp := range s.pipelines {
		dp.release()
		delete(s.pipelines, id)
	}
	if s.sampNearest != nil {
		s.sampNearest.Release()
		s.sampNearest = nil
	}
	if s.sampLinear != nil {
		s.sampLinear.Release()
		s.sampLinear = nil
	}
	if s.screenView != nil {
		s.screenView.Release()
		s.screenView = nil
	}
	if s.screen != nil {
		s.screen.Release()
		s.screen = nil
	}
	s.device, s.queue = nil, nil
}

func (s *deviceSubmitter) createAndUploadBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, deviceError("create "+label, err)
	}
	if err := s.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, deviceError("upload "+label, err)
	}
	return buf, nil
}

// segment is a run of batches drawn in one render pass. A clear starts
// a new segment whose pass loads with the clear color.
type segment struct {
	load    gputypes.LoadOp
	clear   gputypes.Color
	batches []*quadBatch
}

// splitSegments groups pass items into render pass segments. Batches
// before any clear load the existing contents; a trailing clear with no
// draws still gets its own pass.
func splitSegments(items []passItem) []segment {
	var segs []segment
	cur := segment{load: gputypes.LoadOpLoad}
	flush := func() {
		if cur.load == gputypes.LoadOpLoad && len(cur.batches) == 0 {
			return
		}
		segs = append(segs, cur)
	}
	for _, item := range items {
		switch {
		case item.Clear != nil:
			flush()
			c := *item.Clear
			cur = segment{
				load: gputypes.LoadOpClear,
				clear: gputypes.Color{
					R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3]),
				},
			}
		case item.Batch != nil:
			cur.batches = append(cur.batches, item.Batch)
		}
	}
	flush()
	return segs
}

// spirvWords reinterprets SPIR-V bytes as the little endian u32 words
// the shader module descriptor takes.
func spirvWords(spirv []byte) ([]uint32, error) {
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a word multiple", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// wordBytes serializes packed quad words for a buffer upload.
func wordBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// globalsBytes packs the Globals uniform, the resolution padded to the
// 16 byte uniform stride.
func globalsBytes(size picodraw.Size) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint32(out[0:], math.Float32bits(float32(size.Width)))
	binary.LittleEndian.PutUint32(out[4:], math.Float32bits(float32(size.Height)))
	return out
}
