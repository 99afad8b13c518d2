package wgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/gputypes"
	gpu "github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/shapedtex/backend"
	"github.com/gogpu/shapedtex/internal/pixbuf"
	"github.com/gogpu/shapedtex/render"
)

// Backend errors.
var (
	// ErrNilProvider is returned by New when no device provider is given.
	ErrNilProvider = errors.New("wgpu: nil device provider")
)

// DrawCommand is one recorded textured-quad draw.
type DrawCommand struct {
	Label    string
	Module   core.ShaderModuleID
	Quad     render.Quad
	Color    color.RGBA
	Textures []core.TextureViewID
}

// Backend is a recording render.Backend on a host-provided GPU device.
//
// Textures are tracked by wgpu core IDs and mirrored in CPU shadow copies.
// When the provider hands out a gogpu/wgpu device, textures and shader
// modules are also created on it and pixel writes are uploaded through its
// queue. Draws are never encoded into render passes: they are recorded as
// DrawCommands for the host to replay against its own target, and Submit
// only flushes the record.
type Backend struct {
	provider  render.DeviceHandle
	device    *gpu.Device
	queue     *gpu.Queue
	hub       *core.Hub
	cache     *PipelineCache
	info      *GPUInfo
	templates *render.Templates

	commands     []DrawCommand
	submitted    int
	liveTextures int
	initialized  bool
}

// init registers a headless wgpu backend. Hosts with a real device call
// New with their provider instead.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.RenderBackend {
		b, _ := New(render.NullDeviceHandle{})
		return b
	})
}

// New creates a backend on the host's device provider.
func New(provider render.DeviceHandle) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	device, queue := hostDevice(provider)
	hub := core.NewHub()
	return &Backend{
		provider:  provider,
		device:    device,
		queue:     queue,
		hub:       hub,
		cache:     NewPipelineCache(hub, device),
		templates: render.NewTemplates(),
	}, nil
}

// hostDevice returns the provider's device and queue when they are
// gogpu/wgpu objects. Other providers yield nil and the backend records only.
func hostDevice(provider render.DeviceHandle) (*gpu.Device, *gpu.Queue) {
	device, ok := provider.Device().(*gpu.Device)
	if !ok || device == nil {
		return nil, nil
	}
	queue, ok := provider.Queue().(*gpu.Queue)
	if !ok || queue == nil {
		queue = device.Queue()
	}
	if queue == nil {
		return nil, nil
	}
	return device, queue
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendWGPU }

// Init reads the adapter information and compiles the default templates.
// Shader compilation failures are logged and do not fail Init.
func (b *Backend) Init() error {
	b.info = getGPUInfo(b.provider)
	logGPUInfo(b.info)
	for _, tmpl := range b.templates.All() {
		if _, err := b.cache.Module(tmpl); err != nil {
			slogger().Warn("wgpu: shader compile failed, draws are recorded without a module",
				"template", tmpl.Label, "error", err)
		}
	}
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *Backend) Close() {
	b.cache.Close()
	b.commands = nil
	b.initialized = false
}

// SetLogger sets the package logger.
func (b *Backend) SetLogger(l *slog.Logger) { SetLogger(l) }

// Info returns the GPU information read by Init.
func (b *Backend) Info() *GPUInfo { return b.info }

// Templates returns the template set built with the backend.
func (b *Backend) Templates() *render.Templates { return b.templates }

// Cache returns the shader module cache.
func (b *Backend) Cache() *PipelineCache { return b.cache }

// HasDevice reports whether resources are created on a host device.
func (b *Backend) HasDevice() bool { return b.device != nil }

// LiveTextures returns the number of textures not yet destroyed.
func (b *Backend) LiveTextures() int { return b.liveTextures }

func (b *Backend) texture(tex render.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t.owner != b {
		return nil, render.ErrForeignTexture
	}
	if t.IsReleased() {
		return nil, render.ErrTextureDestroyed
	}
	return t, nil
}

func (b *Backend) newTexture(shadow *pixbuf.Buffer, label string) (*Texture, error) {
	desc := gputypes.TextureDescriptor{
		Label: label,
		Size: gputypes.Extent3D{
			Width:              uint32(shadow.Width()),  //nolint:gosec // validated positive
			Height:             uint32(shadow.Height()), //nolint:gosec // validated positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        shadow.Format().GPUFormat(),
		Usage:         DefaultTextureUsage,
	}
	t := &Texture{
		owner:  b,
		desc:   desc,
		shadow: shadow,
	}
	if b.device != nil {
		if err := b.createOnDevice(t); err != nil {
			return nil, err
		}
	}
	t.textureID = b.hub.RegisterTexture(core.Texture{})
	t.viewID = b.hub.RegisterTextureView(core.TextureView{})
	b.liveTextures++
	return t, nil
}

// createOnDevice creates t's texture and view on the host device and
// uploads the shadow copy.
func (b *Backend) createOnDevice(t *Texture) error {
	tex, err := b.device.CreateTexture(&gpu.TextureDescriptor{
		Label: t.desc.Label,
		Size: gpu.Extent3D{
			Width:              t.desc.Size.Width,
			Height:             t.desc.Size.Height,
			DepthOrArrayLayers: t.desc.Size.DepthOrArrayLayers,
		},
		MipLevelCount: t.desc.MipLevelCount,
		SampleCount:   t.desc.SampleCount,
		Dimension:     t.desc.Dimension,
		Format:        t.desc.Format,
		Usage:         t.desc.Usage,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create texture %q: %w", t.desc.Label, err)
	}
	view, err := b.device.CreateTextureView(tex, &gpu.TextureViewDescriptor{
		Label:           t.desc.Label + "-view",
		Format:          t.desc.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("wgpu: create texture view %q: %w", t.desc.Label, err)
	}
	t.gpuTexture, t.gpuView = tex, view
	if err := t.upload(b.queue, t.shadow.Bounds()); err != nil {
		view.Release()
		tex.Release()
		t.gpuTexture, t.gpuView = nil, nil
		return fmt.Errorf("wgpu: upload texture %q: %w", t.desc.Label, err)
	}
	return nil
}

func (b *Backend) releaseTexture(t *Texture) {
	if t.gpuView != nil {
		t.gpuView.Release()
	}
	if t.gpuTexture != nil {
		t.gpuTexture.Release()
	}
	if _, err := b.hub.UnregisterTextureView(t.viewID); err != nil {
		slogger().Warn("wgpu: texture view release failed", "label", t.desc.Label, "error", err)
	}
	if _, err := b.hub.UnregisterTexture(t.textureID); err != nil {
		slogger().Warn("wgpu: texture release failed", "label", t.desc.Label, "error", err)
	}
	b.liveTextures--
}

// NewTexture creates a texture, optionally uploading data.
func (b *Backend) NewTexture(width, height int, format gputypes.TextureFormat, data []byte, stride int) (render.Texture, error) {
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	f, ok := pixbuf.FormatFromGPU(format)
	if !ok {
		return nil, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, format)
	}
	shadow, err := pixbuf.New(width, height, f)
	if err != nil {
		return nil, err
	}
	if data != nil {
		src, err := pixbuf.FromRaw(data, width, height, f, stride)
		if err != nil {
			return nil, err
		}
		if err := shadow.Blit(image.Point{}, src); err != nil {
			return nil, err
		}
	}
	return b.newTexture(shadow, fmt.Sprintf("shaped-texture-%s-%dx%d", f, width, height))
}

// SubTexture returns a new texture holding a copy of r from tex.
func (b *Backend) SubTexture(tex render.Texture, r image.Rectangle) (render.Texture, error) {
	t, err := b.texture(tex)
	if err != nil {
		return nil, err
	}
	sub, err := t.shadow.Crop(r)
	if err != nil {
		return nil, render.ErrOutOfBounds
	}
	return b.newTexture(sub, t.desc.Label+"-sub")
}

// UpdateTexture replaces the pixels of r in tex and uploads r to the
// device texture when there is one.
func (b *Backend) UpdateTexture(tex render.Texture, r image.Rectangle, data []byte, stride int) error {
	t, err := b.texture(tex)
	if err != nil {
		return err
	}
	if r.Empty() || !r.In(t.shadow.Bounds()) {
		return render.ErrOutOfBounds
	}
	src, err := pixbuf.FromRaw(data, r.Dx(), r.Dy(), t.shadow.Format(), stride)
	if err != nil {
		return err
	}
	if err := t.shadow.Blit(r.Min, src); err != nil {
		return err
	}
	if err := t.upload(b.queue, r); err != nil {
		return fmt.Errorf("wgpu: upload texture %q: %w", t.desc.Label, err)
	}
	return nil
}

// ReadPixels reads r from tex's shadow copy.
func (b *Backend) ReadPixels(tex render.Texture, r image.Rectangle) ([]byte, error) {
	t, err := b.texture(tex)
	if err != nil {
		return nil, err
	}
	sub, err := t.shadow.Crop(r)
	if err != nil {
		return nil, render.ErrOutOfBounds
	}
	return sub.Data(), nil
}

// NewPipeline instantiates a pipeline from tmpl.
func (b *Backend) NewPipeline(tmpl *render.PipelineTemplate) (render.Pipeline, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("wgpu: nil pipeline template")
	}
	m, err := b.cache.Module(tmpl)
	if err != nil {
		slogger().Debug("wgpu: pipeline without shader module", "template", tmpl.Label, "error", err)
	}
	return &Pipeline{BasicPipeline: render.NewBasicPipeline(tmpl), Module: m}, nil
}

// Draw records one textured quad.
func (b *Backend) Draw(p render.Pipeline, q render.Quad) error {
	cmd := DrawCommand{
		Label:    p.Template().Label,
		Quad:     q,
		Color:    p.Color(),
		Textures: make([]core.TextureViewID, p.Layers()),
	}
	if gp, ok := p.(*Pipeline); ok && gp.Module.IsValid() {
		cmd.Module = gp.Module.ID
	}
	for i := range cmd.Textures {
		tex := p.LayerTexture(i)
		if tex == nil {
			continue
		}
		t, err := b.texture(tex)
		if err != nil {
			return err
		}
		cmd.Textures[i] = t.viewID
	}
	b.commands = append(b.commands, cmd)
	return nil
}

// Commands returns the draws recorded since the last Submit.
func (b *Backend) Commands() []DrawCommand {
	return b.commands
}

// Submit ends the current frame's record and returns how many draws it
// held. It issues no GPU work: hosts replay Commands against their own
// render target before calling Submit.
func (b *Backend) Submit() int {
	n := len(b.commands)
	if n == 0 {
		return 0
	}
	slogger().Debug("wgpu: frame recorded", "draws", n, "device", b.device != nil)
	b.submitted += n
	b.commands = b.commands[:0]
	return n
}

// Submitted returns the total number of draws flushed by Submit.
func (b *Backend) Submitted() int { return b.submitted }

var (
	_ backend.RenderBackend   = (*Backend)(nil)
	_ render.TemplateProvider = (*Backend)(nil)
)
