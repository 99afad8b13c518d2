package backend

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/shapedtex/internal/blend"
	"github.com/gogpu/shapedtex/internal/pixbuf"
	"github.com/gogpu/shapedtex/render"
)

// SoftwareBackend is a CPU-based render backend.
//
// Textures are kept in pixbuf buffers holding non-premultiplied pixels.
// Draw calls are recorded and, when a target is attached, composited onto
// it: layers are resampled with golang.org/x/image/draw scalers and blended
// source-over.
type SoftwareBackend struct {
	initialized bool
	templates   *render.Templates
	target      *image.RGBA
	calls       []DrawCall
}

// DrawCall is one recorded Draw invocation.
type DrawCall struct {
	Kind     render.TemplateKind
	Quad     render.Quad
	Color    color.RGBA
	Textures []render.Texture
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() RenderBackend {
		return NewSoftwareBackend()
	})
}

// NewSoftwareBackend creates a new software render backend with its own
// pipeline templates.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{templates: render.NewTemplates()}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.target = nil
	b.calls = nil
	b.initialized = false
}

// Templates returns the template set built with the backend.
func (b *SoftwareBackend) Templates() *render.Templates {
	return b.templates
}

// SetTarget attaches a premultiplied destination image. Draw calls are
// composited onto it. A nil target only records calls.
func (b *SoftwareBackend) SetTarget(target *image.RGBA) {
	b.target = target
}

// Target returns the attached destination image.
func (b *SoftwareBackend) Target() *image.RGBA {
	return b.target
}

// Calls returns the recorded draw calls.
func (b *SoftwareBackend) Calls() []DrawCall {
	return b.calls
}

// ResetCalls forgets the recorded draw calls.
func (b *SoftwareBackend) ResetCalls() {
	b.calls = b.calls[:0]
}

// softTexture is a texture stored in a CPU buffer.
type softTexture struct {
	owner     *SoftwareBackend
	buf       *pixbuf.Buffer
	destroyed bool
}

func (t *softTexture) Width() int  { return t.buf.Width() }
func (t *softTexture) Height() int { return t.buf.Height() }

func (t *softTexture) Format() gputypes.TextureFormat {
	return t.buf.Format().GPUFormat()
}

func (t *softTexture) Destroy() {
	t.destroyed = true
}

// Buffer returns the pixel storage of a software texture, or nil if tex was
// not created by a SoftwareBackend.
func Buffer(tex render.Texture) *pixbuf.Buffer {
	if st, ok := tex.(*softTexture); ok {
		return st.buf
	}
	return nil
}

func (b *SoftwareBackend) texture(tex render.Texture) (*softTexture, error) {
	st, ok := tex.(*softTexture)
	if !ok || st.owner != b {
		return nil, render.ErrForeignTexture
	}
	if st.destroyed {
		return nil, render.ErrTextureDestroyed
	}
	return st, nil
}

// NewTexture creates a texture, optionally uploading data.
func (b *SoftwareBackend) NewTexture(width, height int, format gputypes.TextureFormat, data []byte, stride int) (render.Texture, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	f, ok := pixbuf.FormatFromGPU(format)
	if !ok {
		return nil, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, format)
	}
	buf, err := pixbuf.New(width, height, f)
	if err != nil {
		return nil, err
	}
	if data != nil {
		src, err := pixbuf.FromRaw(data, width, height, f, stride)
		if err != nil {
			return nil, err
		}
		if err := buf.Blit(image.Point{}, src); err != nil {
			return nil, err
		}
	}
	return &softTexture{owner: b, buf: buf}, nil
}

// SubTexture returns a copy of r from tex.
func (b *SoftwareBackend) SubTexture(tex render.Texture, r image.Rectangle) (render.Texture, error) {
	st, err := b.texture(tex)
	if err != nil {
		return nil, err
	}
	sub, err := st.buf.Crop(r)
	if err != nil {
		return nil, render.ErrOutOfBounds
	}
	return &softTexture{owner: b, buf: sub}, nil
}

// UpdateTexture replaces the pixels of r in tex.
func (b *SoftwareBackend) UpdateTexture(tex render.Texture, r image.Rectangle, data []byte, stride int) error {
	st, err := b.texture(tex)
	if err != nil {
		return err
	}
	if r.Empty() || !r.In(st.buf.Bounds()) {
		return render.ErrOutOfBounds
	}
	src, err := pixbuf.FromRaw(data, r.Dx(), r.Dy(), st.buf.Format(), stride)
	if err != nil {
		return err
	}
	return st.buf.Blit(r.Min, src)
}

// ReadPixels reads r from tex into a tightly packed slice.
func (b *SoftwareBackend) ReadPixels(tex render.Texture, r image.Rectangle) ([]byte, error) {
	st, err := b.texture(tex)
	if err != nil {
		return nil, err
	}
	sub, err := st.buf.Crop(r)
	if err != nil {
		return nil, render.ErrOutOfBounds
	}
	return sub.Data(), nil
}

// NewPipeline instantiates a pipeline from tmpl.
func (b *SoftwareBackend) NewPipeline(tmpl *render.PipelineTemplate) (render.Pipeline, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("backend: nil pipeline template")
	}
	return render.NewBasicPipeline(tmpl), nil
}

// Draw records q and composites it onto the target, if any.
func (b *SoftwareBackend) Draw(p render.Pipeline, q render.Quad) error {
	textures := make([]render.Texture, p.Layers())
	for i := range textures {
		textures[i] = p.LayerTexture(i)
		if textures[i] != nil {
			if _, err := b.texture(textures[i]); err != nil {
				return err
			}
		}
	}
	b.calls = append(b.calls, DrawCall{
		Kind:     p.Template().Kind,
		Quad:     q,
		Color:    p.Color(),
		Textures: textures,
	})
	if b.target == nil {
		return nil
	}

	dr := boxToRect(q.Rect)
	if dr.Empty() {
		return nil
	}
	switch p.Template().Kind {
	case render.TemplatePick:
		b.drawPick(dr, p.Color(), textures[0], coordsAt(q, 0))
	default:
		var maskTex render.Texture
		if len(textures) > 1 {
			maskTex = textures[1]
		}
		b.drawContent(dr, p.Color().A, textures[0], coordsAt(q, 0), maskTex, coordsAt(q, 1))
	}
	return nil
}

// drawContent paints layer 0 scaled to dr at opacity, modulated by the
// optional mask layer.
func (b *SoftwareBackend) drawContent(dr image.Rectangle, opacity uint8, content render.Texture, cc render.TexCoords, maskTex render.Texture, mc render.TexCoords) {
	if content == nil {
		return
	}
	size := image.Rect(0, 0, dr.Dx(), dr.Dy())

	src := Buffer(content)
	layer := image.NewRGBA(size)
	scale(layer, src.Image(), texRect(cc, src.Width(), src.Height()), &xdraw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: opacity}),
	})

	var mask *image.Alpha
	if maskTex != nil {
		mb := Buffer(maskTex)
		mask = image.NewAlpha(size)
		scale(mask, mb.Image(), texRect(mc, mb.Width(), mb.Height()), nil)
	}
	b.composite(dr, layer, mask)
}

// drawPick fills dr with c wherever the mask is non-zero.
func (b *SoftwareBackend) drawPick(dr image.Rectangle, c color.RGBA, maskTex render.Texture, mc render.TexCoords) {
	if maskTex == nil {
		return
	}
	mb := Buffer(maskTex)
	size := image.Rect(0, 0, dr.Dx(), dr.Dy())
	alpha := image.NewAlpha(size)
	xdraw.NearestNeighbor.Scale(alpha, alpha.Rect, mb.Image(), texRect(mc, mb.Width(), mb.Height()), xdraw.Src, nil)
	for i, a := range alpha.Pix {
		if a != 0 {
			alpha.Pix[i] = 0xff
		}
	}
	layer := image.NewRGBA(size)
	draw.Draw(layer, size, image.NewUniform(c), image.Point{}, draw.Src)
	b.composite(dr, layer, alpha)
}

// composite blends layer, cut by the optional mask, over the target at dr.
// layer and mask have their origin at (0, 0) and the size of dr.
func (b *SoftwareBackend) composite(dr image.Rectangle, layer *image.RGBA, mask *image.Alpha) {
	vis := dr.Intersect(b.target.Bounds())
	if vis.Empty() {
		return
	}
	n := vis.Dx()
	lx := vis.Min.X - dr.Min.X
	for y := vis.Min.Y; y < vis.Max.Y; y++ {
		ly := y - dr.Min.Y
		src := layer.Pix[layer.PixOffset(lx, ly):]
		if mask != nil {
			blend.MaskSpan(src, mask.Pix[mask.PixOffset(lx, ly):], n, blend.BlendDestinationIn)
		}
		blend.BlendSpan(b.target.Pix[b.target.PixOffset(vis.Min.X, y):], src, n, blend.BlendSourceOver)
	}
}

// scale resamples sr of src over the whole of dst. Same-size scales are
// exact copies.
func scale(dst draw.Image, src image.Image, sr image.Rectangle, opts *xdraw.Options) {
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, opts)
}

func coordsAt(q render.Quad, layer int) render.TexCoords {
	if layer < len(q.Coords) {
		return q.Coords[layer]
	}
	return render.FullTexCoords
}

// texRect converts normalized coords to a pixel rectangle of a w x h texture.
func texRect(c render.TexCoords, w, h int) image.Rectangle {
	r := image.Rect(
		int(math.Floor(float64(c.S1)*float64(w))),
		int(math.Floor(float64(c.T1)*float64(h))),
		int(math.Ceil(float64(c.S2)*float64(w))),
		int(math.Ceil(float64(c.T2)*float64(h))),
	)
	return r.Intersect(image.Rect(0, 0, w, h))
}

func boxToRect(bx render.Box) image.Rectangle {
	return image.Rect(
		int(math.Round(float64(bx.X1))),
		int(math.Round(float64(bx.Y1))),
		int(math.Round(float64(bx.X2))),
		int(math.Round(float64(bx.Y2))),
	)
}

var _ RenderBackend = (*SoftwareBackend)(nil)
