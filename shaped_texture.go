package shapedtex

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/shapedtex/backend"
	"github.com/gogpu/shapedtex/clipbatch"
	"github.com/gogpu/shapedtex/loop"
	"github.com/gogpu/shapedtex/mask"
	"github.com/gogpu/shapedtex/region"
	"github.com/gogpu/shapedtex/render"
	"github.com/gogpu/shapedtex/tower"
)

// ErrNilHost is returned by New when no host is given.
var ErrNilHost = errors.New("shapedtex: nil host")

// ShapedTexture presents one window's surface contents.
//
// It owns the surface texture, its mipmap tower and its shape mask, and
// paints them through three pipelines: unshaped (texture only), shaped
// (texture times mask) and pick (mask in a flat colour).
//
// ShapedTexture is not safe for concurrent use. All methods, and the
// remipmap timer, run on the host's loop goroutine.
type ShapedTexture struct {
	host      Host
	cfg       Config
	backend   render.Backend
	closer    func()
	sched     loop.Scheduler
	templates *render.Templates
	log       *slog.Logger

	source   PixelSource
	pixmap   Pixmap
	texture  render.Texture
	texOwner PixelSource // source that created texture, nil if set directly
	texW     int
	texH     int

	tower   *tower.Tower
	mask    *mask.Builder
	painter clipbatch.Painter
	fresh   *FreshnessPolicy

	unshaped render.Pipeline
	shaped   render.Pipeline
	pick     render.Pipeline

	clip          *region.Region
	unobscured    *region.Region
	createMipmaps bool
	destroyed     bool
}

// New creates a shaped texture painting for host.
func New(host Host, opts ...Option) (*ShapedTexture, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxClipRects > 0 {
		o.cfg.MaxClipRects = o.maxClipRects
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	st := &ShapedTexture{
		host:          host,
		cfg:           o.cfg,
		backend:       o.backend,
		sched:         o.sched,
		templates:     o.templates,
		log:           Logger(),
		painter:       clipbatch.Painter{MaxRects: o.cfg.MaxClipRects},
		createMipmaps: o.cfg.CreateMipmaps,
	}
	if st.backend == nil {
		rb, err := backend.Open("")
		if err != nil {
			return nil, fmt.Errorf("shapedtex: open backend: %w", err)
		}
		st.backend, st.closer = rb, rb.Close
	}
	if st.sched == nil {
		st.sched = loop.New(64)
	}
	if st.templates == nil {
		if tp, ok := st.backend.(render.TemplateProvider); ok {
			st.templates = tp.Templates()
		} else {
			st.templates = render.NewTemplates()
		}
	}
	propagateLogger(st.backend, st.log)

	var err error
	if st.unshaped, err = st.backend.NewPipeline(st.templates.Unshaped); err != nil {
		st.closeBackend()
		return nil, fmt.Errorf("shapedtex: unshaped pipeline: %w", err)
	}
	if st.shaped, err = st.backend.NewPipeline(st.templates.Shaped); err != nil {
		st.closeBackend()
		return nil, fmt.Errorf("shapedtex: shaped pipeline: %w", err)
	}
	if st.pick, err = st.backend.NewPipeline(st.templates.Pick); err != nil {
		st.closeBackend()
		return nil, fmt.Errorf("shapedtex: pick pipeline: %w", err)
	}

	st.tower = tower.New(st.backend)
	st.tower.SetLogger(st.log)
	st.mask = mask.NewBuilder(st.backend)
	st.mask.SetLogger(st.log)
	st.mask.OnChange(func(tex render.Texture) {
		st.shaped.SetLayerTexture(1, tex)
		st.pick.SetLayerTexture(0, tex)
	})
	st.fresh = NewFreshnessPolicy(st.cfg, st.sched, st.remipmap)
	return st, nil
}

// remipmap is the remipmap timer callback.
func (st *ShapedTexture) remipmap() {
	if st.destroyed {
		return
	}
	st.log.Debug("shapedtex: remipmap due")
	st.host.QueueRedraw()
}

// Backend returns the render backend.
func (st *ShapedTexture) Backend() render.Backend { return st.backend }

// Scheduler returns the scheduler running the remipmap timer.
func (st *ShapedTexture) Scheduler() loop.Scheduler { return st.sched }

// Freshness returns the mipmap freshness policy.
func (st *ShapedTexture) Freshness() *FreshnessPolicy { return st.fresh }

// Tower returns the mipmap tower.
func (st *ShapedTexture) Tower() *tower.Tower { return st.tower }

// Mask returns the shape mask builder.
func (st *ShapedTexture) Mask() *mask.Builder { return st.mask }

// Texture returns the surface texture, or nil.
func (st *ShapedTexture) Texture() render.Texture { return st.texture }

// SetPixmap binds the surface handle to src and loads its contents.
// Setting the current handle again does nothing. NoPixmap clears the
// texture.
func (st *ShapedTexture) SetPixmap(src PixelSource, handle Pixmap) {
	if st.destroyed || (handle == st.pixmap && src == st.source) {
		return
	}
	st.source, st.pixmap = src, handle
	if src == nil || handle == NoPixmap {
		st.SetTexture(nil)
		return
	}
	tex, err := src.NewTexture(handle)
	if err != nil {
		st.log.Warn("shapedtex: surface texture creation failed", "pixmap", handle, "error", err)
		st.setTexture(nil, nil)
		return
	}
	st.setTexture(tex, src)
}

// SetTexture replaces the surface texture. The previous texture is
// destroyed. A size change queues a relayout; every change queues a redraw.
func (st *ShapedTexture) SetTexture(tex render.Texture) {
	st.setTexture(tex, nil)
}

func (st *ShapedTexture) setTexture(tex render.Texture, owner PixelSource) {
	if st.destroyed || tex == st.texture {
		return
	}
	old, oldOwner := st.texture, st.texOwner
	st.texture, st.texOwner = tex, owner
	st.unshaped.SetLayerTexture(0, tex)
	st.shaped.SetLayerTexture(0, tex)
	if st.createMipmaps {
		st.tower.SetBase(tex)
	}
	if old != nil {
		releaseTexture(old, oldOwner)
	}

	w, h := 0, 0
	if tex != nil {
		w, h = tex.Width(), tex.Height()
	}
	if w != st.texW || h != st.texH {
		st.texW, st.texH = w, h
		st.host.QueueRelayout()
	}
	st.host.QueueRedraw()
}

// UpdateArea pulls the damaged rectangle from the pixel source and queues
// a redraw of it. It reports whether a redraw was queued: false without a
// texture, or when the damage misses a non-nil unobscured region. The
// unobscured region is ignored while the host has mapped clones.
func (st *ShapedTexture) UpdateArea(x, y, width, height int, unobscured *region.Region) bool {
	if st.destroyed || st.texture == nil {
		return false
	}
	r := image.Rect(x, y, x+width, y+height)
	if st.source != nil {
		if err := st.source.UpdateArea(st.texture, r); err != nil {
			st.log.Warn("shapedtex: surface update failed", "rect", r, "error", err)
		}
	}
	st.tower.NotifyDamage(r)
	st.fresh.RecordDamage(st.sched.Now())

	if st.host.HasMappedClones() {
		unobscured = nil
	}
	if unobscured != nil {
		if unobscured.IsEmpty() {
			return false
		}
		visible := unobscured.IntersectRect(r)
		if visible.IsEmpty() {
			return false
		}
		st.host.QueueRedrawWithClip(visible.Extents())
		return true
	}
	st.host.QueueRedrawWithClip(r)
	return true
}

// SetShapeRegion sets the opaque extent of the window. Nil means
// rectangular.
func (st *ShapedTexture) SetShapeRegion(r *region.Region) {
	if st.destroyed {
		return
	}
	st.mask.SetShapeRegion(r)
	st.host.QueueRedraw()
}

// SetOverlayPath sets the overlay refinement of the mask. The contents of
// path are moved: on return path is empty and reports Moved.
func (st *ShapedTexture) SetOverlayPath(r *region.Region, path *mask.Path) {
	if st.destroyed {
		return
	}
	st.mask.SetOverlay(r, path.Take())
	st.host.QueueRedraw()
}

// SetClipRegion sets the visible part of the texture, in texture pixels.
// Nil paints everything; an empty region paints nothing.
func (st *ShapedTexture) SetClipRegion(r *region.Region) {
	st.clip = r
}

// ClipRegion returns the clip region.
func (st *ShapedTexture) ClipRegion() *region.Region { return st.clip }

// SetUnobscuredRegion records the part of the texture not covered by other
// windows, as last reported by the stacking code.
func (st *ShapedTexture) SetUnobscuredRegion(r *region.Region) {
	st.unobscured = r
}

// IsObscured reports whether the texture is known to be fully covered:
// an unobscured region exists and is empty. Mapped clones make the region
// meaningless, so the texture is then never obscured.
func (st *ShapedTexture) IsObscured() bool {
	if st.host.HasMappedClones() {
		return false
	}
	return st.unobscured != nil && st.unobscured.IsEmpty()
}

// SetCreateMipmaps turns the mipmap tower on or off. Off detaches the
// tower from the texture; on reattaches it.
func (st *ShapedTexture) SetCreateMipmaps(on bool) {
	if st.destroyed || on == st.createMipmaps {
		return
	}
	st.createMipmaps = on
	st.fresh.SetEnabled(on)
	if on {
		st.tower.SetBase(st.texture)
	} else {
		st.tower.SetBase(nil)
	}
}

// CreateMipmaps reports whether the mipmap tower is on.
func (st *ShapedTexture) CreateMipmaps() bool { return st.createMipmaps }

// Paint draws the texture into the host allocation.
func (st *ShapedTexture) Paint(pc PaintContext) {
	if st.destroyed || (st.clip != nil && st.clip.IsEmpty()) {
		return
	}
	if st.texture == nil || st.texW == 0 || st.texH == 0 {
		return
	}

	now := st.sched.Now()
	var src render.Texture
	if st.fresh.UseMipmaps(now) {
		src = st.tower.PaintTexture(pc.Scale)
	} else {
		st.fresh.ScheduleRemipmap(now)
	}
	if src == nil {
		src = st.texture
	}

	p := st.unshaped
	if st.mask.Needed() && st.mask.Ensure(st.texW, st.texH) != nil {
		p = st.shaped
	}
	p.SetLayerTexture(0, src)
	p.SetColor(render.OpacityColor(pc.Opacity))

	if _, err := st.painter.Paint(st.backend, p, st.texW, st.texH, st.host.Allocation(), st.clip); err != nil {
		st.log.Warn("shapedtex: paint failed", "error", err)
	}
}

// Pick draws the shape in colour c for hit-testing. Unshaped textures use
// the host's bounding-box pick.
func (st *ShapedTexture) Pick(pc PaintContext, c color.RGBA) {
	if st.destroyed {
		return
	}
	if st.mask.ShapeRegion() == nil {
		st.host.DefaultPick(c)
		return
	}
	if !st.host.ShouldPickPaint() || st.texture == nil || st.texW == 0 || st.texH == 0 {
		return
	}
	if st.mask.Ensure(st.texW, st.texH) == nil {
		return
	}
	st.pick.SetColor(c)
	q := render.Quad{
		Rect:   st.host.Allocation(),
		Coords: []render.TexCoords{render.FullTexCoords},
	}
	if err := st.backend.Draw(st.pick, q); err != nil {
		st.log.Warn("shapedtex: pick failed", "error", err)
	}
}

// HitTest reports whether the point (x, y), in actor coordinates, hits
// the visible shape. Unshaped textures hit anywhere in the allocation.
func (st *ShapedTexture) HitTest(x, y float64) bool {
	alloc := st.host.Allocation()
	if alloc.IsEmpty() ||
		x < float64(alloc.X1) || y < float64(alloc.Y1) ||
		x >= float64(alloc.X2) || y >= float64(alloc.Y2) {
		return false
	}
	if st.mask.ShapeRegion() == nil {
		return true
	}
	if st.texture == nil || st.mask.Ensure(st.texW, st.texH) == nil {
		return false
	}
	tx := int((x - float64(alloc.X1)) * float64(st.texW) / float64(alloc.Width()))
	ty := int((y - float64(alloc.Y1)) * float64(st.texH) / float64(alloc.Height()))
	return st.mask.Covered(tx, ty)
}

// PreferredWidth returns 0 and the texture width.
func (st *ShapedTexture) PreferredWidth(float32) (minWidth, naturalWidth float32) {
	return 0, float32(st.texW)
}

// PreferredHeight returns 0 and the texture height.
func (st *ShapedTexture) PreferredHeight(float32) (minHeight, naturalHeight float32) {
	return 0, float32(st.texH)
}

// PaintVolume returns the area Paint may touch: the allocation.
func (st *ShapedTexture) PaintVolume() (render.Box, bool) {
	return st.host.Allocation(), true
}

// Destroy cancels the remipmap timer and releases all textures. A
// destroyed ShapedTexture ignores further calls.
func (st *ShapedTexture) Destroy() {
	if st.destroyed {
		return
	}
	st.destroyed = true
	st.fresh.Stop()
	st.tower.Release()
	st.mask.Release()
	if st.texture != nil {
		releaseTexture(st.texture, st.texOwner)
		st.texture, st.texOwner = nil, nil
	}
	st.texW, st.texH = 0, 0
	st.source, st.pixmap = nil, NoPixmap
	st.closeBackend()
}

// releaseTexture hands tex back to the source that created it, if the
// source tracks its textures, and destroys it.
func releaseTexture(tex render.Texture, owner PixelSource) {
	if r, ok := owner.(TextureReleaser); ok {
		r.ReleaseTexture(tex)
	}
	tex.Destroy()
}

func (st *ShapedTexture) closeBackend() {
	if st.closer != nil {
		st.closer()
		st.closer = nil
	}
}

var _ Surface = (*ShapedTexture)(nil)
