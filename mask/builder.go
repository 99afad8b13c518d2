// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mask synthesizes the alpha mask of a non-rectangular surface.
//
// A mask is built from a shape region (opaque rectangles) refined by an
// optional overlay: the overlay rectangles are cleared, then the overlay
// path is filled opaque inside them. The result is uploaded as an A8
// texture and cached until an input or the texture size changes.
package mask

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/vector"

	"github.com/gogpu/shapedtex/region"
	"github.com/gogpu/shapedtex/render"
)

// Builder owns the shape inputs and the cached mask texture.
//
// Builder is not safe for concurrent use.
type Builder struct {
	backend render.Backend
	log     *slog.Logger

	shape         *region.Region
	overlayRegion *region.Region
	overlayPath   *Path

	tex    render.Texture
	cpu    *image.Alpha
	width  int
	height int
	builds int

	hooks []func(render.Texture)
}

// NewBuilder creates a builder uploading masks through b.
func NewBuilder(b render.Backend) *Builder {
	return &Builder{
		backend: b,
		log:     slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger used for mask diagnostics.
// A nil logger disables logging.
func (m *Builder) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	m.log = l
}

// OnChange registers fn to be called with the new mask texture whenever the
// cached mask is rebuilt, and with nil whenever it is dropped. Pipelines
// holding the mask as a layer re-point themselves here.
func (m *Builder) OnChange(fn func(render.Texture)) {
	m.hooks = append(m.hooks, fn)
}

// SetShapeRegion sets the opaque extent of the surface. Nil means fully
// rectangular. The cached mask is dropped.
func (m *Builder) SetShapeRegion(r *region.Region) {
	m.shape = r
	m.Dirty()
}

// ShapeRegion returns the current shape region.
func (m *Builder) ShapeRegion() *region.Region { return m.shape }

// SetOverlay sets the overlay region and takes ownership of path. The
// cached mask is dropped.
func (m *Builder) SetOverlay(r *region.Region, path *Path) {
	m.overlayRegion = r
	m.overlayPath = path
	m.Dirty()
}

// Overlay returns the overlay region and path.
func (m *Builder) Overlay() (*region.Region, *Path) {
	return m.overlayRegion, m.overlayPath
}

// Needed reports whether the inputs call for a mask at all. Without a shape
// region and without overlay rectangles the surface is fully opaque.
func (m *Builder) Needed() bool {
	return m.shape != nil || !m.overlayRegion.IsEmpty()
}

// Texture returns the cached mask texture, or nil.
func (m *Builder) Texture() render.Texture { return m.tex }

// Image returns the CPU copy of the cached mask, or nil.
func (m *Builder) Image() *image.Alpha { return m.cpu }

// Builds returns how many masks have been uploaded.
func (m *Builder) Builds() int { return m.builds }

// Ensure returns a mask texture of width x height for the current inputs,
// rebuilding it only when the inputs or the size changed since the last
// build. It returns nil when no mask is needed or the upload failed.
func (m *Builder) Ensure(width, height int) render.Texture {
	if m.tex != nil && (m.width != width || m.height != height) {
		m.Dirty()
	}
	if m.tex != nil {
		return m.tex
	}
	if !m.Needed() || width <= 0 || height <= 0 {
		return nil
	}

	alpha := m.Rasterize(width, height)
	tex, err := m.backend.NewTexture(width, height, gputypes.TextureFormatR8Unorm, alpha.Pix, alpha.Stride)
	if err != nil {
		m.log.Warn("mask: upload failed", "width", width, "height", height, "error", err)
		return nil
	}

	m.tex = tex
	m.cpu = alpha
	m.width, m.height = width, height
	m.builds++
	m.log.Debug("mask: rebuilt", "width", width, "height", height,
		"shape_rects", m.shape.NumRects(), "overlay_rects", m.overlayRegion.NumRects())
	m.notify(tex)
	return tex
}

// Rasterize renders the current inputs into a new width x height alpha
// image. Shape rectangles are filled first; overlay rectangles are then
// cleared and the overlay path filled inside them.
func (m *Builder) Rasterize(width, height int) *image.Alpha {
	bounds := image.Rect(0, 0, width, height)
	alpha := image.NewAlpha(bounds)

	for _, r := range m.shape.All() {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		draw.Draw(alpha, r, image.Opaque, image.Point{}, draw.Src)
	}

	if m.overlayRegion.IsEmpty() {
		return alpha
	}
	for _, r := range m.overlayRegion.All() {
		draw.Draw(alpha, r.Intersect(bounds), image.Transparent, image.Point{}, draw.Src)
	}
	if m.overlayPath.IsEmpty() {
		return alpha
	}

	coverage := image.NewAlpha(bounds)
	z := vector.NewRasterizer(width, height)
	m.overlayPath.appendTo(z)
	z.Draw(coverage, bounds, image.Opaque, image.Point{})
	for _, r := range m.overlayRegion.All() {
		r = r.Intersect(bounds)
		draw.DrawMask(alpha, r, image.Opaque, image.Point{}, coverage, r.Min, draw.Over)
	}
	return alpha
}

// Covered reports whether the cached mask is non-zero at pixel (x, y).
// Without a cached mask nothing is covered.
func (m *Builder) Covered(x, y int) bool {
	return m.cpu != nil && m.cpu.AlphaAt(x, y).A != 0
}

// Dirty drops the cached mask and unsets it from every pipeline.
func (m *Builder) Dirty() {
	if m.tex == nil {
		return
	}
	m.tex.Destroy()
	m.tex = nil
	m.cpu = nil
	m.width, m.height = 0, 0
	m.notify(nil)
}

// Release drops the cached mask and the overlay path.
func (m *Builder) Release() {
	m.Dirty()
	m.overlayPath = nil
}

func (m *Builder) notify(tex render.Texture) {
	for _, fn := range m.hooks {
		fn(tex)
	}
}
