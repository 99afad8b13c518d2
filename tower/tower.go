// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tower maintains a lazily regenerated mipmap pyramid of a texture.
//
// Level 0 is the base texture itself. Level n is the base halved n times
// (never below one pixel) down to 1x1. Damage marks a rectangle of every
// level stale; only the levels a paint asks for are rebuilt, and only their
// stale rectangles, by box-filter downsampling from the level above.
package tower

import (
	"image"
	"log/slog"
	"math"

	"github.com/gogpu/shapedtex/internal/pixbuf"
	"github.com/gogpu/shapedtex/render"
)

// Tower is a demand-driven mipmap pyramid.
//
// Tower is not safe for concurrent use.
type Tower struct {
	backend render.Backend
	pool    *pixbuf.Pool
	log     *slog.Logger

	// levels[0] aliases the base texture and is never destroyed here.
	levels []render.Texture
	// invalid[n] is the stale rectangle of level n in level-n pixels.
	invalid []image.Rectangle
	format  pixbuf.Format
}

// New creates an empty tower allocating level textures on b.
func New(b render.Backend) *Tower {
	return &Tower{
		backend: b,
		pool:    pixbuf.NewPool(4),
		log:     slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger used for regeneration diagnostics.
// A nil logger disables logging.
func (t *Tower) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	t.log = l
}

// SetBase replaces the source texture and invalidates every level.
// A nil base detaches the tower. Storage of levels above 0 is released.
func (t *Tower) SetBase(base render.Texture) {
	if len(t.levels) > 0 && t.levels[0] == base {
		return
	}
	t.releaseLevels()
	if base == nil || base.Width() <= 0 || base.Height() <= 0 {
		return
	}
	f, ok := pixbuf.FormatFromGPU(base.Format())
	if !ok {
		t.log.Warn("tower: unsupported base format, mipmapping disabled", "format", base.Format())
		return
	}

	n := pixbuf.LevelCount(base.Width(), base.Height())
	t.format = f
	t.levels = make([]render.Texture, n)
	t.invalid = make([]image.Rectangle, n)
	t.levels[0] = base
	for i := 1; i < n; i++ {
		t.invalid[i] = t.levelBounds(i)
	}
}

// Base returns the base texture, or nil when detached.
func (t *Tower) Base() render.Texture {
	if len(t.levels) == 0 {
		return nil
	}
	return t.levels[0]
}

// NumLevels returns the number of levels including the base.
func (t *Tower) NumLevels() int { return len(t.levels) }

// Valid reports whether level n exists and has no stale pixels.
func (t *Tower) Valid(n int) bool {
	if n < 0 || n >= len(t.levels) || t.levels[n] == nil {
		return false
	}
	return t.invalid[n].Empty()
}

// Stale returns the stale rectangle of level n in level-n pixels.
func (t *Tower) Stale(n int) image.Rectangle {
	if n < 0 || n >= len(t.invalid) {
		return image.Rectangle{}
	}
	return t.invalid[n]
}

// NotifyDamage marks r (in base pixels) stale on every level above the base.
// Level storage is kept.
func (t *Tower) NotifyDamage(r image.Rectangle) {
	if len(t.levels) == 0 {
		return
	}
	r = r.Intersect(t.levelBounds(0))
	if r.Empty() {
		return
	}
	for i := 1; i < len(t.levels); i++ {
		t.invalid[i] = t.invalid[i].Union(scaleDown(r, i).Intersect(t.levelBounds(i)))
	}
}

// LevelForScale returns the level used to paint at scale:
// floor(-log2(scale)) clamped to the available levels, 0 for scale >= 1.
func (t *Tower) LevelForScale(scale float64) int {
	if len(t.levels) == 0 || scale >= 1 || scale <= 0 || math.IsNaN(scale) {
		return 0
	}
	level := int(math.Floor(-math.Log2(scale)))
	return min(max(level, 0), len(t.levels)-1)
}

// PaintTexture returns the texture to paint at scale, regenerating the stale
// levels on the way down. It returns nil when the tower has no base or a
// level could not be rebuilt; callers then paint the base texture.
func (t *Tower) PaintTexture(scale float64) render.Texture {
	if len(t.levels) == 0 {
		return nil
	}
	level := t.LevelForScale(scale)
	for i := 1; i <= level; i++ {
		if t.levels[i] != nil && t.invalid[i].Empty() {
			continue
		}
		if err := t.regenerate(i); err != nil {
			t.log.Warn("tower: level regeneration failed", "level", i, "error", err)
			return nil
		}
	}
	return t.levels[level]
}

// regenerate rebuilds the stale rectangle of level n from level n-1.
func (t *Tower) regenerate(n int) error {
	bounds := t.levelBounds(n)
	if t.levels[n] == nil {
		tex, err := t.backend.NewTexture(bounds.Dx(), bounds.Dy(), t.format.GPUFormat(), nil, 0)
		if err != nil {
			return err
		}
		t.levels[n] = tex
		t.invalid[n] = bounds
	}

	dirty := t.invalid[n]
	src := image.Rectangle{Min: dirty.Min.Mul(2), Max: dirty.Max.Mul(2)}.Intersect(t.levelBounds(n - 1))
	data, err := t.backend.ReadPixels(t.levels[n-1], src)
	if err != nil {
		return err
	}
	parent, err := pixbuf.FromRaw(data, src.Dx(), src.Dy(), t.format, 0)
	if err != nil {
		return err
	}

	out := t.pool.Get(dirty.Dx(), dirty.Dy(), t.format)
	defer t.pool.Put(out)
	if err := pixbuf.Downsample(out, parent); err != nil {
		return err
	}
	if err := t.backend.UpdateTexture(t.levels[n], dirty, out.Data(), out.Stride()); err != nil {
		return err
	}

	t.log.Debug("tower: level regenerated", "level", n, "rect", dirty)
	t.invalid[n] = image.Rectangle{}
	return nil
}

// Release destroys the level textures and detaches the base.
func (t *Tower) Release() {
	t.releaseLevels()
}

func (t *Tower) releaseLevels() {
	for i := 1; i < len(t.levels); i++ {
		if t.levels[i] != nil {
			t.levels[i].Destroy()
		}
	}
	t.levels = nil
	t.invalid = nil
}

func (t *Tower) levelBounds(n int) image.Rectangle {
	w, h := pixbuf.LevelSize(t.levels[0].Width(), t.levels[0].Height(), n)
	return image.Rect(0, 0, w, h)
}

// scaleDown maps r from base pixels to level n, rounding outward.
func scaleDown(r image.Rectangle, n int) image.Rectangle {
	d := 1 << n
	return image.Rect(
		floorDiv(r.Min.X, d), floorDiv(r.Min.Y, d),
		ceilDiv(r.Max.X, d), ceilDiv(r.Max.Y, d),
	)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
