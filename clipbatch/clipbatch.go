// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package clipbatch turns a visible-region hint into textured quad draws.
//
// Each clip rectangle costs one draw call. Past a small number of
// rectangles the per-call overhead outweighs the pixels saved, so the
// painter falls back to a single quad covering the whole allocation.
package clipbatch

import (
	"image"

	"github.com/gogpu/shapedtex/region"
	"github.com/gogpu/shapedtex/render"
)

// DefaultMaxRects is the clip rectangle count above which a full quad is drawn.
const DefaultMaxRects = 16

// Painter emits the quads of one paint.
type Painter struct {
	// MaxRects is the fallback threshold. Zero or less means DefaultMaxRects.
	MaxRects int
}

// maxRects returns the effective threshold.
func (cp Painter) maxRects() int {
	if cp.MaxRects <= 0 {
		return DefaultMaxRects
	}
	return cp.MaxRects
}

// Paint draws the texW x texH texture bound to p into alloc, clipped to clip
// (in texture pixels), and returns the number of draw calls issued.
//
// An empty clip draws nothing. A nil clip, or one with more than MaxRects
// rectangles, draws one quad over the whole allocation. Otherwise every clip
// rectangle that overlaps the texture becomes one quad; its texture
// coordinates are the rectangle normalized by the texture size, the same on
// every layer.
func (cp Painter) Paint(b render.Backend, p render.Pipeline, texW, texH int, alloc render.Box, clip *region.Region) (int, error) {
	if clip != nil && clip.IsEmpty() {
		return 0, nil
	}
	if texW <= 0 || texH <= 0 {
		return 0, nil
	}

	if clip == nil || clip.NumRects() > cp.maxRects() {
		if err := b.Draw(p, fullQuad(alloc, p.Layers())); err != nil {
			return 0, err
		}
		return 1, nil
	}

	bounds := image.Rect(0, 0, texW, texH)
	n := 0
	for _, r := range clip.All() {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		if err := b.Draw(p, rectQuad(r, texW, texH, alloc, p.Layers())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func fullQuad(alloc render.Box, layers int) render.Quad {
	coords := make([]render.TexCoords, layers)
	for i := range coords {
		coords[i] = render.FullTexCoords
	}
	return render.Quad{Rect: alloc, Coords: coords}
}

// rectQuad maps texture rectangle r onto the allocation, which may be
// scaled relative to the texture.
func rectQuad(r image.Rectangle, texW, texH int, alloc render.Box, layers int) render.Quad {
	tw, th := float32(texW), float32(texH)
	tc := render.TexCoords{
		S1: float32(r.Min.X) / tw,
		T1: float32(r.Min.Y) / th,
		S2: float32(r.Max.X) / tw,
		T2: float32(r.Max.Y) / th,
	}
	coords := make([]render.TexCoords, layers)
	for i := range coords {
		coords[i] = tc
	}
	w, h := alloc.Width(), alloc.Height()
	return render.Quad{
		Rect: render.Box{
			X1: alloc.X1 + tc.S1*w,
			Y1: alloc.Y1 + tc.T1*h,
			X2: alloc.X1 + tc.S2*w,
			Y2: alloc.Y1 + tc.T2*h,
		},
		Coords: coords,
	}
}
