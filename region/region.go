// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package region provides an immutable set of integer rectangles.
//
// A Region stores its area as disjoint, non-empty rectangles. All operations
// return new regions; a Region is never modified after construction, so it
// can be shared freely between owners without copying.
//
// A nil *Region is a valid empty region for every read-only method. Callers
// that need a distinct "no region" value (for example "unshaped" or
// "unclipped") compare the pointer against nil before calling methods.
package region

import (
	"image"
	"slices"
)

// Region is an immutable set of disjoint rectangles.
type Region struct {
	rects  []image.Rectangle
	bounds image.Rectangle
}

// New creates a region covering the union of rects.
// Empty rectangles are ignored; overlapping rectangles are split so that
// the stored rectangles are disjoint.
func New(rects ...image.Rectangle) *Region {
	r := &Region{}
	for _, rect := range rects {
		r.rects = addDisjoint(r.rects, rect.Canon())
	}
	r.finish()
	return r
}

// FromRect creates a region covering a single rectangle.
func FromRect(rect image.Rectangle) *Region {
	return New(rect)
}

// Empty returns a new empty region.
func Empty() *Region {
	return &Region{}
}

// finish sorts the rectangles in band order and computes the extents.
func (r *Region) finish() {
	slices.SortFunc(r.rects, func(a, b image.Rectangle) int {
		if a.Min.Y != b.Min.Y {
			return a.Min.Y - b.Min.Y
		}
		return a.Min.X - b.Min.X
	})
	r.bounds = image.Rectangle{}
	for _, rect := range r.rects {
		r.bounds = r.bounds.Union(rect)
	}
}

// IsEmpty reports whether the region covers no pixels.
func (r *Region) IsEmpty() bool {
	return r == nil || len(r.rects) == 0
}

// NumRects returns the number of stored rectangles.
func (r *Region) NumRects() int {
	if r == nil {
		return 0
	}
	return len(r.rects)
}

// Rect returns the i-th rectangle. It panics if i is out of range.
func (r *Region) Rect(i int) image.Rectangle {
	return r.rects[i]
}

// Rects returns a copy of the stored rectangles.
func (r *Region) Rects() []image.Rectangle {
	if r == nil {
		return nil
	}
	return slices.Clone(r.rects)
}

// All iterates over the stored rectangles in band order.
func (r *Region) All() func(yield func(int, image.Rectangle) bool) {
	return func(yield func(int, image.Rectangle) bool) {
		if r == nil {
			return
		}
		for i, rect := range r.rects {
			if !yield(i, rect) {
				return
			}
		}
	}
}

// Extents returns the bounding box of the region.
func (r *Region) Extents() image.Rectangle {
	if r == nil {
		return image.Rectangle{}
	}
	return r.bounds
}

// Area returns the number of pixels covered by the region.
func (r *Region) Area() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, rect := range r.rects {
		n += rect.Dx() * rect.Dy()
	}
	return n
}

// ContainsPoint reports whether p lies inside the region.
func (r *Region) ContainsPoint(p image.Point) bool {
	if r == nil || !p.In(r.bounds) {
		return false
	}
	for _, rect := range r.rects {
		if p.In(rect) {
			return true
		}
	}
	return false
}

// Union returns the union of r and o.
func (r *Region) Union(o *Region) *Region {
	out := &Region{rects: r.Rects()}
	if o != nil {
		for _, rect := range o.rects {
			out.rects = addDisjoint(out.rects, rect)
		}
	}
	out.finish()
	return out
}

// UnionRect returns the union of r and rect.
func (r *Region) UnionRect(rect image.Rectangle) *Region {
	out := &Region{rects: addDisjoint(r.Rects(), rect.Canon())}
	out.finish()
	return out
}

// IntersectRect returns the part of r that lies inside rect.
func (r *Region) IntersectRect(rect image.Rectangle) *Region {
	out := &Region{}
	if r == nil {
		return out
	}
	rect = rect.Canon()
	for _, s := range r.rects {
		if i := s.Intersect(rect); !i.Empty() {
			out.rects = append(out.rects, i)
		}
	}
	out.finish()
	return out
}

// Intersect returns the intersection of r and o.
func (r *Region) Intersect(o *Region) *Region {
	out := &Region{}
	if r == nil || o == nil {
		return out
	}
	for _, a := range r.rects {
		for _, b := range o.rects {
			if i := a.Intersect(b); !i.Empty() {
				out.rects = append(out.rects, i)
			}
		}
	}
	out.finish()
	return out
}

// Subtract returns the part of r that is not covered by o.
func (r *Region) Subtract(o *Region) *Region {
	out := &Region{rects: r.Rects()}
	if o != nil {
		for _, b := range o.rects {
			var next []image.Rectangle
			for _, a := range out.rects {
				next = append(next, subtract(a, b)...)
			}
			out.rects = next
		}
	}
	out.finish()
	return out
}

// Translate returns r shifted by (dx, dy).
func (r *Region) Translate(dx, dy int) *Region {
	out := &Region{rects: r.Rects()}
	d := image.Pt(dx, dy)
	for i := range out.rects {
		out.rects[i] = out.rects[i].Add(d)
	}
	out.finish()
	return out
}

// Equal reports whether r and o cover exactly the same pixels.
func (r *Region) Equal(o *Region) bool {
	if r.Area() != o.Area() || r.Extents() != o.Extents() {
		return false
	}
	return r.Subtract(o).IsEmpty()
}

// addDisjoint adds the parts of rect not already covered by rects.
func addDisjoint(rects []image.Rectangle, rect image.Rectangle) []image.Rectangle {
	if rect.Empty() {
		return rects
	}
	pieces := []image.Rectangle{rect}
	for _, existing := range rects {
		var next []image.Rectangle
		for _, p := range pieces {
			next = append(next, subtract(p, existing)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return rects
		}
	}
	return append(rects, pieces...)
}

// subtract returns up to four rectangles covering a minus b.
func subtract(a, b image.Rectangle) []image.Rectangle {
	i := a.Intersect(b)
	if i.Empty() {
		return []image.Rectangle{a}
	}
	out := make([]image.Rectangle, 0, 4)
	if a.Min.Y < i.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, i.Min.Y))
	}
	if i.Max.Y < a.Max.Y {
		out = append(out, image.Rect(a.Min.X, i.Max.Y, a.Max.X, a.Max.Y))
	}
	if a.Min.X < i.Min.X {
		out = append(out, image.Rect(a.Min.X, i.Min.Y, i.Min.X, i.Max.Y))
	}
	if i.Max.X < a.Max.X {
		out = append(out, image.Rect(i.Max.X, i.Min.Y, a.Max.X, i.Max.Y))
	}
	return out
}
