// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mask

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// Verb is a path construction command.
type Verb uint8

// Path verbs.
const (
	VerbMoveTo Verb = iota
	VerbLineTo
	VerbQuadTo
	VerbCubicTo
	VerbClose
)

// Path is a vector outline filled into the overlay part of a mask.
//
// A Path has a single owner. Handing it to a mask builder moves its
// contents with Take; the caller's Path is left empty and reports Moved.
type Path struct {
	verbs  []Verb
	points []float32
	startX float32
	startY float32
	curX   float32
	curY   float32
	moved  bool
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]Verb, 0, 16),
		points: make([]float32, 0, 64),
	}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.verbs = append(p.verbs, VerbMoveTo)
	p.points = append(p.points, float32(x), float32(y))
	p.startX, p.startY = float32(x), float32(y)
	p.curX, p.curY = float32(x), float32(y)
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbLineTo)
	p.points = append(p.points, float32(x), float32(y))
	p.curX, p.curY = float32(x), float32(y)
}

// QuadTo adds a quadratic Bezier curve with control point (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(cx, cy)
	}
	p.verbs = append(p.verbs, VerbQuadTo)
	p.points = append(p.points, float32(cx), float32(cy), float32(x), float32(y))
	p.curX, p.curY = float32(x), float32(y)
}

// CubicTo adds a cubic Bezier curve with control points (c1x, c1y) and (c2x, c2y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.verbs = append(p.verbs, VerbCubicTo)
	p.points = append(p.points,
		float32(c1x), float32(c1y),
		float32(c2x), float32(c2y),
		float32(x), float32(y))
	p.curX, p.curY = float32(x), float32(y)
}

// Close closes the current subpath.
func (p *Path) Close() {
	if len(p.verbs) == 0 {
		return
	}
	p.verbs = append(p.verbs, VerbClose)
	p.curX, p.curY = p.startX, p.startY
}

// Rectangle adds a closed axis-aligned rectangle.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// RoundedRectangle adds a rectangle with corners of radius r, the usual
// shape of a decorated window's top edge.
func (p *Path) RoundedRectangle(x, y, w, h, r float64) {
	r = min(r, math.Min(w, h)/2)
	const k = 0.5522847498307936 // Bezier circle approximation constant
	ctl := r * k

	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CubicTo(x+w-r+ctl, y, x+w, y+r-ctl, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CubicTo(x+w, y+h-r+ctl, x+w-r+ctl, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CubicTo(x+r-ctl, y+h, x, y+h-r+ctl, x, y+h-r)
	p.LineTo(x, y+r)
	p.CubicTo(x, y+r-ctl, x+r-ctl, y, x+r, y)
	p.Close()
}

// Circle adds a circle centred on (cx, cy).
func (p *Path) Circle(cx, cy, r float64) {
	const k = 0.5522847498307936
	o := r * k

	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+o, cx+o, cy+r, cx, cy+r)
	p.CubicTo(cx-o, cy+r, cx-r, cy+o, cx-r, cy)
	p.CubicTo(cx-r, cy-o, cx-o, cy-r, cx, cy-r)
	p.CubicTo(cx+o, cy-r, cx+r, cy-o, cx+r, cy)
	p.Close()
}

// IsEmpty reports whether the path has no elements. A nil path is empty.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.verbs) == 0
}

// Moved reports whether the contents were taken by Take.
func (p *Path) Moved() bool {
	return p != nil && p.moved
}

// Verbs returns the verbs of the path.
func (p *Path) Verbs() []Verb { return p.verbs }

// Points returns the flattened x, y coordinates consumed by the verbs.
func (p *Path) Points() []float32 { return p.points }

// Take moves the contents of p into a new Path and leaves p empty and
// marked moved. Take on nil returns nil.
func (p *Path) Take() *Path {
	if p == nil {
		return nil
	}
	out := &Path{
		verbs:  p.verbs,
		points: p.points,
		startX: p.startX,
		startY: p.startY,
		curX:   p.curX,
		curY:   p.curY,
	}
	*p = Path{moved: true}
	return out
}

// Bounds returns the integer bounding box of the control points.
func (p *Path) Bounds() image.Rectangle {
	if p.IsEmpty() || len(p.points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p.points[0], p.points[1]
	maxX, maxY := minX, minY
	for i := 2; i+1 < len(p.points); i += 2 {
		minX, maxX = min(minX, p.points[i]), max(maxX, p.points[i])
		minY, maxY = min(minY, p.points[i+1]), max(maxY, p.points[i+1])
	}
	return image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
}

// appendTo replays the path into a rasterizer. Open subpaths are closed,
// as a fill implies.
func (p *Path) appendTo(z *vector.Rasterizer) {
	pts := p.points
	open := false
	for _, v := range p.verbs {
		switch v {
		case VerbMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pts[0], pts[1])
			pts = pts[2:]
		case VerbLineTo:
			z.LineTo(pts[0], pts[1])
			pts = pts[2:]
		case VerbQuadTo:
			z.QuadTo(pts[0], pts[1], pts[2], pts[3])
			pts = pts[4:]
		case VerbCubicTo:
			z.CubeTo(pts[0], pts[1], pts[2], pts[3], pts[4], pts[5])
			pts = pts[6:]
		case VerbClose:
			z.ClosePath()
		}
		open = v != VerbClose
	}
	if open {
		z.ClosePath()
	}
}
