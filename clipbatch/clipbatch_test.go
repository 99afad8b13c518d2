// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package clipbatch

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shapedtex/backend"
	"github.com/gogpu/shapedtex/region"
	"github.com/gogpu/shapedtex/render"
)

func setup(t *testing.T, tmpl *render.PipelineTemplate) (*backend.SoftwareBackend, render.Pipeline) {
	t.Helper()
	b := backend.NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	p, err := b.NewPipeline(tmpl)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return b, p
}

// stripes returns n disjoint 1-pixel-high rectangles.
func stripes(n int) *region.Region {
	rects := make([]image.Rectangle, n)
	for i := range rects {
		rects[i] = image.Rect(0, i*2, 4, i*2+1)
	}
	return region.New(rects...)
}

func TestPaintCallCounts(t *testing.T) {
	alloc := render.BoxFromSize(100, 100)
	tests := []struct {
		name string
		clip *region.Region
		want int
	}{
		{"nil clip", nil, 1},
		{"empty clip", region.Empty(), 0},
		{"one rect", region.New(image.Rect(0, 0, 10, 10)), 1},
		{"at threshold", stripes(DefaultMaxRects), DefaultMaxRects},
		{"over threshold", stripes(DefaultMaxRects + 1), 1},
		{"outside texture", region.New(image.Rect(200, 200, 300, 300)), 0},
		{"mixed", region.New(image.Rect(0, 0, 10, 10), image.Rect(150, 0, 160, 10)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, p := setup(t, render.NewTemplates().Unshaped)
			n, err := Painter{}.Paint(b, p, 100, 100, alloc, tt.clip)
			if err != nil {
				t.Fatalf("Paint() error = %v", err)
			}
			if n != tt.want || len(b.Calls()) != tt.want {
				t.Errorf("Paint() = %d (calls %d), want %d", n, len(b.Calls()), tt.want)
			}
		})
	}
}

func TestPaintFullQuadOverThreshold(t *testing.T) {
	b, p := setup(t, render.NewTemplates().Shaped)
	alloc := render.Box{X1: 10, Y1: 20, X2: 110, Y2: 70}
	if _, err := (Painter{MaxRects: 2}).Paint(b, p, 100, 50, alloc, stripes(3)); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	calls := b.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	q := calls[0].Quad
	if q.Rect != alloc {
		t.Errorf("quad = %+v, want allocation %+v", q.Rect, alloc)
	}
	if len(q.Coords) != 2 || q.Coords[0] != render.FullTexCoords || q.Coords[1] != render.FullTexCoords {
		t.Errorf("coords = %+v, want full coords on both layers", q.Coords)
	}
}

func TestPaintRectCoordinates(t *testing.T) {
	b, p := setup(t, render.NewTemplates().Shaped)
	// Allocation is the texture scaled by 2 and offset.
	alloc := render.Box{X1: 10, Y1: 10, X2: 210, Y2: 110}
	clip := region.New(image.Rect(50, 25, 150, 75)) // clamped to 100x50
	if _, err := (Painter{}).Paint(b, p, 100, 50, alloc, clip); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	q := b.Calls()[0].Quad
	wantTC := render.TexCoords{S1: 0.5, T1: 0.5, S2: 1, T2: 1}
	for i, c := range q.Coords {
		if c != wantTC {
			t.Errorf("layer %d coords = %+v, want %+v", i, c, wantTC)
		}
	}
	wantRect := render.Box{X1: 110, Y1: 60, X2: 210, Y2: 110}
	if q.Rect != wantRect {
		t.Errorf("quad = %+v, want %+v", q.Rect, wantRect)
	}
}

func TestPaintPixels(t *testing.T) {
	b, p := setup(t, render.NewTemplates().Unshaped)
	target := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b.SetTarget(target)

	data := make([]byte, 4*4*4)
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+3] = 255, 255
	}
	tex, _ := b.NewTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, data, 0)
	p.SetLayerTexture(0, tex)
	p.SetColor(render.OpacityColor(255))

	clip := region.New(image.Rect(0, 0, 2, 2))
	if _, err := (Painter{}).Paint(b, p, 4, 4, render.BoxFromSize(4, 4), clip); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	if got := target.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("clipped-in pixel = %v, want red", got)
	}
	if got := target.RGBAAt(3, 3); got != (color.RGBA{}) {
		t.Errorf("clipped-out pixel = %v, want transparent", got)
	}
}

type failingBackend struct {
	*backend.SoftwareBackend
}

var errDraw = errors.New("draw failed")

func (failingBackend) Draw(render.Pipeline, render.Quad) error { return errDraw }

func TestPaintDrawError(t *testing.T) {
	b, p := setup(t, render.NewTemplates().Unshaped)
	n, err := (Painter{}).Paint(failingBackend{b}, p, 4, 4, render.BoxFromSize(4, 4), nil)
	if !errors.Is(err, errDraw) || n != 0 {
		t.Errorf("Paint() = %d, %v, want 0, errDraw", n, err)
	}
}

func TestPaintZeroTexture(t *testing.T) {
	b, p := setup(t, render.NewTemplates().Unshaped)
	if n, _ := (Painter{}).Paint(b, p, 0, 0, render.BoxFromSize(4, 4), nil); n != 0 {
		t.Errorf("Paint(0x0) = %d, want 0", n)
	}
}
