// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import "testing"

func TestLevelCount(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantLevels int
	}{
		{"64x64 square", 64, 64, 7},
		{"128x64 rectangle", 128, 64, 8},
		{"1x1 minimum", 1, 1, 1},
		{"100x50 odd dimensions", 100, 50, 7},
		{"empty", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelCount(tt.width, tt.height); got != tt.wantLevels {
				t.Errorf("LevelCount() = %d, want %d", got, tt.wantLevels)
			}
		})
	}
}

func TestLevelSize(t *testing.T) {
	w, h := LevelSize(100, 50, 3)
	if w != 12 || h != 6 {
		t.Errorf("LevelSize(100,50,3) = %dx%d, want 12x6", w, h)
	}
	w, h = LevelSize(100, 50, 6)
	if w != 1 || h != 1 {
		t.Errorf("LevelSize(100,50,6) = %dx%d, want 1x1", w, h)
	}
}

func TestDownsampleBoxFilter(t *testing.T) {
	src, _ := New(4, 2, FormatRGBA8)
	// Left 2x2 block: red 0 and 200; right block: solid 100.
	_ = src.SetRGBA(0, 0, 0, 0, 0, 255)
	_ = src.SetRGBA(1, 0, 200, 0, 0, 255)
	_ = src.SetRGBA(0, 1, 0, 0, 0, 255)
	_ = src.SetRGBA(1, 1, 200, 0, 0, 255)
	for y := 0; y < 2; y++ {
		for x := 2; x < 4; x++ {
			_ = src.SetRGBA(x, y, 100, 100, 100, 100)
		}
	}

	dst, _ := New(2, 1, FormatRGBA8)
	if err := Downsample(dst, src); err != nil {
		t.Fatalf("Downsample() error = %v", err)
	}
	if r, _, _, a := dst.GetRGBA(0, 0); r != 100 || a != 255 {
		t.Errorf("left = r%d a%d, want r100 a255", r, a)
	}
	if r, g, b, a := dst.GetRGBA(1, 0); r != 100 || g != 100 || b != 100 || a != 100 {
		t.Errorf("right = (%d,%d,%d,%d), want all 100", r, g, b, a)
	}
}

func TestDownsampleOddClamps(t *testing.T) {
	src, _ := New(3, 1, FormatA8)
	_ = src.SetRGBA(2, 0, 0, 0, 0, 200)

	dst, _ := New(2, 1, FormatA8)
	if err := Downsample(dst, src); err != nil {
		t.Fatalf("Downsample() error = %v", err)
	}
	// Column 1 samples x=2 twice (clamped) on a single row sampled twice.
	if _, _, _, a := dst.GetRGBA(1, 0); a != 200 {
		t.Errorf("edge alpha = %d, want 200", a)
	}
}

func TestDownsampleFormatMismatch(t *testing.T) {
	src, _ := New(2, 2, FormatA8)
	dst, _ := New(1, 1, FormatRGBA8)
	if err := Downsample(dst, src); err == nil {
		t.Error("Downsample() with mismatched formats should fail")
	}
}
