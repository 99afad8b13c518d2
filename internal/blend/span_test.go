package blend

import (
	"slices"
	"testing"
)

func TestBlendSpan(t *testing.T) {
	dst := []byte{0, 0, 255, 255, 0, 0, 255, 255, 9, 9, 9, 9}
	src := []byte{255, 0, 0, 255, 0, 0, 0, 0, 1, 1, 1, 1}
	BlendSpan(dst, src, 2, BlendSourceOver)
	want := []byte{255, 0, 0, 255, 0, 0, 255, 255, 9, 9, 9, 9}
	if !slices.Equal(dst, want) {
		t.Errorf("BlendSpan() = %v, want %v (third pixel untouched)", dst, want)
	}
}

func TestMaskSpan(t *testing.T) {
	tests := []struct {
		name     string
		mode     BlendMode
		coverage []byte
		want     []byte
	}{
		{"in", BlendDestinationIn, []byte{0, 255}, []byte{0, 0, 0, 0, 200, 100, 50, 255}},
		{"out", BlendDestinationOut, []byte{0, 255}, []byte{200, 100, 50, 255, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := []byte{200, 100, 50, 255, 200, 100, 50, 255}
			MaskSpan(dst, tt.coverage, 2, tt.mode)
			if !slices.Equal(dst, tt.want) {
				t.Errorf("MaskSpan() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestMaskAlphaSpan(t *testing.T) {
	dst := []byte{200, 0, 0, 255, 200, 0, 0, 255, 200, 0, 0, 128}
	MaskAlphaSpan(dst, []byte{0, 128, 128}, 3, BlendDestinationIn)
	want := []byte{200, 0, 0, 0, 200, 0, 0, 128, 200, 0, 0, 64}
	if !slices.Equal(dst, want) {
		t.Errorf("MaskAlphaSpan() = %v, want %v", dst, want)
	}
}
