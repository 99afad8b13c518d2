// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import "math"

// LevelCount returns the number of mipmap levels for a width x height base,
// counting the base itself. Each level halves both dimensions (never below
// one pixel) until the larger dimension reaches 1.
//
// Returns 0 for an empty base.
func LevelCount(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return 1 + int(math.Floor(math.Log2(float64(max(width, height)))))
}

// LevelSize returns the dimensions of mipmap level n of a width x height base.
func LevelSize(width, height, n int) (int, int) {
	return max(1, width>>n), max(1, height>>n)
}

// Downsample fills dst with a 2x box-filtered copy of src: dst pixel (x, y)
// is the average of src pixels (2x..2x+1, 2y..2y+1). Samples that fall past
// the right or bottom edge of src are clamped to the last row or column, so
// odd-sized sources are handled the way a full mipmap chain expects.
//
// Both buffers must share a format.
func Downsample(dst, src *Buffer) error {
	if dst.format != src.format {
		return ErrInvalidFormat
	}
	srcW, srcH := src.width, src.height
	bpp := src.format.BytesPerPixel()

	for dy := 0; dy < dst.height; dy++ {
		sy0 := min(dy*2, srcH-1)
		sy1 := min(dy*2+1, srcH-1)
		row0 := src.data[sy0*src.stride:]
		row1 := src.data[sy1*src.stride:]
		out := dst.data[dy*dst.stride:]

		for dx := 0; dx < dst.width; dx++ {
			sx0 := min(dx*2, srcW-1) * bpp
			sx1 := min(dx*2+1, srcW-1) * bpp
			o := dx * bpp

			// Average the 2x2 block channel by channel
			for c := 0; c < bpp; c++ {
				sum := uint16(row0[sx0+c]) + uint16(row0[sx1+c]) +
					uint16(row1[sx0+c]) + uint16(row1[sx1+c])
				out[o+c] = byte(sum / 4)
			}
		}
	}
	return nil
}
