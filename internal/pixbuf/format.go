// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import "github.com/gogpu/gputypes"

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatA8 is an 8-bit alpha-only format (1 byte per pixel).
	// Shape masks are stored in this format.
	FormatA8 Format = iota

	// FormatRGBA8 is 32-bit non-premultiplied RGBA (4 bytes per pixel).
	// This is the single colour format window contents are kept in.
	FormatRGBA8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatA8:
		return 1
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatA8:
		return "A8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return "Unknown"
	}
}

// GPUFormat returns the WebGPU texture format with the same memory layout.
// Alpha masks are uploaded as single-channel R8 textures and sampled as alpha.
func (f Format) GPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatA8:
		return gputypes.TextureFormatR8Unorm
	case FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// FormatFromGPU maps a WebGPU texture format back to a storage format.
// The second result is false for formats this package cannot store.
func FormatFromGPU(f gputypes.TextureFormat) (Format, bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return FormatA8, true
	case gputypes.TextureFormatRGBA8Unorm:
		return FormatRGBA8, true
	default:
		return formatCount, false
	}
}
