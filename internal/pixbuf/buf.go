// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pixbuf provides CPU pixel buffers for window contents and masks.
//
// Buffers back the software render backend, the CPU shadow copies of GPU
// textures, and the scratch space used while regenerating mipmap levels.
package pixbuf

import (
	"errors"
	"image"
	"image/color"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("pixbuf: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("pixbuf: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("pixbuf: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("pixbuf: data buffer too small")

	// ErrOutOfBounds is returned when a pixel or rectangle lies outside the buffer.
	ErrOutOfBounds = errors.New("pixbuf: coordinates out of bounds")
)

// Buffer is a contiguous pixel buffer with an optional row stride.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// New creates a zero-initialized buffer with the given dimensions and format.
func New(width, height int, format Format) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &Buffer{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw wraps existing data without copying.
// The caller must ensure data remains valid for the lifetime of the Buffer.
// A stride of 0 means tightly packed rows.
func FromRaw(data []byte, width, height int, format Format, stride int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	minStride := format.RowBytes(width)
	if stride == 0 {
		stride = minStride
	}
	if stride < minStride {
		return nil, ErrInvalidStride
	}

	requiredSize := stride*(height-1) + minStride
	if len(data) < requiredSize {
		return nil, ErrDataTooSmall
	}

	return &Buffer{
		data:   data,
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Stride returns the number of bytes per row (including padding).
func (b *Buffer) Stride() int { return b.stride }

// Format returns the pixel format.
func (b *Buffer) Format() Format { return b.format }

// Bounds returns the buffer extent with its origin at (0, 0).
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Data returns the raw pixel data slice.
func (b *Buffer) Data() []byte { return b.data }

// IsEmpty returns true if the buffer has zero dimensions.
func (b *Buffer) IsEmpty() bool {
	return b == nil || b.width == 0 || b.height == 0
}

// Clone creates a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Buffer{
		data:   data,
		width:  b.width,
		height: b.height,
		stride: b.stride,
		format: b.format,
	}
}

// RowBytes returns the pixel bytes of row y, without padding.
// Returns nil if y is out of bounds.
func (b *Buffer) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *Buffer) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// GetRGBA returns the colour at (x, y) in 0-255 range.
// For A8 buffers the colour channels are 0.
// Returns (0,0,0,0) if coordinates are out of bounds.
func (b *Buffer) GetRGBA(x, y int) (r, g, bl, a uint8) {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return 0, 0, 0, 0
	}
	switch b.format {
	case FormatA8:
		return 0, 0, 0, b.data[offset]
	case FormatRGBA8:
		return b.data[offset], b.data[offset+1], b.data[offset+2], b.data[offset+3]
	default:
		return 0, 0, 0, 0
	}
}

// SetRGBA sets the colour at (x, y). A8 buffers keep only the alpha.
// Returns ErrOutOfBounds if coordinates are outside the buffer.
func (b *Buffer) SetRGBA(x, y int, r, g, bl, a uint8) error {
	offset := b.PixelOffset(x, y)
	if offset < 0 {
		return ErrOutOfBounds
	}
	switch b.format {
	case FormatA8:
		b.data[offset] = a
	case FormatRGBA8:
		b.data[offset] = r
		b.data[offset+1] = g
		b.data[offset+2] = bl
		b.data[offset+3] = a
	}
	return nil
}

// Clear sets all pixels to zero.
func (b *Buffer) Clear() {
	clear(b.data)
}

// FillRect sets every byte of the pixels in r (clipped to the buffer) to v.
func (b *Buffer) FillRect(r image.Rectangle, v byte) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	bpp := b.format.BytesPerPixel()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.data[y*b.stride+r.Min.X*bpp : y*b.stride+r.Max.X*bpp]
		for i := range row {
			row[i] = v
		}
	}
}

// Crop copies the pixels in r into a new tightly packed buffer.
// Returns ErrOutOfBounds if r is empty or not fully inside the buffer.
func (b *Buffer) Crop(r image.Rectangle) (*Buffer, error) {
	if r.Empty() || !r.In(b.Bounds()) {
		return nil, ErrOutOfBounds
	}
	out, err := New(r.Dx(), r.Dy(), b.format)
	if err != nil {
		return nil, err
	}
	bpp := b.format.BytesPerPixel()
	for y := 0; y < r.Dy(); y++ {
		src := b.data[(r.Min.Y+y)*b.stride+r.Min.X*bpp:]
		copy(out.data[y*out.stride:(y+1)*out.stride], src[:out.stride])
	}
	return out, nil
}

// Blit copies src into b with src's origin placed at dp.
// Pixels falling outside b are dropped. Formats must match.
func (b *Buffer) Blit(dp image.Point, src *Buffer) error {
	if src.format != b.format {
		return ErrInvalidFormat
	}
	dr := src.Bounds().Add(dp).Intersect(b.Bounds())
	if dr.Empty() {
		return nil
	}
	bpp := b.format.BytesPerPixel()
	n := dr.Dx() * bpp
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		sy := y - dp.Y
		sx := dr.Min.X - dp.X
		copy(b.data[y*b.stride+dr.Min.X*bpp:y*b.stride+dr.Min.X*bpp+n],
			src.data[sy*src.stride+sx*bpp:sy*src.stride+sx*bpp+n])
	}
	return nil
}

// Image returns an image.Image view sharing the buffer memory:
// *image.Alpha for A8 and *image.NRGBA for RGBA8.
func (b *Buffer) Image() image.Image {
	switch b.format {
	case FormatA8:
		return &image.Alpha{Pix: b.data, Stride: b.stride, Rect: b.Bounds()}
	default:
		return &image.NRGBA{Pix: b.data, Stride: b.stride, Rect: b.Bounds()}
	}
}

// FromImage converts img into a new buffer of the given format.
// Colour is dropped for A8; non-premultiplied colour is kept for RGBA8.
func FromImage(img image.Image, format Format) (*Buffer, error) {
	r := img.Bounds()
	b, err := New(r.Dx(), r.Dy(), format)
	if err != nil {
		return nil, err
	}
	switch src := img.(type) {
	case *image.NRGBA:
		if format == FormatRGBA8 {
			for y := 0; y < r.Dy(); y++ {
				copy(b.RowBytes(y), src.Pix[src.PixOffset(r.Min.X, r.Min.Y+y):])
			}
			return b, nil
		}
	case *image.Alpha:
		if format == FormatA8 {
			for y := 0; y < r.Dy(); y++ {
				copy(b.RowBytes(y), src.Pix[src.PixOffset(r.Min.X, r.Min.Y+y):])
			}
			return b, nil
		}
	}
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := img.At(r.Min.X+x, r.Min.Y+y)
			nc := nrgbaModel(c)
			_ = b.SetRGBA(x, y, nc.R, nc.G, nc.B, nc.A)
		}
	}
	return b, nil
}

func nrgbaModel(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
