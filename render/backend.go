// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// Backend errors.
var (
	// ErrUnsupportedFormat is returned for texture formats a backend cannot store.
	ErrUnsupportedFormat = errors.New("render: unsupported texture format")

	// ErrForeignTexture is returned when a texture from another backend is used.
	ErrForeignTexture = errors.New("render: texture belongs to a different backend")

	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("render: texture has been destroyed")

	// ErrOutOfBounds is returned when a rectangle is not inside the texture.
	ErrOutOfBounds = errors.New("render: rectangle outside texture bounds")
)

// Texture is a 2D texture owned by a Backend.
//
// Only two formats are used: gputypes.TextureFormatRGBA8Unorm for window
// contents and gputypes.TextureFormatR8Unorm for alpha masks.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the resources held by the texture.
	// Destroy is idempotent.
	Destroy()
}

// Box is an axis-aligned rectangle in actor (allocation) coordinates.
type Box struct {
	X1, Y1, X2, Y2 float32
}

// BoxFromSize returns the box (0, 0)-(width, height).
func BoxFromSize(width, height float32) Box {
	return Box{X2: width, Y2: height}
}

// Width returns the box width.
func (b Box) Width() float32 { return b.X2 - b.X1 }

// Height returns the box height.
func (b Box) Height() float32 { return b.Y2 - b.Y1 }

// IsEmpty reports whether the box has no area.
func (b Box) IsEmpty() bool { return b.X2 <= b.X1 || b.Y2 <= b.Y1 }

// TexCoords are normalized texture coordinates of a quad's corners.
type TexCoords struct {
	S1, T1, S2, T2 float32
}

// FullTexCoords span the whole texture.
var FullTexCoords = TexCoords{S1: 0, T1: 0, S2: 1, T2: 1}

// Quad is one textured rectangle draw call.
type Quad struct {
	// Rect is the destination rectangle in actor coordinates.
	Rect Box

	// Coords holds the texture coordinates for each pipeline layer,
	// indexed by layer.
	Coords []TexCoords
}

// Pipeline is a shading pipeline instance built from a PipelineTemplate.
//
// A pipeline holds one texture per layer and a constant colour. Layers left
// unset (nil) are skipped by the backend.
type Pipeline interface {
	// Template returns the template this pipeline was built from.
	Template() *PipelineTemplate

	// Layers returns the number of texture layers.
	Layers() int

	// SetLayerTexture binds tex to layer. A nil tex unbinds the layer.
	SetLayerTexture(layer int, tex Texture)

	// LayerTexture returns the texture bound to layer, or nil.
	LayerTexture(layer int) Texture

	// SetColor sets the pipeline colour (premultiplied opacity for
	// paint pipelines, the pick colour for the pick pipeline).
	SetColor(c color.RGBA)

	// Color returns the pipeline colour.
	Color() color.RGBA
}

// Backend is the GPU texture and pipeline collaborator.
//
// Texture upload and readback are synchronous from the caller's point of
// view. Implementations are not safe for concurrent use; all calls happen on
// the thread driving the compositor's main loop.
type Backend interface {
	// NewTexture creates a width x height texture. If data is non-nil it is
	// uploaded as the initial contents using stride bytes per row (0 means
	// tightly packed); otherwise the texture is zero-filled.
	NewTexture(width, height int, format gputypes.TextureFormat, data []byte, stride int) (Texture, error)

	// SubTexture returns a new texture holding a copy of r from tex.
	SubTexture(tex Texture, r image.Rectangle) (Texture, error)

	// UpdateTexture replaces the pixels of r in tex.
	UpdateTexture(tex Texture, r image.Rectangle, data []byte, stride int) error

	// ReadPixels reads r from tex into a tightly packed byte slice.
	ReadPixels(tex Texture, r image.Rectangle) ([]byte, error)

	// NewPipeline instantiates a pipeline from a template.
	NewPipeline(tmpl *PipelineTemplate) (Pipeline, error)

	// Draw issues one textured quad through p.
	Draw(p Pipeline, q Quad) error
}
