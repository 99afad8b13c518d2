package shapedtex

import (
	"image"
	"image/color"

	"github.com/gogpu/shapedtex/render"
)

// Host is the scene-graph actor a ShapedTexture paints for.
type Host interface {
	// QueueRedraw asks for the whole actor to be repainted.
	QueueRedraw()
	// QueueRedrawWithClip asks for r (in texture pixels) to be repainted.
	QueueRedrawWithClip(r image.Rectangle)
	// QueueRelayout reports a change of preferred size.
	QueueRelayout()
	// HasMappedClones reports whether the actor is also shown through a
	// clone, which may reveal parts the unobscured region leaves out.
	HasMappedClones() bool
	// Allocation returns the actor's box in actor coordinates.
	Allocation() render.Box
	// ShouldPickPaint reports whether the current pick pass wants geometry.
	ShouldPickPaint() bool
	// DefaultPick performs the bounding-box pick.
	DefaultPick(c color.RGBA)
}

// Pixmap is a native surface handle. NoPixmap is the absent handle.
type Pixmap uint64

// NoPixmap means no surface contents.
const NoPixmap Pixmap = 0

// PixelSource turns native surfaces into textures and keeps them in sync.
type PixelSource interface {
	// NewTexture creates a texture holding the contents of handle.
	NewTexture(handle Pixmap) (render.Texture, error)
	// UpdateArea copies r of the surface behind tex into tex.
	UpdateArea(tex render.Texture, r image.Rectangle) error
}

// TextureReleaser is implemented by pixel sources that keep per-texture
// state. ReleaseTexture is called right before a texture the source created
// is destroyed.
type TextureReleaser interface {
	ReleaseTexture(tex render.Texture)
}

// PaintContext carries the per-paint parameters.
type PaintContext struct {
	// Opacity is the paint opacity, 255 for opaque.
	Opacity uint8
	// Scale is the on-screen size relative to the texture size. It picks
	// the mipmap level; values of 1 or more paint the base texture.
	Scale float64
}

// Paintable draws itself.
type Paintable interface {
	Paint(pc PaintContext)
}

// Pickable draws itself in a pick colour for hit-testing.
type Pickable interface {
	Pick(pc PaintContext, c color.RGBA)
}

// Surface is the actor-facing contract of a shaped texture.
type Surface interface {
	Paintable
	Pickable
	PreferredWidth(forHeight float32) (minWidth, naturalWidth float32)
	PreferredHeight(forWidth float32) (minHeight, naturalHeight float32)
	PaintVolume() (render.Box, bool)
}
