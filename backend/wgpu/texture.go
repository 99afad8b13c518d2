package wgpu

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	gpu "github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/shapedtex/internal/pixbuf"
)

// DefaultTextureUsage is the usage of every texture created by the backend.
const DefaultTextureUsage = gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// Texture is a GPU texture with a CPU shadow copy.
//
// The shadow copy serves readback (sub-textures, mipmap regeneration,
// flattening) without a GPU round trip. On a host device the texture and
// its view also exist on the GPU and every write is uploaded through the
// host queue.
type Texture struct {
	owner *Backend

	textureID core.TextureID
	viewID    core.TextureViewID
	desc      gputypes.TextureDescriptor

	gpuTexture *gpu.Texture
	gpuView    *gpu.TextureView

	shadow   *pixbuf.Buffer
	released atomic.Bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.shadow.Width() }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.shadow.Height() }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Label returns the debug label.
func (t *Texture) Label() string { return t.desc.Label }

// TextureID returns the texture handle.
func (t *Texture) TextureID() core.TextureID { return t.textureID }

// ViewID returns the texture view handle.
func (t *Texture) ViewID() core.TextureViewID { return t.viewID }

// View returns the device texture view, or nil without a host device.
func (t *Texture) View() *gpu.TextureView { return t.gpuView }

// OnDevice reports whether the texture lives on the host device.
func (t *Texture) OnDevice() bool { return t.gpuTexture != nil }

// SizeBytes returns the texture size in bytes.
func (t *Texture) SizeBytes() int { return len(t.shadow.Data()) }

// IsReleased returns true if the texture has been destroyed.
func (t *Texture) IsReleased() bool { return t.released.Load() }

// Destroy releases the texture handles. Destroy is idempotent.
func (t *Texture) Destroy() {
	if t.released.Swap(true) {
		return
	}
	t.owner.releaseTexture(t)
}

// upload writes r of the shadow copy to the device texture.
func (t *Texture) upload(queue *gpu.Queue, r image.Rectangle) error {
	if t.gpuTexture == nil {
		return nil
	}
	sub, err := t.shadow.Crop(r)
	if err != nil {
		return err
	}
	bpp := t.shadow.Format().BytesPerPixel()
	return queue.WriteTexture(
		&gpu.ImageCopyTexture{
			Texture: t.gpuTexture,
			Origin:  gpu.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y)}, //nolint:gosec // inside texture bounds
			Aspect:  gputypes.TextureAspectAll,
		},
		sub.Data(),
		&gpu.ImageDataLayout{
			BytesPerRow:  uint32(r.Dx() * bpp), //nolint:gosec // inside texture bounds
			RowsPerImage: uint32(r.Dy()),       //nolint:gosec // inside texture bounds
		},
		&gpu.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1}, //nolint:gosec // inside texture bounds
	)
}
