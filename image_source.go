package shapedtex

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shapedtex/internal/pixbuf"
	"github.com/gogpu/shapedtex/render"
)

// Image source errors.
var (
	// ErrUnknownPixmap is returned for handles the source never issued.
	ErrUnknownPixmap = errors.New("shapedtex: unknown pixmap")

	// ErrUnknownTexture is returned when updating a texture the source did
	// not create.
	ErrUnknownTexture = errors.New("shapedtex: texture not created by this source")
)

// ImageSource is a PixelSource over in-memory images. Hosts without a
// native window system, tests and offline tools use it.
type ImageSource struct {
	backend  render.Backend
	images   map[Pixmap]*image.NRGBA
	textures map[render.Texture]Pixmap
	next     Pixmap
}

// NewImageSource creates a source uploading textures through b.
func NewImageSource(b render.Backend) *ImageSource {
	return &ImageSource{
		backend:  b,
		images:   make(map[Pixmap]*image.NRGBA),
		textures: make(map[render.Texture]Pixmap),
	}
}

// Add registers a copy of img and returns its handle.
func (s *ImageSource) Add(img image.Image) Pixmap {
	s.next++
	s.images[s.next] = toNRGBA(img)
	return s.next
}

// Draw copies img into the surface behind handle at p, as a client
// drawing into its window would. The texture is not touched until
// UpdateArea is called for the damaged rectangle.
func (s *ImageSource) Draw(handle Pixmap, p image.Point, img image.Image) error {
	dst, ok := s.images[handle]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPixmap, handle)
	}
	src, err := pixbuf.FromImage(img, pixbuf.FormatRGBA8)
	if err != nil {
		return err
	}
	surface, err := pixbuf.FromRaw(dst.Pix, dst.Rect.Dx(), dst.Rect.Dy(), pixbuf.FormatRGBA8, dst.Stride)
	if err != nil {
		return err
	}
	return surface.Blit(p, src)
}

// Image returns the surface behind handle, or nil.
func (s *ImageSource) Image(handle Pixmap) *image.NRGBA {
	return s.images[handle]
}

// NewTexture uploads the surface behind handle as an RGBA8 texture.
func (s *ImageSource) NewTexture(handle Pixmap) (render.Texture, error) {
	img, ok := s.images[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPixmap, handle)
	}
	b := img.Bounds()
	tex, err := s.backend.NewTexture(b.Dx(), b.Dy(), gputypes.TextureFormatRGBA8Unorm, img.Pix, img.Stride)
	if err != nil {
		return nil, err
	}
	s.textures[tex] = handle
	return tex, nil
}

// UpdateArea copies r of the surface into tex. r is clamped to the surface.
func (s *ImageSource) UpdateArea(tex render.Texture, r image.Rectangle) error {
	handle, ok := s.textures[tex]
	if !ok {
		return ErrUnknownTexture
	}
	img := s.images[handle]
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil
	}
	buf, err := pixbuf.FromImage(img.SubImage(r), pixbuf.FormatRGBA8)
	if err != nil {
		return err
	}
	return s.backend.UpdateTexture(tex, r, buf.Data(), buf.Stride())
}

// ReleaseTexture forgets tex. UpdateArea on it fails afterwards.
func (s *ImageSource) ReleaseTexture(tex render.Texture) {
	delete(s.textures, tex)
}

// Textures returns the number of live textures created by the source.
func (s *ImageSource) Textures() int { return len(s.textures) }

// toNRGBA copies img into a new NRGBA image with its origin at (0, 0),
// keeping non-premultiplied colour exact.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	buf, err := pixbuf.FromImage(img, pixbuf.FormatRGBA8)
	if err != nil {
		return image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	return &image.NRGBA{Pix: buf.Data(), Stride: buf.Stride(), Rect: buf.Bounds()}
}

var (
	_ PixelSource     = (*ImageSource)(nil)
	_ TextureReleaser = (*ImageSource)(nil)
)
