package shapedtex

import (
	"image"

	"github.com/gogpu/shapedtex/internal/blend"
	"github.com/gogpu/shapedtex/internal/pixbuf"
	"github.com/gogpu/shapedtex/render"
)

// GetImage flattens the texture and its mask into a standalone image.
//
// clip, in texture pixels, is clamped to the texture; nil means the whole
// texture. The result has its origin at (0, 0) and the size of the clamped
// rectangle. Where a mask exists it is applied with the destination-in rule:
// colour is kept and alpha is multiplied by the mask. GetImage returns nil
// without a texture, when the clamp is empty, or when readback fails.
func (st *ShapedTexture) GetImage(clip *image.Rectangle) *image.NRGBA {
	if st.destroyed || st.texture == nil || st.texW == 0 || st.texH == 0 {
		return nil
	}
	r := image.Rect(0, 0, st.texW, st.texH)
	if clip != nil {
		r = clip.Intersect(r)
		if r.Empty() {
			return nil
		}
	}

	out, err := st.readNRGBA(st.texture, r)
	if err != nil {
		st.log.Warn("shapedtex: texture readback failed", "rect", r, "error", err)
		return nil
	}

	var maskTex render.Texture
	if st.mask.Needed() {
		maskTex = st.mask.Ensure(st.texW, st.texH)
	}
	if maskTex == nil {
		return out
	}
	coverage, err := st.backend.ReadPixels(maskTex, r)
	if err != nil {
		st.log.Warn("shapedtex: mask readback failed", "rect", r, "error", err)
		return out
	}
	destinationIn(out, coverage, r.Dx())
	return out
}

// readNRGBA reads r of tex into a new image with its origin at (0, 0).
func (st *ShapedTexture) readNRGBA(tex render.Texture, r image.Rectangle) (*image.NRGBA, error) {
	data, err := st.backend.ReadPixels(tex, r)
	if err != nil {
		return nil, err
	}
	f, ok := pixbuf.FormatFromGPU(tex.Format())
	if !ok {
		return nil, render.ErrUnsupportedFormat
	}
	buf, err := pixbuf.FromRaw(data, r.Dx(), r.Dy(), f, 0)
	if err != nil {
		return nil, err
	}
	if f != pixbuf.FormatRGBA8 {
		if buf, err = pixbuf.FromImage(buf.Image(), pixbuf.FormatRGBA8); err != nil {
			return nil, err
		}
	}
	return &image.NRGBA{
		Pix:    buf.Clone().Data(),
		Stride: buf.Stride(),
		Rect:   image.Rect(0, 0, r.Dx(), r.Dy()),
	}, nil
}

// destinationIn composites a tightly packed A8 coverage buffer of the given
// width into img with the destination-in operator.
func destinationIn(img *image.NRGBA, coverage []byte, width int) {
	for y := 0; y < img.Rect.Dy(); y++ {
		blend.MaskAlphaSpan(img.Pix[y*img.Stride:], coverage[y*width:], img.Rect.Dx(), blend.BlendDestinationIn)
	}
}
