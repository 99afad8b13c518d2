// Package shapedtex presents a window's live surface contents inside a
// compositing window manager.
//
// # Overview
//
// A ShapedTexture receives damage from a pixel source, keeps a lazily
// refreshed mipmap tower of the surface, synthesizes a translucency mask
// for non-rectangular windows and paints the result clipped to the visible
// region.
//
// # Quick Start
//
//	src := shapedtex.NewImageSource(b)
//	st, err := shapedtex.New(host, shapedtex.WithBackend(b), shapedtex.WithLoop(l))
//	if err != nil {
//	    return err
//	}
//	defer st.Destroy()
//
//	st.SetPixmap(src, src.Add(img))
//	st.SetShapeRegion(region.New(image.Rect(0, 0, 640, 480)))
//	st.Paint(shapedtex.PaintContext{Opacity: 255, Scale: 0.5})
//
// # Architecture
//
// The work is split across packages:
//   - tower: mipmap pyramid regenerated on demand from damaged rectangles
//   - mask: shape region and overlay path rasterized into an A8 mask
//   - clipbatch: clip region turned into a bounded number of quad draws
//   - loop: the single-threaded loop running the remipmap timer
//   - render, backend: the pipeline/texture contract and its backends
//
// # Mipmap freshness
//
// Regenerating mipmaps on every frame of a rapidly updating window is
// wasted work. FreshnessPolicy paints such windows from the base texture
// and schedules one redraw for when the content has settled.
//
// # Logging
//
// Nothing is logged by default. Call SetLogger to enable output.
package shapedtex
