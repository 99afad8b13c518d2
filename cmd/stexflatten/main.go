// Command stexflatten replays a damage schedule against a shaped texture
// and writes the flattened result.
//
// The surface is loaded from a PNG (or a generated checkerboard), shaped
// by the regions and overlay path of a TOML scene, and damaged step by step
// on a simulated clock. Each step prints one trace line with the freshness
// state and the draw calls the paint issued.
//
// Usage:
//
//	stexflatten -config scene.toml -input window.png -output flat.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/shapedtex"
	"github.com/gogpu/shapedtex/backend"
	wgpubackend "github.com/gogpu/shapedtex/backend/wgpu"
	"github.com/gogpu/shapedtex/loop"
	"github.com/gogpu/shapedtex/render"
)

// errNoImage is returned when the replay leaves no texture to flatten.
var errNoImage = errors.New("stexflatten: nothing to flatten")

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	config  string
	input   string
	output  string
	target  string
	backend string
	width   int
	height  int
	scale   float64
	opacity int
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("stexflatten", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "scene TOML file")
	fs.StringVar(&f.input, "input", "", "surface PNG (default: generated checkerboard)")
	fs.StringVar(&f.output, "output", "flat.png", "flattened output PNG")
	fs.StringVar(&f.target, "target", "", "composited output PNG of the final paint (software backend)")
	fs.StringVar(&f.backend, "backend", backend.BackendSoftware, "render backend, empty for the default")
	fs.IntVar(&f.width, "width", 64, "checkerboard width")
	fs.IntVar(&f.height, "height", 64, "checkerboard height")
	fs.Float64Var(&f.scale, "scale", 1, "paint scale")
	fs.IntVar(&f.opacity, "opacity", 255, "paint opacity, 0-255")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.opacity < 0 || f.opacity > 255 {
		return f, fmt.Errorf("stexflatten: opacity %d out of range", f.opacity)
	}
	return f, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	shapedtex.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	sc, err := loadScene(f.config)
	if err != nil {
		return err
	}
	surface, err := loadSurface(f)
	if err != nil {
		return err
	}

	b, err := backend.Open(f.backend)
	if err != nil {
		return fmt.Errorf("stexflatten: open backend %q: %w", f.backend, err)
	}
	defer b.Close()

	host := &traceHost{alloc: render.BoxFromSize(float32(surface.Bounds().Dx()), float32(surface.Bounds().Dy()))}
	if len(sc.Alloc) == 2 {
		host.alloc = render.BoxFromSize(sc.Alloc[0], sc.Alloc[1])
	}
	clock := loop.NewManual(epoch)
	st, err := shapedtex.New(host,
		shapedtex.WithConfig(sc.Config),
		shapedtex.WithBackend(b),
		shapedtex.WithLoop(clock),
	)
	if err != nil {
		return err
	}
	defer st.Destroy()

	src := shapedtex.NewImageSource(b)
	handle := src.Add(surface)
	st.SetPixmap(src, handle)
	st.SetShapeRegion(sc.shapeRegion())
	st.SetOverlayPath(sc.overlayRegion(), sc.overlayPath())
	st.SetClipRegion(sc.clipRegion())
	st.SetUnobscuredRegion(sc.unobscuredRegion())

	pc := shapedtex.PaintContext{Opacity: uint8(f.opacity), Scale: f.scale} //nolint:gosec // range checked
	r := &replay{st: st, b: b, host: host, clock: clock, src: src, handle: handle, pc: pc, out: stdout}
	if err := r.run(sc); err != nil {
		return err
	}

	if f.target != "" {
		if err := r.composite(f.target); err != nil {
			return err
		}
	}

	img := st.GetImage(nil)
	if img == nil {
		return errNoImage
	}
	return writePNG(f.output, img)
}

// replay drives a shaped texture through a damage schedule.
type replay struct {
	st     *shapedtex.ShapedTexture
	b      backend.RenderBackend
	host   *traceHost
	clock  *loop.Manual
	src    *shapedtex.ImageSource
	handle shapedtex.Pixmap
	pc     shapedtex.PaintContext
	out    io.Writer
}

func (r *replay) run(sc scene) error {
	unobscured := sc.unobscuredRegion()
	for _, d := range sc.Damage {
		if wait := epoch.Add(d.at()).Sub(r.clock.Now()); wait > 0 {
			r.clock.Advance(wait)
		}
		rect, _ := toRect(d.Rect)
		if d.Fill != "" {
			c, _ := parseColor(d.Fill)
			if err := r.src.Draw(r.handle, rect.Min, solid(rect.Dx(), rect.Dy(), c)); err != nil {
				return err
			}
		}
		queued := r.st.UpdateArea(rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), unobscured)
		draws := 0
		if d.Paint {
			draws = r.paint()
		}
		r.trace("damage", draws, queued)
	}

	// Let the content settle so a deferred remipmap fires, then paint from
	// the tower.
	before := r.host.requests()
	if r.st.Freshness().Pending() {
		r.clock.Advance(sc.Config.MinMipmapAge())
	}
	r.trace("settle", r.paint(), r.host.requests() > before)
	return nil
}

// paint paints once and returns the number of draw calls issued.
func (r *replay) paint() int {
	r.st.Paint(r.pc)
	return flush(r.b)
}

func (r *replay) trace(step string, draws int, redraw bool) {
	now := r.clock.Now()
	fmt.Fprintf(r.out, "%8v  %-6s %-11s fast=%-2d draws=%-2d redraw=%-5t mask_builds=%d\n",
		now.Sub(epoch), step, r.st.Freshness().State(now), r.st.Freshness().FastUpdates(),
		draws, redraw, r.st.Mask().Builds())
}

// composite paints once more onto an allocation-sized canvas and writes it.
func (r *replay) composite(path string) error {
	sb, ok := r.b.(*backend.SoftwareBackend)
	if !ok {
		shapedtex.Logger().Warn("stexflatten: -target needs the software backend", "backend", r.b.Name())
		return nil
	}
	alloc := r.host.Allocation()
	canvas := image.NewRGBA(image.Rect(0, 0, int(alloc.X2+0.5), int(alloc.Y2+0.5)))
	sb.SetTarget(canvas)
	defer sb.SetTarget(nil)
	r.paint()
	return writePNG(path, canvas)
}

// flush returns the draws recorded since the last flush.
func flush(b backend.RenderBackend) int {
	switch b := b.(type) {
	case *backend.SoftwareBackend:
		n := len(b.Calls())
		b.ResetCalls()
		return n
	case *wgpubackend.Backend:
		return b.Submit()
	default:
		return 0
	}
}

func loadSurface(f flags) (image.Image, error) {
	if f.input == "" {
		return checkerboard(f.width, f.height, 8), nil
	}
	in, err := os.Open(f.input)
	if err != nil {
		return nil, fmt.Errorf("stexflatten: open input: %w", err)
	}
	defer in.Close()
	img, err := png.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("stexflatten: decode %s: %w", f.input, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stexflatten: create output: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("stexflatten: encode %s: %w", path, err)
	}
	return out.Close()
}

func checkerboard(w, h, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	light := color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	dark := color.NRGBA{R: 0x40, G: 0x60, B: 0x90, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, dark)
			}
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
