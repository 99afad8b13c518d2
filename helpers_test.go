package shapedtex

import (
	"image"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"github.com/gogpu/shapedtex/backend"
	"github.com/gogpu/shapedtex/loop"
	"github.com/gogpu/shapedtex/render"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeHost records the requests a ShapedTexture makes of its actor.
type fakeHost struct {
	alloc      render.Box
	clones     bool
	pickPaint  bool
	redraws    int
	clipped    []image.Rectangle
	relayouts  int
	defaultPks []color.RGBA
}

func newFakeHost(w, h float32) *fakeHost {
	return &fakeHost{alloc: render.BoxFromSize(w, h), pickPaint: true}
}

func (h *fakeHost) QueueRedraw()                          { h.redraws++ }
func (h *fakeHost) QueueRedrawWithClip(r image.Rectangle) { h.clipped = append(h.clipped, r) }
func (h *fakeHost) QueueRelayout()                        { h.relayouts++ }
func (h *fakeHost) HasMappedClones() bool                 { return h.clones }
func (h *fakeHost) Allocation() render.Box                { return h.alloc }
func (h *fakeHost) ShouldPickPaint() bool                 { return h.pickPaint }
func (h *fakeHost) DefaultPick(c color.RGBA)              { h.defaultPks = append(h.defaultPks, c) }

// totalRedraws counts full and clipped redraw requests.
func (h *fakeHost) totalRedraws() int { return h.redraws + len(h.clipped) }

type loggingBackend struct {
	*backend.SoftwareBackend
	logger *slog.Logger
}

func (b *loggingBackend) SetLogger(l *slog.Logger) { b.logger = l }

func newSoftware(t *testing.T) *backend.SoftwareBackend {
	t.Helper()
	b := backend.NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// fixture is a shaped texture on a software backend and a manual loop.
type fixture struct {
	st   *ShapedTexture
	host *fakeHost
	b    *backend.SoftwareBackend
	loop *loop.Manual
	src  *ImageSource
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		host: newFakeHost(8, 8),
		b:    newSoftware(t),
		loop: loop.NewManual(epoch),
	}
	f.src = NewImageSource(f.b)
	opts = append([]Option{WithBackend(f.b), WithLoop(f.loop)}, opts...)
	st, err := New(f.host, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(st.Destroy)
	f.st = st
	return f
}

// load binds a solid w x h surface of colour c.
func (f *fixture) load(w, h int, c color.NRGBA) Pixmap {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	handle := f.src.Add(img)
	f.st.SetPixmap(f.src, handle)
	return handle
}
