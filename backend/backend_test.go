package backend

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shapedtex/render"
)

func newInitialized(t *testing.T) *SoftwareBackend {
	t.Helper()
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func solidRGBA(w, h int, r, g, bl, a uint8) []byte {
	data := make([]byte, w*h*4)
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = r, g, bl, a
	}
	return data
}

func TestSoftwareBackendName(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestSoftwareBackendRequiresInit(t *testing.T) {
	b := NewSoftwareBackend()
	_, err := b.NewTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, nil, 0)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("NewTexture() before Init error = %v, want ErrNotInitialized", err)
	}
}

func TestSoftwareBackendUnsupportedFormat(t *testing.T) {
	b := newInitialized(t)
	_, err := b.NewTexture(4, 4, gputypes.TextureFormatBGRA8Unorm, nil, 0)
	if !errors.Is(err, render.ErrUnsupportedFormat) {
		t.Errorf("NewTexture(BGRA8) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSoftwareBackendTextureRoundTrip(t *testing.T) {
	b := newInitialized(t)
	tex, err := b.NewTexture(4, 3, gputypes.TextureFormatRGBA8Unorm, solidRGBA(4, 3, 10, 20, 30, 255), 0)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 3 {
		t.Errorf("size = %dx%d, want 4x3", tex.Width(), tex.Height())
	}
	if tex.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", tex.Format())
	}

	patch := solidRGBA(2, 1, 200, 0, 0, 255)
	if err := b.UpdateTexture(tex, image.Rect(1, 1, 3, 2), patch, 0); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}

	got, err := b.ReadPixels(tex, image.Rect(0, 1, 4, 2))
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	want := slices.Concat(
		[]byte{10, 20, 30, 255},
		[]byte{200, 0, 0, 255},
		[]byte{200, 0, 0, 255},
		[]byte{10, 20, 30, 255},
	)
	if !slices.Equal(got, want) {
		t.Errorf("ReadPixels() = %v, want %v", got, want)
	}
}

func TestSoftwareBackendStridedUpload(t *testing.T) {
	b := newInitialized(t)
	// 2x2 A8 with one byte of row padding.
	data := []byte{1, 2, 99, 3, 4}
	tex, err := b.NewTexture(2, 2, gputypes.TextureFormatR8Unorm, data, 3)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	got, err := b.ReadPixels(tex, image.Rect(0, 0, 2, 2))
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if want := []byte{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("ReadPixels() = %v, want %v", got, want)
	}
}

func TestSoftwareBackendSubTexture(t *testing.T) {
	b := newInitialized(t)
	data := []byte{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	}
	tex, err := b.NewTexture(4, 3, gputypes.TextureFormatR8Unorm, data, 0)
	if err != nil {
		t.Fatalf("NewTexture() error = %v", err)
	}
	sub, err := b.SubTexture(tex, image.Rect(1, 1, 3, 3))
	if err != nil {
		t.Fatalf("SubTexture() error = %v", err)
	}
	got, _ := b.ReadPixels(sub, image.Rect(0, 0, 2, 2))
	if want := []byte{5, 6, 9, 10}; !slices.Equal(got, want) {
		t.Errorf("sub pixels = %v, want %v", got, want)
	}

	if _, err := b.SubTexture(tex, image.Rect(2, 2, 6, 6)); !errors.Is(err, render.ErrOutOfBounds) {
		t.Errorf("SubTexture(outside) error = %v, want ErrOutOfBounds", err)
	}
}

func TestSoftwareBackendDestroyedTexture(t *testing.T) {
	b := newInitialized(t)
	tex, _ := b.NewTexture(2, 2, gputypes.TextureFormatR8Unorm, nil, 0)
	tex.Destroy()
	tex.Destroy()
	if _, err := b.ReadPixels(tex, image.Rect(0, 0, 1, 1)); !errors.Is(err, render.ErrTextureDestroyed) {
		t.Errorf("ReadPixels(destroyed) error = %v, want ErrTextureDestroyed", err)
	}
}

func TestSoftwareBackendForeignTexture(t *testing.T) {
	a := newInitialized(t)
	b := newInitialized(t)
	tex, _ := a.NewTexture(2, 2, gputypes.TextureFormatR8Unorm, nil, 0)
	if _, err := b.ReadPixels(tex, image.Rect(0, 0, 1, 1)); !errors.Is(err, render.ErrForeignTexture) {
		t.Errorf("ReadPixels(foreign) error = %v, want ErrForeignTexture", err)
	}
}

func TestSoftwareBackendDrawUnshaped(t *testing.T) {
	b := newInitialized(t)
	target := image.NewRGBA(image.Rect(0, 0, 8, 8))
	b.SetTarget(target)

	tex, _ := b.NewTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, solidRGBA(4, 4, 255, 0, 0, 255), 0)
	p, err := b.NewPipeline(render.NewTemplates().Unshaped)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	p.SetLayerTexture(0, tex)
	p.SetColor(render.OpacityColor(255))

	q := render.Quad{
		Rect:   render.Box{X1: 2, Y1: 2, X2: 6, Y2: 6},
		Coords: []render.TexCoords{render.FullTexCoords},
	}
	if err := b.Draw(p, q); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	if got := target.RGBAAt(3, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside pixel = %v, want opaque red", got)
	}
	if got := target.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
	if len(b.Calls()) != 1 || b.Calls()[0].Kind != render.TemplateUnshaped {
		t.Errorf("Calls() = %+v, want one unshaped call", b.Calls())
	}
}

func TestSoftwareBackendDrawShaped(t *testing.T) {
	b := newInitialized(t)
	target := image.NewRGBA(image.Rect(0, 0, 2, 1))
	b.SetTarget(target)

	tex, _ := b.NewTexture(2, 1, gputypes.TextureFormatRGBA8Unorm, solidRGBA(2, 1, 0, 0, 255, 255), 0)
	mask, _ := b.NewTexture(2, 1, gputypes.TextureFormatR8Unorm, []byte{255, 0}, 0)

	p, _ := b.NewPipeline(render.NewTemplates().Shaped)
	p.SetLayerTexture(0, tex)
	p.SetLayerTexture(1, mask)
	p.SetColor(render.OpacityColor(255))
	q := render.Quad{
		Rect:   render.BoxFromSize(2, 1),
		Coords: []render.TexCoords{render.FullTexCoords, render.FullTexCoords},
	}
	if err := b.Draw(p, q); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := target.RGBAAt(0, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("covered pixel = %v, want opaque blue", got)
	}
	if got := target.RGBAAt(1, 0); got != (color.RGBA{}) {
		t.Errorf("masked pixel = %v, want transparent", got)
	}
}

func TestSoftwareBackendDrawPick(t *testing.T) {
	b := newInitialized(t)
	target := image.NewRGBA(image.Rect(0, 0, 2, 1))
	b.SetTarget(target)

	mask, _ := b.NewTexture(2, 1, gputypes.TextureFormatR8Unorm, []byte{0, 10}, 0)
	p, _ := b.NewPipeline(render.NewTemplates().Pick)
	p.SetLayerTexture(0, mask)
	pick := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	p.SetColor(pick)
	if err := b.Draw(p, render.Quad{Rect: render.BoxFromSize(2, 1)}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := target.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("uncovered pixel = %v, want transparent", got)
	}
	if got := target.RGBAAt(1, 0); got != pick {
		t.Errorf("covered pixel = %v, want %v", got, pick)
	}
}

func TestRegistry(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software backend should be registered on import")
	}
	if b := Get(BackendSoftware); b == nil || b.Name() != BackendSoftware {
		t.Errorf("Get(software) = %v", b)
	}
	if Get("nope") != nil {
		t.Error("Get(unknown) should return nil")
	}
	if !slices.Contains(Available(), BackendSoftware) {
		t.Errorf("Available() = %v, want software", Available())
	}

	b, err := Open(BackendSoftware)
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	b.Close()
	if _, err := Open("nope"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(unknown) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestRegisterUnregister(t *testing.T) {
	Register("test-backend", func() RenderBackend { return NewSoftwareBackend() })
	if !IsRegistered("test-backend") {
		t.Fatal("test-backend should be registered")
	}
	Unregister("test-backend")
	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

func TestDefaultPriority(t *testing.T) {
	Register(BackendWGPU, func() RenderBackend { return &namedBackend{SoftwareBackend: NewSoftwareBackend(), name: BackendWGPU} })
	defer Unregister(BackendWGPU)

	if b := Default(); b == nil || b.Name() != BackendSoftware {
		t.Errorf("Default() = %v, want software ahead of wgpu", b)
	}
	b, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error = %v", err)
	}
	defer b.Close()
	if b.Name() != BackendSoftware {
		t.Errorf("Open(\"\") = %s, want software", b.Name())
	}
}

// namedBackend is a software backend registered under another name.
type namedBackend struct {
	*SoftwareBackend
	name string
}

func (b *namedBackend) Name() string { return b.name }

func TestSoftwareBackendTemplates(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Templates() == nil || b.Templates() != b.Templates() {
		t.Fatal("Templates() should return the set built by NewSoftwareBackend")
	}
	if NewSoftwareBackend().Templates() == b.Templates() {
		t.Error("each backend should build its own set")
	}
	if sb, ok := Get(BackendSoftware).(*SoftwareBackend); !ok || sb.Templates() == nil {
		t.Error("registered factory should build templates")
	}
}

func TestSoftwareBackendDrawSourceOverClipped(t *testing.T) {
	b := newInitialized(t)
	target := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(target.Pix); i += 4 {
		target.Pix[i+2], target.Pix[i+3] = 255, 255
	}
	b.SetTarget(target)

	tex, _ := b.NewTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, solidRGBA(4, 4, 255, 0, 0, 255), 0)
	p, _ := b.NewPipeline(b.Templates().Unshaped)
	p.SetLayerTexture(0, tex)
	p.SetColor(render.OpacityColor(128))
	q := render.Quad{
		Rect:   render.Box{X1: 2, Y1: 2, X2: 6, Y2: 6},
		Coords: []render.TexCoords{render.FullTexCoords},
	}
	if err := b.Draw(p, q); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	got := target.RGBAAt(3, 3)
	if got.A != 255 || got.R < 126 || got.R > 130 || got.B < 125 || got.B > 129 {
		t.Errorf("blended pixel = %v, want about half red over blue", got)
	}
	if got := target.RGBAAt(1, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel outside the quad = %v, want untouched blue", got)
	}
}
