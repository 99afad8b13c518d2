package shapedtex

import (
	"testing"
	"time"

	"github.com/gogpu/shapedtex/loop"
	"github.com/gogpu/shapedtex/render"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", o.cfg)
	}
	if o.backend != nil || o.sched != nil || o.templates != nil {
		t.Error("backend, scheduler and templates should default to nil")
	}
}

func TestOptionsApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMipmappingFPS = 10
	tmpl := render.NewTemplates()

	f := newFixture(t, WithConfig(cfg), WithTemplates(tmpl))
	if f.st.Backend() != f.b {
		t.Error("WithBackend not applied")
	}
	if f.st.Scheduler() != f.loop {
		t.Error("WithLoop not applied")
	}
	if f.st.unshaped.Template() != tmpl.Unshaped || f.st.pick.Template() != tmpl.Pick {
		t.Error("WithTemplates not applied")
	}
	if got := f.st.cfg.MinMipmapAge(); got != 100*time.Millisecond {
		t.Errorf("MinMipmapAge() = %v, want 100ms", got)
	}
}

func TestOptionsBackendTemplatesShared(t *testing.T) {
	f := newFixture(t)
	other, err := New(newFakeHost(4, 4), WithBackend(f.b), WithLoop(f.loop))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer other.Destroy()

	if f.st.shaped.Template() != f.b.Templates().Shaped {
		t.Error("default templates should come from the backend")
	}
	if other.shaped.Template() != f.st.shaped.Template() {
		t.Error("instances on one backend should share its templates")
	}
}

// plainBackend hides every method beyond render.Backend.
type plainBackend struct{ render.Backend }

func TestOptionsTemplatesWithoutProvider(t *testing.T) {
	b := newSoftware(t)
	st, err := New(newFakeHost(4, 4), WithBackend(plainBackend{b}), WithLoop(loop.NewManual(epoch)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer st.Destroy()
	if st.templates == nil || st.templates == b.Templates() {
		t.Error("a backend without templates should get a private set")
	}
}

func TestWithMaxClipRectsOverridesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxClipRects = 4
	f := newFixture(t, WithConfig(cfg), WithMaxClipRects(8))
	if f.st.painter.MaxRects != 8 {
		t.Errorf("MaxRects = %d, want 8", f.st.painter.MaxRects)
	}
}
