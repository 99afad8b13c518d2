package shapedtex

import (
	"github.com/gogpu/shapedtex/loop"
	"github.com/gogpu/shapedtex/render"
)

// Option configures a ShapedTexture during creation.
//
// Example:
//
//	st, err := shapedtex.New(host,
//	    shapedtex.WithBackend(b),
//	    shapedtex.WithLoop(mainLoop),
//	)
type Option func(*options)

// options holds optional configuration for ShapedTexture creation.
type options struct {
	cfg          Config
	backend      render.Backend
	sched        loop.Scheduler
	templates    *render.Templates
	maxClipRects int
}

// defaultOptions returns the default creation options.
func defaultOptions() options {
	return options{
		cfg: DefaultConfig(),
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithBackend sets the render backend. The caller keeps ownership.
// Without it the highest-priority registered backend is opened and
// closed again by Destroy.
func WithBackend(b render.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLoop sets the scheduler running the remipmap timer. Without it a new
// loop.Loop is created; the host must Run it, see ShapedTexture.Scheduler.
func WithLoop(s loop.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// WithTemplates shares pipeline templates built once by the host.
// The default is the backend's set when it is a render.TemplateProvider,
// otherwise a set private to the instance.
func WithTemplates(t *render.Templates) Option {
	return func(o *options) {
		o.templates = t
	}
}

// WithMaxClipRects overrides Config.MaxClipRects.
func WithMaxClipRects(n int) Option {
	return func(o *options) {
		o.maxClipRects = n
	}
}
