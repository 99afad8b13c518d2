package backend

import (
	"errors"

	"github.com/gogpu/shapedtex/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based software backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// RenderBackend is a named, initializable render.Backend.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	render.Backend

	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before any texture operations.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}
