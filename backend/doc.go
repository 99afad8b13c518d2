// Package backend provides pluggable render backends for shaped textures.
//
// A backend implements render.Backend (textures, pipelines, textured quads)
// and adds a name plus an Init/Close lifecycle. The software backend is
// registered on import:
//
//	import _ "github.com/gogpu/shapedtex/backend"
//
// The GPU backend registers itself from its own package:
//
//	import _ "github.com/gogpu/shapedtex/backend/wgpu"
//
// It keeps textures on the host device but only records draws, so it has to
// be requested by name.
//
// # Backend Selection
//
// Use Default() to get the best available backend, Get() to request a
// specific backend by name, or Open() to do either and initialize it.
// Default() prefers software over wgpu:
//
//	b, err := backend.Open("") // best available
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// # Software Backend
//
// SoftwareBackend keeps textures in CPU buffers and composites draw calls
// onto an optional *image.RGBA target. Every Draw is also recorded, which
// makes the backend the reference implementation used by tests.
package backend
