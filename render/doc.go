// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the GPU collaborator contracts used by shaped
// textures.
//
// The compositor owns the GPU device and the render backend; shaped textures
// RECEIVE them and never create their own. This package only describes what
// a backend must provide:
//
//   - Texture: an RGBA8 or R8 texture with upload, sub-texture and readback
//   - Pipeline: a template instance with per-layer textures and a colour
//   - Backend: the texture factory plus the textured-quad draw entry point
//
// # Pipeline Templates
//
// Three templates cover every paint a shaped texture performs:
//
//   - Unshaped: texture layer 0 multiplied by the opacity colour
//   - Shaped: Unshaped modulated by the mask alpha in layer 1
//   - Pick: the pick colour wherever the mask in layer 0 is non-zero
//
// Each template carries WGSL source; GPU backends compile it with
// CompileSPIRV. Each backend builds one set when it is created and shares
// it through TemplateProvider; pipelines are cheap copies of it.
//
// # Thread Safety
//
// Backends and pipelines are NOT thread-safe. They are driven from the
// compositor's main loop only.
package render
