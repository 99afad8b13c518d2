// Package wgpu provides a GPU render backend using gogpu/wgpu.
//
// The backend never creates a device. It receives one from the host
// compositor through a gpucontext.DeviceProvider (render.DeviceHandle) and
// tracks its resources with wgpu core IDs:
//
//   - Texture: core.TextureID and core.TextureViewID plus a CPU shadow copy
//   - PipelineCache: WGSL templates compiled to SPIR-V with gogpu/naga
//   - DrawCommand: one recorded textured quad
//
// When the provider's Device is a *wgpu.Device, textures and shader modules
// are created on it and texture writes go through its queue. The backend is
// recording-only for draws: it never begins a render pass. Hosts read
// Commands, replay them against their own target and call Submit to start
// the next frame. Because of that the registry ranks it below software.
//
// Importing the package registers a headless instance (NullDeviceHandle)
// under the name "wgpu":
//
//	import _ "github.com/gogpu/shapedtex/backend/wgpu"
//
// Hosts with a device create their own:
//
//	b, err := wgpu.New(host.DeviceProvider())
//	if err != nil {
//		return err
//	}
//	if err := b.Init(); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Backend is NOT thread-safe and must be driven from the compositor's main
// loop. PipelineCache is safe for concurrent use.
package wgpu
