package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shapedtex/render"
)

// GPUInfo contains information about the host GPU.
type GPUInfo struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Type is the adapter type (discrete, integrated, software).
	Type gpucontext.AdapterType
	// Headless reports that the host has no device (NullDeviceHandle).
	Headless bool
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	if g.Headless {
		return fmt.Sprintf("%s (%s, headless)", g.Name, g.Type)
	}
	return fmt.Sprintf("%s (%s)", g.Name, g.Type)
}

// getGPUInfo reads adapter information from the host device provider.
func getGPUInfo(provider render.DeviceHandle) *GPUInfo {
	info := provider.AdapterInfo()
	return &GPUInfo{
		Name:     info.Name,
		Type:     info.Type,
		Headless: provider.Device() == nil,
	}
}

// logGPUInfo logs information about the host GPU.
func logGPUInfo(info *GPUInfo) {
	slogger().Info("wgpu: GPU", "adapter", info.String())
	if info.Headless {
		slogger().Debug("wgpu: no device, textures live in shadow copies only")
	}
}
