package wgpu

import (
	"fmt"
	"sync"

	gpu "github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/shapedtex/render"
)

// ShaderModule is a compiled pipeline template.
//
// Device is the module created on the host device, or nil when the backend
// runs without one.
type ShaderModule struct {
	ID     core.ShaderModuleID
	Label  string
	SPIRV  []uint32
	Device *gpu.ShaderModule
}

// IsValid reports whether the module compiled.
func (m *ShaderModule) IsValid() bool {
	return m != nil && len(m.SPIRV) > 0
}

// PipelineCache caches compiled shader modules per pipeline template.
//
// PipelineCache is safe for concurrent use. Compilation happens once per
// template; failures are cached too so a broken shader is not recompiled on
// every pipeline.
type PipelineCache struct {
	mu      sync.RWMutex
	hub     *core.Hub
	device  *gpu.Device
	modules map[*render.PipelineTemplate]*ShaderModule
	errs    map[*render.PipelineTemplate]error
}

// NewPipelineCache creates an empty cache registering modules in hub.
// When device is non-nil every module is also created on it.
func NewPipelineCache(hub *core.Hub, device *gpu.Device) *PipelineCache {
	return &PipelineCache{
		hub:     hub,
		device:  device,
		modules: make(map[*render.PipelineTemplate]*ShaderModule),
		errs:    make(map[*render.PipelineTemplate]error),
	}
}

// Module returns the compiled module for tmpl, compiling it on first use.
func (c *PipelineCache) Module(tmpl *render.PipelineTemplate) (*ShaderModule, error) {
	c.mu.RLock()
	m, ok := c.modules[tmpl]
	err := c.errs[tmpl]
	c.mu.RUnlock()
	if ok || err != nil {
		return m, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.modules[tmpl]; ok {
		return m, nil
	}
	if err := c.errs[tmpl]; err != nil {
		return nil, err
	}

	words, err := render.CompileSPIRV(tmpl.WGSL)
	if err != nil {
		c.errs[tmpl] = err
		return nil, err
	}
	var dm *gpu.ShaderModule
	if c.device != nil {
		dm, err = c.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{
			Label: tmpl.Label,
			WGSL:  tmpl.WGSL,
		})
		if err != nil {
			err = fmt.Errorf("wgpu: create shader module %q: %w", tmpl.Label, err)
			c.errs[tmpl] = err
			return nil, err
		}
	}
	m = &ShaderModule{
		ID:     c.hub.RegisterShaderModule(core.ShaderModule{}),
		Label:  tmpl.Label,
		SPIRV:  words,
		Device: dm,
	}
	c.modules[tmpl] = m
	slogger().Debug("wgpu: shader compiled", "label", tmpl.Label, "words", len(words), "device", dm != nil)
	return m, nil
}

// Len returns the number of compiled modules.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}

// Close unregisters all modules.
func (c *PipelineCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for tmpl, m := range c.modules {
		if m.Device != nil {
			m.Device.Release()
		}
		_, _ = c.hub.UnregisterShaderModule(m.ID)
		delete(c.modules, tmpl)
	}
	clear(c.errs)
}

// Pipeline is a render.Pipeline bound to a compiled shader module.
// Module is nil when shader compilation failed; draws through such a
// pipeline are still recorded.
type Pipeline struct {
	*render.BasicPipeline
	Module *ShaderModule
}
