// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/naga"
)

// TemplateKind identifies what a pipeline template computes.
type TemplateKind int

const (
	// TemplateUnshaped samples layer 0 and multiplies by the pipeline colour.
	TemplateUnshaped TemplateKind = iota

	// TemplateShaped is TemplateUnshaped further modulated by the alpha of
	// the mask bound to layer 1.
	TemplateShaped

	// TemplatePick outputs the pipeline colour wherever the mask bound to
	// layer 0 has non-zero alpha.
	TemplatePick
)

// String returns the template kind name.
func (k TemplateKind) String() string {
	switch k {
	case TemplateUnshaped:
		return "unshaped"
	case TemplateShaped:
		return "shaped"
	case TemplatePick:
		return "pick"
	default:
		return fmt.Sprintf("TemplateKind(%d)", int(k))
	}
}

// PipelineTemplate is a reusable pipeline description.
//
// Templates are shared by every shaped texture of a process: building a
// pipeline from a template only copies per-instance state (layer textures,
// colour), never the shader.
type PipelineTemplate struct {
	Kind   TemplateKind
	Label  string
	Layers int
	WGSL   string
}

// Templates is the set of pipeline templates used by shaped textures.
type Templates struct {
	Unshaped *PipelineTemplate
	Shaped   *PipelineTemplate
	Pick     *PipelineTemplate
}

// NewTemplates returns a fresh set of templates.
func NewTemplates() *Templates {
	return &Templates{
		Unshaped: &PipelineTemplate{
			Kind:   TemplateUnshaped,
			Label:  "shaped-texture-unshaped",
			Layers: 1,
			WGSL:   unshapedWGSL,
		},
		Shaped: &PipelineTemplate{
			Kind:   TemplateShaped,
			Label:  "shaped-texture-shaped",
			Layers: 2,
			WGSL:   shapedWGSL,
		},
		Pick: &PipelineTemplate{
			Kind:   TemplatePick,
			Label:  "shaped-texture-pick",
			Layers: 1,
			WGSL:   pickWGSL,
		},
	}
}

// TemplateProvider is implemented by backends that build a template set
// once at construction and share it with every pipeline they create.
type TemplateProvider interface {
	Templates() *Templates
}

// All returns the three templates in kind order.
func (t *Templates) All() []*PipelineTemplate {
	return []*PipelineTemplate{t.Unshaped, t.Shaped, t.Pick}
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("render: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// Shared vertex stage: one quad per draw, corners and coords from uniforms.
const vertexWGSL = `
struct Quad {
    rect: vec4<f32>,
    coords0: vec4<f32>,
    coords1: vec4<f32>,
    color: vec4<f32>,
    viewport: vec2<f32>,
}

@group(0) @binding(0) var<uniform> quad: Quad;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv0: vec2<f32>,
    @location(1) uv1: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
    let corner = vec2<f32>(f32(idx & 1u), f32((idx >> 1u) & 1u));
    let pos = mix(quad.rect.xy, quad.rect.zw, corner);
    let ndc = pos / quad.viewport * vec2<f32>(2.0, -2.0) + vec2<f32>(-1.0, 1.0);
    var out: VertexOutput;
    out.position = vec4<f32>(ndc, 0.0, 1.0);
    out.uv0 = mix(quad.coords0.xy, quad.coords0.zw, corner);
    out.uv1 = mix(quad.coords1.xy, quad.coords1.zw, corner);
    return out;
}
`

const unshapedWGSL = vertexWGSL + `
@group(0) @binding(1) var content_tex: texture_2d<f32>;
@group(0) @binding(2) var content_sampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(content_tex, content_sampler, in.uv0) * quad.color;
}
`

const shapedWGSL = vertexWGSL + `
@group(0) @binding(1) var content_tex: texture_2d<f32>;
@group(0) @binding(2) var content_sampler: sampler;
@group(0) @binding(3) var mask_tex: texture_2d<f32>;
@group(0) @binding(4) var mask_sampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let content = textureSample(content_tex, content_sampler, in.uv0) * quad.color;
    let coverage = textureSample(mask_tex, mask_sampler, in.uv1).r;
    return content * coverage;
}
`

const pickWGSL = vertexWGSL + `
@group(0) @binding(1) var mask_tex: texture_2d<f32>;
@group(0) @binding(2) var mask_sampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let coverage = textureSample(mask_tex, mask_sampler, in.uv0).r;
    if (coverage <= 0.0) {
        discard;
    }
    return quad.color;
}
`
