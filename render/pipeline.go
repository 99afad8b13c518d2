// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "image/color"

// BasicPipeline is a Pipeline holding only per-instance state.
// Backends embed it and add their own resources.
type BasicPipeline struct {
	tmpl   *PipelineTemplate
	layers []Texture
	color  color.RGBA
}

// NewBasicPipeline creates a pipeline for tmpl with all layers unbound and
// an opaque white colour.
func NewBasicPipeline(tmpl *PipelineTemplate) *BasicPipeline {
	return &BasicPipeline{
		tmpl:   tmpl,
		layers: make([]Texture, tmpl.Layers),
		color:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Template returns the template this pipeline was built from.
func (p *BasicPipeline) Template() *PipelineTemplate { return p.tmpl }

// Layers returns the number of texture layers.
func (p *BasicPipeline) Layers() int { return len(p.layers) }

// SetLayerTexture binds tex to layer. Out-of-range layers are ignored.
func (p *BasicPipeline) SetLayerTexture(layer int, tex Texture) {
	if layer < 0 || layer >= len(p.layers) {
		return
	}
	p.layers[layer] = tex
}

// LayerTexture returns the texture bound to layer, or nil.
func (p *BasicPipeline) LayerTexture(layer int) Texture {
	if layer < 0 || layer >= len(p.layers) {
		return nil
	}
	return p.layers[layer]
}

// SetColor sets the pipeline colour.
func (p *BasicPipeline) SetColor(c color.RGBA) { p.color = c }

// Color returns the pipeline colour.
func (p *BasicPipeline) Color() color.RGBA { return p.color }

// OpacityColor returns the premultiplied colour used to paint at opacity.
func OpacityColor(opacity uint8) color.RGBA {
	return color.RGBA{R: opacity, G: opacity, B: opacity, A: opacity}
}

var _ Pipeline = (*BasicPipeline)(nil)
