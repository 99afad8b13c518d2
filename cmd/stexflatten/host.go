package main

import (
	"image"
	"image/color"

	"github.com/gogpu/shapedtex/render"
)

// traceHost is a headless actor counting the requests of a shaped texture.
type traceHost struct {
	alloc     render.Box
	redraws   int
	clipped   int
	relayouts int
	picks     int
}

func (h *traceHost) QueueRedraw()                        { h.redraws++ }
func (h *traceHost) QueueRedrawWithClip(image.Rectangle) { h.clipped++ }
func (h *traceHost) QueueRelayout()                      { h.relayouts++ }
func (h *traceHost) HasMappedClones() bool               { return false }
func (h *traceHost) Allocation() render.Box              { return h.alloc }
func (h *traceHost) ShouldPickPaint() bool               { return true }
func (h *traceHost) DefaultPick(color.RGBA)              { h.picks++ }

// requests returns the number of redraw requests so far.
func (h *traceHost) requests() int { return h.redraws + h.clipped }
