package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/shapedtex"
	"github.com/gogpu/shapedtex/mask"
	"github.com/gogpu/shapedtex/region"
)

// errScene is wrapped by every scene decoding error.
var errScene = errors.New("stexflatten: invalid scene")

// scene is the TOML description of one replay. Rectangles are
// [x, y, width, height] in texture pixels.
type scene struct {
	Config      shapedtex.Config `toml:"shaped_texture"`
	Alloc       []float32        `toml:"alloc"`
	Shape       [][]int          `toml:"shape"`
	Overlay     [][]int          `toml:"overlay"`
	OverlayPath []roundRect      `toml:"overlay_path"`
	Clip        [][]int          `toml:"clip"`
	Unobscured  [][]int          `toml:"unobscured"`
	Damage      []damage         `toml:"damage"`
}

type roundRect struct {
	Rect   []float64 `toml:"rect"`
	Radius float64   `toml:"radius"`
}

// damage is one step of the replay: at AtMs the client draws Fill into
// Rect and reports it damaged.
type damage struct {
	AtMs  int    `toml:"at_ms"`
	Rect  []int  `toml:"rect"`
	Fill  string `toml:"fill"`
	Paint bool   `toml:"paint"`
}

func defaultScene() scene {
	return scene{Config: shapedtex.DefaultConfig()}
}

// loadScene reads a scene file. An empty path yields the default scene.
func loadScene(path string) (scene, error) {
	if path == "" {
		return defaultScene(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scene{}, fmt.Errorf("stexflatten: read scene: %w", err)
	}
	return parseScene(data)
}

// parseScene decodes data on top of the default scene. Unknown keys are
// rejected.
func parseScene(data []byte) (scene, error) {
	sc := defaultScene()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return scene{}, fmt.Errorf("%w: %w", errScene, err)
	}
	if err := sc.validate(); err != nil {
		return scene{}, err
	}
	return sc, nil
}

func (sc *scene) validate() error {
	if err := sc.Config.Validate(); err != nil {
		return err
	}
	if len(sc.Alloc) != 0 && len(sc.Alloc) != 2 {
		return fmt.Errorf("%w: alloc wants [width, height], got %v", errScene, sc.Alloc)
	}
	for _, list := range [][][]int{sc.Shape, sc.Overlay, sc.Clip, sc.Unobscured} {
		if _, err := toRects(list); err != nil {
			return err
		}
	}
	for i, rr := range sc.OverlayPath {
		if len(rr.Rect) != 4 {
			return fmt.Errorf("%w: overlay_path[%d].rect wants 4 values", errScene, i)
		}
	}
	last := -1
	for i, d := range sc.Damage {
		if d.AtMs < last {
			return fmt.Errorf("%w: damage[%d] at %dms goes back in time", errScene, i, d.AtMs)
		}
		last = d.AtMs
		if _, err := toRect(d.Rect); err != nil {
			return fmt.Errorf("damage[%d]: %w", i, err)
		}
		if _, err := parseColor(d.Fill); err != nil {
			return fmt.Errorf("damage[%d]: %w", i, err)
		}
	}
	return nil
}

// shapeRegion returns nil for a rectangular window.
func (sc *scene) shapeRegion() *region.Region { return optionalRegion(sc.Shape) }

func (sc *scene) clipRegion() *region.Region { return optionalRegion(sc.Clip) }

func (sc *scene) unobscuredRegion() *region.Region { return optionalRegion(sc.Unobscured) }

func (sc *scene) overlayRegion() *region.Region { return optionalRegion(sc.Overlay) }

// overlayPath builds the overlay path, or nil when none is configured.
func (sc *scene) overlayPath() *mask.Path {
	if len(sc.OverlayPath) == 0 {
		return nil
	}
	p := mask.NewPath()
	for _, rr := range sc.OverlayPath {
		p.RoundedRectangle(rr.Rect[0], rr.Rect[1], rr.Rect[2], rr.Rect[3], rr.Radius)
	}
	return p
}

func (d damage) at() time.Duration { return time.Duration(d.AtMs) * time.Millisecond }

func optionalRegion(list [][]int) *region.Region {
	if list == nil {
		return nil
	}
	rects, _ := toRects(list)
	return region.New(rects...)
}

func toRects(list [][]int) ([]image.Rectangle, error) {
	rects := make([]image.Rectangle, 0, len(list))
	for _, v := range list {
		r, err := toRect(v)
		if err != nil {
			return nil, err
		}
		rects = append(rects, r)
	}
	return rects, nil
}

func toRect(v []int) (image.Rectangle, error) {
	if len(v) != 4 || v[2] < 0 || v[3] < 0 {
		return image.Rectangle{}, fmt.Errorf("%w: rectangle wants [x, y, width, height], got %v", errScene, v)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// parseColor parses "#rrggbb" or "#rrggbbaa". An empty string is
// transparent black.
func parseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q", errScene, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q", errScene, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
