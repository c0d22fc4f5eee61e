package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/math/f64"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/docrender/reconcile"
	"github.com/gogpu/docrender/tiles"
)

// Scenario is a document, its viewports and a sequence of edit batches.
type Scenario struct {
	Canvas    Size           `yaml:"canvas"`
	Members   []MemberSpec   `yaml:"members"`
	Viewports []ViewportSpec `yaml:"viewports"`
	Batches   []BatchSpec    `yaml:"batches"`
}

// Size is a width and height in canvas pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Point returns the size as an image.Point.
func (s Size) Point() image.Point {
	return image.Pt(s.Width, s.Height)
}

// MemberSpec describes a member present before the first batch.
type MemberSpec struct {
	Name        string     `yaml:"name"`
	Kind        string     `yaml:"kind"` // layer (default) or folder
	Parent      string     `yaml:"parent"`
	Opacity     *float64   `yaml:"opacity"`
	Hidden      bool       `yaml:"hidden"`
	Blend       string     `yaml:"blend"`
	ClipToBelow bool       `yaml:"clip_to_below"`
	Fills       []FillSpec `yaml:"fills"`
	Mask        *MaskSpec  `yaml:"mask"`
}

// MaskSpec describes the mask of a member. A mask starts hiding everything.
type MaskSpec struct {
	Hidden bool       `yaml:"hidden"`
	Fills  []FillSpec `yaml:"fills"`
}

// FillSpec paints a rectangle with a solid color.
type FillSpec struct {
	Rect  Rect   `yaml:"rect"`
	Color string `yaml:"color"`
}

// Rect is [x0, y0, x1, y1].
type Rect [4]int

// Image returns the rectangle as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r[0], r[1], r[2], r[3])
}

// ViewportSpec describes a viewport.
type ViewportSpec struct {
	ID         string     `yaml:"id"`
	Center     [2]float64 `yaml:"center"`
	Size       [2]float64 `yaml:"size"`
	Angle      float64    `yaml:"angle"`
	Resolution string     `yaml:"resolution"`
	Deferred   bool       `yaml:"deferred"`
}

// Viewport converts the viewport entry to a reconcile.Viewport.
func (v ViewportSpec) Viewport() (reconcile.Viewport, error) {
	res := tiles.Full
	if v.Resolution != "" {
		var err error
		if res, err = tiles.ParseResolution(v.Resolution); err != nil {
			return reconcile.Viewport{}, err
		}
	}
	return reconcile.Viewport{
		Center:     f64.Vec2{v.Center[0], v.Center[1]},
		Size:       f64.Vec2{v.Size[0], v.Size[1]},
		Angle:      v.Angle,
		Resolution: res,
		Deferred:   v.Deferred,
	}, nil
}

// BatchSpec is one group of edits reported to the pipeline together.
type BatchSpec struct {
	Name            string     `yaml:"name"`
	RedrawPreviews  bool       `yaml:"redraw_previews"`
	ServiceDeferred bool       `yaml:"service_deferred"`
	Edits           []EditSpec `yaml:"edits"`
}

// EditSpec is one edit. Op selects which of the other fields apply.
type EditSpec struct {
	Op     string   `yaml:"op"`
	Member string   `yaml:"member"`
	Name   string   `yaml:"name"`
	Parent string   `yaml:"parent"`
	To     string   `yaml:"to"`
	Index  int      `yaml:"index"`
	Rect   Rect     `yaml:"rect"`
	Color  string   `yaml:"color"`
	Value  *float64 `yaml:"value"`
	On     *bool    `yaml:"on"`
	Blend  string   `yaml:"blend"`
	Size   Size     `yaml:"size"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size %dx%d must be positive", s.Canvas.Width, s.Canvas.Height)
	}
	seen := make(map[string]bool, len(s.Members))
	for i, m := range s.Members {
		if m.Name == "" {
			return fmt.Errorf("member %d: missing name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("member %q: duplicate name", m.Name)
		}
		if m.Parent != "" && !seen[m.Parent] {
			return fmt.Errorf("member %q: parent %q must be listed before it", m.Name, m.Parent)
		}
		seen[m.Name] = true
	}
	for i, v := range s.Viewports {
		if v.ID == "" {
			return fmt.Errorf("viewport %d: missing id", i)
		}
		if _, err := v.Viewport(); err != nil {
			return fmt.Errorf("viewport %q: %w", v.ID, err)
		}
	}
	return nil
}

var errBadColor = errors.New("color must be #rgb, #rrggbb or #rrggbbaa")

// parseColor parses a hex color. The result is premultiplied.
func parseColor(s string) (color.RGBA, error) {
	h, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, errBadColor)
	}
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, errBadColor)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, errBadColor)
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
