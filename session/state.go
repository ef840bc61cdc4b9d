// Package session owns the per-session studio state and the transitions over
// it. One Controller guards one session's state behind a mutex; every
// mutation is a transition applied atomically, and every transition that
// affects the output ends with exactly one surface recompute.
package session

import (
	"memestudio/gateway"
	"memestudio/loader"
	"memestudio/render"
)

// OpKind names an asynchronous operation for busy flags, request tokens, and
// the task feed.
type OpKind string

const (
	OpLoad     OpKind = "load"
	OpCaptions OpKind = gateway.OpCaptions
	OpEdit     OpKind = gateway.OpEdit
	OpAnalyze  OpKind = gateway.OpAnalyze
)

// OpKinds lists all operation kinds.
var OpKinds = []OpKind{OpLoad, OpCaptions, OpEdit, OpAnalyze}

// CaptionState holds the caption text in one of two mutually exclusive
// representations: manual top/bottom text, or a selected magic caption.
// Every setter of one representation clears the other.
type CaptionState struct {
	Top      string `json:"top"`
	Bottom   string `json:"bottom"`
	Selected string `json:"selected"`
}

// SetManual sets the manual representation and clears any selected caption.
func (c *CaptionState) SetManual(top, bottom string) {
	c.Top = top
	c.Bottom = bottom
	c.Selected = ""
}

// Select sets the magic representation and clears manual text.
func (c *CaptionState) Select(text string) {
	c.Selected = text
	c.Top = ""
	c.Bottom = ""
}

// Clear empties both representations.
func (c *CaptionState) Clear() {
	c.Top = ""
	c.Bottom = ""
	c.Selected = ""
}

// IsEmpty returns true when no caption text is set.
func (c CaptionState) IsEmpty() bool {
	return c.Top == "" && c.Bottom == "" && c.Selected == ""
}

// toRender converts to the render package's caption input.
func (c CaptionState) toRender() render.Caption {
	return render.Caption{Top: c.Top, Bottom: c.Bottom, Magic: c.Selected}
}

// State is the full working state of one studio session. Slots are replaced
// wholesale by transitions, never merged.
type State struct {
	Image       *loader.SourceImage
	Captions    CaptionState
	Suggestions []gateway.CaptionSuggestion
	Analysis    *gateway.AnalysisResult
	LastError   string
	Surface     *render.Surface
	SurfaceID   string
	Busy        map[OpKind]bool
}

// newState returns an empty session state.
func newState() State {
	return State{
		Busy: make(map[OpKind]bool),
	}
}

// Snapshot is a read-only copy of session state for API consumers,
// without pixel data.
type Snapshot struct {
	HasImage    bool                        `json:"has_image"`
	ImageWidth  int                         `json:"image_width,omitempty"`
	ImageHeight int                         `json:"image_height,omitempty"`
	Origin      string                      `json:"origin,omitempty"`
	Captions    CaptionState                `json:"captions"`
	Suggestions []gateway.CaptionSuggestion `json:"suggestions"`
	Analysis    *gateway.AnalysisResult     `json:"analysis,omitempty"`
	LastError   string                      `json:"last_error,omitempty"`
	Busy        map[OpKind]bool             `json:"busy"`
	HasSurface  bool                        `json:"has_surface"`
	SurfaceW    int                         `json:"surface_width,omitempty"`
	SurfaceH    int                         `json:"surface_height,omitempty"`
}
