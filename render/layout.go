package render

import (
	"strings"
)

// Layout constants for caption placement, in output-surface pixels.
const (
	// ManualMargin is the gap between a manual caption and the image edge.
	ManualMargin = 10.0

	// WrapInset is the total horizontal inset for wrapped captions
	// (20px each side).
	WrapInset = 40.0

	// StackBaseline is the distance from the bottom edge to the baseline of
	// the lowest wrapped line.
	StackBaseline = 20.0

	// LineStep is the baseline-to-baseline spacing factor for wrapped lines,
	// as a multiple of the font size.
	LineStep = 1.1
)

// Caption is the text input for a render. Manual text (Top/Bottom) and a
// picked suggestion (Magic) are mutually exclusive; when any manual text is
// present, Magic is ignored.
type Caption struct {
	Top    string
	Bottom string
	Magic  string
}

// IsEmpty returns true when no caption text is set at all.
func (c Caption) IsEmpty() bool {
	return c.Top == "" && c.Bottom == "" && c.Magic == ""
}

// IsManual returns true when manual top/bottom text takes effect.
func (c Caption) IsManual() bool {
	return c.Top != "" || c.Bottom != ""
}

// Anchor names the vertical placement of a line.
type Anchor int

const (
	// AnchorTop places the line against the top edge.
	AnchorTop Anchor = iota
	// AnchorBottom places the line against the bottom edge.
	AnchorBottom
)

// MeasureFunc returns the rendered width of a string in pixels at the
// layout's font size. Tests substitute a stub; the painter supplies the
// real font metrics.
type MeasureFunc func(s string) float64

// PlacedLine is one line of caption text with its resolved position.
// X is the horizontal center, Y the text baseline.
type PlacedLine struct {
	Text   string
	X      float64
	Y      float64
	Anchor Anchor
}

// Layout is the full placement result for a surface. It carries everything
// the painter needs and nothing it has to compute.
type Layout struct {
	Width       int
	Height      int
	FontSize    float64
	StrokeWidth float64
	Lines       []PlacedLine
}

// FontSizeFor returns the caption font size for a surface width.
func FontSizeFor(width int) float64 {
	return float64(width / 10)
}

// StrokeWidthFor returns the text stroke width for a font size.
func StrokeWidthFor(fontSize float64) float64 {
	return float64(int(fontSize) / 8)
}

// ComputeLayout places caption text on a width x height surface.
// Pure function: same inputs always yield the same layout.
//
// Manual captions are single uppercased lines anchored to the top and bottom
// edges; they never wrap. A magic caption is uppercased, word-wrapped to fit
// within the surface minus WrapInset, and stacked upward from the bottom.
// The baseline of a top line treats the font size as the text ascent.
func ComputeLayout(width, height int, caption Caption, measure MeasureFunc) Layout {
	layout := Layout{
		Width:       width,
		Height:      height,
		FontSize:    FontSizeFor(width),
		StrokeWidth: StrokeWidthFor(FontSizeFor(width)),
	}

	if caption.IsEmpty() {
		return layout
	}

	centerX := float64(width) / 2

	if caption.IsManual() {
		if caption.Top != "" {
			layout.Lines = append(layout.Lines, PlacedLine{
				Text:   strings.ToUpper(caption.Top),
				X:      centerX,
				Y:      ManualMargin + layout.FontSize,
				Anchor: AnchorTop,
			})
		}
		if caption.Bottom != "" {
			layout.Lines = append(layout.Lines, PlacedLine{
				Text:   strings.ToUpper(caption.Bottom),
				X:      centerX,
				Y:      float64(height) - ManualMargin,
				Anchor: AnchorBottom,
			})
		}
		return layout
	}

	// Magic caption: wrap, then stack lines bottom-up.
	lines := WrapCaption(strings.ToUpper(caption.Magic), float64(width)-WrapInset, measure)
	step := layout.FontSize * LineStep
	for i, text := range lines {
		fromBottom := float64(len(lines)-1-i) * step
		layout.Lines = append(layout.Lines, PlacedLine{
			Text:   text,
			X:      centerX,
			Y:      float64(height) - StackBaseline - fromBottom,
			Anchor: AnchorBottom,
		})
	}
	return layout
}

// WrapCaption splits text into lines whose measured width fits maxWidth.
// Words are accumulated greedily; a single word wider than maxWidth still
// gets its own line and may overflow. Empty input yields no lines.
func WrapCaption(text string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}
