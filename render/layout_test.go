package render

import (
	"reflect"
	"testing"
)

// stubMeasure returns a measurer where every character is charWidth pixels.
// Keeps wrap tests independent of real font metrics.
func stubMeasure(charWidth float64) MeasureFunc {
	return func(s string) float64 {
		return float64(len(s)) * charWidth
	}
}

// TestScaleDimensions tests the viewport scaling rules.
func TestScaleDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		max     int
		wantW   int
		wantH   int
	}{
		{"landscape above bound", 800, 400, 600, 600, 300},
		{"portrait above bound", 400, 800, 600, 300, 600},
		{"square above bound", 1200, 1200, 600, 600, 600},
		{"inside bound unchanged", 500, 300, 600, 500, 300},
		{"exactly at bound unchanged", 600, 450, 600, 600, 450},
		{"never upscaled", 64, 48, 600, 64, 48},
		{"rounding", 1000, 333, 600, 600, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := ScaleDimensions(tt.w, tt.h, tt.max)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("ScaleDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

// TestFontSizeFor tests the width-derived font size.
func TestFontSizeFor(t *testing.T) {
	tests := []struct {
		width int
		want  float64
	}{
		{600, 60},
		{300, 30},
		{599, 59},
		{95, 9},
	}

	for _, tt := range tests {
		if got := FontSizeFor(tt.width); got != tt.want {
			t.Errorf("FontSizeFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

// TestStrokeWidthFor tests the font-size-derived stroke width.
func TestStrokeWidthFor(t *testing.T) {
	tests := []struct {
		fontSize float64
		want     float64
	}{
		{60, 7},
		{30, 3},
		{8, 1},
		{7, 0},
	}

	for _, tt := range tests {
		if got := StrokeWidthFor(tt.fontSize); got != tt.want {
			t.Errorf("StrokeWidthFor(%v) = %v, want %v", tt.fontSize, got, tt.want)
		}
	}
}

// TestComputeLayout_ManualTopOnly tests that top text alone yields exactly one
// top-anchored line and nothing at the bottom.
func TestComputeLayout_ManualTopOnly(t *testing.T) {
	layout := ComputeLayout(600, 300, Caption{Top: "hello"}, stubMeasure(10))

	if len(layout.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(layout.Lines))
	}

	line := layout.Lines[0]
	if line.Text != "HELLO" {
		t.Errorf("Text = %q, want %q (uppercased)", line.Text, "HELLO")
	}
	if line.Anchor != AnchorTop {
		t.Errorf("Anchor = %v, want AnchorTop", line.Anchor)
	}
	if line.X != 300 {
		t.Errorf("X = %v, want 300 (horizontal center)", line.X)
	}
	wantY := ManualMargin + layout.FontSize
	if line.Y != wantY {
		t.Errorf("Y = %v, want %v (margin + font size)", line.Y, wantY)
	}
}

// TestComputeLayout_ManualBottomOnly tests the symmetric bottom case.
func TestComputeLayout_ManualBottomOnly(t *testing.T) {
	layout := ComputeLayout(600, 300, Caption{Bottom: "world"}, stubMeasure(10))

	if len(layout.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(layout.Lines))
	}

	line := layout.Lines[0]
	if line.Text != "WORLD" {
		t.Errorf("Text = %q, want %q", line.Text, "WORLD")
	}
	if line.Anchor != AnchorBottom {
		t.Errorf("Anchor = %v, want AnchorBottom", line.Anchor)
	}
	if line.Y != 300-ManualMargin {
		t.Errorf("Y = %v, want %v", line.Y, 300-ManualMargin)
	}
}

// TestComputeLayout_ManualBoth tests an 800x400 source scaled to 600x300 with
// both slots filled: font 60, top line above bottom line, both centered.
func TestComputeLayout_ManualBoth(t *testing.T) {
	w, h := ScaleDimensions(800, 400, 600)
	layout := ComputeLayout(w, h, Caption{Top: "hello", Bottom: "world"}, stubMeasure(10))

	if layout.FontSize != 60 {
		t.Errorf("FontSize = %v, want 60", layout.FontSize)
	}
	if len(layout.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(layout.Lines))
	}
	top, bottom := layout.Lines[0], layout.Lines[1]
	if top.Anchor != AnchorTop || bottom.Anchor != AnchorBottom {
		t.Errorf("anchors = (%v, %v), want (AnchorTop, AnchorBottom)", top.Anchor, bottom.Anchor)
	}
	if top.Y >= bottom.Y {
		t.Errorf("top.Y = %v not above bottom.Y = %v", top.Y, bottom.Y)
	}
}

// TestComputeLayout_ManualWinsOverMagic tests that manual text suppresses a
// leftover magic caption.
func TestComputeLayout_ManualWinsOverMagic(t *testing.T) {
	layout := ComputeLayout(600, 300, Caption{Top: "manual", Magic: "should not appear"}, stubMeasure(10))

	if len(layout.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(layout.Lines))
	}
	if layout.Lines[0].Text != "MANUAL" {
		t.Errorf("Text = %q, want %q", layout.Lines[0].Text, "MANUAL")
	}
}

// TestComputeLayout_Empty tests that no caption yields no lines.
func TestComputeLayout_Empty(t *testing.T) {
	layout := ComputeLayout(600, 300, Caption{}, stubMeasure(10))
	if len(layout.Lines) != 0 {
		t.Errorf("len(Lines) = %d, want 0", len(layout.Lines))
	}
}

// TestWrapCaption_Budget tests the wrap budget with a stub measurer.
// Surface width 600 gives a budget of 560. Each word of "A B C D E" is one
// character; at 120px per character two words ("A B" = 360px) fit but three
// ("A B C" = 600px) do not, so the caption wraps to two-word lines.
func TestWrapCaption_Budget(t *testing.T) {
	lines := WrapCaption("A B C D E", 600-WrapInset, stubMeasure(120))

	want := []string{"A B", "C D", "E"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("WrapCaption() = %v, want %v", lines, want)
	}
}

// TestWrapCaption_OverlongWord tests that a single word wider than the budget
// still gets its own line.
func TestWrapCaption_OverlongWord(t *testing.T) {
	lines := WrapCaption("HI INCOMPREHENSIBILITIES HO", 100, stubMeasure(10))

	want := []string{"HI", "INCOMPREHENSIBILITIES", "HO"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("WrapCaption() = %v, want %v", lines, want)
	}
}

// TestWrapCaption_Empty tests empty and whitespace-only input.
func TestWrapCaption_Empty(t *testing.T) {
	if lines := WrapCaption("", 100, stubMeasure(10)); lines != nil {
		t.Errorf("WrapCaption(\"\") = %v, want nil", lines)
	}
	if lines := WrapCaption("   ", 100, stubMeasure(10)); lines != nil {
		t.Errorf("WrapCaption(whitespace) = %v, want nil", lines)
	}
}

// TestComputeLayout_MagicStacking tests that wrapped lines stack bottom-up:
// last line baseline 20px above the bottom edge, earlier lines one step of
// FontSize*1.1 above each other.
func TestComputeLayout_MagicStacking(t *testing.T) {
	// 600x300, font 60. 120px per character wraps "A B C D E" into 3 lines.
	layout := ComputeLayout(600, 300, Caption{Magic: "a b c d e"}, stubMeasure(120))

	if len(layout.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(layout.Lines))
	}

	last := layout.Lines[2]
	if last.Y != 300-StackBaseline {
		t.Errorf("last line Y = %v, want %v", last.Y, 300-StackBaseline)
	}

	step := layout.FontSize * LineStep
	for i := 0; i < 2; i++ {
		gap := layout.Lines[i+1].Y - layout.Lines[i].Y
		if gap != step {
			t.Errorf("baseline gap %d = %v, want %v", i, gap, step)
		}
	}

	for i, line := range layout.Lines {
		if line.Anchor != AnchorBottom {
			t.Errorf("line %d Anchor = %v, want AnchorBottom", i, line.Anchor)
		}
		if line.Text != []string{"A B", "C D", "E"}[i] {
			t.Errorf("line %d Text = %q, want %q", i, line.Text, []string{"A B", "C D", "E"}[i])
		}
	}
}
