// Package render turns a source image plus caption text into the studio's
// output surface: a viewport-bounded raster with the caption composited on
// top, serialized once as PNG. Layout is computed by a pure function
// (layout.go); this file owns the font and the painting.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Surface is a fully rendered output: the raster, its PNG serialization, and
// the output dimensions. Surfaces are regenerated wholesale on every relevant
// state change, never patched.
type Surface struct {
	RGBA   *image.RGBA
	PNG    []byte
	Width  int
	Height int
}

// Renderer composites captions onto images. It owns the embedded Go Regular
// font and the viewport bound; it holds no per-session state and is safe for
// concurrent use.
type Renderer struct {
	viewportMax int
	font        *opentype.Font
}

// NewRenderer creates a Renderer with the given viewport bound.
// The embedded font is parsed once here.
func NewRenderer(viewportMax int) (*Renderer, error) {
	if viewportMax < 1 {
		return nil, fmt.Errorf("render: viewport max must be positive, got %d", viewportMax)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse embedded font: %w", err)
	}
	return &Renderer{viewportMax: viewportMax, font: f}, nil
}

// face builds a font face for the given point size.
func (r *Renderer) face(size float64) (font.Face, error) {
	return opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render scales the source image into the viewport and paints the caption
// over it. Deterministic: identical inputs produce byte-identical PNG output.
func (r *Renderer) Render(img image.Image, caption Caption) (*Surface, error) {
	bounds := img.Bounds()
	outW, outH := ScaleDimensions(bounds.Dx(), bounds.Dy(), r.viewportMax)
	rgba := ScaleImage(img, outW, outH)

	dc := gg.NewContextForRGBA(rgba)

	fontSize := FontSizeFor(outW)
	if fontSize >= 1 && !caption.IsEmpty() {
		face, err := r.face(fontSize)
		if err != nil {
			return nil, fmt.Errorf("render: build font face: %w", err)
		}
		defer face.Close()
		dc.SetFontFace(face)

		measure := func(s string) float64 {
			w, _ := dc.MeasureString(s)
			return w
		}
		layout := ComputeLayout(outW, outH, caption, measure)
		paintLines(dc, layout)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}

	return &Surface{
		RGBA:   rgba,
		PNG:    buf.Bytes(),
		Width:  outW,
		Height: outH,
	}, nil
}

// paintLines draws each placed line with a black stroke under a white fill.
// gg has no text stroke, so the stroke is eight offset draws of the glyphs.
func paintLines(dc *gg.Context, layout Layout) {
	sw := layout.StrokeWidth
	for _, line := range layout.Lines {
		if sw > 0 {
			dc.SetRGB(0, 0, 0)
			for dx := -sw; dx <= sw; dx += sw {
				for dy := -sw; dy <= sw; dy += sw {
					if dx == 0 && dy == 0 {
						continue
					}
					dc.DrawStringAnchored(line.Text, line.X+dx, line.Y+dy, 0.5, 0)
				}
			}
		}
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(line.Text, line.X, line.Y, 0.5, 0)
	}
}

// SelfCheck verifies that the embedded font parses and measures text.
// Run once at startup by the validation suite.
func SelfCheck() error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("render: parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    24,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("render: build font face: %w", err)
	}
	defer face.Close()

	width := font.MeasureString(face, "MEME")
	if width <= 0 {
		return fmt.Errorf("render: font measured zero width")
	}
	return nil
}
