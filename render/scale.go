package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ScaleDimensions returns the output size for an intrinsic width x height
// raster given the viewport bound. The image is scaled uniformly down so the
// larger dimension equals viewportMax; images already inside the bound keep
// their intrinsic size. Never scales up.
// This is a pure function with no side effects.
func ScaleDimensions(width, height, viewportMax int) (int, int) {
	larger := width
	if height > larger {
		larger = height
	}
	if larger <= viewportMax {
		return width, height
	}

	scale := float64(viewportMax) / float64(larger)
	outW := int(math.Round(float64(width) * scale))
	outH := int(math.Round(float64(height) * scale))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

// ScaleImage resizes an image to the given size using high-quality
// Catmull-Rom resampling. When the target matches the source bounds the
// pixels are still copied into a fresh RGBA so the caller always owns a
// mutable raster.
func ScaleImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
