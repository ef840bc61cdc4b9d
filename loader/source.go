// Package loader brings images into the studio: browser uploads, hosted
// template fetches, and AI edit results. Every path produces a SourceImage
// and every failure is a *core.LoadError with a user-presentable message.
package loader

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"memestudio/core"
)

// Origin records how a SourceImage entered the session.
type Origin int

const (
	// OriginUpload is a browser file upload.
	OriginUpload Origin = iota
	// OriginTemplate is a fetched catalog template.
	OriginTemplate
	// OriginEdit is the result of an AI image edit.
	OriginEdit
)

// String returns the origin name for logging.
func (o Origin) String() string {
	switch o {
	case OriginUpload:
		return "upload"
	case OriginTemplate:
		return "template"
	case OriginEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// SourceImage is a self-contained working image: the decoded raster feeds the
// render engine, the encoded bytes are the AI gateway payload. A session's
// source image is replaced wholesale, never mutated.
type SourceImage struct {
	Decoded image.Image
	Encoded []byte
	MIME    string
	Width   int
	Height  int
	Origin  Origin
}

// decodeNormalized decodes image bytes with EXIF orientation applied and
// re-encodes them as PNG, so every downstream consumer sees one format.
func decodeNormalized(data []byte, origin Origin) (*SourceImage, error) {
	if len(data) == 0 {
		return nil, core.NewLoadError(core.LoadCodeUnreadable, "image data is empty", nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, core.NewLoadError(core.LoadCodeUnreadable,
			"could not read the image, it may be corrupt or an unsupported format", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, core.NewLoadError(core.LoadCodeUnreadable,
			"could not normalize the image", err)
	}

	bounds := img.Bounds()
	return &SourceImage{
		Decoded: img,
		Encoded: buf.Bytes(),
		MIME:    "image/png",
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Origin:  origin,
	}, nil
}

// FromEdited wraps an AI edit result as the new source image.
// The edited bytes are decoded and normalized like any other source,
// regardless of the format the remote produced.
func FromEdited(data []byte) (*SourceImage, error) {
	return decodeNormalized(data, OriginEdit)
}

// oversizeMessage builds the user-facing message for a too-large input.
func oversizeMessage(limit int64) string {
	return fmt.Sprintf("image exceeds the %s upload limit", core.FormatBytes(limit))
}
