// Package gateway talks to the remote generative-AI service. It exposes one
// Provider interface with three operations (caption suggestions, image edit,
// image analysis) and two implementations: Gemini and OpenAI-compatible.
//
// One network round trip per call, no retries, no streaming. Every failure
// maps to a *core.RequestError with a message safe to show to the user.
package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Operation names used in RequestError.Op and task metrics.
const (
	OpCaptions = "captions"
	OpEdit     = "edit"
	OpAnalyze  = "analyze"
)

// Payload is the encoded image sent to the remote service.
type Payload struct {
	Data []byte
	MIME string
}

// DataURL returns the payload as a data URL for OpenAI-style image parts.
func (p Payload) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", p.MIME, base64.StdEncoding.EncodeToString(p.Data))
}

// CaptionSuggestion is one AI-proposed caption with its category.
type CaptionSuggestion struct {
	Text     string          `json:"text"`
	Category CaptionCategory `json:"category"`
}

// AnalysisResult describes an image: a prose description plus tags in the
// order the remote produced them.
type AnalysisResult struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// EditedImage is the raster returned by an image edit.
type EditedImage struct {
	Data []byte
	MIME string
}

// Provider is the interface for remote AI backends. Implementations are
// stateless beyond their HTTP client and safe for concurrent use; different
// operations may be invoked concurrently.
type Provider interface {
	// SuggestCaptions asks the remote service for caption ideas for the
	// image. A successful call returns at least one suggestion.
	SuggestCaptions(ctx context.Context, img Payload) ([]CaptionSuggestion, error)

	// EditImage applies a natural-language edit instruction to the image
	// and returns the edited raster.
	EditImage(ctx context.Context, img Payload, instruction string) (*EditedImage, error)

	// AnalyzeImage returns a description and tags for the image.
	AnalyzeImage(ctx context.Context, img Payload) (*AnalysisResult, error)

	// Name identifies the provider for logging and the status endpoint.
	Name() string
}
