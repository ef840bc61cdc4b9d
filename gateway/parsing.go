package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Response parsing errors
var (
	// ErrNoJSONFound is returned when no JSON object is found in model text.
	ErrNoJSONFound = errors.New("gateway: no JSON object found in response text")
	// ErrInvalidJSON is returned when JSON parsing fails.
	ErrInvalidJSON = errors.New("gateway: invalid JSON in response")
	// ErrNoSuggestions is returned when no usable caption suggestion survives decoding.
	ErrNoSuggestions = errors.New("gateway: response contained no usable caption suggestions")
	// ErrMissingDescription is returned when an analysis response has no description.
	ErrMissingDescription = errors.New("gateway: response missing description")
)

// ExtractJSONFromText extracts the first JSON object from model output.
// It finds the first '{' and last '}' and returns the text between them.
// Models often wrap JSON in prose or markdown fences; this strips both.
//
// This is a pure function with no external dependencies.
func ExtractJSONFromText(text string) (string, error) {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return "", ErrNoJSONFound
	}

	return text[startIdx : endIdx+1], nil
}

// rawSuggestion is the decode shape before enum validation.
type rawSuggestion struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// captionResponse is the expected JSON contract for caption suggestions.
type captionResponse struct {
	Captions []rawSuggestion `json:"captions"`
}

// DecodeCaptions parses model text into caption suggestions.
// Suggestions with empty text or an out-of-set category are dropped; when
// nothing survives the whole decode fails with ErrNoSuggestions.
func DecodeCaptions(text string) ([]CaptionSuggestion, error) {
	jsonStr, err := ExtractJSONFromText(text)
	if err != nil {
		return nil, err
	}

	var resp captionResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	suggestions := make([]CaptionSuggestion, 0, len(resp.Captions))
	for _, raw := range resp.Captions {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}
		category, err := ParseCategory(raw.Category)
		if err != nil {
			continue
		}
		suggestions = append(suggestions, CaptionSuggestion{Text: text, Category: category})
	}

	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}
	return suggestions, nil
}

// analysisResponse is the expected JSON contract for image analysis.
type analysisResponse struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// DecodeAnalysis parses model text into an analysis result.
// The description is required; tags are optional and keep their order,
// with empty entries dropped.
func DecodeAnalysis(text string) (*AnalysisResult, error) {
	jsonStr, err := ExtractJSONFromText(text)
	if err != nil {
		return nil, err
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	description := strings.TrimSpace(resp.Description)
	if description == "" {
		return nil, ErrMissingDescription
	}

	tags := make([]string, 0, len(resp.Tags))
	for _, tag := range resp.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return &AnalysisResult{Description: description, Tags: tags}, nil
}
