package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"memestudio/core"
	"memestudio/logging"
)

// Default models for the Gemini provider.
const (
	defaultGeminiVisionModel = "gemini-2.0-flash"
	defaultGeminiEditModel   = "gemini-2.0-flash-preview-image-generation"
)

// GeminiProvider implements Provider against the Gemini API.
//
// All three operations are one GenerateContent call with the image as an
// inline blob. Edits request the IMAGE response modality and take the first
// inline-data part of the first candidate.
//
// Thread safety: safe for concurrent use.
type GeminiProvider struct {
	client      *genai.Client
	logger      *logging.Logger
	visionModel string
	editModel   string
}

// NewGeminiProvider creates a Gemini provider from studio configuration.
// Returns an error if the API key is missing or the client cannot be built.
func NewGeminiProvider(cfg *core.Config, logger *logging.Logger) (*GeminiProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gateway: config cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, core.ErrMissingAuth(core.ProviderGemini)
	}
	if logger == nil {
		return nil, fmt.Errorf("gateway: logger cannot be nil")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: core.GetHTTPClient(cfg, cfg.AITimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: create gemini client: %w", err)
	}

	visionModel := cfg.CaptionModel
	if visionModel == "" {
		visionModel = defaultGeminiVisionModel
	}
	editModel := cfg.EditModel
	if editModel == "" {
		editModel = defaultGeminiEditModel
	}

	return &GeminiProvider{
		client:      client,
		logger:      logger.Named("gemini"),
		visionModel: visionModel,
		editModel:   editModel,
	}, nil
}

// Name identifies the provider.
func (p *GeminiProvider) Name() string {
	return core.ProviderGemini
}

// SuggestCaptions asks the model for caption ideas.
func (p *GeminiProvider) SuggestCaptions(ctx context.Context, img Payload) ([]CaptionSuggestion, error) {
	text, err := p.generateText(ctx, OpCaptions, img, captionPrompt)
	if err != nil {
		return nil, err
	}

	suggestions, err := DecodeCaptions(text)
	if err != nil {
		return nil, core.NewRequestError(core.RequestCodeBadResponse, OpCaptions,
			"the AI returned captions in an unexpected format", err)
	}

	p.logger.Debug("caption suggestions decoded",
		zap.Int("count", len(suggestions)),
		zap.String("model", p.visionModel))
	return suggestions, nil
}

// AnalyzeImage asks the model for a description and tags.
func (p *GeminiProvider) AnalyzeImage(ctx context.Context, img Payload) (*AnalysisResult, error) {
	text, err := p.generateText(ctx, OpAnalyze, img, analysisPrompt)
	if err != nil {
		return nil, err
	}

	result, err := DecodeAnalysis(text)
	if err != nil {
		return nil, core.NewRequestError(core.RequestCodeBadResponse, OpAnalyze,
			"the AI returned an analysis in an unexpected format", err)
	}
	return result, nil
}

// EditImage applies an instruction, requesting an image back.
func (p *GeminiProvider) EditImage(ctx context.Context, img Payload, instruction string) (*EditedImage, error) {
	if instruction == "" {
		return nil, core.NewRequestError(core.RequestCodeBadInput, OpEdit,
			"edit instruction cannot be empty", nil)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			{InlineData: &genai.Blob{MIMEType: img.MIME, Data: img.Data}},
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	start := time.Now()
	res, err := p.client.Models.GenerateContent(ctx, p.editModel, contents, config)
	if err != nil {
		return nil, p.requestError(OpEdit, err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, core.NewRequestError(core.RequestCodeNoCandidates, OpEdit,
			"the AI returned no edited image", nil)
	}

	for _, part := range res.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			p.logger.Info("image edit completed",
				zap.String("model", p.editModel),
				zap.Int("bytes", len(part.InlineData.Data)),
				zap.Duration("duration", time.Since(start)))
			return &EditedImage{Data: part.InlineData.Data, MIME: mime}, nil
		}
	}

	return nil, core.NewRequestError(core.RequestCodeNoCandidates, OpEdit,
		"the AI returned no edited image", nil)
}

// generateText runs one GenerateContent call and concatenates the text parts
// of the first candidate.
func (p *GeminiProvider) generateText(ctx context.Context, op string, img Payload, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			{InlineData: &genai.Blob{MIMEType: img.MIME, Data: img.Data}},
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	start := time.Now()
	res, err := p.client.Models.GenerateContent(ctx, p.visionModel, contents, nil)
	if err != nil {
		return "", p.requestError(op, err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", core.NewRequestError(core.RequestCodeNoCandidates, op,
			"the AI returned an empty response", nil)
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", core.NewRequestError(core.RequestCodeNoCandidates, op,
			"the AI returned an empty response", nil)
	}

	p.logger.Debug("generation finished",
		zap.String("op", op),
		zap.String("model", p.visionModel),
		zap.Duration("duration", time.Since(start)))
	return sb.String(), nil
}

// requestError classifies a genai error into the RequestError taxonomy.
func (p *GeminiProvider) requestError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return core.NewRequestError(core.RequestCodeQuota, op,
				"the AI service rejected the request due to rate or quota limits", err)
		default:
			return core.NewRequestError(core.RequestCodeRemote, op,
				fmt.Sprintf("the AI service returned an error (HTTP %d)", apiErr.Code), err)
		}
	}
	return core.NewRequestError(core.RequestCodeTransport, op,
		"could not reach the AI service", err)
}

// Ensure GeminiProvider implements Provider at compile time.
var _ Provider = (*GeminiProvider)(nil)
