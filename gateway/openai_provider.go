package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"memestudio/core"
	"memestudio/logging"
)

// Default models for the OpenAI provider.
const (
	defaultOpenAIVisionModel = "gpt-4o-mini"
	defaultOpenAIEditModel   = "gpt-image-1"
)

// OpenAIProvider implements Provider against the OpenAI API or any
// OpenAI-compatible endpoint.
//
// Captions and analysis use vision chat completions with a data-URL image
// part and a strict-JSON instruction. Edits use the images/edits endpoint,
// which takes the image as a file, so the payload is staged in a temp file
// for the duration of the call.
//
// Thread safety: safe for concurrent use; the client pools connections.
type OpenAIProvider struct {
	client      *openai.Client
	logger      *logging.Logger
	visionModel string
	editModel   string
}

// NewOpenAIProvider creates an OpenAI provider from studio configuration.
// Returns an error if the API key is missing.
func NewOpenAIProvider(cfg *core.Config, logger *logging.Logger) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gateway: config cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, core.ErrMissingAuth(core.ProviderOpenAI)
	}
	if logger == nil {
		return nil, fmt.Errorf("gateway: logger cannot be nil")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBase != "" {
		clientConfig.BaseURL = cfg.OpenAIBase
	}
	clientConfig.HTTPClient = core.GetHTTPClient(cfg, cfg.AITimeout)

	visionModel := cfg.CaptionModel
	if visionModel == "" {
		visionModel = defaultOpenAIVisionModel
	}
	editModel := cfg.EditModel
	if editModel == "" {
		editModel = defaultOpenAIEditModel
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		logger:      logger.Named("openai"),
		visionModel: visionModel,
		editModel:   editModel,
	}, nil
}

// Name identifies the provider.
func (p *OpenAIProvider) Name() string {
	return core.ProviderOpenAI
}

// SuggestCaptions asks the vision model for caption ideas.
func (p *OpenAIProvider) SuggestCaptions(ctx context.Context, img Payload) ([]CaptionSuggestion, error) {
	text, err := p.visionCompletion(ctx, OpCaptions, img, captionPrompt)
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

// AnalyzeImage asks the vision model for a description and tags.
func (p *OpenAIProvider) AnalyzeImage(ctx context.Context, img Payload) (*AnalysisResult, error) {
	text, err := p.visionCompletion(ctx, OpAnalyze, img, analysisPrompt)
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

// EditImage applies an instruction via the images/edits endpoint.
// The endpoint consumes the image as a file, so the payload is written to a
// temp PNG that is removed when the call finishes.
func (p *OpenAIProvider) EditImage(ctx context.Context, img Payload, instruction string) (*EditedImage, error) {
	if instruction == "" {
		return nil, core.NewRequestError(core.RequestCodeBadInput, OpEdit,
			"edit instruction cannot be empty", nil)
	}

	tmp, err := os.CreateTemp("", "studio-edit-*.png")
	if err != nil {
		return nil, core.NewRequestError(core.RequestCodeTransport, OpEdit,
			"could not stage the image for editing", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(img.Data); err != nil {
		return nil, core.NewRequestError(core.RequestCodeTransport, OpEdit,
			"could not stage the image for editing", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return nil, core.NewRequestError(core.RequestCodeTransport, OpEdit,
			"could not stage the image for editing", err)
	}

	start := time.Now()
	resp, err := p.client.CreateEditImage(ctx, openai.ImageEditRequest{
		Image:          tmp,
		Prompt:         instruction,
		Model:          p.editModel,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, p.requestError(OpEdit, err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, core.NewRequestError(core.RequestCodeNoCandidates, OpEdit,
			"the AI returned no edited image", nil)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, core.NewRequestError(core.RequestCodeBadResponse, OpEdit,
			"the AI returned an unreadable edited image", err)
	}

	p.logger.Info("image edit completed",
		zap.String("model", p.editModel),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)))
	return &EditedImage{Data: data, MIME: "image/png"}, nil
}

// visionCompletion runs one vision chat completion and returns the model text.
func (p *OpenAIProvider) visionCompletion(ctx context.Context, op string, img Payload, prompt string) (string, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", p.requestError(op, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", core.NewRequestError(core.RequestCodeNoCandidates, op,
			"the AI returned an empty response", nil)
	}

	p.logger.Debug("vision completion finished",
		zap.String("op", op),
		zap.String("model", p.visionModel),
		zap.Duration("duration", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

// requestError classifies a go-openai error into the RequestError taxonomy.
func (p *OpenAIProvider) requestError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return core.NewRequestError(core.RequestCodeQuota, op,
				"the AI service rejected the request due to rate or quota limits", err)
		default:
			return core.NewRequestError(core.RequestCodeRemote, op,
				fmt.Sprintf("the AI service returned an error (HTTP %d)", apiErr.HTTPStatusCode), err)
		}
	}
	return core.NewRequestError(core.RequestCodeTransport, op,
		"could not reach the AI service", err)
}

// Ensure OpenAIProvider implements Provider at compile time.
var _ Provider = (*OpenAIProvider)(nil)
