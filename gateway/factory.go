package gateway

import (
	"memestudio/core"
	"memestudio/logging"
)

// NewProvider builds the configured Provider. Selection follows AI_PROVIDER;
// credential validation happens inside each constructor.
func NewProvider(cfg *core.Config, logger *logging.Logger) (Provider, error) {
	switch cfg.Provider {
	case core.ProviderOpenAI:
		return NewOpenAIProvider(cfg, logger)
	case core.ProviderGemini:
		return NewGeminiProvider(cfg, logger)
	default:
		return nil, core.ErrUnknownProvider(cfg.Provider)
	}
}
