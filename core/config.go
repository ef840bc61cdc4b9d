package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Supported AI provider names for the AI_PROVIDER variable.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default values for studio configuration.
const (
	// DefaultViewportMax is the largest dimension of a rendered surface in pixels.
	DefaultViewportMax = 600

	// DefaultMaxUploadBytes caps the size of an uploaded image (12 MB).
	DefaultMaxUploadBytes = 12 * 1024 * 1024

	// DefaultAITimeoutSeconds is the timeout for a single AI gateway call.
	DefaultAITimeoutSeconds = 120

	// DefaultPort is the HTTP listen port.
	DefaultPort = 3000
)

// Config holds all configuration values for the meme studio.
// Configuration is deployment-level only; no per-user state lives here.
type Config struct {
	// AI gateway
	Provider     string // "gemini" or "openai"
	GeminiAPIKey string
	OpenAIAPIKey string
	OpenAIBase   string // Optional base URL override for OpenAI-compatible endpoints
	CaptionModel string // Vision model for caption suggestions and analysis
	EditModel    string // Model for image edits
	AITimeout    time.Duration

	// Server
	Host           string
	Port           int
	StudioPassword string // Empty means no password gate
	SessionTTL     time.Duration

	// Rendering and loading
	ViewportMax    int
	MaxUploadBytes int64
	TemplatesFile  string // Optional YAML override for the template catalog

	// Transport
	AllowSelfSignedCerts bool

	// Logging
	DevMode  bool
	LogFile  string
	LogLevel string
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. Only the API key for the selected provider is required; everything
// else has a working default.
func LoadConfig() (*Config, error) {
	provider := GetEnvOrDefault("AI_PROVIDER", ProviderGemini)
	if provider != ProviderGemini && provider != ProviderOpenAI {
		return nil, ErrUnknownProvider(provider)
	}

	geminiKey := GetEnvOrDefault("GEMINI_API_KEY", "")
	openAIKey := GetEnvOrDefault("OPENAI_API_KEY", "")

	switch provider {
	case ProviderGemini:
		if geminiKey == "" {
			return nil, ErrMissingAuth(ProviderGemini)
		}
	case ProviderOpenAI:
		if openAIKey == "" {
			return nil, ErrMissingAuth(ProviderOpenAI)
		}
	}

	viewportMax := ParseIntEnv("VIEWPORT_MAX", DefaultViewportMax)
	if viewportMax < 1 {
		return nil, fmt.Errorf("VIEWPORT_MAX must be positive, got %d", viewportMax)
	}

	maxUpload := ParseInt64Env("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if maxUpload < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", maxUpload)
	}

	return &Config{
		Provider:     provider,
		GeminiAPIKey: geminiKey,
		OpenAIAPIKey: openAIKey,
		OpenAIBase:   GetEnvOrDefault("OPENAI_BASE_URL", ""),
		CaptionModel: GetEnvOrDefault("CAPTION_MODEL", ""),
		EditModel:    GetEnvOrDefault("EDIT_MODEL", ""),
		AITimeout:    ParseDurationEnv("AI_TIMEOUT", DefaultAITimeoutSeconds),

		Host:           GetEnvOrDefault("HOST", ""),
		Port:           ParseIntEnv("PORT", DefaultPort),
		StudioPassword: GetEnvOrDefault("STUDIO_PASSWORD", ""),
		SessionTTL:     ParseDurationEnv("SESSION_TTL", int(DefaultSessionDuration.Seconds())),

		ViewportMax:    viewportMax,
		MaxUploadBytes: maxUpload,
		TemplatesFile:  GetEnvOrDefault("TEMPLATES_FILE", ""),

		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),

		DevMode:  ParseBoolEnv("DEV_MODE", false),
		LogFile:  GetEnvOrDefault("LOG_FILE", "memestudio.log"),
		LogLevel: GetEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// HasAuth reports whether the password gate is enabled.
func (c *Config) HasAuth() bool {
	return c.StudioPassword != ""
}

// ListenAddr returns the host:port address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on
// AllowSelfSignedCerts. This should be used for all outbound HTTP requests so
// TLS configuration is respected everywhere.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30s timeout configured
// with the same TLS settings.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}
