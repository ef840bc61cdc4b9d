package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing  = "ENV_FILE_MISSING"
	ErrCodeMissingAuth     = "MISSING_AUTH"
	ErrCodeUnknownProvider = "UNKNOWN_PROVIDER"
	ErrCodeMissingConfig   = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrMissingAuth returns an error for missing AI provider credentials
func ErrMissingAuth(provider string) *ConfigError {
	var action string
	switch provider {
	case ProviderGemini:
		action = "Set GEMINI_API_KEY in your .env file"
	case ProviderOpenAI:
		action = "Set OPENAI_API_KEY in your .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", provider)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing API key for provider %q", provider),
		Action:  action,
	}
}

// ErrUnknownProvider returns an error for an unrecognized AI_PROVIDER value
func ErrUnknownProvider(provider string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownProvider,
		Message: fmt.Sprintf("Unknown AI provider %q", provider),
		Action:  `Set AI_PROVIDER to "gemini" or "openai"`,
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// Error codes for image loading failures
const (
	LoadCodeUnreadable  = "UNREADABLE_IMAGE"
	LoadCodeTooLarge    = "IMAGE_TOO_LARGE"
	LoadCodeFetchFailed = "FETCH_FAILED"
	LoadCodeNotAnImage  = "NOT_AN_IMAGE"
	LoadCodeNoTemplate  = "TEMPLATE_NOT_FOUND"
)

// LoadError represents a failure to bring an image into the session,
// whether from an upload, a template fetch, or an AI edit result.
// The Message is safe to show to the user verbatim.
type LoadError struct {
	Code    string // One of the LoadCode* constants
	Message string // Human-readable description
	Err     error  // Underlying cause, may be nil
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("load: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError constructs a LoadError with the given code, message, and cause.
func NewLoadError(code, message string, err error) *LoadError {
	return &LoadError{Code: code, Message: message, Err: err}
}

// AsLoadError checks if any error in the chain is a LoadError.
func AsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}

// Error codes for AI gateway failures
const (
	RequestCodeTransport    = "TRANSPORT"
	RequestCodeRemote       = "REMOTE_ERROR"
	RequestCodeQuota        = "QUOTA_EXCEEDED"
	RequestCodeBadResponse  = "MALFORMED_RESPONSE"
	RequestCodeNoCandidates = "NO_CANDIDATES"
	RequestCodeBadInput     = "BAD_INPUT"
)

// RequestError represents a failed round trip to the AI gateway.
// Op names the operation that failed ("captions", "edit", "analyze").
// The Message is safe to show to the user verbatim.
type RequestError struct {
	Code    string // One of the RequestCode* constants
	Op      string // Gateway operation that failed
	Message string // Human-readable description
	Err     error  // Underlying cause, may be nil
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError constructs a RequestError for the given operation.
func NewRequestError(code, op, message string, err error) *RequestError {
	return &RequestError{Code: code, Op: op, Message: message, Err: err}
}

// AsRequestError checks if any error in the chain is a RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
