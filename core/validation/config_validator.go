package validation

import (
	"fmt"
	"os"

	"memestudio/core"
	"memestudio/loader"
	"memestudio/render"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to provide comprehensive startup
// checking. This is a molecule that orchestrates env-file, provider
// credential, template catalog, and render engine checks.
type ConfigValidator struct {
	envPath string // Path to .env file (default: ".env")
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile validates that configuration is reachable: either a .env file
// exists, or the process environment already carries a provider API key.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("OPENAI_API_KEY") != "" {
			return ValidationResult{
				Valid:   true,
				Message: "No .env file, using process environment",
			}
		}
		return ValidationResult{
			Valid:   false,
			Message: "Configuration file not found. Copy .env.example to .env and set your AI provider key.",
			Error:   core.ErrEnvFileMissing(v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckProvider validates AI_PROVIDER and the matching API key.
func (v *ConfigValidator) CheckProvider() ValidationResult {
	provider := core.GetEnvOrDefault("AI_PROVIDER", core.ProviderGemini)

	switch provider {
	case core.ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return ValidationResult{
				Valid:   false,
				Message: "GEMINI_API_KEY required for the gemini provider",
				Error:   core.ErrMissingAuth(core.ProviderGemini),
			}
		}
	case core.ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return ValidationResult{
				Valid:   false,
				Message: "OPENAI_API_KEY required for the openai provider",
				Error:   core.ErrMissingAuth(core.ProviderOpenAI),
			}
		}
	default:
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Unknown AI_PROVIDER %q. Use %q or %q.", provider, core.ProviderGemini, core.ProviderOpenAI),
			Error:   core.ErrUnknownProvider(provider),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Provider %q configured", provider),
	}
}

// CheckTemplateCatalog validates the template catalog: the optional
// TEMPLATES_FILE override must parse and every template URL must be valid.
func (v *ConfigValidator) CheckTemplateCatalog() ValidationResult {
	path := core.GetEnvOrDefault("TEMPLATES_FILE", "")

	catalog, err := loader.LoadCatalog(path)
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Template catalog failed to load",
			Error:   err,
		}
	}

	for _, tpl := range catalog.List() {
		if err := ValidateServerURL(tpl.URL); err != nil {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("Template %q has an invalid URL", tpl.ID),
				Error:   err,
			}
		}
	}

	source := "built-in"
	if path != "" {
		source = path
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("%d templates (%s)", catalog.Len(), source),
	}
}

// CheckRenderEngine validates that the caption renderer can construct its
// font face and measure text.
func (v *ConfigValidator) CheckRenderEngine() ValidationResult {
	viewportMax := core.ParseIntEnv("VIEWPORT_MAX", core.DefaultViewportMax)

	_, err := render.NewRenderer(viewportMax)
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Render engine failed to initialize",
			Error:   err,
		}
	}
	if err := render.SelfCheck(); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Render engine self-check failed",
			Error:   err,
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Font loaded, viewport max %dpx", viewportMax),
	}
}

// ValidateAll runs all configuration checks and returns all results.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckEnvFile(),
		v.CheckProvider(),
		v.CheckTemplateCatalog(),
		v.CheckRenderEngine(),
	}
}

// ValidateRequired runs the checks in order and returns the first failure,
// or nil if all pass.
func (v *ConfigValidator) ValidateRequired() error {
	for _, result := range v.ValidateAll() {
		if !result.Valid {
			return result.Error
		}
	}
	return nil
}

// IsValid returns true if all required configuration is valid.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}

// GetFirstError returns the first validation error, or nil if all checks pass.
func (v *ConfigValidator) GetFirstError() error {
	return v.ValidateRequired()
}

// CountValid returns the number of valid configuration items.
func (v *ConfigValidator) CountValid() int {
	results := v.ValidateAll()
	count := 0
	for _, r := range results {
		if r.Valid {
			count++
		}
	}
	return count
}

// CountInvalid returns the number of invalid configuration items.
func (v *ConfigValidator) CountInvalid() int {
	results := v.ValidateAll()
	return len(results) - v.CountValid()
}
