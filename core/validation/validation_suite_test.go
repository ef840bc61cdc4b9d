package validation

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// TestValidationSuite_AllPass tests a fully configured run.
func TestValidationSuite_AllPass(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	var out bytes.Buffer
	suite := NewValidationSuite().
		WithOutput(&out).
		WithEnvPath(filepath.Join(t.TempDir(), "no.env"))

	result := suite.Validate()
	if !result.Success {
		t.Fatalf("Success = false, want true: %s", result.Summary())
	}
	if result.TotalSteps != 4 || result.PassedSteps != 4 {
		t.Errorf("steps = %d/%d passed, want 4/4", result.PassedSteps, result.TotalSteps)
	}
	if result.GetFirstError() != nil {
		t.Errorf("GetFirstError() = %v, want nil", result.GetFirstError())
	}

	output := out.String()
	if !strings.Contains(output, "Meme Studio Configuration Validation") {
		t.Error("output missing header")
	}
	if !strings.Contains(output, "✓ Render Engine") {
		t.Errorf("output missing passed render step:\n%s", output)
	}
	if !strings.Contains(output, "Validation Passed") {
		t.Error("output missing success summary")
	}
}

// TestValidationSuite_Failure tests failure accounting and error surfacing.
func TestValidationSuite_Failure(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("AI_PROVIDER", "llamacpp")
	t.Setenv("GEMINI_API_KEY", "key")

	var out bytes.Buffer
	suite := NewValidationSuite().
		WithOutput(&out).
		WithEnvPath(filepath.Join(t.TempDir(), "no.env"))

	result := suite.Validate()
	if result.Success {
		t.Fatal("Success = true, want false with unknown provider")
	}
	if result.FailedSteps != 1 {
		t.Errorf("FailedSteps = %d, want 1", result.FailedSteps)
	}
	if result.GetFirstError() == nil {
		t.Error("GetFirstError() = nil, want provider error")
	}
	if !strings.Contains(out.String(), "Validation Failed") {
		t.Error("output missing failure summary")
	}
}

// TestValidationSuite_FailFast tests that fail-fast stops at the first
// failed step.
func TestValidationSuite_FailFast(t *testing.T) {
	clearProviderEnv(t)

	suite := NewValidationSuite().
		WithShowProgress(false).
		WithFailFast(true).
		WithEnvPath(filepath.Join(t.TempDir(), "no.env"))

	result := suite.Validate()
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if result.TotalSteps != 1 {
		t.Errorf("TotalSteps = %d, want 1 with fail-fast", result.TotalSteps)
	}
}

// TestValidationSuite_Quick tests the reduced check set.
func TestValidationSuite_Quick(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("AI_PROVIDER", "openai")

	suite := NewValidationSuite().
		WithShowProgress(false).
		WithEnvPath(filepath.Join(t.TempDir(), "no.env"))

	result := suite.ValidateQuick()
	if !result.Success {
		t.Fatalf("Success = false, want true: %s", result.Summary())
	}
	if result.TotalSteps != 2 {
		t.Errorf("TotalSteps = %d, want 2", result.TotalSteps)
	}
}

// TestSuiteResult_Summary tests the summary string shape.
func TestSuiteResult_Summary(t *testing.T) {
	result := SuiteResult{TotalSteps: 4, PassedSteps: 3, FailedSteps: 1}
	got := result.Summary()
	if !strings.Contains(got, "3/4 checks passed") {
		t.Errorf("Summary() = %q, want pass count", got)
	}
	if !strings.Contains(got, "1 failed") {
		t.Errorf("Summary() = %q, want failure count", got)
	}
}
