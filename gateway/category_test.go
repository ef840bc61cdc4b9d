package gateway

import "testing"

// TestParseCategory tests strict enum matching with case normalization.
func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CaptionCategory
		wantErr bool
	}{
		{"exact", "Funny", CategoryFunny, false},
		{"lowercase", "sarcastic", CategorySarcastic, false},
		{"uppercase", "DARK", CategoryDark, false},
		{"surrounding whitespace", "  Wholesome ", CategoryWholesome, false},
		{"relatable", "Relatable", CategoryRelatable, false},
		{"unknown", "Spicy", "", true},
		{"empty", "", "", true},
		{"substring is not a match", "Funn", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCategory(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) error = %v, want nil", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestCaptionCategory_Valid tests the validity check on the enum type.
func TestCaptionCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("Valid() = false for canonical category %q", c)
		}
	}
	if CaptionCategory("Spicy").Valid() {
		t.Error("Valid() = true for out-of-set category")
	}
	if CaptionCategory("funny").Valid() {
		t.Error("Valid() = true for non-canonical casing")
	}
}
