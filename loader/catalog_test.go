package loader

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadCatalog_Builtin tests that an empty path yields the built-in catalog.
func TestLoadCatalog_Builtin(t *testing.T) {
	catalog, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog(\"\") error = %v, want nil", err)
	}

	if catalog.Len() == 0 {
		t.Fatal("builtin catalog is empty")
	}

	tpl, ok := catalog.Find("drake")
	if !ok {
		t.Fatal("Find(\"drake\") ok = false, want true")
	}
	if tpl.URL == "" {
		t.Error("builtin template has empty URL")
	}
}

// TestLoadCatalog_Override tests a YAML override file replacing the catalog.
func TestLoadCatalog_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `templates:
  - id: one
    name: First
    url: https://example.com/one.png
  - id: two
    name: Second
    url: https://example.com/two.jpg
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v, want nil", err)
	}

	if catalog.Len() != 2 {
		t.Errorf("Len() = %d, want 2", catalog.Len())
	}

	// Built-in entries must be gone
	if _, ok := catalog.Find("drake"); ok {
		t.Error("Find(\"drake\") ok = true, want false after override")
	}

	list := catalog.List()
	if list[0].ID != "one" || list[1].ID != "two" {
		t.Errorf("List() order = [%s, %s], want [one, two]", list[0].ID, list[1].ID)
	}
}

// TestLoadCatalog_Invalid tests rejection of broken override files.
func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing file is an error", ""},
		{"empty template list", "templates: []\n"},
		{"duplicate ids", "templates:\n  - {id: a, url: https://x/1.png}\n  - {id: a, url: https://x/2.png}\n"},
		{"missing url", "templates:\n  - {id: a, name: A}\n"},
		{"missing id", "templates:\n  - {url: https://x/1.png}\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "templates.yaml")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
			}
			if _, err := LoadCatalog(path); err == nil {
				t.Error("LoadCatalog() error = nil, want error")
			}
		})
	}
}

// TestCatalog_ListIsCopy tests that mutating the returned list does not
// affect the catalog.
func TestCatalog_ListIsCopy(t *testing.T) {
	catalog, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	list := catalog.List()
	original := list[0].ID
	list[0].ID = "mutated"

	if tpl := catalog.List()[0]; tpl.ID != original {
		t.Errorf("catalog entry ID = %q after caller mutation, want %q", tpl.ID, original)
	}
}
