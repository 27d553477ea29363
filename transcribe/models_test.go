package transcribe

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestBuildModelCatalogDefaults tests the built-in model list
func TestBuildModelCatalogDefaults(t *testing.T) {
	opts := BuildModelCatalog(nil, "")

	if len(opts) != len(DefaultModels) {
		t.Fatalf("expected %d options, got %d", len(DefaultModels), len(opts))
	}

	last := opts[len(opts)-1]
	if last.Value != "large-v3" || !last.Default {
		t.Errorf("expected large-v3 to be the default, got %+v", last)
	}
	if DefaultModelIndex(opts) != len(opts)-1 {
		t.Errorf("expected default index %d, got %d", len(opts)-1, DefaultModelIndex(opts))
	}

	if opts[4].Label != "Large V2 · Slow speed · very high accuracy" {
		t.Errorf("unexpected label %q", opts[4].Label)
	}
	if opts[0].Label != "Tiny · Fastest speed · lowest accuracy" {
		t.Errorf("unexpected label %q", opts[0].Label)
	}

	for _, o := range opts {
		want := "False"
		if o.Value == "medium" {
			want = "True"
		}
		if o.Recommended != want {
			t.Errorf("model %s: expected Recommended %q, got %q", o.Value, want, o.Recommended)
		}
	}
}

// TestBuildModelCatalogCustom tests configured choices and default handling
func TestBuildModelCatalogCustom(t *testing.T) {
	opts := BuildModelCatalog([]string{"small", "distil-large"}, "turbo")

	if len(opts) != 3 {
		t.Fatalf("expected default to be appended, got %d options", len(opts))
	}
	if opts[2].Value != "turbo" || !opts[2].Default {
		t.Errorf("expected appended default turbo, got %+v", opts[2])
	}
	if opts[1].Hint != "Balanced performance" {
		t.Errorf("expected fallback description, got %q", opts[1].Hint)
	}
	if opts[1].Label != "Distil Large · Balanced performance" {
		t.Errorf("unexpected label %q", opts[1].Label)
	}
	if ModelIndex(opts, "small") != 0 || ModelIndex(opts, "missing") != -1 {
		t.Error("unexpected ModelIndex results")
	}
}

// TestModelHint tests hint rendering and the recommended marker
func TestModelHint(t *testing.T) {
	tests := []struct {
		name   string
		option ModelOption
		want   string
		ok     bool
	}{
		{"plain", ModelOption{Hint: "Fast", Recommended: "False"}, "Fast", true},
		{"recommended", ModelOption{Hint: "Moderate", Recommended: "True"}, "Moderate · 👍 recommended", true},
		{"lowercase flag is not recommended", ModelOption{Hint: "Moderate", Recommended: "true"}, "Moderate", true},
		{"no hint", ModelOption{Recommended: "True"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ModelHint(tt.option)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ModelHint() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

// TestLanguageIndex tests language lookup
func TestLanguageIndex(t *testing.T) {
	if LanguageIndex("EN") != 1 {
		t.Error("expected English at index 1")
	}
	if LanguageIndex("klingon") != 0 {
		t.Error("expected unknown language to fall back to auto")
	}
}

// TestLoadConfig tests environment parsing
func TestLoadConfig(t *testing.T) {
	t.Setenv("WHISPERFORM_URL", "http://whisper.lan:8000")
	t.Setenv("WHISPER_MODELS", " tiny, ,medium ")
	t.Setenv("WHISPER_MODEL", "medium")
	t.Setenv("WHISPER_LANGUAGE", "EN")
	t.Setenv("WHISPERFORM_TIMEOUT", "90s")
	t.Setenv("WHISPERFORM_DEBUG", "1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://whisper.lan:8000" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "tiny" || cfg.Models[1] != "medium" {
		t.Errorf("unexpected models %v", cfg.Models)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("unexpected language %q", cfg.DefaultLanguage)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}

	catalog := cfg.Catalog()
	if catalog[DefaultModelIndex(catalog)].Value != "medium" {
		t.Error("expected medium to be the default model")
	}
}

// TestLoadConfigDefaults tests the fallback values
func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"WHISPERFORM_URL", "WHISPER_MODELS", "WHISPER_MODEL", "WHISPER_LANGUAGE", "WHISPERFORM_TIMEOUT", "WHISPERFORM_DEBUG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.DefaultLanguage != DefaultLanguage || cfg.Timeout != DefaultTimeout {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

// TestNormalizeLanguage tests code and label matching
func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "auto", false},
		{"EN", "en", false},
		{" english ", "en", false},
		{"Indonesian", "id", false},
		{"auto-detect", "auto", false},
		{"indo", "", true},
		{"klingon", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeLanguage(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestLoadConfigLanguage tests that the configured language matches a selector entry
func TestLoadConfigLanguage(t *testing.T) {
	t.Setenv("WHISPERFORM_TIMEOUT", "")
	t.Setenv("WHISPER_LANGUAGE", "English")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultLanguage != "en" || Languages[LanguageIndex(cfg.DefaultLanguage)].Value != "en" {
		t.Errorf("expected en, got %q", cfg.DefaultLanguage)
	}

	t.Setenv("WHISPER_LANGUAGE", "indo")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "WHISPER_LANGUAGE") {
		t.Errorf("expected WHISPER_LANGUAGE error, got %v", err)
	}
}

// TestLoadConfigBadTimeout tests timeout validation
func TestLoadConfigBadTimeout(t *testing.T) {
	t.Setenv("WHISPERFORM_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid timeout")
	}
}
