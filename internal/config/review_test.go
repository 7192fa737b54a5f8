package config

import (
	"testing"
)

func TestParseModelsDefaults(t *testing.T) {
	models := parseModels("")
	if len(models) == 0 {
		t.Fatal("expected default model panel")
	}
	for _, m := range models {
		if m.Provider == "" || m.Model == "" || m.Label == "" {
			t.Errorf("incomplete default model entry: %+v", m)
		}
	}
}

func TestParseModelsCustom(t *testing.T) {
	models := parseModels("gemini:gemini-2.5-pro:Gemini Pro, openrouter:meta-llama/llama-3.3-70b")
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Label != "Gemini Pro" {
		t.Errorf("expected explicit label, got %q", models[0].Label)
	}
	if models[1].Label != "meta-llama/llama-3.3-70b" {
		t.Errorf("expected slug fallback label, got %q", models[1].Label)
	}
}

func TestParseModelsSkipsMalformed(t *testing.T) {
	models := parseModels("justoneword,gemini:gemini-2.5-flash")
	if len(models) != 1 {
		t.Fatalf("expected malformed entry to be skipped, got %d models", len(models))
	}
}
