package capabilities

import (
	"testing"

	"draftdeck/internal/domain/models"
)

func TestRegistryLoadsEmbeddedProviders(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	for _, provider := range []string{"anthropic", "openrouter"} {
		modelList, err := registry.ListProviderModels(provider)
		if err != nil {
			t.Fatalf("ListProviderModels(%s) failed: %v", provider, err)
		}
		if len(modelList) == 0 {
			t.Errorf("provider %s has no models", provider)
		}
		for _, m := range modelList {
			if m.ID == "" || m.DisplayName == "" {
				t.Errorf("provider %s has a model missing id or display name: %+v", provider, m)
			}
		}
	}

	if _, err := registry.ListProviderModels("unknown"); err == nil {
		t.Error("unknown provider must error")
	}
}

func TestGetModelCapabilities(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	caps, err := registry.GetModelCapabilities("anthropic", "claude-haiku-4-5")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !caps.SupportsVision {
		t.Error("expected vision support")
	}

	if _, err := registry.GetModelCapabilities("anthropic", "no-such-model"); err == nil {
		t.Error("unknown model must error")
	}
}

func TestViableModels(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	tests := []struct {
		name     string
		provider string
		required models.Capabilities
		exclude  string // a model ID that must be filtered out
	}{
		{
			name:     "pdf requirement filters non-pdf models",
			provider: "openrouter",
			required: models.Capabilities{HasPDFs: true},
			exclude:  "openai/gpt-5",
		},
		{
			name:     "image requirement filters text-only models",
			provider: "openrouter",
			required: models.Capabilities{HasImages: true},
			exclude:  "meta-llama/llama-4-maverick",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viable, err := registry.ViableModels(tt.provider, tt.required)
			if err != nil {
				t.Fatalf("ViableModels failed: %v", err)
			}
			if len(viable) == 0 {
				t.Fatal("expected at least one viable model")
			}
			for _, m := range viable {
				if m.ID == tt.exclude {
					t.Errorf("model %s should have been filtered out", tt.exclude)
				}
			}
		})
	}

	// No requirements passes everything through
	all, _ := registry.ListProviderModels("anthropic")
	viable, err := registry.ViableModels("anthropic", models.Capabilities{})
	if err != nil {
		t.Fatalf("ViableModels failed: %v", err)
	}
	if len(viable) != len(all) {
		t.Errorf("no requirements should keep all %d models, got %d", len(all), len(viable))
	}
}
