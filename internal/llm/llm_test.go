// File path: internal/llm/llm_test.go
package llm

import (
	"testing"

	"github.com/fieldscale/povd/internal/config"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `["a","b"]`, `["a","b"]`},
		{"fenced", "```\n[\"a\"]\n```", `["a"]`},
		{"fenced json tag", "```json\n[\"a\"]\n```", `["a"]`},
		{"fenced with whitespace", "  ```json\n[\"a\"]\n```  ", `["a"]`},
		{"tag not a language", "```This is prose\nmore", "This is prose\nmore"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewProviderLocal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = "local"
	provider, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.Name() != "local" {
		t.Fatalf("expected local provider, got %q", provider.Name())
	}
}

func TestNewProviderOpenAIWithoutKeyFallsBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = "openai"
	cfg.APIKey = ""
	provider, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.Name() != "local" {
		t.Fatalf("expected local fallback, got %q", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = "mystery"
	if _, err := NewProvider(cfg); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
