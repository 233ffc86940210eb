// File path: internal/llm/llm.go
package llm

import (
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/config"
	"github.com/fieldscale/povd/internal/llm/providers"
)

type Prompt = providers.Prompt

type Result = providers.Result

type Provider = providers.Provider

// NewProvider builds the completion provider named by cfg.Provider. An
// empty OpenAI key degrades to the local stub so the service still starts
// in offline development.
func NewProvider(cfg config.Config) (Provider, error) {
	logger := common.Logger()
	switch cfg.Provider {
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			logger.Warn("llm: OPENAI_API_KEY not set; falling back to local provider")
			return providers.NewLocalProvider(), nil
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			logger.Info("llm: configuring openai client with custom endpoint", "endpoint", cfg.BaseURL)
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if cfg.LLMTimeout > 0 {
			opts = append(opts, option.WithRequestTimeout(cfg.LLMTimeout))
		}
		opts = append(opts, option.WithMaxRetries(2))
		client := openai.NewClient(opts...)
		logger.Info("llm: openai provider selected")
		return providers.NewOpenAIProvider(client, cfg.Model), nil
	case "langchain":
		lcOpts := []lcopenai.Option{lcopenai.WithModel(cfg.Model)}
		if strings.TrimSpace(cfg.APIKey) != "" {
			lcOpts = append(lcOpts, lcopenai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			lcOpts = append(lcOpts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		model, err := lcopenai.New(lcOpts...)
		if err != nil {
			return nil, fmt.Errorf("init langchain backend: %w", err)
		}
		logger.Info("llm: langchain provider selected", "model", cfg.Model)
		return providers.NewLangchainProvider(model, "langchain"), nil
	case "local":
		logger.Info("llm: local provider selected")
		return providers.NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// StripCodeFences removes a surrounding markdown code fence from model
// output, tolerating a language tag on the opening fence.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || isFenceTag(first) {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
