// File path: internal/llm/providers/langchain.go
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
)

// LangchainProvider adapts a langchaingo chat model to the Provider
// interface. It lets alternative backends (Ollama, Anthropic, local
// OpenAI-compatible servers) slot in without touching the pipeline.
type LangchainProvider struct {
	model llms.Model
	name  string
}

// NewLangchainProvider wraps an initialized langchaingo model.
func NewLangchainProvider(model llms.Model, name string) *LangchainProvider {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "langchain"
	}
	common.Logger().Info("llm: langchain provider configured", "backend", name)
	return &LangchainProvider{model: model, name: name}
}

func (l *LangchainProvider) Name() string { return l.name }

func (l *LangchainProvider) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	if l.model == nil {
		return Completion{}, fmt.Errorf("nil langchain model")
	}
	if strings.TrimSpace(prompt.User) == "" {
		return Completion{}, ErrEmptyPrompt
	}
	logger := common.Logger()
	logger.Debug("llm: sending langchain completion request", "backend", l.name)

	content := make([]llms.MessageContent, 0, 2)
	if strings.TrimSpace(prompt.System) != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, prompt.User))

	start := time.Now()
	resp, err := l.model.GenerateContent(ctx, content,
		llms.WithTemperature(0),
		llms.WithMaxTokens(defaultMaxCompletionTokens),
	)
	if err != nil {
		telemetry.RecordCompletion(l.name, time.Since(start), 0, true)
		logger.Error("llm: langchain completion failed", "backend", l.name, "error", err)
		return Completion{}, fmt.Errorf("langchain completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		telemetry.RecordCompletion(l.name, time.Since(start), 0, true)
		return Completion{}, fmt.Errorf("langchain completion: no choices returned")
	}
	telemetry.RecordCompletion(l.name, time.Since(start), 0, false)
	logger.Debug("llm: langchain completion succeeded", "backend", l.name)
	return Completion{Text: resp.Choices[0].Content}, nil
}
