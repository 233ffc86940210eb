// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
)

const defaultMaxCompletionTokens = 4000

// OpenAIProvider generates completions through the OpenAI chat API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider wraps an OpenAI client with the chat model to use.
func NewOpenAIProvider(client openai.Client, model string) *OpenAIProvider {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "gpt-4o"
	}
	logger := common.Logger()
	logger.Info("llm: openai provider configured", "model", model)
	return &OpenAIProvider{client: client, model: model}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	if strings.TrimSpace(prompt.User) == "" {
		return Completion{}, ErrEmptyPrompt
	}
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.model)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(prompt.System) != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(defaultMaxCompletionTokens),
	})
	if err != nil {
		telemetry.RecordCompletion(o.Name(), time.Since(start), 0, true)
		logger.Error("llm: chat completion failed", "model", o.model, "error", err)
		return Completion{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		telemetry.RecordCompletion(o.Name(), time.Since(start), 0, true)
		return Completion{}, fmt.Errorf("openai completion: no choices returned")
	}
	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	telemetry.RecordCompletion(o.Name(), time.Since(start), usage.TotalTokens, false)
	logger.Debug("llm: chat completion succeeded", "model", o.model, "tokens", usage.TotalTokens)
	return Completion{Text: resp.Choices[0].Message.Content, Usage: usage}, nil
}
