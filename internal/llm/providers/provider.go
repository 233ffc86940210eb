// File path: internal/llm/providers/provider.go
package providers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
)

// Prompt is a single system/user instruction pair sent to a model.
type Prompt struct {
	System string
	User   string
}

// Usage reports token consumption for a completion when the backend
// supplies it.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is the text produced for a single prompt.
type Completion struct {
	Text  string
	Usage Usage
}

// Result holds the outcome of one prompt within a batch. Exactly one of
// Text or Err is meaningful.
type Result struct {
	Text string
	Err  error
}

// Provider generates model completions.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// ErrEmptyPrompt is returned when a prompt carries no user content.
var ErrEmptyPrompt = errors.New("empty prompt")

// CompleteBatch runs the prompts concurrently through the provider, limited
// to maxParallel in-flight requests, and returns one Result per prompt in
// the same order. A failed prompt records its error at its own index and
// never disturbs the others.
func CompleteBatch(ctx context.Context, provider Provider, prompts []Prompt, maxParallel int) ([]Result, error) {
	if provider == nil {
		return nil, fmt.Errorf("nil provider")
	}
	if len(prompts) == 0 {
		return nil, nil
	}
	if maxParallel <= 0 {
		maxParallel = 1
	}
	logger := common.Logger()
	logger.Debug("llm: dispatching completion batch", "prompts", len(prompts), "max_parallel", maxParallel)
	telemetry.RecordBatch(len(prompts))

	results := make([]Result, len(prompts))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)
	for i := range prompts {
		i := i
		group.Go(func() error {
			completion, err := provider.Complete(groupCtx, prompts[i])
			if err != nil {
				results[i] = Result{Err: err}
				return nil
			}
			results[i] = Result{Text: completion.Text}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AllFailed reports whether every result in the batch carries an error.
func AllFailed(results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, res := range results {
		if res.Err == nil {
			return false
		}
	}
	return true
}
