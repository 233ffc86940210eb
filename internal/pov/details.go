// File path: internal/pov/details.go
package pov

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// GenerateDetails fans one prompt per title out through the provider as a
// single concurrent batch and returns the detail texts aligned with the
// input titles: detail i always belongs to title i. A failed prompt yields
// a placeholder detail at its own index; a batch where every prompt failed
// is a hard error, as is a result count that differs from the title count.
func GenerateDetails(ctx context.Context, provider providers.Provider, bc *BackgroundContext, titles []string, maxParallel int) ([]string, error) {
	if len(titles) == 0 {
		return nil, ErrNoSelection
	}
	ctx, finish := telemetry.StartSpan(ctx, "pov.details")
	defer finish(
		"titles", len(titles),
	)
	logger := common.Logger()
	start := time.Now()

	prompts := make([]providers.Prompt, len(titles))
	for i, title := range titles {
		prompts[i] = detailPrompt(bc, title)
	}
	results, err := providers.CompleteBatch(ctx, provider, prompts, maxParallel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchFailure, err)
	}
	// Titles and details are re-joined by index downstream, so a misaligned
	// batch must never pass this point.
	if len(results) != len(titles) {
		return nil, fmt.Errorf("%w: submitted %d prompts, received %d results", ErrCountMismatch, len(titles), len(results))
	}
	if providers.AllFailed(results) {
		return nil, fmt.Errorf("%w: all %d detail prompts failed", ErrBatchFailure, len(titles))
	}

	details := make([]string, len(results))
	failed := 0
	for i, res := range results {
		if res.Err != nil {
			failed++
			logger.Warn("pov: detail generation failed for title", "index", i, "title", titles[i], "error", res.Err)
			details[i] = fmt.Sprintf("## **Outcome: %s**\n\n*Error: detail generation failed for this outcome.*", titles[i])
			continue
		}
		details[i] = res.Text
	}
	telemetry.RecordPipelineStage("details", time.Since(start))
	logger.Info("pov: detail fan-out complete", "titles", len(titles), "failed", failed)
	return details, nil
}
