// File path: internal/pov/summary.go
package pov

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// TakeawaysMarker separates the summary section from the takeaways section
// in the combined model output.
const TakeawaysMarker = "## **Key Takeaways & Next Steps**"

var summaryHeadingRe = regexp.MustCompile(`^## \*\*Summary & Strategic Integration of All \d+ Outcomes\*\*\s*`)

// GenerateSummary produces the combined summary-and-takeaways block for a
// report covering n outcomes. Generation failure degrades to a placeholder
// block instead of failing the pipeline.
func GenerateSummary(ctx context.Context, provider providers.Provider, bc *BackgroundContext, n int) string {
	_, finish := telemetry.StartSpan(ctx, "pov.summary")
	defer finish()
	logger := common.Logger()
	start := time.Now()

	completion, err := provider.Complete(ctx, summaryPrompt(bc, n))
	if err != nil {
		logger.Warn("pov: summary generation failed, using placeholder", "error", err)
		return placeholderSummary(n)
	}
	if strings.TrimSpace(completion.Text) == "" {
		logger.Warn("pov: summary generation returned empty content, using placeholder")
		return placeholderSummary(n)
	}
	telemetry.RecordPipelineStage("summary", time.Since(start))
	return completion.Text
}

func placeholderSummary(n int) string {
	return fmt.Sprintf("## **Summary & Strategic Integration of All %d Outcomes**\n\n*Error: failed to generate Summary & Strategic Integration.*\n\n---\n\n%s\n\n*Error: failed to generate Key Takeaways & Next Steps.*", n, TakeawaysMarker)
}

// SplitSummary divides a combined summary block on the takeaways marker.
// The prefix becomes the summary (its leading section heading stripped when
// present); the suffix becomes the takeaways. A missing marker yields the
// whole text as summary and empty takeaways.
func SplitSummary(combined string) (summary, takeaways string) {
	before, after, found := strings.Cut(combined, TakeawaysMarker)
	summary = strings.TrimSpace(summaryHeadingRe.ReplaceAllString(strings.TrimSpace(before), ""))
	if found {
		takeaways = strings.TrimSpace(after)
	}
	return summary, takeaways
}
