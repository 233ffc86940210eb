// File path: internal/pov/summary_test.go
package pov

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func TestSplitSummary(t *testing.T) {
	combined := "## **Summary & Strategic Integration of All 3 Outcomes**\n\n1. First point.\n\n---\n\n" +
		TakeawaysMarker + "\n\n- Do the thing.\n"
	summary, takeaways := SplitSummary(combined)
	if strings.Contains(summary, "Summary & Strategic Integration of All") {
		t.Fatalf("heading not stripped: %q", summary)
	}
	if !strings.HasPrefix(summary, "1. First point.") {
		t.Fatalf("unexpected summary: %q", summary)
	}
	// Only the heading is stripped; the section's trailing separator is
	// part of the summary text.
	if !strings.HasSuffix(summary, "---") {
		t.Fatalf("trailing separator lost: %q", summary)
	}
	if takeaways != "- Do the thing." {
		t.Fatalf("unexpected takeaways: %q", takeaways)
	}
}

func TestSplitSummaryMissingMarker(t *testing.T) {
	summary, takeaways := SplitSummary("just a summary with no marker")
	if summary != "just a summary with no marker" {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if takeaways != "" {
		t.Fatalf("expected empty takeaways, got %q", takeaways)
	}
}

func TestSplitSummaryDeterministic(t *testing.T) {
	combined := "## **Summary & Strategic Integration of All 2 Outcomes**\nbody\n" + TakeawaysMarker + "\ntail"
	s1, t1 := SplitSummary(combined)
	s2, t2 := SplitSummary(combined)
	if s1 != s2 || t1 != t2 {
		t.Fatalf("split not deterministic: %q/%q vs %q/%q", s1, t1, s2, t2)
	}
}

func TestGenerateSummaryDegradesToPlaceholder(t *testing.T) {
	provider := providers.NewLocalProvider().
		ScriptError("Summary & Strategic Integration", errors.New("unavailable"))
	combined := GenerateSummary(context.Background(), provider, testContext(), 4)
	if !strings.Contains(combined, "All 4 Outcomes") {
		t.Fatalf("placeholder missing outcome count: %q", combined)
	}
	if !strings.Contains(combined, TakeawaysMarker) {
		t.Fatalf("placeholder missing takeaways marker: %q", combined)
	}
	summary, takeaways := SplitSummary(combined)
	if summary == "" || takeaways == "" {
		t.Fatalf("placeholder must split into both sections: %q / %q", summary, takeaways)
	}
}

func TestJoinSummaryRoundTrip(t *testing.T) {
	joined := JoinSummary("the summary body", "the takeaways body")
	summary, takeaways := SplitSummary(joined)
	if !strings.Contains(summary, "the summary body") {
		t.Fatalf("summary lost in round trip: %q", summary)
	}
	if takeaways != "the takeaways body" {
		t.Fatalf("takeaways lost in round trip: %q", takeaways)
	}
}

func TestJoinSummaryWithoutTakeaways(t *testing.T) {
	joined := JoinSummary("only a summary", "")
	if strings.Contains(joined, TakeawaysMarker) {
		t.Fatalf("marker must be absent without takeaways: %q", joined)
	}
}
