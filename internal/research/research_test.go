// File path: internal/research/research_test.go
package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func TestExtractLinkedInURLs(t *testing.T) {
	text := "Reach out to https://www.linkedin.com/in/jane-doe and https://linkedin.com/in/john-smith-123"
	urls := ExtractLinkedInURLs(text)
	if len(urls) != 2 {
		t.Fatalf("expected 2 URLs, got %v", urls)
	}
	if urls[0] != "https://www.linkedin.com/in/jane-doe" {
		t.Fatalf("unexpected first URL: %q", urls[0])
	}
}

func TestExtractLinkedInURLsRunTogether(t *testing.T) {
	// Pasted lists often lose the separating whitespace between URLs.
	text := "https://linkedin.com/in/firsthttps://linkedin.com/in/second"
	urls := ExtractLinkedInURLs(text)
	if len(urls) != 2 {
		t.Fatalf("expected run-together URLs to split, got %v", urls)
	}
}

func TestExtractLinkedInURLsNone(t *testing.T) {
	if urls := ExtractLinkedInURLs("no profiles here, just https://example.com"); len(urls) != 0 {
		t.Fatalf("expected no URLs, got %v", urls)
	}
}

func TestFetchProfilesRequiresKey(t *testing.T) {
	svc := NewProfileService("", 2)
	if _, err := svc.FetchProfiles(context.Background(), "https://linkedin.com/in/someone"); err == nil {
		t.Fatalf("expected error without API key")
	}
}

func TestFetchProfilesRequiresURLs(t *testing.T) {
	svc := NewProfileService("key", 2)
	if _, err := svc.FetchProfiles(context.Background(), "no profiles in here"); err == nil {
		t.Fatalf("expected error when input has no profile URLs")
	}
}

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Apple", "AAPL"},
		{"apple inc", "AAPL"},
		{"Microsoft Corporation", "MSFT"},
		{"Tesla Inc.", "TSLA"},
		{"Some Private Startup", ""},
	}
	for _, tc := range cases {
		if got := ExtractTicker(tc.name); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestFormatMarketCap(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{2_500_000_000_000, "$2.50T"},
		{42_000_000_000, "$42.00B"},
		{900_000_000, "$900.00M"},
		{5_000, "$5000"},
	}
	for _, tc := range cases {
		if got := FormatMarketCap(tc.in); got != tc.want {
			t.Fatalf("%d: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCompile(t *testing.T) {
	answers := []QuestionAnswer{
		{Question: "What is the revenue model?", Answer: "Subscriptions."},
		{Question: "Broken one", Err: errors.New("failed")},
		{Question: "Empty one", Answer: "   "},
	}
	compiled := Compile("Globex", answers)
	if !strings.Contains(compiled, "Deep research on Globex") {
		t.Fatalf("missing header: %q", compiled)
	}
	if !strings.Contains(compiled, "Q: What is the revenue model?") {
		t.Fatalf("missing successful pair: %q", compiled)
	}
	if strings.Contains(compiled, "Broken one") || strings.Contains(compiled, "Empty one") {
		t.Fatalf("failed or empty answers must be dropped: %q", compiled)
	}
}

func TestCompileAllFailed(t *testing.T) {
	answers := []QuestionAnswer{{Question: "q", Err: errors.New("x")}}
	if compiled := Compile("Globex", answers); compiled != "" {
		t.Fatalf("expected empty block, got %q", compiled)
	}
}

func TestGenerateQuestions(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("strategic research questions", `["q1","q2","q3","q4","q5","q6","q7"]`)
	deep := NewDeepResearcher(provider, 4)
	questions, err := deep.GenerateQuestions(context.Background(), "Globex", "")
	if err != nil {
		t.Fatalf("generate questions: %v", err)
	}
	if len(questions) != 7 {
		t.Fatalf("expected 7 questions, got %d", len(questions))
	}
}

func TestGenerateQuestionsTruncatesExcess(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("strategic research questions", `["1","2","3","4","5","6","7","8","9","10"]`)
	deep := NewDeepResearcher(provider, 4)
	questions, err := deep.GenerateQuestions(context.Background(), "Globex", "")
	if err != nil {
		t.Fatalf("generate questions: %v", err)
	}
	if len(questions) != MaxQuestions {
		t.Fatalf("expected truncation to %d, got %d", MaxQuestions, len(questions))
	}
}

func TestGenerateQuestionsRejectsProse(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("strategic research questions", "1. What is the business model?")
	deep := NewDeepResearcher(provider, 4)
	if _, err := deep.GenerateQuestions(context.Background(), "Globex", ""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAnswerQuestionsIsolation(t *testing.T) {
	provider := providers.NewLocalProvider().
		ScriptError("failing question", errors.New("timeout")).
		Script("healthy question", "an answer")
	deep := NewDeepResearcher(provider, 2)
	answers, err := deep.AnswerQuestions(context.Background(), "Globex", []string{"healthy question", "failing question"})
	if err != nil {
		t.Fatalf("answer questions: %v", err)
	}
	if answers[0].Err != nil || answers[0].Answer != "an answer" {
		t.Fatalf("healthy slot disturbed: %+v", answers[0])
	}
	if answers[1].Err == nil {
		t.Fatalf("expected recorded failure in slot 1")
	}
}

func TestAnswerQuestionsAllFailed(t *testing.T) {
	provider := providers.NewLocalProvider().
		ScriptError("Research the company", errors.New("down"))
	deep := NewDeepResearcher(provider, 2)
	if _, err := deep.AnswerQuestions(context.Background(), "Globex", []string{"a", "b"}); err == nil {
		t.Fatalf("expected error when every question fails")
	}
}

func TestDeepResearchRun(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("strategic research questions", `["q-alpha","q-beta","q-gamma","q-delta","q-epsilon","q-zeta"]`).
		Script("q-alpha", "a-alpha")
	deep := NewDeepResearcher(provider, 4)
	compiled, err := deep.Run(context.Background(), "Globex", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(compiled, "Q: q-alpha") || !strings.Contains(compiled, "A: a-alpha") {
		t.Fatalf("compiled block missing pairs: %q", compiled)
	}
}
