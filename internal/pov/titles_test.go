// File path: internal/pov/titles_test.go
package pov

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func testContext() *BackgroundContext {
	return &BackgroundContext{Request: GatherRequest{
		VendorName:   "Acme Analytics",
		CustomerName: "Globex Logistics",
		RoleNames:    "VP of Operations",
	}}
}

func TestParseTitleListPlain(t *testing.T) {
	titles, err := ParseTitleList(`["First Outcome", " Second Outcome "]`, 2)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(titles))
	}
	if titles[1] != "Second Outcome" {
		t.Fatalf("expected trimmed title, got %q", titles[1])
	}
}

func TestParseTitleListFenced(t *testing.T) {
	raw := "```json\n[\"One\", \"Two\", \"Three\"]\n```"
	titles, err := ParseTitleList(raw, 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(titles) != 3 || titles[0] != "One" {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestParseTitleListTruncatesOverGeneration(t *testing.T) {
	titles, err := ParseTitleList(`["a","b","c","d","e"]`, 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(titles) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(titles))
	}
}

func TestParseTitleListToleratesUnderGeneration(t *testing.T) {
	titles, err := ParseTitleList(`["a","b"]`, 5)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(titles))
	}
}

func TestParseTitleListRejectsNonList(t *testing.T) {
	_, err := ParseTitleList(`{"titles": ["a"]}`, 3)
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if parseErr.Raw == "" {
		t.Fatalf("expected raw output preserved")
	}
}

func TestParseTitleListRejectsProse(t *testing.T) {
	_, err := ParseTitleList("Here are your titles:\n1. First\n2. Second", 2)
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestParseTitleListRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "```\n```", "[]"} {
		if _, err := ParseTitleList(raw, 3); !errors.Is(err, ErrEmptyResult) {
			t.Fatalf("input %q: expected ErrEmptyResult, got %v", raw, err)
		}
	}
}

func TestGenerateTitles(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("distinct outcome titles", `["Cut Fleet Downtime", "Automate Customs Paperwork", "Unify Carrier Data"]`)
	titles, err := GenerateTitles(context.Background(), provider, testContext(), 3)
	if err != nil {
		t.Fatalf("generate titles: %v", err)
	}
	if len(titles) != 3 {
		t.Fatalf("expected 3 titles, got %d", len(titles))
	}
	if titles[0] != "Cut Fleet Downtime" {
		t.Fatalf("unexpected first title: %q", titles[0])
	}
}

func TestGenerateTitlesProviderFailure(t *testing.T) {
	provider := providers.NewLocalProvider().
		ScriptError("distinct outcome titles", errors.New("upstream 500"))
	_, err := GenerateTitles(context.Background(), provider, testContext(), 3)
	if !errors.Is(err, ErrBatchFailure) {
		t.Fatalf("expected ErrBatchFailure, got %v", err)
	}
}
