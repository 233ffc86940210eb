// File path: internal/pov/details_test.go
package pov

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func TestGenerateDetailsAlignment(t *testing.T) {
	titles := []string{"Cut Fleet Downtime", "Automate Customs Paperwork", "Unify Carrier Data"}
	provider := providers.NewLocalProvider().
		Script("Cut Fleet Downtime", "detail-downtime").
		Script("Automate Customs Paperwork", "detail-customs").
		Script("Unify Carrier Data", "detail-carrier")
	details, err := GenerateDetails(context.Background(), provider, testContext(), titles, 2)
	if err != nil {
		t.Fatalf("generate details: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}
	want := []string{"detail-downtime", "detail-customs", "detail-carrier"}
	for i, detail := range details {
		if detail != want[i] {
			t.Fatalf("detail %d: expected %q, got %q", i, want[i], detail)
		}
	}
}

func TestGenerateDetailsPlaceholderOnPartialFailure(t *testing.T) {
	titles := []string{"Healthy Outcome", "Broken Outcome"}
	provider := providers.NewLocalProvider().
		Script("Healthy Outcome", "detail-healthy").
		ScriptError("Broken Outcome", errors.New("timeout"))
	details, err := GenerateDetails(context.Background(), provider, testContext(), titles, 2)
	if err != nil {
		t.Fatalf("generate details: %v", err)
	}
	if details[0] != "detail-healthy" {
		t.Fatalf("healthy slot disturbed: %q", details[0])
	}
	if !strings.Contains(details[1], "Broken Outcome") || !strings.Contains(details[1], "detail generation failed") {
		t.Fatalf("expected placeholder for failed slot, got %q", details[1])
	}
}

func TestGenerateDetailsAllFailed(t *testing.T) {
	scripted := errors.New("provider down")
	provider := providers.NewLocalProvider().
		ScriptError("Outcome A", scripted).
		ScriptError("Outcome B", scripted)
	_, err := GenerateDetails(context.Background(), provider, testContext(), []string{"Outcome A", "Outcome B"}, 2)
	if !errors.Is(err, ErrBatchFailure) {
		t.Fatalf("expected ErrBatchFailure, got %v", err)
	}
}

func TestGenerateDetailsEmptySelection(t *testing.T) {
	_, err := GenerateDetails(context.Background(), providers.NewLocalProvider(), testContext(), nil, 2)
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}
