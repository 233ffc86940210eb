// File path: internal/pov/outreach_test.go
package pov

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func outreachFixture() OutreachRequest {
	return OutreachRequest{
		Meta: ReportMeta{
			ID:             "rep-out",
			VendorName:     "Acme",
			VendorServices: "analytics platform",
			CustomerName:   "Globex",
		},
		Outcomes: []OutcomeDetail{
			{Index: 0, Title: "Cut Fleet Downtime", Content: "detail"},
			{Index: 1, Title: "Unify Carrier Data", Content: "detail"},
		},
		Scenario: "cold_call",
	}
}

func TestGenerateOutreach(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("Generate the complete email", "Subject: Cutting downtime at Globex\n\nHi there, quick note.").
		Script("comprehensive business proposal", "## Executive Summary\nproposal-body")
	result, err := GenerateOutreach(context.Background(), provider, outreachFixture())
	if err != nil {
		t.Fatalf("generate outreach: %v", err)
	}
	if result.Subject != "Cutting downtime at Globex" {
		t.Fatalf("unexpected subject: %q", result.Subject)
	}
	if result.Proposal == "" {
		t.Fatalf("expected a proposal")
	}
}

func TestGenerateOutreachProposalDegrades(t *testing.T) {
	provider := providers.NewLocalProvider().
		Script("Generate the complete email", "Subject: hello\nbody").
		ScriptError("comprehensive business proposal", errors.New("timeout"))
	result, err := GenerateOutreach(context.Background(), provider, outreachFixture())
	if err != nil {
		t.Fatalf("generate outreach: %v", err)
	}
	if result.Email == "" || result.Proposal != "" {
		t.Fatalf("expected email without proposal: %+v", result)
	}
}

func TestGenerateOutreachEmailFailureIsFatal(t *testing.T) {
	provider := providers.NewLocalProvider().
		ScriptError("Generate the complete email", errors.New("down")).
		Script("comprehensive business proposal", "proposal")
	if _, err := GenerateOutreach(context.Background(), provider, outreachFixture()); err == nil {
		t.Fatalf("expected error when email generation fails")
	}
}

func TestGenerateOutreachRejectsUnknownScenario(t *testing.T) {
	req := outreachFixture()
	req.Scenario = "carrier_pigeon"
	if _, err := GenerateOutreach(context.Background(), providers.NewLocalProvider(), req); err == nil {
		t.Fatalf("expected scenario validation error")
	}
}

func TestExtractSubject(t *testing.T) {
	if got := extractSubject("Subject: The Line\n\nbody"); got != "The Line" {
		t.Fatalf("unexpected subject: %q", got)
	}
	if got := extractSubject("no subject line here"); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
}
