// File path: internal/pov/outreach.go
package pov

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// Outreach scenarios supported by the email generator.
var OutreachScenarios = []string{"cold_call", "discovery", "objection_handling", "demo_intro", "follow_up"}

// ValidScenario reports whether the scenario name is one the generator
// knows how to frame.
func ValidScenario(scenario string) bool {
	for _, s := range OutreachScenarios {
		if s == scenario {
			return true
		}
	}
	return false
}

// OutreachRequest seeds outreach generation from a finished report.
type OutreachRequest struct {
	Meta               ReportMeta
	Outcomes           []OutcomeDetail
	Scenario           string
	CustomInstructions string
}

// OutreachResult is a generated email plus an accompanying proposal.
type OutreachResult struct {
	Subject  string
	Email    string
	Proposal string
}

// GenerateOutreach produces a scenario-specific sales email and a business
// proposal seeded from the report's outcomes. Both completions run as one
// batch.
func GenerateOutreach(ctx context.Context, provider providers.Provider, req OutreachRequest) (OutreachResult, error) {
	if !ValidScenario(req.Scenario) {
		return OutreachResult{}, fmt.Errorf("unknown outreach scenario %q", req.Scenario)
	}
	logger := common.Logger()
	logger.Info("pov: generating outreach", "report", req.Meta.ID, "scenario", req.Scenario)

	prompts := []providers.Prompt{emailPrompt(req), proposalPrompt(req)}
	results, err := providers.CompleteBatch(ctx, provider, prompts, len(prompts))
	if err != nil {
		return OutreachResult{}, fmt.Errorf("%w: %v", ErrBatchFailure, err)
	}
	if results[0].Err != nil {
		return OutreachResult{}, fmt.Errorf("generate outreach email: %w", results[0].Err)
	}
	email := results[0].Text
	proposal := ""
	if results[1].Err != nil {
		logger.Warn("pov: proposal generation failed, returning email only", "error", results[1].Err)
	} else {
		proposal = results[1].Text
	}
	return OutreachResult{Subject: extractSubject(email), Email: email, Proposal: proposal}, nil
}

func outcomeBullets(outcomes []OutcomeDetail, limit int) string {
	var sb strings.Builder
	for i, outcome := range outcomes {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&sb, "- %s\n", outcome.Title)
	}
	if sb.Len() == 0 {
		return "- (no outcomes generated yet)\n"
	}
	return sb.String()
}

func emailPrompt(req OutreachRequest) providers.Prompt {
	meta := req.Meta
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert sales professional writing a %s email. Based on the following POV analysis, create a compelling email introducing the vendor's solution to the target customer.\n\n", strings.ReplaceAll(req.Scenario, "_", " "))
	fmt.Fprintf(&sb, "**Report Details:**\n- Vendor: %s\n- Vendor Services: %s\n- Target Customer: %s\n- Target Roles: %s\n- Additional Context: %s\n\n",
		meta.VendorName, meta.VendorServices, meta.CustomerName, orNotSpecified(meta.RoleNames), orNotSpecified(meta.AdditionalContext))
	fmt.Fprintf(&sb, "**Key Outcomes from POV Analysis:**\n%s\n", outcomeBullets(req.Outcomes, 5))
	if strings.TrimSpace(req.CustomInstructions) != "" {
		fmt.Fprintf(&sb, "**Custom Instructions:**\n%s\n\n", req.CustomInstructions)
	}
	sb.WriteString("**Email Requirements:**\n- Subject line on the first line, formatted as 'Subject: ...'\n- Professional but engaging tone\n- Reference specific outcomes from the POV analysis\n- Clear value proposition and a specific call to action\n- Keep it concise (under 200 words)\n\nGenerate the complete email:\n")
	return providers.Prompt{User: sb.String()}
}

func proposalPrompt(req OutreachRequest) providers.Prompt {
	meta := req.Meta
	var sb strings.Builder
	sb.WriteString("You are an expert business development professional creating a proposal. Based on the following POV analysis, create a comprehensive business proposal outlining how the vendor's solution benefits the target customer.\n\n")
	fmt.Fprintf(&sb, "**Report Details:**\n- Vendor: %s\n- Vendor Services: %s\n- Target Customer: %s\n- Target Roles: %s\n- Additional Context: %s\n\n",
		meta.VendorName, meta.VendorServices, meta.CustomerName, orNotSpecified(meta.RoleNames), orNotSpecified(meta.AdditionalContext))
	fmt.Fprintf(&sb, "**Key Outcomes from POV Analysis:**\n%s\n", outcomeBullets(req.Outcomes, 0))
	if strings.TrimSpace(req.CustomInstructions) != "" {
		fmt.Fprintf(&sb, "**Custom Instructions:**\n%s\n\n", req.CustomInstructions)
	}
	sb.WriteString("**Proposal Requirements:**\n- Executive summary\n- Problem statement\n- Proposed solution\n- Key benefits and outcomes\n- Implementation approach\n- Next steps\n\nGenerate the comprehensive business proposal:\n")
	return providers.Prompt{User: sb.String()}
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func extractSubject(email string) string {
	for _, line := range strings.Split(email, "\n") {
		line = strings.TrimSpace(line)
		if subject, ok := strings.CutPrefix(line, "Subject:"); ok {
			return strings.TrimSpace(subject)
		}
	}
	return ""
}
