// File path: internal/pov/assemble.go
package pov

import (
	"fmt"
	"strings"
	"time"
)

// DetailSeparator joins outcome details in the assembled document.
const DetailSeparator = "\n\n---\n\n"

// ReportMeta carries the descriptive fields of a report needed for prompt
// framing and document assembly.
type ReportMeta struct {
	ID                string
	UserID            string
	VendorName        string
	VendorURL         string
	VendorServices    string
	CustomerName      string
	CustomerURL       string
	RoleNames         string
	RoleContext       string
	AdditionalContext string
	LinkedInURLs      string
	ModelName         string
	CreatedAt         time.Time
}

// AssembleReport deterministically concatenates the report fragments into
// one Markdown document: title line, input-information header listing only
// non-empty fields, details joined by a horizontal rule, then the summary
// block. Pure; no storage or network access.
func AssembleReport(meta ReportMeta, details []string, summary string) string {
	date := meta.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## **POV Report: %s %s %s %s**\n\n", meta.VendorName, meta.CustomerName, meta.RoleNames, date.Format("02 January 2006"))

	sb.WriteString("### **1. Input Information**\n")
	fmt.Fprintf(&sb, "- **Vendor Name:** %s\n", meta.VendorName)
	if meta.VendorURL != "" {
		fmt.Fprintf(&sb, "- **Vendor URL:** %s\n", meta.VendorURL)
	}
	fmt.Fprintf(&sb, "- **Target Customer:** %s\n", meta.CustomerName)
	if meta.CustomerURL != "" {
		fmt.Fprintf(&sb, "- **Target Customer URL:** %s\n", meta.CustomerURL)
	}
	if meta.RoleNames != "" {
		fmt.Fprintf(&sb, "- **Role(s) Being Sold To:** %s\n", meta.RoleNames)
	}
	if meta.LinkedInURLs != "" {
		fmt.Fprintf(&sb, "- **LinkedIn URL:** %s\n", meta.LinkedInURLs)
	}
	if meta.RoleContext != "" {
		fmt.Fprintf(&sb, "- **Role Context:** %s\n", meta.RoleContext)
	}
	if meta.AdditionalContext != "" {
		fmt.Fprintf(&sb, "- **Additional Context:** %s\n", meta.AdditionalContext)
	}
	sb.WriteString("\n---\n\n")

	sb.WriteString(strings.Join(details, DetailSeparator))
	sb.WriteString(DetailSeparator)
	sb.WriteString(summary)
	return sb.String()
}

// JoinSummary recombines stored summary and takeaways fields into the
// single block the assembler expects.
func JoinSummary(summary, takeaways string) string {
	heading := fmt.Sprintf("## **Summary & Strategic Integration**\n\n%s", strings.TrimSpace(summary))
	if strings.TrimSpace(takeaways) == "" {
		return heading
	}
	return heading + "\n\n---\n\n" + TakeawaysMarker + "\n\n" + strings.TrimSpace(takeaways)
}
