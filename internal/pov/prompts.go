// File path: internal/pov/prompts.go
package pov

import (
	"fmt"
	"strings"

	"github.com/fieldscale/povd/internal/llm/providers"
)

const advisorSystem = "You are a world-class strategic advisor and master narrative consultant from a top-tier firm, specializing in crafting deeply insightful and compelling Point-of-View (POV) analyses using the Jobs-to-be-Done framework. Use clear, accessible English throughout: avoid complex business jargon and academic language, and write in a way that is professional but easy to understand."

func titlesPrompt(bc *BackgroundContext, n int) providers.Prompt {
	req := bc.Request
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following background context about %s and %s, generate a list of exactly %d concise, impactful, and distinct outcome titles relevant to %s's industry and the %s.\n\n",
		req.VendorName, req.CustomerName, n, req.CustomerName, req.RoleNames)
	fmt.Fprintf(&sb, "These outcomes should represent key strategic goals, challenges, or transformations that %s's offerings can help %s achieve, specifically for the %s.\n\n",
		req.VendorName, req.CustomerName, req.RoleNames)
	fmt.Fprintf(&sb, "**Background Context:**\n%s\n\n", bc.Text())
	sb.WriteString("**Instructions:**\n")
	sb.WriteString("1. Analyze the provided context carefully, paying attention to the customer's industry, potential needs, and the vendor's capabilities.\n")
	fmt.Fprintf(&sb, "2. Generate exactly %d unique and relevant outcome titles.\n", n)
	sb.WriteString("3. Each title should be concise (ideally 5-10 words) and clearly articulate a valuable outcome.\n")
	sb.WriteString("4. Format the output strictly as a JSON list of strings.\n\n")
	fmt.Fprintf(&sb, "**Output:**\nReturn *only* the JSON list containing the %d outcome titles. Do not include any introductory text, explanations, or markdown formatting around the JSON list.\n", n)
	return providers.Prompt{System: advisorSystem, User: sb.String()}
}

func detailPrompt(bc *BackgroundContext, title string) providers.Prompt {
	req := bc.Request
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate an exceptionally insightful, deeply analytical, and highly persuasive yet concise detailed analysis for the single outcome titled: **%q**. This analysis maps %s's capabilities to %s's needs, specifically for the %s.\n\n",
		title, req.VendorName, req.CustomerName, req.RoleNames)
	fmt.Fprintf(&sb, "Use the following background context, integrating it deeply and specifically throughout, paying particular attention to the Customer Research section:\n\n**Background Context:**\n%s\n\n", bc.Text())
	sb.WriteString("**Requirements:**\n")
	fmt.Fprintf(&sb, "- Weave in specific examples and terminology relevant to %s's industry and operational context.\n", req.CustomerName)
	sb.WriteString("- Each listed item must be followed by a concise analytical paragraph (~30-80 words).\n")
	fmt.Fprintf(&sb, "- Use Markdown H2 (`##`) for the main '## **Outcome: %s**' title and H3 (`###`) for subsections; all headings bolded.\n\n", title)
	fmt.Fprintf(&sb, "Structure the output exactly as follows:\n\n## **Outcome: %s**\n\n", title)
	fmt.Fprintf(&sb, "**Outcome Description (Deep Dive):**\n- One insightful paragraph (~40-80 words) describing the outcome within %s's operational context.\n\n", req.CustomerName)
	sb.WriteString("### **Functional Jobs**\n- Exactly 2 core functional tasks, each followed by analysis of why it matters strategically.\n\n")
	sb.WriteString("### **Hidden / Emotional Jobs**\n- Exactly 2 underlying emotional drivers, each unpacked with industry-relevant examples.\n\n")
	sb.WriteString("### **Success Metrics**\n- Measurable metrics including at least one \"**Leading Indicator:** [metric name]\" and one \"**Lagging Indicator:** [metric name]\", each explained.\n\n")
	sb.WriteString("### **Pain Points**\n- Exactly 3 significant pain points, each with root causes and operational/financial impact.\n\n")
	fmt.Fprintf(&sb, "### **Solutions (%s's Offering)**\n- Exactly 3 offerings addressing the 3 pain points one-to-one, each with a What/How/Value narrative.\n\n", req.VendorName)
	sb.WriteString("### **Hidden Emotional Benefits**\n- Exactly 2 key emotional benefits, each connected back to the emotional jobs and pain points.\n\n")
	fmt.Fprintf(&sb, "### **Summary of Outcome: %s**\n- A concluding paragraph (2-3 sentences) synthesizing the core transformation and its strategic value.\n", title)
	return providers.Prompt{System: advisorSystem, User: sb.String()}
}

func summaryPrompt(bc *BackgroundContext, n int) providers.Prompt {
	req := bc.Request
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the comprehensive analysis implicitly covered across %d distinct outcomes (which you should infer from the provided background context), generate **ONLY** the final \"Summary & Strategic Integration\" and \"Key Takeaways & Next Steps\" sections for a Point-of-View (POV) report mapping %s's capabilities to %s's needs, specifically for the %s.\n\n",
		n, req.VendorName, req.CustomerName, req.RoleNames)
	fmt.Fprintf(&sb, "**Background Context:**\n%s\n\n", bc.Text())
	sb.WriteString("**Sections to Generate:**\n\n")
	fmt.Fprintf(&sb, "## **Summary & Strategic Integration of All %d Outcomes**\n", n)
	fmt.Fprintf(&sb, "- Synthesize the overall strategic narrative emerging from the %d outcomes using numbered integration points, each followed by a detailed analytical paragraph tailored to %s's business context.\n\n", n, req.CustomerName)
	sb.WriteString("---\n\n")
	sb.WriteString("## **Key Takeaways & Next Steps**\n")
	sb.WriteString("- Distill the most critical insights and actionable recommendations as bullet points, each followed by a detailed analytical paragraph with next steps and implementation considerations.\n\n")
	sb.WriteString("**Formatting Requirements:**\n")
	sb.WriteString("- Use Markdown H2 (`##`) for the two main section titles, bolded.\n")
	sb.WriteString("- Start the output directly with `## **Summary & Strategic Integration...**`; no introductory text. Include the `---` separator between the two sections.\n\n")
	sb.WriteString("**Output:**\nReturn *only* the markdown for these two final sections, formatted exactly as specified.\n")
	return providers.Prompt{System: advisorSystem, User: sb.String()}
}
