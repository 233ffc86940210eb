// File path: internal/research/web.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/llm"
	"github.com/fieldscale/povd/internal/llm/providers"
)

const (
	readerPrefix  = "https://r.jina.ai/"
	maxTriageLink = 5
	maxPageBytes  = 512 * 1024
)

// Researcher crawls a company website and distills it into a business
// analysis via the completion provider. First-pass page text comes from a
// reader-API fetch with a direct goquery extraction fallback.
type Researcher struct {
	client      *http.Client
	provider    providers.Provider
	maxParallel int
}

func NewResearcher(provider providers.Provider, maxParallel int) *Researcher {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Researcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		provider:    provider,
		maxParallel: maxParallel,
	}
}

// Research implements the gather sub-task for one company URL: scrape the
// landing page, ask the model which linked pages matter, scrape those
// concurrently, then analyze the combined content.
func (r *Researcher) Research(ctx context.Context, url string) (string, error) {
	logger := common.Logger()
	logger.Info("research: analyzing company website", "url", url)

	initial, err := r.fetchPage(ctx, url)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", url, err)
	}

	links := r.triageLinks(ctx, initial)
	extra := r.scrapeLinks(ctx, links)
	combined := initial
	if len(extra) > 0 {
		combined += "\n\n" + strings.Join(extra, "\n\n")
	}

	analysis, err := r.analyze(ctx, combined)
	if err != nil {
		return "", err
	}
	return analysis, nil
}

// fetchPage retrieves readable page text, preferring the reader API and
// falling back to a direct fetch with goquery text extraction.
func (r *Researcher) fetchPage(ctx context.Context, url string) (string, error) {
	logger := common.Logger()
	text, readerErr := r.get(ctx, readerPrefix+url)
	if readerErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if readerErr != nil {
		logger.Debug("research: reader fetch failed, trying direct", "url", url, "error", readerErr)
	}
	html, err := r.get(ctx, url)
	if err != nil {
		return "", err
	}
	return extractText(html)
}

func (r *Researcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script,style,noscript").Remove()
	var lines []string
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	text := strings.Join(lines, "\n")
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.HasPrefix(href, "http") {
			text += "\n" + href
		}
	})
	return text, nil
}

// triageLinks asks the model which linked pages would add business
// context. Triage failure is tolerated; the landing page alone still
// yields an analysis.
func (r *Researcher) triageLinks(ctx context.Context, content string) []string {
	logger := common.Logger()
	prompt := providers.Prompt{User: fmt.Sprintf(`Analyze this webpage content and identify links to the most relevant business pages covering: company overview and mission, products and services, leadership team, case studies, and industry focus.

Format the response as JSON with the key "links".
Example: {"links":["https://example.com/about","https://example.com/services"]}

Content to analyze:
%s`, content)}
	completion, err := r.provider.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("research: link triage failed", "error", err)
		return nil
	}
	var parsed struct {
		Links []string `json:"links"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(completion.Text)), &parsed); err != nil {
		logger.Warn("research: could not parse link triage response", "error", err)
		return nil
	}
	if len(parsed.Links) > maxTriageLink {
		parsed.Links = parsed.Links[:maxTriageLink]
	}
	return parsed.Links
}

func (r *Researcher) scrapeLinks(ctx context.Context, links []string) []string {
	if len(links) == 0 {
		return nil
	}
	logger := common.Logger()
	contents := make([]string, len(links))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.maxParallel)
	for i, link := range links {
		i, link := i, link
		group.Go(func() error {
			text, err := r.fetchPage(groupCtx, link)
			if err != nil {
				logger.Warn("research: scraping linked page failed", "url", link, "error", err)
				return nil
			}
			contents[i] = text
			return nil
		})
	}
	group.Wait()

	out := make([]string, 0, len(contents))
	for _, text := range contents {
		if strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	return out
}

func (r *Researcher) analyze(ctx context.Context, content string) (string, error) {
	prompt := providers.Prompt{User: fmt.Sprintf(`Analyze this company website content and extract key business information. Return a JSON object with exactly these keys:
{
  "company_overview": {"core_business": "...", "mission_values": "...", "market_positioning": "..."},
  "products_and_services": {"main_offerings": [], "key_features": [], "target_markets": []},
  "expertise_and_differentiators": {"industry_expertise": [], "unique_selling_points": [], "competitive_advantages": []},
  "success_indicators": {"case_studies": [], "testimonials": [], "achievements": []},
  "target_industries": []
}

Content to analyze:
%s`, content)}
	completion, err := r.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze website content: %w", err)
	}
	cleaned := llm.StripCodeFences(completion.Text)
	// Re-indent when the model returned valid JSON so the context block
	// stays readable; otherwise keep the raw text.
	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &probe); err == nil {
		if pretty, err := json.MarshalIndent(probe, "", "  "); err == nil {
			return string(pretty), nil
		}
	}
	return cleaned, nil
}
