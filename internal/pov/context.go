// File path: internal/pov/context.go
package pov

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
)

// WebResearcher analyzes a company website into a research summary.
type WebResearcher interface {
	Research(ctx context.Context, url string) (string, error)
}

// ProfileFetcher resolves LinkedIn profile URLs embedded in free text into
// a formatted profile digest.
type ProfileFetcher interface {
	FetchProfiles(ctx context.Context, raw string) (string, error)
}

// DocumentReader extracts plain text from an uploaded file path.
type DocumentReader interface {
	ReadDocument(ctx context.Context, path string) (string, error)
}

// QuestionResearcher runs question-driven deep research on a company.
type QuestionResearcher interface {
	Run(ctx context.Context, companyName, contextHint string) (string, error)
}

// MarketProfiler renders a financial snapshot line for a company, or ""
// when the company is not publicly traded.
type MarketProfiler interface {
	CompanyContext(ctx context.Context, companyName string) (string, error)
}

// GatherRequest names the inputs for one report generation run.
type GatherRequest struct {
	VendorName        string   `json:"vendor_name"`
	VendorURL         string   `json:"vendor_url"`
	VendorServices    string   `json:"vendor_services"`
	CustomerName      string   `json:"target_customer_name"`
	CustomerURL       string   `json:"target_customer_url"`
	RolesSoldTo       string   `json:"roles_sold_to"`
	RoleNames         string   `json:"role_names"`
	RoleContext       string   `json:"role_context"`
	AdditionalContext string   `json:"additional_context"`
	LinkedInURLs      string   `json:"linkedin_urls"`
	VendorFiles       []string `json:"vendor_files,omitempty"`
	CustomerFiles     []string `json:"customer_files,omitempty"`
}

// Sub-task statuses. A skipped or failed sub-task never fails the gather.
const (
	SubSuccess = "success"
	SubSkipped = "skipped"
	SubError   = "error"
)

// SubResult is the outcome of one gathering sub-task.
type SubResult struct {
	Status string `json:"status"`
	Data   string `json:"data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func skipped(reason string) SubResult { return SubResult{Status: SubSkipped, Reason: reason} }

func (r SubResult) textOr(placeholder string) string {
	if r.Status == SubSuccess && strings.TrimSpace(r.Data) != "" {
		return r.Data
	}
	return placeholder
}

// BackgroundContext is the merged research bundle fed to every prompt.
// Once produced it is read-only; it serializes to JSON so the second phase
// of the selective workflow can reconstruct it without network calls.
type BackgroundContext struct {
	Request          GatherRequest `json:"request"`
	VendorResearch   SubResult     `json:"vendor_research"`
	CustomerResearch SubResult     `json:"customer_research"`
	VendorDocs       []SubResult   `json:"vendor_docs,omitempty"`
	CustomerDocs     []SubResult   `json:"customer_docs,omitempty"`
	LinkedIn         SubResult     `json:"linkedin"`
	Finance          string        `json:"finance,omitempty"`
	DeepResearch     string        `json:"deep_research,omitempty"`
}

// Text renders the context blob in a fixed order: identity fields, vendor
// research, customer research, vendor documents, customer documents,
// LinkedIn, then any deep-research block. Failed or skipped slots render
// placeholders.
func (bc *BackgroundContext) Text() string {
	req := bc.Request
	var sb strings.Builder
	fmt.Fprintf(&sb, "vendor_name: %s\n", req.VendorName)
	fmt.Fprintf(&sb, "vendor_url: %s\n", req.VendorURL)
	fmt.Fprintf(&sb, "vendor_services: %s\n", req.VendorServices)
	fmt.Fprintf(&sb, "target_customer_name: %s\n", req.CustomerName)
	fmt.Fprintf(&sb, "target_customer_url: %s\n", req.CustomerURL)
	fmt.Fprintf(&sb, "roles_sold_to: %s\n", req.RolesSoldTo)
	fmt.Fprintf(&sb, "linkedin_urls: %s\n", req.LinkedInURLs)
	fmt.Fprintf(&sb, "role_names: %s\n", req.RoleNames)
	fmt.Fprintf(&sb, "role_context: %s\n", req.RoleContext)
	fmt.Fprintf(&sb, "additional_context: %s\n\n", req.AdditionalContext)

	fmt.Fprintf(&sb, "Vendor Research: %s\n", bc.VendorResearch.textOr("Not available"))
	fmt.Fprintf(&sb, "Customer Research: %s\n\n", bc.CustomerResearch.textOr("Not available"))

	if strings.TrimSpace(bc.Finance) != "" {
		fmt.Fprintf(&sb, "Customer Financial Snapshot: %s\n\n", bc.Finance)
	}

	fmt.Fprintf(&sb, "Vendor Document Analysis: %s\n", docsText(bc.VendorDocs))
	fmt.Fprintf(&sb, "Customer Document Analysis: %s\n\n", docsText(bc.CustomerDocs))

	fmt.Fprintf(&sb, "LinkedIn Profiles Analysis: %s\n", bc.LinkedIn.textOr("Not available or not requested"))
	if strings.TrimSpace(bc.DeepResearch) != "" {
		fmt.Fprintf(&sb, "\nDeep Research:\n%s\n", bc.DeepResearch)
	}
	return sb.String()
}

func docsText(docs []SubResult) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Status == SubSuccess && strings.TrimSpace(doc.Data) != "" {
			parts = append(parts, doc.Data)
		}
	}
	if len(parts) == 0 {
		return "No documents provided"
	}
	return strings.Join(parts, "\n\n")
}

// Encode serializes the context for persistence on the report row.
func (bc *BackgroundContext) Encode() ([]byte, error) {
	data, err := json.Marshal(bc)
	if err != nil {
		return nil, fmt.Errorf("encode background context: %w", err)
	}
	return data, nil
}

// DecodeBackgroundContext reverses Encode.
func DecodeBackgroundContext(data []byte) (*BackgroundContext, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode background context: empty payload")
	}
	var bc BackgroundContext
	if err := json.Unmarshal(data, &bc); err != nil {
		return nil, fmt.Errorf("decode background context: %w", err)
	}
	return &bc, nil
}

// Gatherer runs the independent context sub-tasks concurrently and merges
// their results. A nil collaborator marks its sub-task skipped.
type Gatherer struct {
	web      WebResearcher
	profiles ProfileFetcher
	docs     DocumentReader
	deep     QuestionResearcher
	finance  MarketProfiler
}

// GathererOption configures optional gathering collaborators.
type GathererOption func(*Gatherer)

// WithDeepResearch enables question-driven deep research on the customer
// after the primary sub-tasks complete.
func WithDeepResearch(deep QuestionResearcher) GathererOption {
	return func(g *Gatherer) { g.deep = deep }
}

// WithMarketData enables the financial snapshot sub-task.
func WithMarketData(finance MarketProfiler) GathererOption {
	return func(g *Gatherer) { g.finance = finance }
}

func NewGatherer(web WebResearcher, profiles ProfileFetcher, docs DocumentReader, opts ...GathererOption) *Gatherer {
	g := &Gatherer{web: web, profiles: profiles, docs: docs}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Gather fans the sub-tasks out and assembles results by slot, so the
// output order never depends on completion order. Sub-task failures are
// recorded in place and do not fail the gather.
func (g *Gatherer) Gather(ctx context.Context, req GatherRequest) (*BackgroundContext, error) {
	ctx, finish := telemetry.StartSpan(ctx, "pov.gather")
	defer finish()
	logger := common.Logger()

	bc := &BackgroundContext{
		Request:      req,
		VendorDocs:   make([]SubResult, len(req.VendorFiles)),
		CustomerDocs: make([]SubResult, len(req.CustomerFiles)),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		bc.VendorResearch = g.research(ctx, req.VendorURL, "vendor")
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		bc.CustomerResearch = g.research(ctx, req.CustomerURL, "customer")
	}()
	for i, path := range req.VendorFiles {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			bc.VendorDocs[i] = g.readDocument(ctx, path)
		}()
	}
	for i, path := range req.CustomerFiles {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			bc.CustomerDocs[i] = g.readDocument(ctx, path)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		bc.LinkedIn = g.fetchProfiles(ctx, req.LinkedInURLs)
	}()
	if g.finance != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := g.finance.CompanyContext(ctx, req.CustomerName)
			if err != nil {
				logger.Warn("pov: financial snapshot unavailable", "customer", req.CustomerName, "error", err)
				return
			}
			bc.Finance = snapshot
		}()
	}
	wg.Wait()

	// Deep research runs last so the customer research can seed its
	// questions.
	if g.deep != nil {
		hint := ""
		if bc.CustomerResearch.Status == SubSuccess {
			hint = bc.CustomerResearch.Data
		}
		compiled, err := g.deep.Run(ctx, req.CustomerName, hint)
		if err != nil {
			logger.Warn("pov: deep research failed", "customer", req.CustomerName, "error", err)
		} else {
			bc.DeepResearch = compiled
		}
	}

	for _, res := range gatherResults(bc) {
		if res.Status == SubError {
			logger.Warn("pov: context sub-task failed", "reason", res.Reason)
		}
	}
	return bc, nil
}

func gatherResults(bc *BackgroundContext) []SubResult {
	results := []SubResult{bc.VendorResearch, bc.CustomerResearch}
	results = append(results, bc.VendorDocs...)
	results = append(results, bc.CustomerDocs...)
	return append(results, bc.LinkedIn)
}

func (g *Gatherer) research(ctx context.Context, url, kind string) SubResult {
	if strings.TrimSpace(url) == "" {
		return skipped(fmt.Sprintf("no %s URL provided", kind))
	}
	if g.web == nil {
		return skipped("web research not configured")
	}
	data, err := g.web.Research(ctx, url)
	if err != nil {
		return SubResult{Status: SubError, Reason: fmt.Sprintf("analyze %s site: %v", kind, err)}
	}
	return SubResult{Status: SubSuccess, Data: data}
}

func (g *Gatherer) readDocument(ctx context.Context, path string) SubResult {
	if strings.TrimSpace(path) == "" {
		return skipped("file not provided")
	}
	if g.docs == nil {
		return skipped("document reader not configured")
	}
	data, err := g.docs.ReadDocument(ctx, path)
	if err != nil {
		return SubResult{Status: SubError, Reason: fmt.Sprintf("read document: %v", err)}
	}
	return SubResult{Status: SubSuccess, Data: data}
}

func (g *Gatherer) fetchProfiles(ctx context.Context, raw string) SubResult {
	if strings.TrimSpace(raw) == "" {
		return skipped("no LinkedIn URLs provided")
	}
	if g.profiles == nil {
		return skipped("profile fetcher not configured")
	}
	data, err := g.profiles.FetchProfiles(ctx, raw)
	if err != nil {
		return SubResult{Status: SubError, Reason: fmt.Sprintf("fetch LinkedIn profiles: %v", err)}
	}
	return SubResult{Status: SubSuccess, Data: data}
}
