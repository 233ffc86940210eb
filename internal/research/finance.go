// File path: internal/research/finance.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fieldscale/povd/internal/common"
)

// tickerMappings resolves common company names to their exchange symbols.
// A nil-equivalent empty string marks known private companies.
var tickerMappings = map[string]string{
	"apple": "AAPL", "apple inc": "AAPL",
	"microsoft": "MSFT", "microsoft corporation": "MSFT",
	"google": "GOOGL", "alphabet": "GOOGL",
	"amazon": "AMZN", "amazon.com": "AMZN",
	"meta": "META", "facebook": "META",
	"tesla": "TSLA", "tesla inc": "TSLA",
	"netflix": "NFLX", "nvidia": "NVDA", "intel": "INTC",
	"oracle": "ORCL", "salesforce": "CRM", "adobe": "ADBE",
	"cisco": "CSCO", "ibm": "IBM", "zoom": "ZM",
	"dropbox": "DBX", "spotify": "SPOT", "uber": "UBER",
	"lyft": "LYFT", "airbnb": "ABNB", "shopify": "SHOP",
	"block": "SQ", "square": "SQ", "paypal": "PYPL",
	"jpmorgan": "JPM", "jp morgan": "JPM",
	"goldman sachs": "GS", "morgan stanley": "MS",
	"bank of america": "BAC", "wells fargo": "WFC",
	"citigroup": "C", "american express": "AXP",
	"visa": "V", "mastercard": "MA",
}

var companySuffixes = []string{" inc.", " inc", " corporation", " corp.", " corp", " ltd.", " ltd", " llc", " plc", " co.", " company"}

// ExtractTicker resolves a company name to a known ticker symbol, or ""
// when the company is unknown or private.
func ExtractTicker(companyName string) string {
	normalized := strings.ToLower(strings.TrimSpace(companyName))
	for _, suffix := range companySuffixes {
		normalized = strings.TrimSuffix(normalized, suffix)
	}
	normalized = strings.TrimSpace(normalized)
	if ticker, ok := tickerMappings[normalized]; ok {
		return ticker
	}
	for name, ticker := range tickerMappings {
		if strings.Contains(normalized, name) {
			return ticker
		}
	}
	return ""
}

// Quote is a point-in-time stock snapshot.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	MarketCap     int64   `json:"market_cap"`
	AsOf          string  `json:"as_of"`
}

// FinanceService fetches public-company quotes to enrich customer
// context.
type FinanceService struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

func NewFinanceService(apiKey string) *FinanceService {
	return &FinanceService{
		client:   &http.Client{Timeout: 15 * time.Second},
		apiKey:   apiKey,
		endpoint: "https://financialmodelingprep.com/api/v3/quote",
	}
}

// CompanyQuote resolves the company to a ticker and fetches its quote.
// Unknown or private companies return (nil, nil).
func (f *FinanceService) CompanyQuote(ctx context.Context, companyName string) (*Quote, error) {
	ticker := ExtractTicker(companyName)
	if ticker == "" {
		common.Logger().Debug("research: no ticker for company", "company", companyName)
		return nil, nil
	}
	return f.FetchQuote(ctx, ticker)
}

// FetchQuote retrieves the current quote for a ticker symbol.
func (f *FinanceService) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	if strings.TrimSpace(f.apiKey) == "" {
		return nil, fmt.Errorf("finance API key not configured")
	}
	endpoint := fmt.Sprintf("%s/%s?%s", f.endpoint, url.PathEscape(strings.ToUpper(ticker)), url.Values{"apikey": {f.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote API status %d for %s", resp.StatusCode, ticker)
	}
	var payload []struct {
		Symbol            string  `json:"symbol"`
		Price             float64 `json:"price"`
		Change            float64 `json:"change"`
		ChangesPercentage float64 `json:"changesPercentage"`
		MarketCap         int64   `json:"marketCap"`
		Timestamp         int64   `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote for %s: %w", ticker, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}
	q := payload[0]
	return &Quote{
		Ticker:        q.Symbol,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangesPercentage,
		MarketCap:     q.MarketCap,
		AsOf:          time.Unix(q.Timestamp, 0).UTC().Format(time.RFC3339),
	}, nil
}

// CompanyContext fetches the company quote and renders it as a context
// line. Unknown or private companies yield "".
func (f *FinanceService) CompanyContext(ctx context.Context, companyName string) (string, error) {
	quote, err := f.CompanyQuote(ctx, companyName)
	if err != nil {
		return "", err
	}
	return quote.ContextBlock(), nil
}

// FormatMarketCap renders a market cap in trillions/billions/millions.
func FormatMarketCap(marketCap int64) string {
	switch {
	case marketCap >= 1_000_000_000_000:
		return fmt.Sprintf("$%.2fT", float64(marketCap)/1_000_000_000_000)
	case marketCap >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", float64(marketCap)/1_000_000_000)
	case marketCap >= 1_000_000:
		return fmt.Sprintf("$%.2fM", float64(marketCap)/1_000_000)
	default:
		return fmt.Sprintf("$%d", marketCap)
	}
}

// ContextBlock renders a quote as a line for the background context, or
// "" for a nil quote.
func (q *Quote) ContextBlock() string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf("Public company %s: price %.2f (%+.2f, %+.2f%%), market cap %s as of %s",
		q.Ticker, q.Price, q.Change, q.ChangePercent, FormatMarketCap(q.MarketCap), q.AsOf)
}
