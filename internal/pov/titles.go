// File path: internal/pov/titles.go
package pov

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
	"github.com/fieldscale/povd/internal/llm"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// DefaultTitleCount is the number of outcome titles requested when the
// caller does not choose one.
const DefaultTitleCount = 15

// GenerateTitles asks the model for exactly n outcome titles and parses
// the response. Under-generation is tolerated with a warning; an empty or
// non-list response is fatal. Over-generation truncates to n.
func GenerateTitles(ctx context.Context, provider providers.Provider, bc *BackgroundContext, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTitleCount
	}
	_, finish := telemetry.StartSpan(ctx, "pov.titles")
	defer finish()

	completion, err := provider.Complete(ctx, titlesPrompt(bc, n))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchFailure, err)
	}
	titles, err := ParseTitleList(completion.Text, n)
	if err != nil {
		return nil, err
	}
	telemetry.RecordPipelineStage("titles", 0)
	return titles, nil
}

// ParseTitleList parses a model response expected to be a JSON array of
// strings, stripping markdown code fences first. The expected count n
// bounds the result: longer lists truncate, shorter lists warn.
func ParseTitleList(raw string, n int) ([]string, error) {
	logger := common.Logger()
	cleaned := llm.StripCodeFences(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &ParseError{Raw: raw, Err: ErrEmptyResult}
	}

	var titles []string
	if err := json.Unmarshal([]byte(cleaned), &titles); err != nil {
		// Distinguish "valid JSON, wrong shape" for diagnostics.
		var probe interface{}
		if jsonErr := json.Unmarshal([]byte(cleaned), &probe); jsonErr == nil {
			return nil, &ParseError{Raw: raw, Err: fmt.Errorf("%w: expected a JSON list of strings", ErrMalformedOutput)}
		}
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedOutput, err)}
	}
	if len(titles) == 0 {
		return nil, &ParseError{Raw: raw, Err: ErrEmptyResult}
	}
	if len(titles) > n {
		logger.Warn("pov: model over-generated titles, truncating", "expected", n, "got", len(titles))
		titles = titles[:n]
	} else if len(titles) < n {
		logger.Warn("pov: model under-generated titles, proceeding", "expected", n, "got", len(titles))
	}
	for i := range titles {
		titles[i] = strings.TrimSpace(titles[i])
	}
	return titles, nil
}
