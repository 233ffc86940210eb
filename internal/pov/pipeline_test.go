// File path: internal/pov/pipeline_test.go
package pov

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fieldscale/povd/internal/llm/providers"
)

func TestGenerateFull(t *testing.T) {
	store := newMemStore()
	pipeline := NewPipeline(scriptedProvider(), NewGatherer(nil, nil, nil), store, 4)
	meta := ReportMeta{
		ID:           "rep-full",
		UserID:       "user-1",
		VendorName:   "Acme",
		CustomerName: "Globex",
		CreatedAt:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	req := GatherRequest{VendorName: "Acme", CustomerName: "Globex"}

	document, err := pipeline.GenerateFull(context.Background(), meta, req, 3)
	if err != nil {
		t.Fatalf("generate full: %v", err)
	}
	if !strings.HasPrefix(document, "## **POV Report: Acme Globex") {
		t.Fatalf("unexpected document head: %q", document[:60])
	}
	for _, fragment := range []string{"detail-first", "detail-second", "detail-third", "summary-body", "takeaways-body"} {
		if !strings.Contains(document, fragment) {
			t.Fatalf("document missing %q", fragment)
		}
	}
	if store.status("rep-full") != StatusCompleted {
		t.Fatalf("expected completed, got %s", store.status("rep-full"))
	}
	if len(store.details["rep-full"]) != 3 {
		t.Fatalf("expected 3 persisted details, got %d", len(store.details["rep-full"]))
	}
}

func TestGenerateFullWithoutStore(t *testing.T) {
	pipeline := NewPipeline(scriptedProvider(), NewGatherer(nil, nil, nil), nil, 4)
	meta := ReportMeta{ID: "rep-nostore", VendorName: "Acme", CustomerName: "Globex", CreatedAt: time.Now()}
	document, err := pipeline.GenerateFull(context.Background(), meta, GatherRequest{VendorName: "Acme", CustomerName: "Globex"}, 3)
	if err != nil {
		t.Fatalf("generate full: %v", err)
	}
	if document == "" {
		t.Fatalf("expected a document without persistence")
	}
}

func TestGenerateFullMarksFailedOnTitleFailure(t *testing.T) {
	store := newMemStore()
	failing := providers.NewLocalProvider().
		ScriptError("distinct outcome titles", errors.New("model offline"))
	pipeline := NewPipeline(failing, NewGatherer(nil, nil, nil), store, 4)
	meta := ReportMeta{ID: "rep-fail", VendorName: "Acme", CustomerName: "Globex", CreatedAt: time.Now()}
	_, err := pipeline.GenerateFull(context.Background(), meta, GatherRequest{VendorName: "Acme", CustomerName: "Globex"}, 3)
	if !errors.Is(err, ErrBatchFailure) {
		t.Fatalf("expected ErrBatchFailure, got %v", err)
	}
	if store.status("rep-fail") != StatusFailed {
		t.Fatalf("expected failed, got %s", store.status("rep-fail"))
	}
}
