// File path: internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "povd.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenFreshDatabaseAppliesPragmas(t *testing.T) {
	store := openTestStore(t)
	var mode string
	if err := store.DB().Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
	var fk int
	if err := store.DB().Get(&fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("query foreign keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys enabled, got %d", fk)
	}
}

func seedReport(t *testing.T, store *Store, id, userID string) {
	t.Helper()
	err := store.CreateReport(context.Background(), Report{
		ID:           id,
		UserID:       userID,
		VendorName:   "Acme",
		CustomerName: "Globex",
		Status:       "processing",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
}

func TestCreateAndGetReport(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	report, err := store.GetReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.VendorName != "Acme" || report.Status != "processing" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, err := store.GetReport(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	if err := store.UpdateStatus(ctx, "rep-1", "titles_generated"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	report, err := store.GetReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Status != "titles_generated" {
		t.Fatalf("status not updated: %q", report.Status)
	}
	if err := store.UpdateStatus(ctx, "missing", "failed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveTitlesOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	if err := store.SaveTitles(ctx, "rep-1", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("save titles: %v", err)
	}
	if err := store.SaveTitles(ctx, "rep-1", []string{"x", "y"}); err != nil {
		t.Fatalf("second save titles: %v", err)
	}
	titles, err := store.TitlesForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("titles for report: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected overwrite to 2 titles, got %d", len(titles))
	}
	if titles[0].Title != "x" || titles[0].TitleIndex != 0 || titles[0].Selected {
		t.Fatalf("unexpected first title: %+v", titles[0])
	}
}

func TestSelection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")
	if err := store.SaveTitles(ctx, "rep-1", []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("save titles: %v", err)
	}

	if err := store.UpdateSelectedTitles(ctx, "rep-1", "user-1", []int{0, 2}); err != nil {
		t.Fatalf("update selection: %v", err)
	}
	selected, err := store.SelectedTitlesForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("selected titles: %v", err)
	}
	if len(selected) != 2 || selected[0].TitleIndex != 0 || selected[1].TitleIndex != 2 {
		t.Fatalf("unexpected selection: %+v", selected)
	}

	// A new selection clears the previous one.
	if err := store.UpdateSelectedTitles(ctx, "rep-1", "user-1", []int{3}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	summary, err := store.SelectionSummaryForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("selection summary: %v", err)
	}
	if summary.Total != 4 || summary.Selected != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSelectionOwnershipAndBounds(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")
	if err := store.SaveTitles(ctx, "rep-1", []string{"a", "b"}); err != nil {
		t.Fatalf("save titles: %v", err)
	}

	if err := store.UpdateSelectedTitles(ctx, "rep-1", "user-1", []int{0}); err != nil {
		t.Fatalf("valid selection: %v", err)
	}
	if err := store.UpdateSelectedTitles(ctx, "rep-1", "intruder", []int{1}); err == nil {
		t.Fatalf("expected ownership error")
	}
	if err := store.UpdateSelectedTitles(ctx, "rep-1", "user-1", []int{7}); err == nil {
		t.Fatalf("expected out-of-range index error")
	}
	// Failed updates roll back without clearing the existing selection.
	selected, err := store.SelectedTitlesForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("selected titles: %v", err)
	}
	if len(selected) != 1 || selected[0].TitleIndex != 0 {
		t.Fatalf("selection disturbed by failed updates: %+v", selected)
	}
}

func TestReplaceDetailsOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	first := []Outcome{
		{ReportID: "rep-1", OutcomeIndex: 0, Title: "a", Content: "detail-a"},
		{ReportID: "rep-1", OutcomeIndex: 1, Title: "b", Content: "detail-b"},
		{ReportID: "rep-1", OutcomeIndex: 2, Title: "c", Content: "detail-c"},
	}
	if err := store.ReplaceDetails(ctx, "rep-1", first); err != nil {
		t.Fatalf("replace details: %v", err)
	}
	second := []Outcome{{ReportID: "rep-1", OutcomeIndex: 1, Title: "b", Content: "detail-b2"}}
	if err := store.ReplaceDetails(ctx, "rep-1", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	outcomes, err := store.OutcomesForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("outcomes: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Content != "detail-b2" {
		t.Fatalf("replace must never merge old and new rows: %+v", outcomes)
	}
}

func TestReplaceSummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	if err := store.ReplaceSummary(ctx, "rep-1", "first summary", "first takeaways"); err != nil {
		t.Fatalf("replace summary: %v", err)
	}
	if err := store.ReplaceSummary(ctx, "rep-1", "second summary", ""); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	summary, err := store.SummaryForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.SummaryContent != "second summary" || summary.TakeawaysContent != "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestContextRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")

	if _, err := store.LoadContext(ctx, "rep-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}
	payload := []byte(`{"request":{"vendor_name":"Acme"}}`)
	if err := store.SaveContext(ctx, "rep-1", payload); err != nil {
		t.Fatalf("save context: %v", err)
	}
	loaded, err := store.LoadContext(ctx, "rep-1")
	if err != nil {
		t.Fatalf("load context: %v", err)
	}
	if string(loaded) != string(payload) {
		t.Fatalf("context corrupted: %s", loaded)
	}
}

func TestDeleteReportCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")
	if err := store.SaveTitles(ctx, "rep-1", []string{"a"}); err != nil {
		t.Fatalf("save titles: %v", err)
	}
	if err := store.ReplaceSummary(ctx, "rep-1", "s", "t"); err != nil {
		t.Fatalf("replace summary: %v", err)
	}

	if err := store.DeleteReport(ctx, "rep-1"); err != nil {
		t.Fatalf("delete report: %v", err)
	}
	if _, err := store.GetReport(ctx, "rep-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	titles, err := store.TitlesForReport(ctx, "rep-1")
	if err != nil {
		t.Fatalf("titles after delete: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("titles must cascade on delete, got %d", len(titles))
	}
}

func TestListReportsForUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedReport(t, store, "rep-1", "user-1")
	seedReport(t, store, "rep-2", "user-1")
	seedReport(t, store, "rep-3", "user-2")

	reports, err := store.ListReportsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
}
