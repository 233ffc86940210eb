// File path: internal/data/orchestrator/adapter.go
package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/fieldscale/povd/internal/documents"
	"github.com/fieldscale/povd/internal/pov"
	"github.com/fieldscale/povd/internal/store"
)

// storeAdapter implements pov.Store on top of the relational store.
type storeAdapter struct {
	db *store.Store
}

func (a *storeAdapter) CreateReport(ctx context.Context, meta pov.ReportMeta, status pov.Status) error {
	return a.db.CreateReport(ctx, store.Report{
		ID:                meta.ID,
		UserID:            meta.UserID,
		VendorName:        meta.VendorName,
		VendorURL:         meta.VendorURL,
		VendorServices:    meta.VendorServices,
		CustomerName:      meta.CustomerName,
		CustomerURL:       meta.CustomerURL,
		RoleNames:         meta.RoleNames,
		RoleContext:       meta.RoleContext,
		AdditionalContext: meta.AdditionalContext,
		LinkedInURLs:      meta.LinkedInURLs,
		ModelName:         meta.ModelName,
		Status:            string(status),
	})
}

func (a *storeAdapter) UpdateStatus(ctx context.Context, reportID string, status pov.Status) error {
	report, err := a.db.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if !pov.CanTransition(pov.Status(report.Status), status) {
		return fmt.Errorf("%w: %s -> %s", pov.ErrInvalidTransition, report.Status, status)
	}
	return a.db.UpdateStatus(ctx, reportID, string(status))
}

func (a *storeAdapter) SaveTitles(ctx context.Context, reportID string, titles []string) error {
	return a.db.SaveTitles(ctx, reportID, titles)
}

func (a *storeAdapter) SaveDetails(ctx context.Context, reportID string, details []pov.OutcomeDetail) error {
	rows := make([]store.Outcome, len(details))
	for i, detail := range details {
		rows[i] = store.Outcome{
			ReportID:     reportID,
			OutcomeIndex: detail.Index,
			Title:        detail.Title,
			Content:      detail.Content,
		}
	}
	return a.db.ReplaceDetails(ctx, reportID, rows)
}

func (a *storeAdapter) SaveSummary(ctx context.Context, reportID, summary, takeaways string) error {
	return a.db.ReplaceSummary(ctx, reportID, summary, takeaways)
}

func (a *storeAdapter) SaveContext(ctx context.Context, reportID string, contextData []byte) error {
	return a.db.SaveContext(ctx, reportID, contextData)
}

func (a *storeAdapter) LoadContext(ctx context.Context, reportID string) ([]byte, error) {
	return a.db.LoadContext(ctx, reportID)
}

func (a *storeAdapter) SelectedTitles(ctx context.Context, reportID string) ([]pov.SelectedTitle, error) {
	rows, err := a.db.TitlesForReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	titles := make([]pov.SelectedTitle, len(rows))
	for i, row := range rows {
		titles[i] = pov.SelectedTitle{Index: row.TitleIndex, Title: row.Title, Selected: row.Selected}
	}
	return titles, nil
}

// documentAdapter reads gathered file paths through the upload reader.
type documentAdapter struct {
	reader *documents.Reader
}

func (a *documentAdapter) ReadDocument(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	doc, err := a.reader.Read(path, content)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}
