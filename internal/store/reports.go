// File path: internal/store/reports.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldscale/povd/internal/common/telemetry"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// CreateReport inserts a new report row.
func (s *Store) CreateReport(ctx context.Context, report Report) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	if strings.TrimSpace(report.ID) == "" {
		return fmt.Errorf("report id required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO pov_reports (
                id, user_id, vendor_name, vendor_url, vendor_services,
                target_customer_name, target_customer_url, role_names, role_context,
                additional_context, linkedin_urls, model_name, status, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.UserID, report.VendorName, report.VendorURL, report.VendorServices,
		report.CustomerName, report.CustomerURL, report.RoleNames, report.RoleContext,
		report.AdditionalContext, report.LinkedInURLs, report.ModelName, report.Status, now, now)
	telemetry.RecordStoreWrite("pov_reports", err)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport fetches one report row by id.
func (s *Store) GetReport(ctx context.Context, reportID string) (*Report, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var report Report
	if err := s.db.GetContext(ctx, &report, `SELECT * FROM pov_reports WHERE id = ?`, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select report: %w", err)
	}
	return &report, nil
}

// ListReportsForUser returns the reports owned by a user, newest first.
func (s *Store) ListReportsForUser(ctx context.Context, userID string) ([]Report, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	reports := []Report{}
	if err := s.db.SelectContext(ctx, &reports, `SELECT * FROM pov_reports WHERE user_id = ? ORDER BY created_at DESC`, userID); err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	return reports, nil
}

// ListReportsForOrganization returns reports owned by any member of the
// organization, newest first.
func (s *Store) ListReportsForOrganization(ctx context.Context, organization string) ([]Report, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	reports := []Report{}
	if err := s.db.SelectContext(ctx, &reports, `SELECT r.* FROM pov_reports r
                JOIN profiles p ON p.id = r.user_id
                WHERE p.organization = ? ORDER BY r.created_at DESC`, organization); err != nil {
		return nil, fmt.Errorf("select organization reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus sets the report lifecycle status.
func (s *Store) UpdateStatus(ctx context.Context, reportID, status string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE pov_reports SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), reportID)
	telemetry.RecordStoreWrite("pov_reports", err)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveTitles inserts the generated titles for a report with stable
// zero-based indices, all initially unselected. Prior titles for the
// report are replaced in the same transaction.
func (s *Store) SaveTitles(ctx context.Context, reportID string, titles []string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save titles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pov_outcome_titles WHERE report_id = ?`, reportID); err != nil {
		tx.Rollback()
		telemetry.RecordStoreWrite("pov_outcome_titles", err)
		return fmt.Errorf("clear titles: %w", err)
	}
	for i, title := range titles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO pov_outcome_titles (report_id, title_index, title, selected) VALUES (?, ?, ?, 0)`,
			reportID, i, title); err != nil {
			tx.Rollback()
			telemetry.RecordStoreWrite("pov_outcome_titles", err)
			return fmt.Errorf("insert title %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		telemetry.RecordStoreWrite("pov_outcome_titles", err)
		return fmt.Errorf("commit save titles: %w", err)
	}
	telemetry.RecordStoreWrite("pov_outcome_titles", nil)
	return nil
}

// TitlesForReport returns all titles for a report in title_index order.
func (s *Store) TitlesForReport(ctx context.Context, reportID string) ([]OutcomeTitle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	titles := []OutcomeTitle{}
	if err := s.db.SelectContext(ctx, &titles, `SELECT * FROM pov_outcome_titles WHERE report_id = ? ORDER BY title_index`, reportID); err != nil {
		return nil, fmt.Errorf("select titles: %w", err)
	}
	return titles, nil
}

// UpdateSelectedTitles marks exactly the given title indices selected and
// clears the rest, after verifying the acting user owns the report.
func (s *Store) UpdateSelectedTitles(ctx context.Context, reportID, userID string, selectedIndices []int) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if report.UserID != userID {
		return fmt.Errorf("user %s does not own report %s", userID, reportID)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update selection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE pov_outcome_titles SET selected = 0 WHERE report_id = ?`, reportID); err != nil {
		tx.Rollback()
		telemetry.RecordStoreWrite("pov_outcome_titles", err)
		return fmt.Errorf("clear selection: %w", err)
	}
	for _, index := range selectedIndices {
		res, err := tx.ExecContext(ctx, `UPDATE pov_outcome_titles SET selected = 1 WHERE report_id = ? AND title_index = ?`, reportID, index)
		if err != nil {
			tx.Rollback()
			telemetry.RecordStoreWrite("pov_outcome_titles", err)
			return fmt.Errorf("select title %d: %w", index, err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			tx.Rollback()
			return fmt.Errorf("title index %d not found for report %s", index, reportID)
		}
	}
	if err := tx.Commit(); err != nil {
		telemetry.RecordStoreWrite("pov_outcome_titles", err)
		return fmt.Errorf("commit update selection: %w", err)
	}
	telemetry.RecordStoreWrite("pov_outcome_titles", nil)
	return nil
}

// SelectedTitlesForReport returns the selected titles in title_index
// order.
func (s *Store) SelectedTitlesForReport(ctx context.Context, reportID string) ([]OutcomeTitle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	titles := []OutcomeTitle{}
	if err := s.db.SelectContext(ctx, &titles, `SELECT * FROM pov_outcome_titles WHERE report_id = ? AND selected = 1 ORDER BY title_index`, reportID); err != nil {
		return nil, fmt.Errorf("select selected titles: %w", err)
	}
	return titles, nil
}

// SelectionSummaryForReport counts total and selected titles.
func (s *Store) SelectionSummaryForReport(ctx context.Context, reportID string) (SelectionSummary, error) {
	if s == nil || s.db == nil {
		return SelectionSummary{}, fmt.Errorf("store not initialised")
	}
	var summary SelectionSummary
	if err := s.db.GetContext(ctx, &summary, `SELECT COUNT(*) AS total, COALESCE(SUM(selected), 0) AS selected FROM pov_outcome_titles WHERE report_id = ?`, reportID); err != nil {
		return SelectionSummary{}, fmt.Errorf("select selection summary: %w", err)
	}
	return summary, nil
}

// ReplaceDetails overwrites the outcome details for a report: prior rows
// are deleted and the new set inserted in one transaction, so regenerating
// can never leave a union of old and new rows.
func (s *Store) ReplaceDetails(ctx context.Context, reportID string, details []Outcome) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace details: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pov_outcomes WHERE report_id = ?`, reportID); err != nil {
		tx.Rollback()
		telemetry.RecordStoreWrite("pov_outcomes", err)
		return fmt.Errorf("clear outcomes: %w", err)
	}
	for _, detail := range details {
		if _, err := tx.ExecContext(ctx, `INSERT INTO pov_outcomes (report_id, outcome_index, title, content) VALUES (?, ?, ?, ?)`,
			reportID, detail.OutcomeIndex, detail.Title, detail.Content); err != nil {
			tx.Rollback()
			telemetry.RecordStoreWrite("pov_outcomes", err)
			return fmt.Errorf("insert outcome %d: %w", detail.OutcomeIndex, err)
		}
	}
	if err := tx.Commit(); err != nil {
		telemetry.RecordStoreWrite("pov_outcomes", err)
		return fmt.Errorf("commit replace details: %w", err)
	}
	telemetry.RecordStoreWrite("pov_outcomes", nil)
	return nil
}

// OutcomesForReport returns generated details in outcome_index order.
func (s *Store) OutcomesForReport(ctx context.Context, reportID string) ([]Outcome, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	outcomes := []Outcome{}
	if err := s.db.SelectContext(ctx, &outcomes, `SELECT * FROM pov_outcomes WHERE report_id = ? ORDER BY outcome_index`, reportID); err != nil {
		return nil, fmt.Errorf("select outcomes: %w", err)
	}
	return outcomes, nil
}

// ReplaceSummary overwrites the summary row for a report.
func (s *Store) ReplaceSummary(ctx context.Context, reportID, summary, takeaways string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pov_summary WHERE report_id = ?`, reportID); err != nil {
		tx.Rollback()
		telemetry.RecordStoreWrite("pov_summary", err)
		return fmt.Errorf("clear summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO pov_summary (report_id, summary_content, takeaways_content) VALUES (?, ?, ?)`,
		reportID, summary, takeaways); err != nil {
		tx.Rollback()
		telemetry.RecordStoreWrite("pov_summary", err)
		return fmt.Errorf("insert summary: %w", err)
	}
	if err := tx.Commit(); err != nil {
		telemetry.RecordStoreWrite("pov_summary", err)
		return fmt.Errorf("commit replace summary: %w", err)
	}
	telemetry.RecordStoreWrite("pov_summary", nil)
	return nil
}

// SummaryForReport returns the summary row, or ErrNotFound.
func (s *Store) SummaryForReport(ctx context.Context, reportID string) (*Summary, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var summary Summary
	if err := s.db.GetContext(ctx, &summary, `SELECT * FROM pov_summary WHERE report_id = ?`, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select summary: %w", err)
	}
	return &summary, nil
}

// SaveContext persists the serialized background context on the report
// row.
func (s *Store) SaveContext(ctx context.Context, reportID string, contextData []byte) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE pov_reports SET context_data = ?, updated_at = ? WHERE id = ?`,
		contextData, time.Now().UTC(), reportID)
	telemetry.RecordStoreWrite("pov_reports", err)
	if err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadContext returns the serialized background context for a report.
// A report without one yields ErrNotFound.
func (s *Store) LoadContext(ctx context.Context, reportID string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var data []byte
	if err := s.db.GetContext(ctx, &data, `SELECT context_data FROM pov_reports WHERE id = ?`, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load context: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// DeleteReport removes a report; children cascade via foreign keys.
func (s *Store) DeleteReport(ctx context.Context, reportID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM pov_reports WHERE id = ?`, reportID)
	telemetry.RecordStoreWrite("pov_reports", err)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
