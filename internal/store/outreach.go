// File path: internal/store/outreach.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscale/povd/internal/common/telemetry"
)

// Outreach email statuses.
const (
	OutreachDraft    = "draft"
	OutreachSent     = "sent"
	OutreachArchived = "archived"
)

var outreachStatuses = map[string]bool{
	OutreachDraft:    true,
	OutreachSent:     true,
	OutreachArchived: true,
}

// CreateOutreachEmail inserts a generated outreach email in draft status.
func (s *Store) CreateOutreachEmail(ctx context.Context, email OutreachEmail) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	if email.Status == "" {
		email.Status = OutreachDraft
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO outreach_emails (id, report_id, user_id, scenario, subject, content, proposal, status, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		email.ID, email.ReportID, email.UserID, email.Scenario, email.Subject, email.Content, email.Proposal, email.Status, now, now)
	telemetry.RecordStoreWrite("outreach_emails", err)
	if err != nil {
		return fmt.Errorf("insert outreach email: %w", err)
	}
	return nil
}

// OutreachEmailsForReport lists outreach emails for a report, newest
// first.
func (s *Store) OutreachEmailsForReport(ctx context.Context, reportID string) ([]OutreachEmail, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	emails := []OutreachEmail{}
	if err := s.db.SelectContext(ctx, &emails, `SELECT * FROM outreach_emails WHERE report_id = ? ORDER BY created_at DESC`, reportID); err != nil {
		return nil, fmt.Errorf("select outreach emails: %w", err)
	}
	return emails, nil
}

// GetOutreachEmail fetches one outreach email by id.
func (s *Store) GetOutreachEmail(ctx context.Context, id string) (*OutreachEmail, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var email OutreachEmail
	if err := s.db.GetContext(ctx, &email, `SELECT * FROM outreach_emails WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select outreach email: %w", err)
	}
	return &email, nil
}

// UpdateOutreachStatus moves an outreach email through its lifecycle
// (draft, sent, archived).
func (s *Store) UpdateOutreachStatus(ctx context.Context, id, status string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	if !outreachStatuses[status] {
		return fmt.Errorf("unknown outreach status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE outreach_emails SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	telemetry.RecordStoreWrite("outreach_emails", err)
	if err != nil {
		return fmt.Errorf("update outreach status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOutreachEmail removes one outreach email.
func (s *Store) DeleteOutreachEmail(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM outreach_emails WHERE id = ?`, id)
	telemetry.RecordStoreWrite("outreach_emails", err)
	if err != nil {
		return fmt.Errorf("delete outreach email: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
