// File path: internal/store/profiles.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscale/povd/internal/common/telemetry"
)

// Profile roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// ErrQuotaExceeded is returned when a user has no report generations
// remaining.
var ErrQuotaExceeded = errors.New("report quota exceeded")

// UpsertProfile inserts or updates a profile row by id.
func (s *Store) UpsertProfile(ctx context.Context, profile Profile) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles (id, email, full_name, role, organization, report_quota, reports_used, created_at, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET
                        email = excluded.email,
                        full_name = excluded.full_name,
                        role = excluded.role,
                        organization = excluded.organization,
                        report_quota = excluded.report_quota,
                        updated_at = excluded.updated_at`,
		profile.ID, profile.Email, profile.FullName, profile.Role, profile.Organization,
		profile.ReportQuota, profile.ReportsUsed, now, now)
	telemetry.RecordStoreWrite("profiles", err)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile fetches one profile by user id.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var profile Profile
	if err := s.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return &profile, nil
}

// CanAccessReport decides whether the acting user may view the report:
// the owner always can, a super_admin always can, and an admin can when
// both users belong to the same organization.
func (s *Store) CanAccessReport(ctx context.Context, actorID string, report *Report) (bool, error) {
	if report == nil {
		return false, fmt.Errorf("nil report")
	}
	if actorID == report.UserID {
		return true, nil
	}
	actor, err := s.GetProfile(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	switch actor.Role {
	case RoleSuperAdmin:
		return true, nil
	case RoleAdmin:
		owner, err := s.GetProfile(ctx, report.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return actor.Organization != "" && actor.Organization == owner.Organization, nil
	default:
		return false, nil
	}
}

// CheckQuota verifies the user still has generations remaining. A missing
// profile passes: quota enforcement applies only to provisioned users.
func (s *Store) CheckQuota(ctx context.Context, userID string) error {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if profile.ReportQuota > 0 && profile.ReportsUsed >= profile.ReportQuota {
		return fmt.Errorf("%w: used %d of %d", ErrQuotaExceeded, profile.ReportsUsed, profile.ReportQuota)
	}
	return nil
}

// ChargeQuota records one consumed generation. Called only after the
// generation actually succeeded.
func (s *Store) ChargeQuota(ctx context.Context, userID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialised")
	}
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET reports_used = reports_used + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	telemetry.RecordStoreWrite("profiles", err)
	if err != nil {
		return fmt.Errorf("charge quota: %w", err)
	}
	return nil
}
