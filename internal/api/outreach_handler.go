// File path: internal/api/outreach_handler.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fieldscale/povd/internal/pov"
	"github.com/fieldscale/povd/internal/store"
)

func (s *Server) handleGenerateOutreach(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	var req outreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}
	if !pov.ValidScenario(req.Scenario) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown outreach scenario %q", req.Scenario))
		return
	}
	ctx := r.Context()
	db := s.orch.Store()
	report, err := db.GetReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	allowed, err := db.CanAccessReport(ctx, req.UserID, report)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !allowed {
		writeError(w, http.StatusForbidden, pov.ErrForbidden)
		return
	}

	rows, err := db.OutcomesForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	outcomes := make([]pov.OutcomeDetail, len(rows))
	for i, row := range rows {
		outcomes[i] = pov.OutcomeDetail{Index: row.OutcomeIndex, Title: row.Title, Content: row.Content}
	}

	result, err := pov.GenerateOutreach(ctx, s.orch.Provider(), pov.OutreachRequest{
		Meta:               metaFromRow(report),
		Outcomes:           outcomes,
		Scenario:           req.Scenario,
		CustomInstructions: req.CustomInstructions,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	email := store.OutreachEmail{
		ID:       uuid.NewString(),
		ReportID: reportID,
		UserID:   req.UserID,
		Scenario: req.Scenario,
		Subject:  result.Subject,
		Content:  result.Email,
		Proposal: result.Proposal,
		Status:   store.OutreachDraft,
	}
	if err := db.CreateOutreachEmail(ctx, email); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, outreachViewFromRow(email))
}

func (s *Server) handleListOutreach(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	if _, err := s.authorizeReport(ctx, r, reportID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	emails, err := s.orch.Store().OutreachEmailsForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	views := make([]outreachView, len(emails))
	for i, email := range emails {
		views[i] = outreachViewFromRow(email)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"emails": views})
}

func (s *Server) handleGetOutreach(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	email, err := s.authorizeOutreach(r.Context(), userID, emailID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, outreachViewFromRow(*email))
}

func (s *Server) handleUpdateOutreachStatus(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")
	var req outreachStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	ctx := r.Context()
	if _, err := s.authorizeOutreach(ctx, strings.TrimSpace(req.UserID), emailID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := s.orch.Store().UpdateOutreachStatus(ctx, emailID, req.Status); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": emailID, "status": req.Status})
}

func (s *Server) handleDeleteOutreach(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	ctx := r.Context()
	if _, err := s.authorizeOutreach(ctx, userID, emailID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := s.orch.Store().DeleteOutreachEmail(ctx, emailID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": emailID, "status": "deleted"})
}

// authorizeOutreach loads the email and verifies the acting user owns it.
// Outreach emails are personal drafts, so access is owner-only rather than
// the broader report visibility rules.
func (s *Server) authorizeOutreach(ctx context.Context, userID, emailID string) (*store.OutreachEmail, error) {
	if userID == "" {
		return nil, pov.ErrForbidden
	}
	email, err := s.orch.Store().GetOutreachEmail(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if email.UserID != userID {
		return nil, pov.ErrForbidden
	}
	return email, nil
}

func outreachViewFromRow(email store.OutreachEmail) outreachView {
	return outreachView{
		ID:        email.ID,
		ReportID:  email.ReportID,
		Scenario:  email.Scenario,
		Subject:   email.Subject,
		Content:   email.Content,
		Proposal:  email.Proposal,
		Status:    email.Status,
		CreatedAt: email.CreatedAt,
	}
}
