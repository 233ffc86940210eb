// File path: internal/api/report_handler.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/pov"
	"github.com/fieldscale/povd/internal/store"
)

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := validateGenerate(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	db := s.orch.Store()
	if err := db.CheckQuota(ctx, req.UserID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	meta := s.newMeta(req)
	document, err := s.orch.Pipeline().GenerateFull(ctx, meta, req.GatherRequest, titleCount(req))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	chargeQuota(ctx, db, req.UserID)
	writeJSON(w, http.StatusOK, generateResponse{
		ReportID: meta.ID,
		Status:   string(pov.StatusCompleted),
		Document: document,
	})
}

func (s *Server) handleGenerateTitles(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := validateGenerate(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	if err := s.orch.Store().CheckQuota(ctx, req.UserID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	meta := s.newMeta(req)
	titles, err := s.orch.Coordinator().Phase1(ctx, meta, req.GatherRequest, titleCount(req))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, titlesResponse{
		ReportID: meta.ID,
		Status:   string(pov.StatusTitlesGenerated),
		Titles:   titles,
	})
}

func (s *Server) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id is required"))
		return
	}
	ctx := r.Context()
	db := s.orch.Store()
	report, err := db.GetReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if report.UserID != req.UserID {
		writeError(w, http.StatusForbidden, pov.ErrForbidden)
		return
	}
	if err := db.UpdateSelectedTitles(ctx, reportID, req.UserID, req.SelectedIndices); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	summary, err := db.SelectionSummaryForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": reportID,
		"total":     summary.Total,
		"selected":  summary.Selected,
	})
}

func (s *Server) handleGenerateOutcomes(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	ctx := r.Context()
	db := s.orch.Store()
	report, err := db.GetReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if report.UserID != req.UserID {
		writeError(w, http.StatusForbidden, pov.ErrForbidden)
		return
	}
	if err := db.CheckQuota(ctx, report.UserID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	details, err := s.orch.Coordinator().Phase2(ctx, metaFromRow(report), gatherFromRow(report))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	chargeQuota(ctx, db, report.UserID)

	outcomes := make([]outcomeView, len(details))
	for i, detail := range details {
		outcomes[i] = outcomeView{Index: detail.Index, Title: detail.Title, Content: detail.Content}
	}
	resp := map[string]interface{}{
		"report_id": reportID,
		"status":    string(pov.StatusCompleted),
		"outcomes":  outcomes,
	}
	if summary, err := db.SummaryForReport(ctx, reportID); err == nil {
		resp["summary"] = summary.SummaryContent
		resp["takeaways"] = summary.TakeawaysContent
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	report, err := s.authorizeReport(ctx, r, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	db := s.orch.Store()
	view := viewFromRow(report)
	if titles, err := db.TitlesForReport(ctx, reportID); err == nil {
		view.Titles = titleViews(titles)
	}
	if outcomes, err := db.OutcomesForReport(ctx, reportID); err == nil {
		for _, outcome := range outcomes {
			view.Outcomes = append(view.Outcomes, outcomeView{
				Index:   outcome.OutcomeIndex,
				Title:   outcome.Title,
				Content: outcome.Content,
			})
		}
	}
	if summary, err := db.SummaryForReport(ctx, reportID); err == nil {
		view.Summary = summary.SummaryContent
		view.Takeaways = summary.TakeawaysContent
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetTitles(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	if _, err := s.authorizeReport(ctx, r, reportID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	titles, err := s.orch.Store().TitlesForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": reportID,
		"titles":    titleViews(titles),
	})
}

func (s *Server) handleSelectionSummary(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	if _, err := s.authorizeReport(ctx, r, reportID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	summary, err := s.orch.Store().SelectionSummaryForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": reportID,
		"total":     summary.Total,
		"selected":  summary.Selected,
	})
}

func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	report, err := s.authorizeReport(ctx, r, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	db := s.orch.Store()
	outcomes, err := db.OutcomesForReport(ctx, reportID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if len(outcomes) == 0 {
		writeError(w, http.StatusConflict, fmt.Errorf("report %s has no generated outcomes", reportID))
		return
	}
	details := make([]string, len(outcomes))
	for i, outcome := range outcomes {
		details[i] = outcome.Content
	}
	summaryBlock := ""
	if summary, err := db.SummaryForReport(ctx, reportID); err == nil {
		summaryBlock = pov.JoinSummary(summary.SummaryContent, summary.TakeawaysContent)
	}
	document := pov.AssembleReport(metaFromRow(report), details, summaryBlock)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pov_report_"+reportID+".md"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(document))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("user_id query parameter is required"))
		return
	}
	ctx := r.Context()
	db := s.orch.Store()

	// Admins see their whole organization, everyone else their own
	// reports.
	var reports []store.Report
	var err error
	profile, profErr := db.GetProfile(ctx, userID)
	if profErr == nil && profile.Organization != "" &&
		(profile.Role == store.RoleAdmin || profile.Role == store.RoleSuperAdmin) {
		reports, err = db.ListReportsForOrganization(ctx, profile.Organization)
	} else {
		reports, err = db.ListReportsForUser(ctx, userID)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	views := make([]reportView, len(reports))
	for i := range reports {
		views[i] = viewFromRow(&reports[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": views})
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	ctx := r.Context()
	if _, err := s.authorizeReport(ctx, r, reportID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := s.orch.Store().DeleteReport(ctx, reportID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"report_id": reportID, "status": "deleted"})
}

// authorizeReport loads the report and verifies the user_id query
// parameter is allowed to see it.
func (s *Server) authorizeReport(ctx context.Context, r *http.Request, reportID string) (*store.Report, error) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		return nil, pov.ErrForbidden
	}
	db := s.orch.Store()
	report, err := db.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	allowed, err := db.CanAccessReport(ctx, userID, report)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pov.ErrForbidden
	}
	return report, nil
}

func (s *Server) newMeta(req generateRequest) pov.ReportMeta {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.orch.Config().Model
	}
	return pov.ReportMeta{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		VendorName:        req.VendorName,
		VendorURL:         req.VendorURL,
		VendorServices:    req.VendorServices,
		CustomerName:      req.CustomerName,
		CustomerURL:       req.CustomerURL,
		RoleNames:         req.RoleNames,
		RoleContext:       req.RoleContext,
		AdditionalContext: req.AdditionalContext,
		LinkedInURLs:      req.LinkedInURLs,
		ModelName:         model,
		CreatedAt:         time.Now().UTC(),
	}
}

func validateGenerate(req generateRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(req.VendorName) == "" {
		return fmt.Errorf("vendor_name is required")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("target_customer_name is required")
	}
	return nil
}

func titleCount(req generateRequest) int {
	if req.TitleCount > 0 {
		return req.TitleCount
	}
	return pov.DefaultTitleCount
}

func chargeQuota(ctx context.Context, db *store.Store, userID string) {
	if err := db.ChargeQuota(ctx, userID); err != nil {
		common.Logger().Error("api: could not charge quota", "user", userID, "error", err)
	}
}

func metaFromRow(report *store.Report) pov.ReportMeta {
	return pov.ReportMeta{
		ID:                report.ID,
		UserID:            report.UserID,
		VendorName:        report.VendorName,
		VendorURL:         report.VendorURL,
		VendorServices:    report.VendorServices,
		CustomerName:      report.CustomerName,
		CustomerURL:       report.CustomerURL,
		RoleNames:         report.RoleNames,
		RoleContext:       report.RoleContext,
		AdditionalContext: report.AdditionalContext,
		LinkedInURLs:      report.LinkedInURLs,
		ModelName:         report.ModelName,
		CreatedAt:         report.CreatedAt,
	}
}

func gatherFromRow(report *store.Report) pov.GatherRequest {
	return pov.GatherRequest{
		VendorName:        report.VendorName,
		VendorURL:         report.VendorURL,
		VendorServices:    report.VendorServices,
		CustomerName:      report.CustomerName,
		CustomerURL:       report.CustomerURL,
		RolesSoldTo:       report.RoleNames,
		RoleNames:         report.RoleNames,
		RoleContext:       report.RoleContext,
		AdditionalContext: report.AdditionalContext,
		LinkedInURLs:      report.LinkedInURLs,
	}
}

func viewFromRow(report *store.Report) reportView {
	return reportView{
		ID:                report.ID,
		UserID:            report.UserID,
		VendorName:        report.VendorName,
		VendorURL:         report.VendorURL,
		VendorServices:    report.VendorServices,
		CustomerName:      report.CustomerName,
		CustomerURL:       report.CustomerURL,
		RoleNames:         report.RoleNames,
		RoleContext:       report.RoleContext,
		AdditionalContext: report.AdditionalContext,
		LinkedInURLs:      report.LinkedInURLs,
		ModelName:         report.ModelName,
		Status:            report.Status,
		CreatedAt:         report.CreatedAt,
		UpdatedAt:         report.UpdatedAt,
	}
}

func titleViews(titles []store.OutcomeTitle) []titleView {
	views := make([]titleView, len(titles))
	for i, title := range titles {
		views[i] = titleView{Index: title.TitleIndex, Title: title.Title, Selected: title.Selected}
	}
	return views
}
