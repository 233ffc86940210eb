// File path: internal/store/types.go
package store

import "time"

// Report represents a pov_reports row, the aggregate root.
type Report struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	VendorName        string    `db:"vendor_name"`
	VendorURL         string    `db:"vendor_url"`
	VendorServices    string    `db:"vendor_services"`
	CustomerName      string    `db:"target_customer_name"`
	CustomerURL       string    `db:"target_customer_url"`
	RoleNames         string    `db:"role_names"`
	RoleContext       string    `db:"role_context"`
	AdditionalContext string    `db:"additional_context"`
	LinkedInURLs      string    `db:"linkedin_urls"`
	ModelName         string    `db:"model_name"`
	Status            string    `db:"status"`
	ContextData       []byte    `db:"context_data"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// OutcomeTitle represents a pov_outcome_titles row.
type OutcomeTitle struct {
	ID         int64     `db:"id"`
	ReportID   string    `db:"report_id"`
	TitleIndex int       `db:"title_index"`
	Title      string    `db:"title"`
	Selected   bool      `db:"selected"`
	CreatedAt  time.Time `db:"created_at"`
}

// Outcome represents a pov_outcomes row holding a generated detail body.
type Outcome struct {
	ID           int64     `db:"id"`
	ReportID     string    `db:"report_id"`
	OutcomeIndex int       `db:"outcome_index"`
	Title        string    `db:"title"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
}

// Summary represents the single pov_summary row for a report.
type Summary struct {
	ID               int64     `db:"id"`
	ReportID         string    `db:"report_id"`
	SummaryContent   string    `db:"summary_content"`
	TakeawaysContent string    `db:"takeaways_content"`
	CreatedAt        time.Time `db:"created_at"`
}

// Profile represents a profiles row: user identity, role, and quota.
type Profile struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	Organization string    `db:"organization"`
	ReportQuota  int       `db:"report_quota"`
	ReportsUsed  int       `db:"reports_used"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// OutreachEmail represents an outreach_emails row.
type OutreachEmail struct {
	ID        string    `db:"id"`
	ReportID  string    `db:"report_id"`
	UserID    string    `db:"user_id"`
	Scenario  string    `db:"scenario"`
	Subject   string    `db:"subject"`
	Content   string    `db:"content"`
	Proposal  string    `db:"proposal"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SelectionSummary reports how many titles exist and how many are
// currently selected for a report.
type SelectionSummary struct {
	Total    int `db:"total"`
	Selected int `db:"selected"`
}
