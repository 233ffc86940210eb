// File path: internal/api/types.go
package api

import (
	"time"

	"github.com/fieldscale/povd/internal/pov"
)

type generateRequest struct {
	UserID     string `json:"user_id"`
	Model      string `json:"model,omitempty"`
	TitleCount int    `json:"title_count,omitempty"`
	pov.GatherRequest
}

type generateResponse struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
	Document string `json:"document"`
}

type titlesResponse struct {
	ReportID string   `json:"report_id"`
	Status   string   `json:"status"`
	Titles   []string `json:"titles"`
}

type selectionRequest struct {
	UserID          string `json:"user_id"`
	SelectedIndices []int  `json:"selected_indices"`
}

type titleView struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

type outcomeView struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type reportView struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	VendorName        string        `json:"vendor_name"`
	VendorURL         string        `json:"vendor_url,omitempty"`
	VendorServices    string        `json:"vendor_services,omitempty"`
	CustomerName      string        `json:"target_customer_name"`
	CustomerURL       string        `json:"target_customer_url,omitempty"`
	RoleNames         string        `json:"role_names,omitempty"`
	RoleContext       string        `json:"role_context,omitempty"`
	AdditionalContext string        `json:"additional_context,omitempty"`
	LinkedInURLs      string        `json:"linkedin_urls,omitempty"`
	ModelName         string        `json:"model_name,omitempty"`
	Status            string        `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Titles            []titleView   `json:"titles,omitempty"`
	Outcomes          []outcomeView `json:"outcomes,omitempty"`
	Summary           string        `json:"summary,omitempty"`
	Takeaways         string        `json:"takeaways,omitempty"`
}

type actorRequest struct {
	UserID string `json:"user_id"`
}

type outreachRequest struct {
	UserID             string `json:"user_id"`
	Scenario           string `json:"scenario"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

type outreachView struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	Scenario  string    `json:"scenario"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Proposal  string    `json:"proposal,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type outreachStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}
