// File path: internal/pov/store.go
package pov

import "context"

// Report lifecycle statuses.
type Status string

const (
	StatusProcessing      Status = "processing"
	StatusTitlesGenerated Status = "titles_generated"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// CanTransition reports whether the lifecycle permits moving from one
// status to another. Completed and failed reports may still move between
// those two states: a selective rerun regenerates outcomes for a finished
// report, and a retry can recover a failed one.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusProcessing:
		return to == StatusTitlesGenerated || to == StatusCompleted || to == StatusFailed
	case StatusTitlesGenerated:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted, StatusFailed:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// SelectedTitle is an outcome title with its stable ordinal position.
type SelectedTitle struct {
	Index    int
	Title    string
	Selected bool
}

// OutcomeDetail is a generated detail body keyed by its outcome position.
type OutcomeDetail struct {
	Index   int
	Title   string
	Content string
}

// Store is the persistence surface the pipeline drives. Implementations
// must give SaveDetails and SaveSummary overwrite semantics: prior rows
// for the report are fully replaced, never merged.
type Store interface {
	CreateReport(ctx context.Context, meta ReportMeta, status Status) error
	UpdateStatus(ctx context.Context, reportID string, status Status) error
	SaveTitles(ctx context.Context, reportID string, titles []string) error
	SaveDetails(ctx context.Context, reportID string, details []OutcomeDetail) error
	SaveSummary(ctx context.Context, reportID, summary, takeaways string) error
	SaveContext(ctx context.Context, reportID string, contextData []byte) error
	LoadContext(ctx context.Context, reportID string) ([]byte, error)
	SelectedTitles(ctx context.Context, reportID string) ([]SelectedTitle, error)
}
