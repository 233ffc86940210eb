// File path: internal/pov/coordinator.go
package pov

import (
	"context"
	"sync"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// Coordinator drives the two-phase selective workflow: Phase 1 gathers
// context and generates titles; after the user marks a selection, Phase 2
// generates details and a summary for exactly the selected subset.
// Workflow runs for the same report are serialized through a keyed mutex
// so a rerun can never interleave its overwrite-deletes with another.
type Coordinator struct {
	provider    providers.Provider
	gatherer    *Gatherer
	store       Store
	maxParallel int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(provider providers.Provider, gatherer *Gatherer, store Store, maxParallel int) *Coordinator {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Coordinator{
		provider:    provider,
		gatherer:    gatherer,
		store:       store,
		maxParallel: maxParallel,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) reportLock(reportID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[reportID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[reportID] = lock
	}
	return lock
}

// Phase1 creates the report, gathers context, generates titles, and
// persists both so Phase 2 never re-gathers under normal operation. The
// report ends in titles_generated, or failed on any stage error.
func (c *Coordinator) Phase1(ctx context.Context, meta ReportMeta, req GatherRequest, titleCount int) ([]string, error) {
	lock := c.reportLock(meta.ID)
	lock.Lock()
	defer lock.Unlock()

	ctx, finish := telemetry.StartSpan(ctx, "pov.phase1")
	defer finish("report", meta.ID)
	logger := common.Logger()
	logger.Info("pov: phase 1 starting", "report", meta.ID, "vendor", meta.VendorName, "customer", meta.CustomerName)

	if err := c.store.CreateReport(ctx, meta, StatusProcessing); err != nil {
		return nil, stageErr("create_report", err)
	}

	titles, err := c.runPhase1(ctx, meta, req, titleCount)
	if err != nil {
		c.markFailed(ctx, meta.ID, err)
		return nil, err
	}
	if err := c.store.UpdateStatus(ctx, meta.ID, StatusTitlesGenerated); err != nil {
		c.markFailed(ctx, meta.ID, err)
		return nil, stageErr("update_status", err)
	}
	logger.Info("pov: phase 1 complete", "report", meta.ID, "titles", len(titles))
	return titles, nil
}

func (c *Coordinator) runPhase1(ctx context.Context, meta ReportMeta, req GatherRequest, titleCount int) ([]string, error) {
	bc, err := c.gatherer.Gather(ctx, req)
	if err != nil {
		return nil, stageErr("gather_context", err)
	}
	titles, err := GenerateTitles(ctx, c.provider, bc, titleCount)
	if err != nil {
		return nil, stageErr("generate_titles", err)
	}
	if err := c.store.SaveTitles(ctx, meta.ID, titles); err != nil {
		return nil, stageErr("save_titles", err)
	}
	encoded, err := bc.Encode()
	if err != nil {
		return nil, stageErr("save_context", err)
	}
	if err := c.store.SaveContext(ctx, meta.ID, encoded); err != nil {
		return nil, stageErr("save_context", err)
	}
	return titles, nil
}

// Phase2 generates details and a summary for the currently selected titles
// and overwrites any previous generation. The persisted context is reused;
// when it is missing or unreadable the gatherer runs again as a fallback.
func (c *Coordinator) Phase2(ctx context.Context, meta ReportMeta, req GatherRequest) ([]OutcomeDetail, error) {
	lock := c.reportLock(meta.ID)
	lock.Lock()
	defer lock.Unlock()

	ctx, finish := telemetry.StartSpan(ctx, "pov.phase2")
	defer finish("report", meta.ID)
	logger := common.Logger()

	details, err := c.runPhase2(ctx, meta, req)
	if err != nil {
		c.markFailed(ctx, meta.ID, err)
		telemetry.RecordReport(true)
		return nil, err
	}
	if err := c.store.UpdateStatus(ctx, meta.ID, StatusCompleted); err != nil {
		c.markFailed(ctx, meta.ID, err)
		telemetry.RecordReport(true)
		return nil, stageErr("update_status", err)
	}
	telemetry.RecordReport(false)
	logger.Info("pov: phase 2 complete", "report", meta.ID, "outcomes", len(details))
	return details, nil
}

func (c *Coordinator) runPhase2(ctx context.Context, meta ReportMeta, req GatherRequest) ([]OutcomeDetail, error) {
	logger := common.Logger()

	bc, err := c.loadOrRegather(ctx, meta.ID, req)
	if err != nil {
		return nil, stageErr("load_context", err)
	}

	stored, err := c.store.SelectedTitles(ctx, meta.ID)
	if err != nil {
		return nil, stageErr("load_selection", err)
	}
	selected := make([]SelectedTitle, 0, len(stored))
	for _, title := range stored {
		if title.Selected {
			selected = append(selected, title)
		}
	}
	// Refuse before any model spend rather than fan out over nothing.
	if len(selected) == 0 {
		return nil, stageErr("load_selection", ErrNoSelection)
	}

	titles := make([]string, len(selected))
	for i, title := range selected {
		titles[i] = title.Title
	}
	texts, err := GenerateDetails(ctx, c.provider, bc, titles, c.maxParallel)
	if err != nil {
		return nil, stageErr("generate_details", err)
	}
	details := make([]OutcomeDetail, len(selected))
	for i, title := range selected {
		details[i] = OutcomeDetail{Index: title.Index, Title: title.Title, Content: texts[i]}
	}
	if err := c.store.SaveDetails(ctx, meta.ID, details); err != nil {
		return nil, stageErr("save_details", err)
	}

	combined := GenerateSummary(ctx, c.provider, bc, len(selected))
	summary, takeaways := SplitSummary(combined)
	if err := c.store.SaveSummary(ctx, meta.ID, summary, takeaways); err != nil {
		return nil, stageErr("save_summary", err)
	}
	logger.Info("pov: selective generation persisted", "report", meta.ID, "selected", len(selected))
	return details, nil
}

func (c *Coordinator) loadOrRegather(ctx context.Context, reportID string, req GatherRequest) (*BackgroundContext, error) {
	logger := common.Logger()
	data, err := c.store.LoadContext(ctx, reportID)
	if err == nil {
		bc, decodeErr := DecodeBackgroundContext(data)
		if decodeErr == nil {
			logger.Debug("pov: reusing persisted context", "report", reportID)
			return bc, nil
		}
		logger.Warn("pov: persisted context unreadable, re-gathering", "report", reportID, "error", decodeErr)
	} else {
		logger.Warn("pov: persisted context unavailable, re-gathering", "report", reportID, "error", err)
	}
	return c.gatherer.Gather(ctx, req)
}

func (c *Coordinator) markFailed(ctx context.Context, reportID string, cause error) {
	logger := common.Logger()
	logger.Error("pov: workflow failed", "report", reportID, "error", cause)
	if err := c.store.UpdateStatus(ctx, reportID, StatusFailed); err != nil {
		logger.Error("pov: could not mark report failed", "report", reportID, "error", err)
	}
}

// Provider exposes the coordinator's completion provider for auxiliary
// generation (outreach emails, proposals).
func (c *Coordinator) Provider() providers.Provider { return c.provider }
