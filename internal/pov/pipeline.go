// File path: internal/pov/pipeline.go
package pov

import (
	"context"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/common/telemetry"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// Pipeline runs the full non-selective workflow: gather, titles, details
// for every title, summary, assembly, in a single pass.
type Pipeline struct {
	provider    providers.Provider
	gatherer    *Gatherer
	store       Store
	maxParallel int
}

// NewPipeline wires the full workflow. The store is optional: with a nil
// store the pipeline still generates and assembles, it just persists
// nothing.
func NewPipeline(provider providers.Provider, gatherer *Gatherer, store Store, maxParallel int) *Pipeline {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Pipeline{provider: provider, gatherer: gatherer, store: store, maxParallel: maxParallel}
}

// GenerateFull produces the complete assembled report document.
func (p *Pipeline) GenerateFull(ctx context.Context, meta ReportMeta, req GatherRequest, titleCount int) (string, error) {
	ctx, finish := telemetry.StartSpan(ctx, "pov.full")
	defer finish("report", meta.ID)
	logger := common.Logger()
	logger.Info("pov: full generation starting", "report", meta.ID, "vendor", meta.VendorName, "customer", meta.CustomerName)

	if p.store != nil {
		if err := p.store.CreateReport(ctx, meta, StatusProcessing); err != nil {
			return "", stageErr("create_report", err)
		}
	}
	document, err := p.generate(ctx, meta, req, titleCount)
	if err != nil {
		if p.store != nil {
			if statusErr := p.store.UpdateStatus(ctx, meta.ID, StatusFailed); statusErr != nil {
				logger.Error("pov: could not mark report failed", "report", meta.ID, "error", statusErr)
			}
		}
		telemetry.RecordReport(true)
		return "", err
	}
	if p.store != nil {
		if err := p.store.UpdateStatus(ctx, meta.ID, StatusCompleted); err != nil {
			telemetry.RecordReport(true)
			return "", stageErr("update_status", err)
		}
	}
	telemetry.RecordReport(false)
	logger.Info("pov: full generation complete", "report", meta.ID)
	return document, nil
}

func (p *Pipeline) generate(ctx context.Context, meta ReportMeta, req GatherRequest, titleCount int) (string, error) {
	bc, err := p.gatherer.Gather(ctx, req)
	if err != nil {
		return "", stageErr("gather_context", err)
	}
	titles, err := GenerateTitles(ctx, p.provider, bc, titleCount)
	if err != nil {
		return "", stageErr("generate_titles", err)
	}
	if p.store != nil {
		if err := p.store.SaveTitles(ctx, meta.ID, titles); err != nil {
			return "", stageErr("save_titles", err)
		}
	}

	texts, err := GenerateDetails(ctx, p.provider, bc, titles, p.maxParallel)
	if err != nil {
		return "", stageErr("generate_details", err)
	}
	if p.store != nil {
		details := make([]OutcomeDetail, len(titles))
		for i := range titles {
			details[i] = OutcomeDetail{Index: i, Title: titles[i], Content: texts[i]}
		}
		if err := p.store.SaveDetails(ctx, meta.ID, details); err != nil {
			return "", stageErr("save_details", err)
		}
	}

	combined := GenerateSummary(ctx, p.provider, bc, len(titles))
	if p.store != nil {
		summary, takeaways := SplitSummary(combined)
		if err := p.store.SaveSummary(ctx, meta.ID, summary, takeaways); err != nil {
			return "", stageErr("save_summary", err)
		}
	}
	return AssembleReport(meta, texts, combined), nil
}
