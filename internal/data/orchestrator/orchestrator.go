// File path: internal/data/orchestrator/orchestrator.go
package orchestrator

import (
	"fmt"

	"github.com/fieldscale/povd/internal/config"
	"github.com/fieldscale/povd/internal/documents"
	"github.com/fieldscale/povd/internal/llm"
	"github.com/fieldscale/povd/internal/llm/providers"
	"github.com/fieldscale/povd/internal/pov"
	"github.com/fieldscale/povd/internal/research"
	"github.com/fieldscale/povd/internal/store"
)

type closer interface {
	Close() error
}

// Orchestrator wires together the store, completion provider, research
// services, and pipeline components behind the API layer.
type Orchestrator struct {
	cfg config.Config

	db       *store.Store
	provider providers.Provider

	researcher *research.Researcher
	profiles   *research.ProfileService
	deep       *research.DeepResearcher
	finance    *research.FinanceService
	reader     *documents.Reader

	gatherer    *pov.Gatherer
	pipeline    *pov.Pipeline
	coordinator *pov.Coordinator

	closers []closer
}

// New constructs an orchestrator from the provided configuration and
// optional overrides.
func New(cfg config.Config, opts ...Option) (*Orchestrator, error) {
	settings := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	provider := settings.provider
	if provider == nil {
		built, err := llm.NewProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("init provider: %w", err)
		}
		provider = built
	}

	db := settings.store
	var closers []closer
	if db == nil {
		opened, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		db = opened
		closers = append(closers, opened)
	}

	researcher := research.NewResearcher(provider, cfg.MaxParallel)
	profiles := research.NewProfileService(cfg.ProxycurlKey, cfg.MaxParallel)
	reader := documents.NewReader()
	deep := research.NewDeepResearcher(provider, cfg.MaxParallel)
	finance := research.NewFinanceService(cfg.FinanceAPIKey)

	povStore := &storeAdapter{db: db}
	gatherOpts := []pov.GathererOption{pov.WithDeepResearch(deep)}
	if cfg.FinanceAPIKey != "" {
		gatherOpts = append(gatherOpts, pov.WithMarketData(finance))
	}
	gatherer := pov.NewGatherer(researcher, profiles, &documentAdapter{reader: reader}, gatherOpts...)

	orch := &Orchestrator{
		cfg:         cfg,
		db:          db,
		provider:    provider,
		researcher:  researcher,
		profiles:    profiles,
		deep:        deep,
		finance:     finance,
		reader:      reader,
		gatherer:    gatherer,
		pipeline:    pov.NewPipeline(provider, gatherer, povStore, cfg.MaxParallel),
		coordinator: pov.NewCoordinator(provider, gatherer, povStore, cfg.MaxParallel),
		closers:     closers,
	}
	return orch, nil
}

// Close releases the resources owned by the orchestrator.
func (o *Orchestrator) Close() error {
	if o == nil {
		return nil
	}
	var firstErr error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Store exposes the relational store.
func (o *Orchestrator) Store() *store.Store {
	if o == nil {
		return nil
	}
	return o.db
}

// Provider exposes the completion provider.
func (o *Orchestrator) Provider() providers.Provider {
	if o == nil {
		return nil
	}
	return o.provider
}

// Pipeline exposes the full-workflow pipeline.
func (o *Orchestrator) Pipeline() *pov.Pipeline {
	if o == nil {
		return nil
	}
	return o.pipeline
}

// Coordinator exposes the selective-workflow coordinator.
func (o *Orchestrator) Coordinator() *pov.Coordinator {
	if o == nil {
		return nil
	}
	return o.coordinator
}

// Gatherer exposes the context gatherer.
func (o *Orchestrator) Gatherer() *pov.Gatherer {
	if o == nil {
		return nil
	}
	return o.gatherer
}

// DeepResearcher exposes the question-driven research service.
func (o *Orchestrator) DeepResearcher() *research.DeepResearcher {
	if o == nil {
		return nil
	}
	return o.deep
}

// Finance exposes the public-company quote service.
func (o *Orchestrator) Finance() *research.FinanceService {
	if o == nil {
		return nil
	}
	return o.finance
}

// Documents exposes the upload reader.
func (o *Orchestrator) Documents() *documents.Reader {
	if o == nil {
		return nil
	}
	return o.reader
}

// Config exposes the runtime configuration.
func (o *Orchestrator) Config() config.Config {
	if o == nil {
		return config.Config{}
	}
	return o.cfg
}
