// File path: internal/data/orchestrator/options.go
package orchestrator

import (
	"github.com/fieldscale/povd/internal/llm/providers"
	"github.com/fieldscale/povd/internal/store"
)

type Option func(*options)

type options struct {
	provider providers.Provider
	store    *store.Store
}

// WithProvider injects a completion provider. Primarily used in tests.
func WithProvider(provider providers.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithStore injects a pre-opened store; the orchestrator will not close
// it.
func WithStore(db *store.Store) Option {
	return func(o *options) {
		o.store = db
	}
}
