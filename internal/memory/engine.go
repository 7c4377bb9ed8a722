package memory

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/oveku/mnemosyne/internal/tenant"
)

// Engine is the Memory Engine (§4.4). It holds no mutable in-process
// state (§5): MultiTenant is resolved once at construction and never
// re-read per request.
type Engine struct {
	store    Store
	resolver tenant.Resolver
	logger   logr.Logger

	// now is the wall clock; overridable in tests for deterministic
	// created_at/updated_at and recency-weight assertions.
	now func() time.Time
}

// New constructs an Engine against store, scoping every request through
// resolver.
func New(store Store, multiTenant bool, log logr.Logger) *Engine {
	return &Engine{
		store:    store,
		resolver: tenant.Resolver{MultiTenant: multiTenant},
		logger:   log,
		now:      time.Now,
	}
}

func (e *Engine) resolve(ctx RequestContext) (spaceID string, allowed []string) {
	return e.resolver.Resolve(ctx)
}

func (e *Engine) multiTenant() bool {
	return e.resolver.MultiTenant
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
