// Package graph is the Graph Gateway (§4.1): connection lifecycle,
// session-per-operation, idempotent schema installs, and typed query
// execution against the backing labelled-property-graph store. The Gateway
// itself owns no business logic — the Cypher that expresses
// write/read/search/bootstrap semantics lives in store.go, whose Store
// implements memory.Store on top of the generic ExecuteRead/ExecuteWrite
// helpers defined here.
package graph

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/oveku/mnemosyne/internal/memory"
)

// Config is the Gateway's immutable connection configuration, fixed at
// startup per §5 ("Shared resources").
type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

// Gateway wraps a neo4j driver instance. A single Gateway is shared,
// read-only, across all request goroutines.
type Gateway struct {
	driver neo4j.DriverWithContext
	config Config
	logger logr.Logger

	// fulltextDegraded is set when the fulltext index could not be
	// created at startup; search_memory consults it to skip straight to
	// the substring fallback instead of paying for a failing query.
	fulltextDegraded bool
}

// New opens a driver and verifies connectivity. Returns memory.ErrStoreUnavailable if
// the driver cannot be constructed or the backing store does not respond.
func New(ctx context.Context, cfg Config, log logr.Logger) (*Gateway, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrStoreUnavailable, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrStoreUnavailable, err)
	}

	g := &Gateway{driver: driver, config: cfg, logger: log}

	if err := g.probe(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	return g, nil
}

// probe runs a trivial query to confirm the connection is usable beyond
// the bolt handshake, per §4.1.
func (g *Gateway) probe(ctx context.Context) error {
	_, err := ExecuteRead(ctx, g, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, "RETURN 1 AS ok", nil)
		if err != nil {
			return nil, err
		}
		_, err = result.Single(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: probe query failed: %v", memory.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying driver.
func (g *Gateway) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// FulltextDegraded reports whether the fulltext index failed to install;
// search_memory uses this to decide whether to attempt the fulltext path.
func (g *Gateway) FulltextDegraded() bool {
	return g.fulltextDegraded
}

func (g *Gateway) session(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.config.Database})
}

// ExecuteWrite runs work in a single write transaction on its own
// short-lived session, closing the session before returning. Generic so
// callers get a typed result without repeating `any` casts.
func ExecuteWrite[T any](ctx context.Context, g *Gateway, work func(tx neo4j.ManagedTransaction) (T, error)) (T, error) {
	var zero T
	session := g.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("graph: unexpected result type %T", result)
	}
	return typed, nil
}

// ExecuteRead runs work in a single read transaction on its own
// short-lived session, closing the session before returning.
func ExecuteRead[T any](ctx context.Context, g *Gateway, work func(tx neo4j.ManagedTransaction) (T, error)) (T, error) {
	var zero T
	session := g.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("graph: unexpected result type %T", result)
	}
	return typed, nil
}

// schemaStatement is one idempotent DDL-equivalent Cypher statement.
// degradeOnFailure statements are logged as a warning and otherwise
// ignored (used for the fulltext index, which not every deployment
// supports); all others abort Initialize.
type schemaStatement struct {
	cypher           string
	degradeOnFailure bool
	onFailure        func()
}

// Initialize installs the schema named in §4.1: secondary indices, the
// fulltext index, and uniqueness constraints. All statements use `IF NOT
// EXISTS` and are safe to run on every startup.
func (g *Gateway) Initialize(ctx context.Context) error {
	statements := []schemaStatement{
		{cypher: `CREATE INDEX memory_item_kind_title IF NOT EXISTS FOR (m:MemoryItem) ON (m.kind, m.title)`},
		{cypher: `CREATE INDEX memory_item_pinned IF NOT EXISTS FOR (m:MemoryItem) ON (m.pinned)`},
		{cypher: `CREATE INDEX memory_item_updated IF NOT EXISTS FOR (m:MemoryItem) ON (m.updated_at)`},
		{cypher: `CREATE INDEX memory_item_workspace IF NOT EXISTS FOR (m:MemoryItem) ON (m.workspace_hint)`},
		{cypher: `CREATE INDEX memory_item_space_kind_title IF NOT EXISTS FOR (m:MemoryItem) ON (m.space_id, m.kind, m.title)`},
		{
			cypher:           `CREATE FULLTEXT INDEX memory_fulltext IF NOT EXISTS FOR (m:MemoryItem) ON EACH [m.title, m.content, m.content_compact]`,
			degradeOnFailure: true,
			onFailure:        func() { g.fulltextDegraded = true },
		},
		{cypher: `CREATE CONSTRAINT tag_name_unique IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`},
		{cypher: `CREATE CONSTRAINT workspace_name_unique IF NOT EXISTS FOR (w:Workspace) REQUIRE w.name IS UNIQUE`},
		{cypher: `CREATE CONSTRAINT space_id_unique IF NOT EXISTS FOR (s:Space) REQUIRE s.id IS UNIQUE`},
		{cypher: `CREATE INDEX session_created IF NOT EXISTS FOR (s:Session) ON (s.created_at)`},
		{cypher: `CREATE INDEX session_workspace IF NOT EXISTS FOR (s:Session) ON (s.workspace_hint)`},
		{cypher: `CREATE INDEX session_space IF NOT EXISTS FOR (s:Session) ON (s.space_id)`},
	}

	var warnings *multierror.Error
	for _, stmt := range statements {
		_, err := ExecuteWrite(ctx, g, func(tx neo4j.ManagedTransaction) (any, error) {
			_, runErr := tx.Run(ctx, stmt.cypher, nil)
			return nil, runErr
		})
		if err != nil {
			if stmt.degradeOnFailure {
				g.logger.Info("schema statement degraded to warning", "cypher", stmt.cypher, "error", err.Error())
				if stmt.onFailure != nil {
					stmt.onFailure()
				}
				warnings = multierror.Append(warnings, err)
				continue
			}
			return fmt.Errorf("%w: schema install failed: %v", memory.ErrStoreUnavailable, err)
		}
	}

	if warnings != nil {
		g.logger.Info("schema install completed with degraded features", "warnings", warnings.Error())
	}
	return nil
}
