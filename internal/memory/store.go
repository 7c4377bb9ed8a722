package memory

import "context"

// Store is the Memory Engine's sole dependency on a backing graph store.
// internal/graph implements it against Neo4j; tests in this package use an
// in-memory fake. Every method opens and releases its own short-lived unit
// of work (§5) — Store implementations must not hold state across calls
// beyond the connection itself.
type Store interface {
	// WriteMemoryItem upserts a MemoryItem keyed by the dedup tuple and
	// reconciles its TAGGED_WITH edges to exactly p.Tags.
	WriteMemoryItem(ctx context.Context, p WriteParams) (WriteResult, error)

	// ReadMemoryItem looks up a MemoryItem by opaque id, scoped to
	// allowedSpaces when multi-tenant. Returns nil, nil when not found.
	ReadMemoryItem(ctx context.Context, id string, allowedSpaces []string) (*MemoryItem, error)

	// SearchFulltext runs the primary full-text query. Returns
	// ErrStoreTransient (wrapped) if the query itself fails so the
	// caller can fall back to SearchSubstring.
	SearchFulltext(ctx context.Context, query string, limit int, allowedSpaces []string) ([]SearchRow, error)

	// SearchSubstring is the degraded fallback: case-insensitive
	// substring match on title/content, ordered by updated_at desc.
	SearchSubstring(ctx context.Context, query string, limit int, allowedSpaces []string) ([]SearchRow, error)

	// ListPinned returns pinned MemoryItems ordered by updated_at desc.
	ListPinned(ctx context.Context, limit int, allowedSpaces []string) ([]MemoryItem, error)

	// ListRecent returns non-filtered-by-pin MemoryItems ordered by
	// updated_at desc, over-fetched by the caller as needed.
	ListRecent(ctx context.Context, limit int, allowedSpaces []string) ([]MemoryItem, error)

	// CommitSession creates a Session node, links it to its Workspace
	// (and Space, multi-tenant), and chains it via FOLLOWS to the prior
	// most-recent Session in the same workspace/space.
	CommitSession(ctx context.Context, p SessionParams) error

	// ListSessions returns Sessions for a workspace (space-filtered)
	// ordered by created_at desc.
	ListSessions(ctx context.Context, workspaceHint string, limit int, allowedSpaces []string) ([]Session, error)
}
