// Package memory implements the Memory Engine (§4.4): the
// write/read/search/bootstrap/commit_session/last_session operations,
// the data-model invariants of §3, and the ranking/budgeting policy built
// on internal/shaper and internal/tenant. It talks to the backing store
// only through the Store interface defined here, so it can be exercised
// against an in-memory fake without a running graph database.
package memory

import (
	"encoding/json"

	"github.com/oveku/mnemosyne/internal/tenant"
)

// TagsJSON preserves a literal wire quirk of the tool-result envelope (§9):
// tags is double-encoded, a JSON string containing a JSON array, not a
// native JSON array. Internally it is always an ordered []string.
type TagsJSON []string

func (t TagsJSON) MarshalJSON() ([]byte, error) {
	if t == nil {
		t = []string{}
	}
	inner, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// ValidKinds is the allowed set of MemoryItem kinds (§3). Anything else is
// coerced to "note".
var ValidKinds = map[string]bool{
	"answer":   true,
	"decision": true,
	"pattern":  true,
	"command":  true,
	"note":     true,
}

// MemoryItem is the on-disk contract of §3, minus space_id when running in
// single-tenant mode (the Engine always passes a space id to Store, but the
// single-tenant graph Cypher does not store it, so SpaceID reads back empty).
type MemoryItem struct {
	ID             string
	Kind           string
	Title          string
	Content        string
	ContentCompact string
	CreatedAt      string
	UpdatedAt      string
	Pinned         bool
	Importance     int
	WorkspaceHint  string
	Source         string
	SpaceID        string
	Tags           []string
}

// Session is the §3 Session entity, fully materialised (decisions/next
// steps deserialised back into ordered string sequences).
type Session struct {
	ID            string
	WorkspaceHint string
	Summary       string
	Decisions     []string
	NextSteps     []string
	CreatedAt     string
	SpaceID       string
}

// SearchRow is one row returned by a Store search method, carrying the
// store-reported relevance score (0 for the substring fallback, which has
// no notion of ranked score beyond recency ordering).
type SearchRow struct {
	Item  MemoryItem
	Score float64
}

// SearchResult is the shaped payload §4.4 `search_memory` returns per row.
type SearchResult struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      TagsJSON `json:"tags"`
	Pinned    int      `json:"pinned"`
	UpdatedAt string   `json:"updated_at"`
	HasFull   bool     `json:"has_full"`
}

// BootstrapItem is the shaped payload §4.4 `bootstrap` returns per item
// (pinned or recent).
type BootstrapItem struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      TagsJSON `json:"tags"`
	UpdatedAt string   `json:"updated_at"`
	HasFull   bool     `json:"has_full"`
}

// BootstrapResult is the full bootstrap() response. LastSession is set only
// when include_sessions was requested and the workspace has a session;
// otherwise it is nil and the field is omitted from the JSON.
type BootstrapResult struct {
	Pinned      []BootstrapItem `json:"pinned"`
	Recent      []BootstrapItem `json:"recent"`
	LastSession *Session        `json:"last_session,omitempty"`
}

// WriteResult is write_memory's response.
type WriteResult struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// WriteParams is the normalised input to Store.WriteMemoryItem. Engine
// performs all normalisation (§4.4) before calling the store.
type WriteParams struct {
	SpaceID        string
	Kind           string
	Title          string
	Content        string
	ContentCompact string
	Tags           []string
	Pinned         bool
	Importance     int
	WorkspaceHint  string
	Source         string
	MultiTenant    bool
}

// SessionParams is the normalised input to Store.CommitSession.
type SessionParams struct {
	SpaceID       string
	WorkspaceHint string
	Summary       string
	Decisions     []string
	NextSteps     []string
	MultiTenant   bool
}

// RequestContext is re-exported for callers that only need memory's
// public surface; it is identical to tenant.RequestContext.
type RequestContext = tenant.RequestContext
