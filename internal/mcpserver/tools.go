package mcpserver

import (
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// toolDescriptor is one row of the tool catalogue (§6.1): its wire name,
// human description, and JSON Schema for tools/list, generated from the
// argument struct via jsonschema.For the way genx.NewFuncTool does for its
// own function-tool catalogue.
type toolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// bootstrapArgs, writeArgs, ... mirror the tool catalogue table (§6.1)
// exactly: required fields have no `omitempty`/pointer wrapping beyond
// what's needed to distinguish "absent" from "zero value" for optional
// numeric inputs that have meaningful zero values (limit_pinned=0,
// importance=0).
type bootstrapArgs struct {
	LimitPinned     *int   `json:"limit_pinned,omitempty"`
	LimitRecent     *int   `json:"limit_recent,omitempty"`
	WorkspaceHint   string `json:"workspace_hint,omitempty"`
	Mode            string `json:"mode,omitempty"`
	MaxTokens       int    `json:"max_tokens,omitempty"`
	MaxItems        *int   `json:"max_items,omitempty"`
	IncludeSessions bool   `json:"include_sessions,omitempty"`
}

type writeArgs struct {
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	TagsJSON       any    `json:"tags_json,omitempty"`
	Pinned         bool   `json:"pinned,omitempty"`
	ContentCompact string `json:"content_compact,omitempty"`
	WorkspaceHint  string `json:"workspace_hint,omitempty"`
	Importance     *int   `json:"importance,omitempty"`
	Source         string `json:"source,omitempty"`
}

type readArgs struct {
	ID     string `json:"id"`
	Prefer string `json:"prefer,omitempty"`
}

type searchArgs struct {
	Query        string `json:"query"`
	Limit        int    `json:"limit,omitempty"`
	Prefer       string `json:"prefer,omitempty"`
	SnippetChars int    `json:"snippet_chars,omitempty"`
}

type commitSessionArgs struct {
	WorkspaceHint string `json:"workspace_hint"`
	Summary       string `json:"summary"`
	DecisionsJSON any    `json:"decisions_json,omitempty"`
	NextStepsJSON any    `json:"next_steps_json,omitempty"`
}

type lastSessionArgs struct {
	WorkspaceHint string `json:"workspace_hint,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

const (
	toolBootstrap     = "mnemosyne_bootstrap"
	toolWrite         = "mnemosyne_write"
	toolRead          = "mnemosyne_read"
	toolSearch        = "mnemosyne_search"
	toolCommitSession = "mnemosyne_commit_session"
	toolLastSession   = "mnemosyne_last_session"
)

func schemaFor[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic("mcpserver: generating schema for " + reflect.TypeFor[T]().String() + ": " + err.Error())
	}
	return schema
}

// buildCatalogue constructs the tool catalogue once at server startup;
// jsonschema.For panics only on a malformed Go type, never on live input,
// so doing this eagerly at init time is safe.
func buildCatalogue() []toolDescriptor {
	return []toolDescriptor{
		{
			Name:        toolBootstrap,
			Description: "Load pinned and recent memory items plus, optionally, the last session for a workspace.",
			InputSchema: schemaFor[bootstrapArgs](),
		},
		{
			Name:        toolWrite,
			Description: "Create or update a memory item, keyed by (space, kind, title).",
			InputSchema: schemaFor[writeArgs](),
		},
		{
			Name:        toolRead,
			Description: "Read a single memory item by id.",
			InputSchema: schemaFor[readArgs](),
		},
		{
			Name:        toolSearch,
			Description: "Full-text search over memory items, with a substring fallback.",
			InputSchema: schemaFor[searchArgs](),
		},
		{
			Name:        toolCommitSession,
			Description: "Record a session summary for a workspace, chained after the prior session.",
			InputSchema: schemaFor[commitSessionArgs](),
		},
		{
			Name:        toolLastSession,
			Description: "Fetch the most recent sessions recorded for a workspace.",
			InputSchema: schemaFor[lastSessionArgs](),
		},
	}
}
