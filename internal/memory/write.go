package memory

import (
	"context"
	"strings"

	"github.com/oveku/mnemosyne/internal/shaper"
)

const defaultImportance = 50

// WriteMemory implements write_memory (§4.4): normalises input, then
// upserts the MemoryItem and reconciles its tags in the underlying store.
func (e *Engine) WriteMemory(
	ctx context.Context,
	kind, title, content string,
	tags []string,
	pinned bool,
	contentCompact string,
	workspaceHint string,
	importance *int,
	source string,
	reqCtx RequestContext,
) (WriteResult, error) {
	spaceID, _ := e.resolve(reqCtx)

	p := WriteParams{
		SpaceID:       spaceID,
		Kind:          normaliseKind(kind),
		Title:         strings.TrimSpace(title),
		Content:       strings.TrimSpace(content),
		Tags:          trimNonEmpty(tags),
		Pinned:        pinned,
		WorkspaceHint: strings.TrimSpace(workspaceHint),
		Source:        source,
		MultiTenant:   e.multiTenant(),
	}

	if importance != nil {
		p.Importance = clampInt(*importance, 0, 100)
	} else {
		p.Importance = defaultImportance
	}

	if source == "" {
		p.Source = "agent"
	}

	compact := strings.TrimSpace(contentCompact)
	if compact == "" && p.Content != "" {
		compact = shaper.CompactDefault(p.Content)
	}
	p.ContentCompact = compact

	return e.store.WriteMemoryItem(ctx, p)
}

// normaliseKind lowercases kind and coerces anything outside ValidKinds to
// "note" — never rejected (§3, §7 ValidationCoerced).
func normaliseKind(kind string) string {
	k := strings.ToLower(strings.TrimSpace(kind))
	if !ValidKinds[k] {
		return "note"
	}
	return k
}

func trimNonEmpty(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// EnsureStringList implements the lenient *_json input rule (§6.1): a
// native array is passed through as-is; a string is parsed as JSON and
// kept only if it decodes to an array of strings; anything else becomes
// an empty list. This lives alongside WriteMemory because it is the
// Engine's boundary concern, not the Dispatcher's — the Dispatcher hands
// the Engine whatever the request body contained.
func EnsureStringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				return []string{}
			}
		}
		return out
	case string:
		return parseJSONStringArray(val)
	default:
		return []string{}
	}
}
