package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/oveku/mnemosyne/internal/memory"
)

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// recordToMemoryItem maps a `m` node (plus a `tags` collected column, if
// present) from a Cypher record into a memory.MemoryItem.
func recordToMemoryItem(record *db.Record) (*memory.MemoryItem, error) {
	raw, ok := record.Get("m")
	if !ok {
		return nil, nil
	}
	node, ok := raw.(neo4j.Node)
	if !ok {
		return nil, nil
	}

	item := &memory.MemoryItem{
		ID:             node.ElementId,
		Kind:           stringProp(node.Props, "kind"),
		Title:          stringProp(node.Props, "title"),
		Content:        stringProp(node.Props, "content"),
		ContentCompact: stringProp(node.Props, "content_compact"),
		CreatedAt:      stringProp(node.Props, "created_at"),
		UpdatedAt:      stringProp(node.Props, "updated_at"),
		Pinned:         boolProp(node.Props, "pinned"),
		Importance:     intProp(node.Props, "importance"),
		WorkspaceHint:  stringProp(node.Props, "workspace_hint"),
		Source:         stringProp(node.Props, "source"),
		SpaceID:        stringProp(node.Props, "space_id"),
	}

	if tagsRaw, ok := record.Get("tags"); ok {
		item.Tags = toStringSlice(tagsRaw)
	}

	return item, nil
}

func recordToSession(record *db.Record) (*memory.Session, error) {
	raw, ok := record.Get("s")
	if !ok {
		return nil, nil
	}
	node, ok := raw.(neo4j.Node)
	if !ok {
		return nil, nil
	}

	return &memory.Session{
		ID:            node.ElementId,
		WorkspaceHint: stringProp(node.Props, "workspace_hint"),
		Summary:       stringProp(node.Props, "summary"),
		Decisions:     toStringSlice(node.Props["decisions"]),
		NextSteps:     toStringSlice(node.Props["next_steps"]),
		CreatedAt:     stringProp(node.Props, "created_at"),
		SpaceID:       stringProp(node.Props, "space_id"),
	}, nil
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func boolProp(props map[string]any, key string) bool {
	if v, ok := props[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toStringSlice(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
