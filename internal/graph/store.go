package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/oveku/mnemosyne/internal/memory"
)

// Store adapts a Gateway to memory.Store, expressing each operation as the
// Cypher the original Neo4j-backed implementation issues (extended with
// the additional MemoryItem/Space/Tag relationships SPEC_FULL.md adds).
type Store struct {
	gateway *Gateway
}

// NewStore wraps gateway as a memory.Store.
func NewStore(gateway *Gateway) *Store {
	return &Store{gateway: gateway}
}

var _ memory.Store = (*Store)(nil)

func (s *Store) WriteMemoryItem(ctx context.Context, p memory.WriteParams) (memory.WriteResult, error) {
	now := nowISO()

	params := map[string]any{
		"space_id":       p.SpaceID,
		"kind":           p.Kind,
		"title":          p.Title,
		"content":        p.Content,
		"compact":        p.ContentCompact,
		"now":            now,
		"pinned":         p.Pinned,
		"importance":     p.Importance,
		"workspace_hint": p.WorkspaceHint,
		"source":         p.Source,
	}

	cypher := singleTenantWriteCypher
	if p.MultiTenant {
		cypher = multiTenantWriteCypher
	}

	type writeRow struct {
		id     string
		action string
	}

	row, err := ExecuteWrite(ctx, s.gateway, func(tx neo4j.ManagedTransaction) (writeRow, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return writeRow{}, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return writeRow{}, err
		}
		id, _ := record.Get("id")
		action, _ := record.Get("action")
		return writeRow{id: fmt.Sprint(id), action: fmt.Sprint(action)}, nil
	})
	if err != nil {
		return memory.WriteResult{}, fmt.Errorf("%w: write_memory: %v", memory.ErrStoreUnavailable, err)
	}

	if err := s.reconcileTags(ctx, p, row.id); err != nil {
		return memory.WriteResult{}, fmt.Errorf("%w: write_memory tag reconcile: %v", memory.ErrStoreUnavailable, err)
	}

	return memory.WriteResult{OK: true, Action: row.action, ID: row.id}, nil
}

const singleTenantWriteCypher = `
MERGE (m:MemoryItem {kind: $kind, title: $title})
ON CREATE SET m.content = $content, m.content_compact = $compact, m.created_at = $now, m.updated_at = $now,
               m.pinned = $pinned, m.importance = $importance, m.workspace_hint = $workspace_hint, m.source = $source
ON MATCH SET m.content = $content, m.content_compact = $compact, m.updated_at = $now,
              m.pinned = $pinned, m.importance = $importance, m.workspace_hint = $workspace_hint, m.source = $source
WITH m, CASE WHEN m.created_at = $now THEN 'created' ELSE 'updated' END AS action
RETURN elementId(m) AS id, action
`

const multiTenantWriteCypher = `
MERGE (s:Space {id: $space_id})
MERGE (m:MemoryItem {space_id: $space_id, kind: $kind, title: $title})
ON CREATE SET m.content = $content, m.content_compact = $compact, m.created_at = $now, m.updated_at = $now,
               m.pinned = $pinned, m.importance = $importance, m.workspace_hint = $workspace_hint, m.source = $source
ON MATCH SET m.content = $content, m.content_compact = $compact, m.updated_at = $now,
              m.pinned = $pinned, m.importance = $importance, m.workspace_hint = $workspace_hint, m.source = $source
MERGE (s)-[:CONTAINS]->(m)
WITH m, CASE WHEN m.created_at = $now THEN 'created' ELSE 'updated' END AS action
RETURN elementId(m) AS id, action
`

func (s *Store) reconcileTags(ctx context.Context, p memory.WriteParams, id string) error {
	_, err := ExecuteWrite(ctx, s.gateway, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `MATCH (m:MemoryItem) WHERE elementId(m) = $id MATCH (m)-[r:TAGGED_WITH]->() DELETE r`, map[string]any{"id": id}); err != nil {
			return nil, err
		}
		for _, tag := range p.Tags {
			_, err := tx.Run(ctx, `MATCH (m:MemoryItem) WHERE elementId(m) = $id MERGE (t:Tag {name: $tag}) MERGE (m)-[:TAGGED_WITH]->(t)`, map[string]any{"id": id, "tag": tag})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *Store) ReadMemoryItem(ctx context.Context, id string, allowedSpaces []string) (*memory.MemoryItem, error) {
	item, err := ExecuteRead(ctx, s.gateway, func(tx neo4j.ManagedTransaction) (*memory.MemoryItem, error) {
		result, err := tx.Run(ctx, `
			MATCH (m:MemoryItem) WHERE elementId(m) = $id
			OPTIONAL MATCH (m)-[:TAGGED_WITH]->(t:Tag)
			RETURN m, collect(t.name) AS tags
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, nil // not found
		}
		return recordToMemoryItem(record)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read_memory: %v", memory.ErrStoreUnavailable, err)
	}
	if item == nil {
		return nil, nil
	}
	if len(allowedSpaces) > 0 && !spaceAllowed(item.SpaceID, allowedSpaces) {
		return nil, nil
	}
	return item, nil
}

func (s *Store) SearchFulltext(ctx context.Context, query string, limit int, allowedSpaces []string) ([]memory.SearchRow, error) {
	if s.gateway.FulltextDegraded() {
		return nil, fmt.Errorf("%w: fulltext index unavailable", memory.ErrStoreTransient)
	}

	rows, err := ExecuteRead(ctx, s.gateway, func(tx neo4j.ManagedTransaction) ([]memory.SearchRow, error) {
		result, err := tx.Run(ctx, fulltextSearchCypher, map[string]any{"query": query, "spaces": spaceFilterParam(allowedSpaces), "limit": limit})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]memory.SearchRow, 0, len(records))
		for _, record := range records {
			item, err := recordToMemoryItem(record)
			if err != nil {
				return nil, err
			}
			score, _ := record.Get("score")
			scoreF, _ := score.(float64)
			out = append(out, memory.SearchRow{Item: *item, Score: scoreF})
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrStoreTransient, err)
	}
	return rows, nil
}

func (s *Store) SearchSubstring(ctx context.Context, query string, limit int, allowedSpaces []string) ([]memory.SearchRow, error) {
	rows, err := ExecuteRead(ctx, s.gateway, func(tx neo4j.ManagedTransaction) ([]memory.SearchRow, error) {
		result, err := tx.Run(ctx, substringSearchCypher, map[string]any{"query": query, "spaces": spaceFilterParam(allowedSpaces), "limit": limit})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]memory.SearchRow, 0, len(records))
		for _, record := range records {
			item, err := recordToMemoryItem(record)
			if err != nil {
				return nil, err
			}
			out = append(out, memory.SearchRow{Item: *item})
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: substring search: %v", memory.ErrStoreUnavailable, err)
	}
	return rows, nil
}

const fulltextSearchCypher = `
	CALL db.index.fulltext.queryNodes('memory_fulltext', $query) YIELD node, score
	WHERE $spaces IS NULL OR node.space_id IN $spaces
	OPTIONAL MATCH (node)-[:TAGGED_WITH]->(t:Tag)
	WITH node, score, collect(t.name) AS tags
	RETURN node AS m, tags, score
	ORDER BY score DESC
	LIMIT $limit
`

const substringSearchCypher = `
	MATCH (m:MemoryItem)
	WHERE (toLower(m.title) CONTAINS toLower($query) OR toLower(m.content) CONTAINS toLower($query))
	  AND ($spaces IS NULL OR m.space_id IN $spaces)
	OPTIONAL MATCH (m)-[:TAGGED_WITH]->(t:Tag)
	WITH m, collect(t.name) AS tags
	RETURN m, tags
	ORDER BY m.updated_at DESC
	LIMIT $limit
`

const listPinnedMatchClause = `MATCH (m:MemoryItem {pinned: true}) WHERE $spaces IS NULL OR m.space_id IN $spaces`
const listRecentMatchClause = `MATCH (m:MemoryItem) WHERE $spaces IS NULL OR m.space_id IN $spaces`

func (s *Store) ListPinned(ctx context.Context, limit int, allowedSpaces []string) ([]memory.MemoryItem, error) {
	return s.listItems(ctx, listPinnedMatchClause, limit, allowedSpaces)
}

func (s *Store) ListRecent(ctx context.Context, limit int, allowedSpaces []string) ([]memory.MemoryItem, error) {
	return s.listItems(ctx, listRecentMatchClause, limit, allowedSpaces)
}

func (s *Store) listItems(ctx context.Context, matchClause string, limit int, allowedSpaces []string) ([]memory.MemoryItem, error) {
	cypher := matchClause + `
		OPTIONAL MATCH (m)-[:TAGGED_WITH]->(t:Tag)
		WITH m, collect(t.name) AS tags
		RETURN m, tags
		ORDER BY m.updated_at DESC
		LIMIT $limit
	`
	items, err := ExecuteRead(ctx, s.gateway, func(tx neo4j.ManagedTransaction) ([]memory.MemoryItem, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"spaces": spaceFilterParam(allowedSpaces), "limit": limit})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]memory.MemoryItem, 0, len(records))
		for _, record := range records {
			item, err := recordToMemoryItem(record)
			if err != nil {
				return nil, err
			}
			out = append(out, *item)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrStoreUnavailable, err)
	}
	return items, nil
}

func (s *Store) CommitSession(ctx context.Context, p memory.SessionParams) error {
	now := nowISO()
	cypher := singleTenantCommitCypher
	if p.MultiTenant {
		cypher = multiTenantCommitCypher
	}

	_, err := ExecuteWrite(ctx, s.gateway, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, cypher, map[string]any{
			"workspace":   p.WorkspaceHint,
			"summary":     p.Summary,
			"decisions":   p.Decisions,
			"next_steps":  p.NextSteps,
			"now":         now,
			"space_id":    p.SpaceID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: commit_session: %v", memory.ErrStoreUnavailable, err)
	}
	return nil
}

const singleTenantCommitCypher = `
MERGE (w:Workspace {name: $workspace})
CREATE (s:Session {workspace_hint: $workspace, summary: $summary, decisions: $decisions, next_steps: $next_steps, created_at: $now})
CREATE (s)-[:IN_WORKSPACE]->(w)
WITH s, w
OPTIONAL MATCH (prev:Session)-[:IN_WORKSPACE]->(w)
WHERE prev <> s
WITH s, prev
ORDER BY prev.created_at DESC
LIMIT 1
FOREACH (_ IN CASE WHEN prev IS NOT NULL THEN [1] ELSE [] END | CREATE (s)-[:FOLLOWS]->(prev))
`

const multiTenantCommitCypher = `
MERGE (w:Workspace {name: $workspace})
MERGE (sp:Space {id: $space_id})
CREATE (s:Session {workspace_hint: $workspace, summary: $summary, decisions: $decisions, next_steps: $next_steps, created_at: $now, space_id: $space_id})
CREATE (s)-[:IN_WORKSPACE]->(w)
CREATE (s)-[:IN_SPACE]->(sp)
WITH s, w
OPTIONAL MATCH (prev:Session)-[:IN_WORKSPACE]->(w)
WHERE prev <> s AND prev.space_id = $space_id
WITH s, prev
ORDER BY prev.created_at DESC
LIMIT 1
FOREACH (_ IN CASE WHEN prev IS NOT NULL THEN [1] ELSE [] END | CREATE (s)-[:FOLLOWS]->(prev))
`

const listSessionsCypher = `
	MATCH (s:Session {workspace_hint: $workspace})
	WHERE $spaces IS NULL OR s.space_id IN $spaces
	RETURN s
	ORDER BY s.created_at DESC
	LIMIT $limit
`

func (s *Store) ListSessions(ctx context.Context, workspaceHint string, limit int, allowedSpaces []string) ([]memory.Session, error) {
	sessions, err := ExecuteRead(ctx, s.gateway, func(tx neo4j.ManagedTransaction) ([]memory.Session, error) {
		result, err := tx.Run(ctx, listSessionsCypher, map[string]any{"workspace": workspaceHint, "spaces": spaceFilterParam(allowedSpaces), "limit": limit})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]memory.Session, 0, len(records))
		for _, record := range records {
			sess, err := recordToSession(record)
			if err != nil {
				return nil, err
			}
			out = append(out, *sess)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: last_session: %v", memory.ErrStoreUnavailable, err)
	}
	return sessions, nil
}

func spaceFilterParam(allowedSpaces []string) any {
	if len(allowedSpaces) == 0 {
		return nil
	}
	return allowedSpaces
}

func spaceAllowed(spaceID string, allowed []string) bool {
	for _, a := range allowed {
		if a == spaceID {
			return true
		}
	}
	return false
}
