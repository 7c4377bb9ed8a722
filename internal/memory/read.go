package memory

import (
	"context"

	"github.com/oveku/mnemosyne/internal/shaper"
)

// ReadResult is read_memory's response: the full scalar attribute set
// plus both shaped and full content, per §4.4.
type ReadResult struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	ContentCompact string   `json:"content_compact"`
	ContentFull    string   `json:"content_full"`
	Tags           TagsJSON `json:"tags"`
	Pinned         bool     `json:"pinned"`
	Importance     int      `json:"importance"`
	WorkspaceHint  string   `json:"workspace_hint"`
	Source         string   `json:"source"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// ReadMemory implements read_memory (§4.4). Returns nil, nil when the id
// is not found or not visible to the caller's allowed spaces — NotFound
// is not an error (§7).
func (e *Engine) ReadMemory(ctx context.Context, id string, prefer string, reqCtx RequestContext) (*ReadResult, error) {
	_, allowed := e.resolve(reqCtx)

	item, err := e.store.ReadMemoryItem(ctx, id, allowed)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	p := shaper.ContentPrefer(prefer)
	if p != shaper.PreferCompact {
		p = shaper.PreferFull
	}

	shaped := shaper.SelectContentPrefer(shaper.SelectableItem{
		Kind:           item.Kind,
		Content:        item.Content,
		ContentCompact: item.ContentCompact,
	}, p, 400)

	return &ReadResult{
		ID:             item.ID,
		Kind:           item.Kind,
		Title:          item.Title,
		Content:        shaped,
		ContentCompact: item.ContentCompact,
		ContentFull:    item.Content,
		Tags:           item.Tags,
		Pinned:         item.Pinned,
		Importance:     item.Importance,
		WorkspaceHint:  item.WorkspaceHint,
		Source:         item.Source,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}, nil
}
