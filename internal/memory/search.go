package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/oveku/mnemosyne/internal/shaper"
)

const (
	defaultSearchLimit  = 8
	minSearchLimit      = 1
	maxSearchLimit      = 25
	defaultSnippetChars = 400
)

// SearchMemory implements search_memory (§4.4). An empty/whitespace-only
// query returns an empty slice; it is not an error.
func (e *Engine) SearchMemory(ctx context.Context, query string, limit int, prefer string, snippetChars int, reqCtx RequestContext) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = clampInt(limit, minSearchLimit, maxSearchLimit)
	if snippetChars <= 0 {
		snippetChars = defaultSnippetChars
	}

	p := shaper.ContentPrefer(prefer)
	if p != shaper.PreferFull {
		p = shaper.PreferCompact
	}

	_, allowed := e.resolve(reqCtx)

	rows, err := e.store.SearchFulltext(ctx, query, limit, allowed)
	if err != nil {
		if !errors.Is(err, ErrStoreTransient) {
			return nil, err
		}
		e.logger.Info("fulltext search failed, falling back to substring match", "error", err.Error())
		rows, err = e.store.SearchSubstring(ctx, query, limit, allowed)
		if err != nil {
			return nil, err
		}
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		item := row.Item
		shaped := shaper.SelectContentPrefer(shaper.SelectableItem{
			Kind:           item.Kind,
			Content:        item.Content,
			ContentCompact: item.ContentCompact,
		}, p, snippetChars)

		pinnedFlag := 0
		if item.Pinned {
			pinnedFlag = 1
		}

		results = append(results, SearchResult{
			ID:        item.ID,
			Kind:      item.Kind,
			Title:     item.Title,
			Content:   shaped,
			Tags:      item.Tags,
			Pinned:    pinnedFlag,
			UpdatedAt: item.UpdatedAt,
			HasFull:   hasFull(item.Content, shaped),
		})
	}
	return results, nil
}

// hasFull reports whether shaped is a strict reduction of full: true iff
// full is non-empty and differs from what was returned.
func hasFull(full, shaped string) bool {
	return full != "" && full != shaped
}
