package memory

import (
	"context"
	"sort"

	"github.com/oveku/mnemosyne/internal/shaper"
)

const (
	defaultLimitPinned = 8
	defaultLimitRecent = 10
	defaultMaxItems    = 15

	minLimitPinned = 0
	maxLimitPinned = 25
	minLimitRecent = 0
	maxLimitRecent = 50
	minMaxItems    = 1
	maxMaxItems    = 50

	charsPerToken = 4
)

// BootstrapParams is the normalised input to Bootstrap; zero values mean
// "use the default" for the *Set fields that distinguish "0" from
// "unset" (limit_pinned=0 is a legitimate request for no pinned items).
type BootstrapParams struct {
	LimitPinned     int
	LimitPinnedSet  bool
	LimitRecent     int
	LimitRecentSet  bool
	WorkspaceHint   string
	Mode            string
	MaxTokens       int
	MaxItems        int
	MaxItemsSet     bool
	IncludeSessions bool
}

// Bootstrap implements bootstrap (§4.4): pinned items always included (up
// to max_items, budget-exempt), remaining slots filled with ranked recent
// items under a character budget, skip-don't-stop.
func (e *Engine) Bootstrap(ctx context.Context, p BootstrapParams, reqCtx RequestContext) (*BootstrapResult, error) {
	limitPinned := defaultLimitPinned
	if p.LimitPinnedSet {
		limitPinned = p.LimitPinned
	}
	limitPinned = clampInt(limitPinned, minLimitPinned, maxLimitPinned)

	limitRecent := defaultLimitRecent
	if p.LimitRecentSet {
		limitRecent = p.LimitRecent
	}
	limitRecent = clampInt(limitRecent, minLimitRecent, maxLimitRecent)

	maxItems := defaultMaxItems
	if p.MaxItemsSet {
		maxItems = p.MaxItems
	}
	maxItems = clampInt(maxItems, minMaxItems, maxMaxItems)

	mode := shaper.BootstrapMode(p.Mode)
	switch mode {
	case shaper.ModeThin, shaper.ModeHybrid, shaper.ModeFull:
	default:
		mode = shaper.ModeFull
	}

	_, allowed := e.resolve(reqCtx)

	pinnedItems, err := e.store.ListPinned(ctx, limitPinned, allowed)
	if err != nil {
		return nil, err
	}

	overfetch := limitRecent * 3
	if alt := maxItems * 2; alt > overfetch {
		overfetch = alt
	}
	recentCandidates, err := e.store.ListRecent(ctx, overfetch, allowed)
	if err != nil {
		return nil, err
	}

	pinnedIDs := make(map[string]bool, len(pinnedItems))
	for _, item := range pinnedItems {
		pinnedIDs[item.ID] = true
	}
	filteredRecent := make([]MemoryItem, 0, len(recentCandidates))
	for _, item := range recentCandidates {
		if !pinnedIDs[item.ID] {
			filteredRecent = append(filteredRecent, item)
		}
	}

	now := e.now()
	sort.SliceStable(filteredRecent, func(i, j int) bool {
		return shaper.Score(toScorable(filteredRecent[i]), p.WorkspaceHint, now) >
			shaper.Score(toScorable(filteredRecent[j]), p.WorkspaceHint, now)
	})

	result := &BootstrapResult{Pinned: make([]BootstrapItem, 0, len(pinnedItems))}

	pinnedSlots := maxItems
	for _, item := range pinnedItems {
		if len(result.Pinned) >= pinnedSlots {
			break
		}
		result.Pinned = append(result.Pinned, shapeBootstrapItem(item, mode))
	}

	remainingSlots := maxItems - len(result.Pinned)
	budget := 0
	if p.MaxTokens > 0 {
		budget = p.MaxTokens * charsPerToken
	}

	used := 0
	for _, item := range filteredRecent {
		if remainingSlots <= 0 {
			break
		}
		shaped := shaper.SelectContent(shaper.SelectableItem{
			Kind:           item.Kind,
			Content:        item.Content,
			ContentCompact: item.ContentCompact,
		}, mode)
		cost := len(shaped) + len(item.Title)

		if budget > 0 && used+cost > budget {
			continue // skip, don't stop: a smaller later item may still fit
		}

		result.Recent = append(result.Recent, BootstrapItem{
			ID:        item.ID,
			Kind:      item.Kind,
			Title:     item.Title,
			Content:   shaped,
			Tags:      item.Tags,
			UpdatedAt: item.UpdatedAt,
			HasFull:   hasFull(item.Content, shaped),
		})
		used += cost
		remainingSlots--
	}

	if p.IncludeSessions {
		sessions, err := e.LastSession(ctx, p.WorkspaceHint, 1, reqCtx)
		if err != nil {
			return nil, err
		}
		if len(sessions) > 0 {
			result.LastSession = &sessions[0]
		}
	}

	return result, nil
}

func shapeBootstrapItem(item MemoryItem, mode shaper.BootstrapMode) BootstrapItem {
	shaped := shaper.SelectContent(shaper.SelectableItem{
		Kind:           item.Kind,
		Content:        item.Content,
		ContentCompact: item.ContentCompact,
	}, mode)
	return BootstrapItem{
		ID:        item.ID,
		Kind:      item.Kind,
		Title:     item.Title,
		Content:   shaped,
		Tags:      item.Tags,
		UpdatedAt: item.UpdatedAt,
		HasFull:   hasFull(item.Content, shaped),
	}
}

func toScorable(item MemoryItem) shaper.Scorable {
	return shaper.Scorable{
		Kind:          item.Kind,
		UpdatedAt:     item.UpdatedAt,
		Importance:    item.Importance,
		WorkspaceHint: item.WorkspaceHint,
	}
}
