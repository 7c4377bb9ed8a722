package memory_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oveku/mnemosyne/internal/memory"
)

// fakeStore is an in-memory stand-in for the graph-backed Store,
// mirroring the Cypher semantics of write_memory/search/bootstrap/session
// closely enough to exercise the Engine without a running graph database
// (the same role the teacher's database_fake.NewClient() plays for its
// handler tests).
type fakeStore struct {
	mu       sync.Mutex
	items    []memory.MemoryItem
	sessions []memory.Session
	seq      int

	forceFulltextErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

// visible mirrors the graph store's "$spaces IS NULL OR ... IN $spaces"
// filter: an empty allowed set (single-tenant) matches every item.
func visible(spaceID string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == spaceID {
			return true
		}
	}
	return false
}

func (f *fakeStore) WriteMemoryItem(ctx context.Context, p memory.WriteParams) (memory.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	for i := range f.items {
		it := &f.items[i]
		if it.SpaceID == p.SpaceID && it.Kind == p.Kind && it.Title == p.Title {
			it.Content = p.Content
			it.ContentCompact = p.ContentCompact
			it.Pinned = p.Pinned
			it.Importance = p.Importance
			it.WorkspaceHint = p.WorkspaceHint
			it.Source = p.Source
			it.Tags = p.Tags
			it.UpdatedAt = now
			return memory.WriteResult{OK: true, Action: "updated", ID: it.ID}, nil
		}
	}

	f.seq++
	item := memory.MemoryItem{
		ID:             fmt.Sprintf("item-%d", f.seq),
		SpaceID:        p.SpaceID,
		Kind:           p.Kind,
		Title:          p.Title,
		Content:        p.Content,
		ContentCompact: p.ContentCompact,
		Pinned:         p.Pinned,
		Importance:     p.Importance,
		WorkspaceHint:  p.WorkspaceHint,
		Source:         p.Source,
		Tags:           p.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.items = append(f.items, item)
	return memory.WriteResult{OK: true, Action: "created", ID: item.ID}, nil
}

func (f *fakeStore) ReadMemoryItem(ctx context.Context, id string, allowedSpaces []string) (*memory.MemoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id && visible(it.SpaceID, allowedSpaces) {
			copyItem := it
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SearchFulltext(ctx context.Context, query string, limit int, allowedSpaces []string) ([]memory.SearchRow, error) {
	if f.forceFulltextErr != nil {
		return nil, f.forceFulltextErr
	}
	return f.SearchSubstring(ctx, query, limit, allowedSpaces)
}

func (f *fakeStore) SearchSubstring(ctx context.Context, query string, limit int, allowedSpaces []string) ([]memory.SearchRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := strings.ToLower(query)
	var matches []memory.MemoryItem
	for _, it := range f.items {
		if !visible(it.SpaceID, allowedSpaces) {
			continue
		}
		if strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Content), q) {
			matches = append(matches, it)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].UpdatedAt > matches[j].UpdatedAt })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	rows := make([]memory.SearchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, memory.SearchRow{Item: m})
	}
	return rows, nil
}

func (f *fakeStore) ListPinned(ctx context.Context, limit int, allowedSpaces []string) ([]memory.MemoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []memory.MemoryItem
	for _, it := range f.items {
		if it.Pinned && visible(it.SpaceID, allowedSpaces) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListRecent(ctx context.Context, limit int, allowedSpaces []string) ([]memory.MemoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []memory.MemoryItem
	for _, it := range f.items {
		if visible(it.SpaceID, allowedSpaces) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CommitSession(ctx context.Context, p memory.SessionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	f.sessions = append(f.sessions, memory.Session{
		ID:            fmt.Sprintf("session-%d", f.seq),
		SpaceID:       p.SpaceID,
		WorkspaceHint: p.WorkspaceHint,
		Summary:       p.Summary,
		Decisions:     p.Decisions,
		NextSteps:     p.NextSteps,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	return nil
}

func (f *fakeStore) ListSessions(ctx context.Context, workspaceHint string, limit int, allowedSpaces []string) ([]memory.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []memory.Session
	for _, s := range f.sessions {
		if s.WorkspaceHint == workspaceHint && visible(s.SpaceID, allowedSpaces) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
