package mcpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oveku/mnemosyne/internal/mcpserver"
	"github.com/oveku/mnemosyne/internal/memory"
)

// fakeStore is a minimal in-memory memory.Store, just enough to drive the
// dispatcher's wire-shape tests without a graph database.
type fakeStore struct {
	mu    sync.Mutex
	items []memory.MemoryItem
	seq   int
}

func (f *fakeStore) WriteMemoryItem(_ context.Context, p memory.WriteParams) (memory.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].Kind == p.Kind && f.items[i].Title == p.Title {
			f.items[i].Content = p.Content
			return memory.WriteResult{OK: true, Action: "updated", ID: f.items[i].ID}, nil
		}
	}
	f.seq++
	item := memory.MemoryItem{ID: fmt.Sprintf("item-%d", f.seq), Kind: p.Kind, Title: p.Title, Content: p.Content, Tags: p.Tags}
	f.items = append(f.items, item)
	return memory.WriteResult{OK: true, Action: "created", ID: item.ID}, nil
}

func (f *fakeStore) ReadMemoryItem(_ context.Context, id string, _ []string) (*memory.MemoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			copyItem := it
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SearchFulltext(ctx context.Context, query string, limit int, allowed []string) ([]memory.SearchRow, error) {
	return f.SearchSubstring(ctx, query, limit, allowed)
}

func (f *fakeStore) SearchSubstring(_ context.Context, _ string, limit int, _ []string) ([]memory.SearchRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]memory.SearchRow, 0, len(f.items))
	for _, it := range f.items {
		rows = append(rows, memory.SearchRow{Item: it})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Item.ID < rows[j].Item.ID })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) ListPinned(context.Context, int, []string) ([]memory.MemoryItem, error) { return nil, nil }
func (f *fakeStore) ListRecent(context.Context, int, []string) ([]memory.MemoryItem, error) { return nil, nil }
func (f *fakeStore) CommitSession(context.Context, memory.SessionParams) error              { return nil }
func (f *fakeStore) ListSessions(context.Context, string, int, []string) ([]memory.Session, error) {
	return nil, nil
}

func newTestServer() *mcpserver.Server {
	engine := memory.New(&fakeStore{}, false, logr.Discard())
	dsp := mcpserver.NewDispatcher(engine, logr.Discard())
	return mcpserver.NewServer(dsp, logr.Discard())
}

func doRPC(t *testing.T, srv *mcpserver.Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestInitialize(t *testing.T) {
	srv := newTestServer()
	rec, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	result := resp["result"].(map[string]any)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
}

func TestPing(t *testing.T) {
	srv := newTestServer()
	_, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":2,"method":"ping"}`)
	assert.NotNil(t, resp["result"])
	assert.Nil(t, resp["error"])
}

func TestToolsList(t *testing.T) {
	srv := newTestServer()
	_, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	result := resp["result"].(map[string]any)
	tools := result["tools"].([]any)
	assert.Len(t, tools, 6)
}

func TestToolsCall_Write(t *testing.T) {
	srv := newTestServer()
	_, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"mnemosyne_write","arguments":{"kind":"note","title":"T","content":"C"}}}`)
	require.Nil(t, resp["error"])
	result := resp["result"].(map[string]any)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])

	var written memory.WriteResult
	require.NoError(t, json.Unmarshal([]byte(block["text"].(string)), &written))
	assert.True(t, written.OK)
	assert.Equal(t, "created", written.Action)
}

func TestUnknownMethod(t *testing.T) {
	srv := newTestServer()
	_, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":5,"method":"bogus"}`)
	require.NotNil(t, resp["error"])
	errObj := resp["error"].(map[string]any)
	assert.EqualValues(t, -32601, errObj["code"])
}

func TestUnknownPath404(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEmptyQuery(t *testing.T) {
	srv := newTestServer()
	_, resp := doRPC(t, srv, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"mnemosyne_search","arguments":{"query":"   "}}}`)
	require.Nil(t, resp["error"])
	result := resp["result"].(map[string]any)
	content := result["content"].([]any)
	block := content[0].(map[string]any)
	assert.Equal(t, "[]", block["text"])
}
