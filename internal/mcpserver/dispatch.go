package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oveku/mnemosyne/internal/memory"
	"github.com/oveku/mnemosyne/internal/tenant"
)

const protocolVersion = "2024-11-05"

// serverInfo identifies this dispatcher in the initialize handshake.
var serverInfo = map[string]string{"name": "mnemosyne", "version": "0.1.0"}

// Dispatcher routes JSON-RPC requests to the Memory Engine (§4.5). It
// holds no per-request state; reqCtx is threaded through every call.
type Dispatcher struct {
	engine    *memory.Engine
	catalogue []toolDescriptor
	logger    logr.Logger
}

// NewDispatcher builds the tool catalogue once and binds it to engine.
func NewDispatcher(engine *memory.Engine, log logr.Logger) *Dispatcher {
	return &Dispatcher{engine: engine, catalogue: buildCatalogue(), logger: log}
}

// Handle dispatches a single JSON-RPC request and always returns a
// response value — the caller is responsible for deciding whether an
// error response also carries a non-200 HTTP status.
func (d *Dispatcher) Handle(ctx context.Context, reqCtx tenant.RequestContext, req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return okResponse(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      serverInfo,
		})
	case "notifications/initialized", "initialized", "ping":
		return okResponse(req.ID, map[string]any{})
	case "tools/list":
		return okResponse(req.ID, map[string]any{"tools": d.catalogue})
	case "tools/call":
		return d.handleToolCall(ctx, reqCtx, req)
	default:
		err := fmt.Errorf("%w: unknown method %q", memory.ErrProtocol, req.Method)
		d.logger.Info(err.Error())
		return errResponse(req.ID, codeMethodNotFound, err.Error())
	}
}

func (d *Dispatcher) handleToolCall(ctx context.Context, reqCtx tenant.RequestContext, req rpcRequest) rpcResponse {
	var call toolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		err = fmt.Errorf("%w: malformed tools/call params: %v", memory.ErrProtocol, err)
		d.logger.Info(err.Error())
		return errResponse(req.ID, codeInvalidParams, err.Error())
	}

	result, err := d.invoke(ctx, call, reqCtx)
	if err != nil {
		d.logger.Error(err, "tool call failed", "tool", call.Name)
		return errResponse(req.ID, codeInternalError, err.Error())
	}

	envelope, err := wrapToolResult(result)
	if err != nil {
		return errResponse(req.ID, codeInternalError, "encoding tool result: "+err.Error())
	}
	return okResponse(req.ID, envelope)
}

func (d *Dispatcher) invoke(ctx context.Context, call toolCallParams, reqCtx tenant.RequestContext) (any, error) {
	switch call.Name {
	case toolBootstrap:
		return d.invokeBootstrap(ctx, call.Arguments, reqCtx)
	case toolWrite:
		return d.invokeWrite(ctx, call.Arguments, reqCtx)
	case toolRead:
		return d.invokeRead(ctx, call.Arguments, reqCtx)
	case toolSearch:
		return d.invokeSearch(ctx, call.Arguments, reqCtx)
	case toolCommitSession:
		return d.invokeCommitSession(ctx, call.Arguments, reqCtx)
	case toolLastSession:
		return d.invokeLastSession(ctx, call.Arguments, reqCtx)
	default:
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
}

func (d *Dispatcher) invokeBootstrap(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args bootstrapArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}

	params := memory.BootstrapParams{
		WorkspaceHint:   args.WorkspaceHint,
		Mode:            args.Mode,
		MaxTokens:       args.MaxTokens,
		IncludeSessions: args.IncludeSessions,
	}
	if args.LimitPinned != nil {
		params.LimitPinnedSet, params.LimitPinned = true, *args.LimitPinned
	}
	if args.LimitRecent != nil {
		params.LimitRecentSet, params.LimitRecent = true, *args.LimitRecent
	}
	if args.MaxItems != nil {
		params.MaxItemsSet, params.MaxItems = true, *args.MaxItems
	}

	return d.engine.Bootstrap(ctx, params, reqCtx)
}

func (d *Dispatcher) invokeWrite(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args writeArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}

	tags := memory.EnsureStringList(args.TagsJSON)
	return d.engine.WriteMemory(ctx, args.Kind, args.Title, args.Content, tags, args.Pinned,
		args.ContentCompact, args.WorkspaceHint, args.Importance, args.Source, reqCtx)
}

func (d *Dispatcher) invokeRead(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args readArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.engine.ReadMemory(ctx, args.ID, args.Prefer, reqCtx)
}

func (d *Dispatcher) invokeSearch(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args searchArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.engine.SearchMemory(ctx, args.Query, args.Limit, args.Prefer, args.SnippetChars, reqCtx)
}

func (d *Dispatcher) invokeCommitSession(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args commitSessionArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	decisions := memory.EnsureStringList(args.DecisionsJSON)
	nextSteps := memory.EnsureStringList(args.NextStepsJSON)
	return d.engine.CommitSession(ctx, args.WorkspaceHint, args.Summary, decisions, nextSteps, reqCtx)
}

func (d *Dispatcher) invokeLastSession(ctx context.Context, raw json.RawMessage, reqCtx tenant.RequestContext) (any, error) {
	var args lastSessionArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	return d.engine.LastSession(ctx, args.WorkspaceHint, args.Limit, reqCtx)
}

// unmarshalArgs treats an empty/absent arguments value as all-defaults
// rather than a parse error — every tool in the catalogue has at least
// one all-optional shape at the JSON-RPC layer even when the Engine
// itself requires some fields non-empty (those become ValidationCoerced
// behaviour downstream, not a dispatcher-level rejection).
func unmarshalArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
