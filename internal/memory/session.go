package memory

import (
	"context"
	"strings"
)

const (
	defaultSessionLimit = 3
	minSessionLimit     = 1
	maxSessionLimit     = 10
)

// CommitResult is commit_session's response.
type CommitResult struct {
	OK bool `json:"ok"`
}

// CommitSession implements commit_session (§4.4): creates a Session node
// chained via FOLLOWS to the prior most-recent Session in the same
// workspace (and space, multi-tenant).
func (e *Engine) CommitSession(ctx context.Context, workspaceHint, summary string, decisions, nextSteps []string, reqCtx RequestContext) (CommitResult, error) {
	spaceID, _ := e.resolve(reqCtx)

	p := SessionParams{
		SpaceID:       spaceID,
		WorkspaceHint: strings.TrimSpace(workspaceHint),
		Summary:       strings.TrimSpace(summary),
		Decisions:     trimNonEmpty(decisions),
		NextSteps:     trimNonEmpty(nextSteps),
		MultiTenant:   e.multiTenant(),
	}

	if err := e.store.CommitSession(ctx, p); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{OK: true}, nil
}

const globalWorkspace = "global"

// LastSession implements last_session (§4.4): the most recent Sessions
// for a workspace, space-filtered, newest first.
func (e *Engine) LastSession(ctx context.Context, workspaceHint string, limit int, reqCtx RequestContext) ([]Session, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	limit = clampInt(limit, minSessionLimit, maxSessionLimit)

	hint := strings.TrimSpace(workspaceHint)
	if hint == "" {
		hint = globalWorkspace
	}

	_, allowed := e.resolve(reqCtx)
	return e.store.ListSessions(ctx, hint, limit, allowed)
}
