// Package tenant derives the space a request operates in from untrusted
// caller-supplied hints. It mirrors the header convention the rest of the
// ecosystem uses for trust-on-caller identity (X-User-Id), generalized
// here to also carry an explicit X-Space-Id and an allowed-space set.
//
// Nothing here authenticates anything: per spec.md §9, the transport in
// front of this service is responsible for rewriting these headers before
// they reach production traffic.
package tenant

import "strings"

const globalSpace = "global"

// RequestContext carries the untrusted identity hints attached to a single
// tools/call invocation.
type RequestContext struct {
	UserID        string
	SpaceID       string
	AllowedSpaces []string
}

// Resolver derives an effective space id and allowed-space set from a
// RequestContext. MultiTenant is a process-wide flag fixed at startup
// (§4.3): when false, every request resolves to the single global tenant
// regardless of what headers it carries.
type Resolver struct {
	MultiTenant bool
}

// Resolve returns the effective space id and the set of spaces the caller
// may read/write. It never grants access beyond what the caller already
// claimed in rc.
func (r Resolver) Resolve(rc RequestContext) (spaceID string, allowed []string) {
	if !r.MultiTenant {
		// Single-tenant Cypher never writes a space_id onto nodes at all
		// (store.go's singleTenantWriteCypher/singleTenantCommitCypher), so
		// allowed must come back empty here too: spaceFilterParam turns an
		// empty slice into a nil Cypher parameter, which disables the
		// `$spaces IS NULL OR m.space_id IN $spaces` filter entirely rather
		// than matching against a space_id no node actually carries.
		return globalSpace, nil
	}

	spaceID = strings.TrimSpace(rc.SpaceID)
	userID := strings.TrimSpace(rc.UserID)

	switch {
	case spaceID != "":
		// keep as-is
	case userID != "":
		spaceID = "personal:" + userID
	default:
		spaceID = globalSpace
	}

	allowed = nonEmptyTrimmed(rc.AllowedSpaces)
	if len(allowed) == 0 {
		allowed = []string{spaceID}
	}
	return spaceID, allowed
}

func nonEmptyTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FromHeaders builds a RequestContext from the two headers the Tool
// Dispatcher exposes (§4.5, §6.2). When space_id is present, allowed
// defaults to [space_id]; else when user_id is present, allowed defaults
// to ["personal:"+user_id]; else allowed is left empty and Resolve derives
// "global".
func FromHeaders(userID, spaceID string) RequestContext {
	rc := RequestContext{UserID: userID, SpaceID: spaceID}
	switch {
	case strings.TrimSpace(spaceID) != "":
		rc.AllowedSpaces = []string{spaceID}
	case strings.TrimSpace(userID) != "":
		rc.AllowedSpaces = []string{"personal:" + userID}
	}
	return rc
}
