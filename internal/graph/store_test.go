package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The single-tenant Cypher must never filter or key on space_id: every
// read path passes allowedSpaces=nil when tenant.Resolver.MultiTenant is
// false (spaceFilterParam turns that into a Cypher NULL, which disables
// the "$spaces IS NULL OR m.space_id IN $spaces" filter). If the
// single-tenant write/commit Cypher ever started setting space_id while
// the read side still didn't scope by it, that would be harmless; the
// inverse — read filtering on a property write never sets — is the bug
// this guards against.
func TestSingleTenantWriteCypherDoesNotSetSpaceID(t *testing.T) {
	assert.NotContains(t, singleTenantWriteCypher, "space_id")
}

func TestSingleTenantCommitCypherDoesNotSetSpaceID(t *testing.T) {
	assert.NotContains(t, singleTenantCommitCypher, "space_id")
}

// The multi-tenant Cypher is the opposite: it must key MemoryItem/Session
// on space_id so the $spaces IN filter used by every read path actually
// matches something.
func TestMultiTenantWriteCypherSetsSpaceID(t *testing.T) {
	assert.Contains(t, multiTenantWriteCypher, "space_id: $space_id")
}

func TestMultiTenantCommitCypherSetsSpaceID(t *testing.T) {
	assert.Contains(t, multiTenantCommitCypher, "space_id: $space_id")
}

func TestSpaceFilterParamDisablesFilterWhenEmpty(t *testing.T) {
	assert.Nil(t, spaceFilterParam(nil))
	assert.Nil(t, spaceFilterParam([]string{}))
	assert.Equal(t, []string{"global"}, spaceFilterParam([]string{"global"}))
}

func TestAllReadCypherRespectsNullSpacesFilter(t *testing.T) {
	// Every read-path query must use the "$spaces IS NULL OR ... IN
	// $spaces" shape rather than a bare IN, so a nil spaces param (the
	// single-tenant case) matches every row instead of none.
	queries := map[string]string{
		"fulltext search":  fulltextSearchCypher,
		"substring search": substringSearchCypher,
		"list pinned":      listPinnedMatchClause,
		"list recent":      listRecentMatchClause,
		"list sessions":    listSessionsCypher,
	}
	for name, cypher := range queries {
		t.Run(name, func(t *testing.T) {
			assert.True(t, strings.Contains(cypher, "$spaces IS NULL OR"))
		})
	}
}
