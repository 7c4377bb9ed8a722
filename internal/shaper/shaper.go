// Package shaper implements the pure, dependency-free content-ranking and
// budgeting functions the Memory Engine uses to keep agent context windows
// uncluttered: compaction, recency decay, per-item scoring, and
// mode-driven content selection (§4.2).
package shaper

import (
	"math"
	"strings"
	"time"
)

const defaultCompactMax = 200

// Compact trims content and, if it exceeds max runes, cuts it at the last
// sentence-like boundary in the trailing half and appends an ellipsis.
// Deterministic: the same input always produces the same output.
func Compact(content string, max int) string {
	if max <= 0 {
		max = defaultCompactMax
	}
	trimmed := strings.TrimSpace(content)
	if len([]rune(trimmed)) <= max {
		return trimmed
	}

	runes := []rune(trimmed)
	cut := string(runes[:max])

	midpoint := max / 2
	bestIdx := -1
	for _, sep := range []string{"\n", ". ", "! ", "? "} {
		if idx := strings.LastIndex(cut, sep); idx > bestIdx && idx >= midpoint {
			bestIdx = idx
			cut = cut[:idx+len(sep)]
		}
	}

	return strings.TrimRight(cut, " \t\n") + "…"
}

// CompactDefault compacts content to the default 200-rune budget.
func CompactDefault(content string) string {
	return Compact(content, defaultCompactMax)
}

// RecencyWeight computes an exponential half-life decay over the age of
// updatedAt (ISO-8601 UTC), half-life 14 days. A value that fails to parse
// returns the neutral weight 0.5.
func RecencyWeight(updatedAt string, now time.Time) float64 {
	parsed, err := parseTimestamp(updatedAt)
	if err != nil {
		return 0.5
	}
	ageDays := now.UTC().Sub(parsed.UTC()).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Pow(0.5, ageDays/14)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidTimestamp
}

var errInvalidTimestamp = timestampError("invalid timestamp")

type timestampError string

func (e timestampError) Error() string { return string(e) }

var kindWeights = map[string]float64{
	"decision": 1.4,
	"pattern":  1.3,
	"command":  1.2,
	"answer":   1.1,
	"note":     0.7,
}

const defaultKindWeight = 0.7

func kindWeight(kind string) float64 {
	if w, ok := kindWeights[kind]; ok {
		return w
	}
	return defaultKindWeight
}

// Scorable is the minimal item shape Score needs; the Memory Engine builds
// one from each MemoryItem it ranks.
type Scorable struct {
	Kind          string
	UpdatedAt     string
	Importance    int
	WorkspaceHint string
}

// Score ranks an item for bootstrap/search ordering: kind weight × recency
// decay × importance factor × workspace-affinity weight.
func Score(item Scorable, workspaceHint string, now time.Time) float64 {
	kw := kindWeight(item.Kind)
	rw := RecencyWeight(item.UpdatedAt, now)
	importanceFactor := 0.5 + float64(item.Importance)/100

	var workspaceWeight float64 = 1.0
	if workspaceHint != "" && workspaceHint != "global" {
		switch {
		case item.WorkspaceHint == workspaceHint:
			workspaceWeight = 1.2
		case item.WorkspaceHint != "":
			workspaceWeight = 0.8
		}
	}

	return kw * rw * importanceFactor * workspaceWeight
}

// BootstrapMode / ContentPrefer are the tagged content-selection policies
// named in spec.md §9.
type BootstrapMode string

const (
	ModeThin   BootstrapMode = "thin"
	ModeHybrid BootstrapMode = "hybrid"
	ModeFull   BootstrapMode = "full"
)

type ContentPrefer string

const (
	PreferCompact ContentPrefer = "compact"
	PreferFull    ContentPrefer = "full"
)

// SelectableItem is the minimal item shape SelectContent needs.
type SelectableItem struct {
	Kind           string
	Content        string
	ContentCompact string
}

// SelectContent implements the mode-driven content-selection policy §4.2.
func SelectContent(item SelectableItem, mode BootstrapMode) string {
	switch mode {
	case ModeFull:
		return item.Content
	case ModeHybrid:
		if isShortForm(item.Kind) && len([]rune(item.Content)) <= 300 {
			return item.Content
		}
		return thinContent(item)
	case ModeThin:
		fallthrough
	default:
		return thinContent(item)
	}
}

func isShortForm(kind string) bool {
	return kind == "command" || kind == "pattern"
}

func thinContent(item SelectableItem) string {
	if item.ContentCompact != "" {
		return item.ContentCompact
	}
	return CompactDefault(item.Content)
}

// SelectContentPrefer implements read_memory/search_memory's `prefer`
// selection, which differs from bootstrap's mode in vocabulary only:
// "full" returns the full body, "compact" returns the compact form
// (falling back to a fresh compaction with the given snippet length).
func SelectContentPrefer(item SelectableItem, prefer ContentPrefer, snippetChars int) string {
	if prefer == PreferCompact {
		if item.ContentCompact != "" {
			return item.ContentCompact
		}
		return Compact(item.Content, snippetChars)
	}
	return item.Content
}

// EstimateTokens approximates token count as ⌈len/4⌉, the same rough
// heuristic used throughout the budgeting logic.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}
