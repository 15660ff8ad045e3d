package draft

import "strings"

// Field names are tried in order; the first one carrying data wins and later
// names are not merged in, even when they disagree.
var (
	pickKeys = []string{"picks", "selected", "selectedBrawlers", "pickIds", "selected_brawlers"}
	banKeys  = []string{"bans", "banIds", "banned", "bannedBrawlers"}

	sideAKeys = []string{"teamA", "entrantA", "a"}
	sideBKeys = []string{"teamB", "entrantB", "b"}

	teamNameKeys = []string{"entrantName", "teamName", "name"}
	teamIDKeys   = []string{"entrantId", "id"}
)

var statusAliases = map[string]Status{
	"in_progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"in-progress": StatusInProgress,
	"live":        StatusInProgress,
	"started":     StatusInProgress,
	"ongoing":     StatusInProgress,
	"running":     StatusInProgress,
	"scheduled":   StatusScheduled,
	"pending":     StatusScheduled,
	"upcoming":    StatusScheduled,
	"not_started": StatusScheduled,
	"created":     StatusScheduled,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"finished":    StatusCompleted,
	"done":        StatusCompleted,
	"final":       StatusCompleted,
	"closed":      StatusCompleted,
}

// Normalize builds the canonical State from a raw match. It never fails: a
// nil match gives the all-defaults state, and any field of the wrong shape
// falls back to its default.
func Normalize(m Match, r Resolver) State {
	s := NewEmptyState()
	if m == nil {
		return s
	}
	if r == nil {
		r = plainResolver{}
	}

	s.Status = ParseStatus(m["status"])
	s.Map = nameOf(firstPresent(m, "map", "stage"))
	s.Mode = nameOf(firstPresent(m, "mode", "gameMode"))

	entrantA := sideOf(m, SideA)
	entrantB := sideOf(m, SideB)
	s.TeamA.Name = teamName(entrantA)
	s.TeamB.Name = teamName(entrantB)
	s.TeamA.Players = Roster(entrantA)
	s.TeamB.Players = Roster(entrantB)

	pA, pB := splitBySide(m, pickKeys)
	bA, bB := splitBySide(m, banKeys)
	s.TeamA.Picks = resolveAll(pA, r)
	s.TeamB.Picks = resolveAll(pB, r)
	s.TeamA.Bans = resolveAll(bA, r)
	s.TeamB.Bans = resolveAll(bB, r)

	return s
}

// ParseStatus maps an upstream status (string or {"name": ...}) onto the
// canonical enum. Unrecognized values are reported as unknown.
func ParseStatus(v any) Status {
	raw := v
	if obj, ok := v.(map[string]any); ok {
		raw = firstPresent(obj, "name", "state", "type")
	}
	key := strings.ToLower(strings.TrimSpace(stringify(raw)))
	key = strings.ReplaceAll(key, " ", "_")
	if st, ok := statusAliases[key]; ok {
		return st
	}
	return StatusUnknown
}

func teamName(entrant map[string]any) string {
	if name := firstString(entrant, teamNameKeys...); name != "" {
		return name
	}
	return firstString(entrant, teamIDKeys...)
}

// splitBySide returns the raw A/B entries for one category (picks or bans).
// An object is split by side key, a bare list belongs to side A.
func splitBySide(m Match, keys []string) (a, b []any) {
	for _, key := range keys {
		v := m[key]
		if !hasData(v) {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			a = asList(firstPresent(val, sideAKeys...))
			b = asList(firstPresent(val, sideBKeys...))
		case []any:
			a = val
		}
		return a, b
	}
	return nil, nil
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v := m[key]; hasData(v) {
			return v
		}
	}
	return nil
}

func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	default:
		return []any{val}
	}
}

func resolveAll(entries []any, r Resolver) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.Resolve(e))
	}
	return out
}

// plainResolver stringifies entries without an identity map.
type plainResolver struct{}

func (plainResolver) Resolve(entry any) string {
	if obj, ok := entry.(map[string]any); ok {
		return firstString(obj, "name", "brawlerName", "brawler", "slug", "id", "brawlerId")
	}
	return stringify(entry)
}
