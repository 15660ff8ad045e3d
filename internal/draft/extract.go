package draft

// Upstream has wrapped matches in a few different envelopes over time.
var wrapperKeys = []string{"body", "data", "result"}

const maxEnvelopeDepth = 4

var (
	rosterKeys     = []string{"players", "entrantPlayers", "playersList", "roster", "members"}
	playerNameKeys = []string{"name", "displayName", "playerName", "userName", "id"}
	entrantKeys    = []string{"entrantName", "teamName", "name", "entrantId", "id"}

	// any one of these (or a pick/ban key) marks an object as a match record
	matchKeys = []string{"id", "matchId", "status", "state", "entrantA", "entrantB", "teamA", "teamB", "map", "stage", "mode", "gameMode"}
)

// Extract finds the requested match in an upstream response. It prefers the
// candidate whose id equals matchID and otherwise falls back to the first one,
// since upstream often returns a single pre-filtered match without an id.
// false means "no data yet", not an error.
func Extract(raw any, matchID string) (Match, bool) {
	candidates := candidateMatches(raw, 0)
	if len(candidates) == 0 {
		return nil, false
	}

	for _, m := range candidates {
		if id := stringify(m["id"]); id != "" && id == matchID {
			return m, true
		}
	}
	return candidates[0], true
}

func candidateMatches(v any, depth int) []Match {
	if depth > maxEnvelopeDepth {
		return nil
	}

	switch val := v.(type) {
	case []any:
		out := make([]Match, 0, len(val))
		for _, item := range val {
			if obj, ok := item.(map[string]any); ok && len(obj) > 0 {
				out = append(out, Match(obj))
			}
		}
		return out

	case map[string]any:
		if len(val) == 0 {
			return nil
		}
		if _, ok := val["matches"]; ok {
			return candidateMatches(val["matches"], depth+1)
		}
		// a match may carry its own "result" or "data" sub-object
		if looksLikeMatch(val) {
			return []Match{Match(val)}
		}
		for _, key := range wrapperKeys {
			inner, ok := val[key]
			if !ok {
				continue
			}
			switch inner.(type) {
			case map[string]any, []any:
				return candidateMatches(inner, depth+1)
			}
		}
	}

	return nil
}

func looksLikeMatch(m map[string]any) bool {
	for _, keys := range [][]string{matchKeys, pickKeys, banKeys} {
		for _, k := range keys {
			if _, ok := m[k]; ok {
				return true
			}
		}
	}
	return false
}

// sideOf returns the raw entrant object for one side.
func sideOf(m Match, side Side) map[string]any {
	primary, alt := "entrantA", string(SideA)
	if side == SideB {
		primary, alt = "entrantB", string(SideB)
	}
	if obj := extractMap(m, primary); len(obj) > 0 {
		return obj
	}
	return extractMap(m, alt)
}

// Roster lists the display names for one entrant. If no roster list is
// present the entrant's own name or id stands in, so a side never shows up
// with no identity at all (unless upstream gave nothing whatsoever).
func Roster(entrant map[string]any) []string {
	players := []string{}
	for _, key := range rosterKeys {
		list, ok := extractArray(entrant, key)
		if !ok {
			continue
		}
		for _, p := range list {
			var name string
			if obj, ok := p.(map[string]any); ok {
				name = firstString(obj, playerNameKeys...)
			} else {
				name = stringify(p)
			}
			if name != "" {
				players = append(players, name)
			}
		}
		break
	}

	if len(players) == 0 {
		if name := firstString(entrant, entrantKeys...); name != "" {
			players = append(players, name)
		}
	}
	return players
}
