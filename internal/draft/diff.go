package draft

// ComputeDiff reports the picks and bans present in cur but not in prev.
// With no previous state everything in cur counts as new.
func ComputeDiff(prev *State, cur State) Diff {
	if prev == nil {
		return Diff{
			TeamA: TeamDiff{NewPicks: cloneStrings(cur.TeamA.Picks), NewBans: cloneStrings(cur.TeamA.Bans)},
			TeamB: TeamDiff{NewPicks: cloneStrings(cur.TeamB.Picks), NewBans: cloneStrings(cur.TeamB.Bans)},
		}
	}

	return Diff{
		TeamA: TeamDiff{
			NewPicks: newItems(prev.TeamA.Picks, cur.TeamA.Picks),
			NewBans:  newItems(prev.TeamA.Bans, cur.TeamA.Bans),
		},
		TeamB: TeamDiff{
			NewPicks: newItems(prev.TeamB.Picks, cur.TeamB.Picks),
			NewBans:  newItems(prev.TeamB.Bans, cur.TeamB.Bans),
		},
	}
}

// newItems keeps cur's order; duplicates in cur are each reported if absent
// from old.
func newItems(old, cur []string) []string {
	seen := make(map[string]struct{}, len(old))
	for _, v := range old {
		seen[v] = struct{}{}
	}

	out := []string{}
	for _, v := range cur {
		if _, ok := seen[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
