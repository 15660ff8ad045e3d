package types

import (
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/draft"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
)

// Draft is the JSON the overlay polls from /draft: the canonical state with
// the latest diff embedded under "_diff".
//
//	{
//	  "status": "in_progress", "map": "...", "mode": "...",
//	  "teamA": {"name": "...", "players": [], "picks": [], "bans": []},
//	  "teamB": {...},
//	  "_diff": {"teamA": {"new_picks": [], "new_bans": []}, "teamB": {...}}
//	}
type Draft struct {
	draft.State
	Diff draft.Diff `json:"_diff"`
}

// SessionInfo describes what the tracker is currently following.
type SessionInfo struct {
	BountyID string        `json:"bounty_id"`
	MatchID  string        `json:"match_id"`
	Phase    tracker.Phase `json:"phase"`
	Version  int           `json:"version"`
	PolledAt *time.Time    `json:"polled_at,omitempty"`
}

func NewDraft(snap tracker.Snapshot) Draft {
	return Draft{State: snap.State, Diff: snap.Diff}
}

func NewSessionInfo(snap tracker.Snapshot, phase tracker.Phase) SessionInfo {
	info := SessionInfo{
		BountyID: snap.Session.BountyID,
		MatchID:  snap.Session.MatchID,
		Phase:    phase,
		Version:  snap.Version,
	}
	if !snap.PolledAt.IsZero() {
		polled := snap.PolledAt
		info.PolledAt = &polled
	}
	return info
}
