package draft

type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Side string

const (
	SideA Side = "teamA"
	SideB Side = "teamB"
)

// Team is one side of the draft as the overlay renders it.
type Team struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
	Picks   []string `json:"picks"`
	Bans    []string `json:"bans"`
}

// State is the canonical draft record. Every field is always populated so
// consumers never have to nil-check.
type State struct {
	Status Status `json:"status"`
	Map    string `json:"map"`
	Mode   string `json:"mode"`
	TeamA  Team   `json:"teamA"`
	TeamB  Team   `json:"teamB"`
}

type TeamDiff struct {
	NewPicks []string `json:"new_picks"`
	NewBans  []string `json:"new_bans"`
}

type Diff struct {
	TeamA TeamDiff `json:"teamA"`
	TeamB TeamDiff `json:"teamB"`
}

// Match is a single upstream match record, still in its raw decoded form.
type Match map[string]any

// Resolver turns a raw pick/ban entry into a display identity.
type Resolver interface {
	Resolve(entry any) string
}

func NewEmptyTeam() Team {
	return Team{Players: []string{}, Picks: []string{}, Bans: []string{}}
}

func NewEmptyState() State {
	return State{
		Status: StatusUnknown,
		TeamA:  NewEmptyTeam(),
		TeamB:  NewEmptyTeam(),
	}
}

func NewEmptyDiff() Diff {
	return Diff{
		TeamA: TeamDiff{NewPicks: []string{}, NewBans: []string{}},
		TeamB: TeamDiff{NewPicks: []string{}, NewBans: []string{}},
	}
}

// Clone returns a deep copy so callers can't reach into published slices.
func (s State) Clone() State {
	c := s
	c.TeamA = s.TeamA.clone()
	c.TeamB = s.TeamB.clone()
	return c
}

func (t Team) clone() Team {
	return Team{
		Name:    t.Name,
		Players: cloneStrings(t.Players),
		Picks:   cloneStrings(t.Picks),
		Bans:    cloneStrings(t.Bans),
	}
}

func (d Diff) Clone() Diff {
	return Diff{
		TeamA: TeamDiff{NewPicks: cloneStrings(d.TeamA.NewPicks), NewBans: cloneStrings(d.TeamA.NewBans)},
		TeamB: TeamDiff{NewPicks: cloneStrings(d.TeamB.NewPicks), NewBans: cloneStrings(d.TeamB.NewBans)},
	}
}

// Empty reports whether nothing new appeared on either side.
func (d Diff) Empty() bool {
	return len(d.TeamA.NewPicks) == 0 && len(d.TeamA.NewBans) == 0 &&
		len(d.TeamB.NewPicks) == 0 && len(d.TeamB.NewBans) == 0
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
