package models

import "time"

// Phase is the coarse tournament state. The only transition is
// PhaseGroup -> PhasePlayoff.
type Phase string

const (
	PhaseGroup   Phase = "group"
	PhasePlayoff Phase = "playoff"
)

type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Format    Format    `json:"format"`
	Date      time.Time `json:"date"`
	Teams     []Team    `json:"teams"`
	Matches   []Match   `json:"matches"`
	CreatedAt time.Time `json:"created_at"`
	Phase     Phase     `json:"phase"`

	// Set only on archived tournaments
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchiveURL string     `json:"archive_url,omitempty"`
}

func (t *Tournament) TeamByID(id string) (Team, bool) {
	for _, team := range t.Teams {
		if team.ID == id {
			return team, true
		}
	}
	return Team{}, false
}

// MatchIndex returns the index of the match with the given id or -1.
func (t *Tournament) MatchIndex(id string) int {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

// MatchesInGroup returns copies of the matches tagged with group, in list order.
func (t *Tournament) MatchesInGroup(group MatchGroup) []Match {
	matches := make([]Match, 0)
	for _, m := range t.Matches {
		if m.Group == group {
			matches = append(matches, m)
		}
	}
	return matches
}

// NextOrder returns the order value that continues the match counter.
func (t *Tournament) NextOrder() int {
	next := 0
	for _, m := range t.Matches {
		if m.Order >= next {
			next = m.Order + 1
		}
	}
	return next
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Teams = append([]Team(nil), t.Teams...)
	c.Matches = append([]Match(nil), t.Matches...)
	if t.ArchivedAt != nil {
		archivedAt := *t.ArchivedAt
		c.ArchivedAt = &archivedAt
	}
	return &c
}
