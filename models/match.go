package models

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusFinished  MatchStatus = "finished"
)

// MatchGroup tags a match with the stage it belongs to. The empty value
// marks a flat round-robin match.
type MatchGroup string

const (
	GroupNone       MatchGroup = ""
	GroupA          MatchGroup = "A"
	GroupB          MatchGroup = "B"
	GroupSemifinal  MatchGroup = "semifinal"
	GroupThirdPlace MatchGroup = "third-place"
	GroupFinal      MatchGroup = "final"
)

// IsGroupStage reports whether the group belongs to pool play.
func (g MatchGroup) IsGroupStage() bool {
	return g == GroupNone || g == GroupA || g == GroupB
}

type Match struct {
	ID      string      `json:"id"`
	TeamAID string      `json:"team_a_id"`
	TeamBID string      `json:"team_b_id"`
	ScoreA  int         `json:"score_a"`
	ScoreB  int         `json:"score_b"`
	Status  MatchStatus `json:"status"`
	Group   MatchGroup  `json:"group,omitempty"`
	Order   int         `json:"order"`
}

func (m Match) IsFinished() bool {
	return m.Status == MatchStatusFinished
}

// HasTeams reports whether both bracket slots are filled.
func (m Match) HasTeams() bool {
	return m.TeamAID != "" && m.TeamBID != ""
}

func (m Match) TotalGoals() int {
	return m.ScoreA + m.ScoreB
}

func (m Match) GoalDifference() int {
	if m.ScoreA > m.ScoreB {
		return m.ScoreA - m.ScoreB
	}
	return m.ScoreB - m.ScoreA
}
