package standings

import "github.com/Dosada05/foosball-tournament/models"

// TopScorer returns the entry with the most goals scored.
func TopScorer(stats []models.TeamStats) (models.TeamStats, bool) {
	return maxBy(stats, func(s models.TeamStats) int { return s.GoalsFor })
}

// MostConceded returns the entry with the most goals conceded.
func MostConceded(stats []models.TeamStats) (models.TeamStats, bool) {
	return maxBy(stats, func(s models.TeamStats) int { return s.GoalsAgainst })
}

func maxBy(stats []models.TeamStats, key func(models.TeamStats) int) (models.TeamStats, bool) {
	if len(stats) == 0 {
		return models.TeamStats{}, false
	}
	best := stats[0]
	for _, s := range stats[1:] {
		if key(s) > key(best) {
			best = s
		}
	}
	return best, true
}

// MatchHighlights are the notable finished matches of a tournament.
type MatchHighlights struct {
	MostGoals       *models.Match `json:"most_goals,omitempty"`
	BiggestVictory  *models.Match `json:"biggest_victory,omitempty"`
	FinishedMatches int           `json:"finished_matches"`
	TotalGoals      int           `json:"total_goals"`
}

// Highlights scans finished matches for the highest scoring one and the one
// with the widest margin. The first match encountered wins a tie.
func Highlights(matches []models.Match) MatchHighlights {
	var h MatchHighlights
	for i := range matches {
		m := matches[i]
		if !m.IsFinished() {
			continue
		}
		h.FinishedMatches++
		h.TotalGoals += m.TotalGoals()

		if h.MostGoals == nil || m.TotalGoals() > h.MostGoals.TotalGoals() {
			mc := m
			h.MostGoals = &mc
		}
		if h.BiggestVictory == nil || m.GoalDifference() > h.BiggestVictory.GoalDifference() {
			mc := m
			h.BiggestVictory = &mc
		}
	}
	return h
}
