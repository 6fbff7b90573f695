package services

import (
	"sort"

	"github.com/Dosada05/foosball-tournament/brackets"
	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/Dosada05/foosball-tournament/standings"
)

// Snapshot is the derived view of the active tournament. Everything except
// Tournament and PreviousStandings is recomputed on each read.
type Snapshot struct {
	Tournament         *models.Tournament `json:"tournament"`
	Standings          []models.TeamStats `json:"standings"`
	PreviousStandings  []models.TeamStats `json:"previous_standings"`
	PositionChanges    map[string]int     `json:"position_changes"`
	RecentMatches      []models.Match     `json:"recent_matches"`
	UpcomingMatches    []models.Match     `json:"upcoming_matches"`
	CanStartPlayoff    bool               `json:"can_start_playoff"`
	CanAdvanceToFinals bool               `json:"can_advance_to_finals"`
	IsFinished         bool               `json:"is_finished"`
	CanMakePredictions bool               `json:"can_make_predictions"`
	FinishedMatches    int                `json:"finished_matches"`
	TotalGoals         int                `json:"total_goals"`
}

// GoalStats are the goal leaders of the active tournament.
type GoalStats struct {
	TopScorer    *models.TeamStats `json:"top_scorer,omitempty"`
	MostConceded *models.TeamStats `json:"most_conceded,omitempty"`
	TotalGoals   int               `json:"total_goals"`
	AverageGoals float64           `json:"average_goals"`
}

func buildSnapshot(state *repositories.State, recentLimit int) Snapshot {
	snap := Snapshot{
		Standings:         []models.TeamStats{},
		PreviousStandings: append([]models.TeamStats{}, state.PreviousStandings...),
		PositionChanges:   map[string]int{},
		RecentMatches:     []models.Match{},
		UpcomingMatches:   []models.Match{},
	}
	t := state.Active
	if t == nil {
		return snap
	}

	snap.Tournament = t.Clone()
	snap.Standings = standings.Calculate(t.Teams, t.Matches)
	for _, row := range snap.Standings {
		snap.PositionChanges[row.TeamID] = standings.PositionChange(snap.PreviousStandings, snap.Standings, row.TeamID)
	}
	snap.RecentMatches = recentMatches(t.Matches, recentLimit)
	snap.UpcomingMatches = upcomingMatches(t.Matches)
	snap.CanStartPlayoff = brackets.CanStartPlayoff(t)
	snap.CanAdvanceToFinals = brackets.CanAdvanceToFinals(t)
	snap.IsFinished = brackets.IsFinished(t)
	snap.CanMakePredictions = canMakePredictions(t)

	for _, m := range t.Matches {
		if m.IsFinished() {
			snap.FinishedMatches++
			snap.TotalGoals += m.TotalGoals()
		}
	}
	return snap
}

// recentMatches returns finished matches, latest order first.
func recentMatches(matches []models.Match, limit int) []models.Match {
	recent := make([]models.Match, 0)
	for _, m := range matches {
		if m.IsFinished() {
			recent = append(recent, m)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Order > recent[j].Order })
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// upcomingMatches returns scheduled matches in order, bracket placeholders included.
func upcomingMatches(matches []models.Match) []models.Match {
	upcoming := make([]models.Match, 0)
	for _, m := range matches {
		if !m.IsFinished() {
			upcoming = append(upcoming, m)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Order < upcoming[j].Order })
	return upcoming
}

// canMakePredictions is true until the first match is finished.
func canMakePredictions(t *models.Tournament) bool {
	for _, m := range t.Matches {
		if m.IsFinished() {
			return false
		}
	}
	return true
}

func goalStats(t *models.Tournament) GoalStats {
	table := standings.Calculate(t.Teams, t.Matches)
	stats := GoalStats{}
	if top, ok := standings.TopScorer(table); ok {
		stats.TopScorer = &top
	}
	if worst, ok := standings.MostConceded(table); ok {
		stats.MostConceded = &worst
	}

	finished := 0
	for _, m := range t.Matches {
		if m.IsFinished() {
			finished++
			stats.TotalGoals += m.TotalGoals()
		}
	}
	if finished > 0 {
		stats.AverageGoals = float64(stats.TotalGoals) / float64(finished)
	}
	return stats
}
