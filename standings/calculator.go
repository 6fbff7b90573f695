// Package standings folds match results into the ranked standings table.
package standings

import (
	"sort"

	"github.com/Dosada05/foosball-tournament/models"
)

// PointsPerWin is awarded to the winner of a finished match. Losers get nothing.
const PointsPerWin = 1

// Calculate returns one TeamStats entry per team, built from finished matches
// only. The result is sorted by points, then goal difference, then goals
// scored, all descending. Teams that are still level keep their roster order.
func Calculate(teams []models.Team, matches []models.Match) []models.TeamStats {
	stats := make([]models.TeamStats, len(teams))
	index := make(map[string]int, len(teams))
	for i, team := range teams {
		stats[i] = models.TeamStats{TeamID: team.ID}
		index[team.ID] = i
	}

	for _, match := range matches {
		if !match.IsFinished() {
			continue
		}
		ia, okA := index[match.TeamAID]
		ib, okB := index[match.TeamBID]
		if !okA || !okB {
			continue
		}
		teamA := &stats[ia]
		teamB := &stats[ib]

		teamA.Played++
		teamB.Played++

		teamA.GoalsFor += match.ScoreA
		teamA.GoalsAgainst += match.ScoreB
		teamB.GoalsFor += match.ScoreB
		teamB.GoalsAgainst += match.ScoreA

		switch {
		case match.ScoreA > match.ScoreB:
			teamA.Won++
			teamA.Points += PointsPerWin
			teamB.Lost++
		case match.ScoreB > match.ScoreA:
			teamB.Won++
			teamB.Points += PointsPerWin
			teamA.Lost++
		}
	}

	for i := range stats {
		stats[i].GoalDifference = stats[i].GoalsFor - stats[i].GoalsAgainst
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})

	return stats
}

// Position returns the 1-based rank of the team in stats or 0 when absent.
func Position(stats []models.TeamStats, teamID string) int {
	for i, s := range stats {
		if s.TeamID == teamID {
			return i + 1
		}
	}
	return 0
}

// PositionChange compares the rank of a team between two standings tables.
// A positive value means the team climbed.
func PositionChange(previous, current []models.TeamStats, teamID string) int {
	before := Position(previous, teamID)
	after := Position(current, teamID)
	if before == 0 || after == 0 {
		return 0
	}
	return before - after
}
