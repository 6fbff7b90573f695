package standings

import (
	"testing"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopScorerAndMostConceded(t *testing.T) {
	_, ok := TopScorer(nil)
	assert.False(t, ok)
	_, ok = MostConceded(nil)
	assert.False(t, ok)

	table := []models.TeamStats{
		{TeamID: "A", GoalsFor: 9, GoalsAgainst: 1},
		{TeamID: "B", GoalsFor: 9, GoalsAgainst: 11},
		{TeamID: "C", GoalsFor: 3, GoalsAgainst: 11},
	}

	top, ok := TopScorer(table)
	require.True(t, ok)
	assert.Equal(t, "A", top.TeamID, "first entry wins a tie")

	worst, ok := MostConceded(table)
	require.True(t, ok)
	assert.Equal(t, "B", worst.TeamID)
}

func TestHighlights(t *testing.T) {
	matches := []models.Match{
		finished("A", "B", 3, 1),
		finished("C", "D", 5, 0),
		finished("A", "C", 4, 4),
		{TeamAID: "B", TeamBID: "D", ScoreA: 10, ScoreB: 0, Status: models.MatchStatusScheduled},
	}

	h := Highlights(matches)
	assert.Equal(t, 3, h.FinishedMatches)
	assert.Equal(t, 17, h.TotalGoals)
	require.NotNil(t, h.MostGoals)
	assert.Equal(t, "A-C", h.MostGoals.ID)
	require.NotNil(t, h.BiggestVictory)
	assert.Equal(t, "C-D", h.BiggestVictory.ID)
}

func TestHighlightsEmpty(t *testing.T) {
	h := Highlights(nil)
	assert.Nil(t, h.MostGoals)
	assert.Nil(t, h.BiggestVictory)
	assert.Zero(t, h.FinishedMatches)
}
