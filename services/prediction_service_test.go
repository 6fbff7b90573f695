package services

import (
	"context"
	"testing"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPrediction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.predictions.AddPrediction(ctx, "  ", "a")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.predictions.AddPrediction(ctx, "Eva", "")
	assert.ErrorIs(t, err, ErrValidationFailed)

	prediction, err := env.predictions.AddPrediction(ctx, " Eva ", "a")
	require.NoError(t, err)
	assert.Equal(t, "Eva", prediction.PlayerName)
	assert.Equal(t, testNow, prediction.Timestamp)

	// the same player may guess again
	_, err = env.predictions.AddPrediction(ctx, "Eva", "b")
	require.NoError(t, err)
	assert.Len(t, env.predictions.ListPredictions(ctx), 2)

	raw, err := env.kv.Get(ctx, string(repositories.PredictionsKey))
	require.NoError(t, err)
	var stored []models.Prediction
	require.NoError(t, repositories.DecodeState(raw, &stored))
	assert.Len(t, stored, 2)
}

func TestPredictionDistribution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.predictions.Distribution(ctx)
	assert.ErrorIs(t, err, ErrNoActiveTournament)

	createFourTeamTournament(t, env)
	for _, p := range []struct{ player, team string }{{"Eva", "c"}, {"Jan", "b"}, {"Ota", "c"}, {"Ida", "c"}} {
		_, err := env.predictions.AddPrediction(ctx, p.player, p.team)
		require.NoError(t, err)
	}

	shares, err := env.predictions.Distribution(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 4)
	assert.Equal(t, "c", shares[0].Team.ID)
	assert.Equal(t, 3, shares[0].Count)
	assert.InDelta(t, 75.0, shares[0].Percentage, 0.001)
	assert.Equal(t, "b", shares[1].Team.ID)
	assert.InDelta(t, 25.0, shares[1].Percentage, 0.001)
	// unpicked teams keep roster order
	assert.Equal(t, "a", shares[2].Team.ID)
	assert.Equal(t, "d", shares[3].Team.ID)
	assert.Zero(t, shares[3].Percentage)
}

func TestPredictionResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createFourTeamTournament(t, env)

	for _, p := range []struct{ player, team string }{{"Eva", "a"}, {"Jan", "b"}, {"Ota", "a"}} {
		_, err := env.predictions.AddPrediction(ctx, p.player, p.team)
		require.NoError(t, err)
	}

	_, err := env.predictions.Results(ctx)
	assert.ErrorIs(t, err, ErrTournamentNotFinished)

	playGroupStage(t, env)
	tournament, err := env.tournaments.StartPlayoff(ctx)
	require.NoError(t, err)
	semis := tournament.MatchesInGroup(models.GroupSemifinal)
	_, err = env.tournaments.RecordResult(ctx, semis[0].ID, 5, 2)
	require.NoError(t, err)
	_, err = env.tournaments.RecordResult(ctx, semis[1].ID, 3, 1)
	require.NoError(t, err)
	tournament, err = env.tournaments.AdvanceToFinals(ctx)
	require.NoError(t, err)

	_, err = env.predictions.Results(ctx)
	assert.ErrorIs(t, err, ErrTournamentNotFinished)

	_, err = env.tournaments.RecordResult(ctx, groupMatchID(t, tournament, models.GroupFinal), 6, 3)
	require.NoError(t, err)

	results, err := env.predictions.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", results.WinnerTeam.ID)
	assert.Len(t, results.Correct, 2)
	assert.Len(t, results.Incorrect, 1)
	assert.Equal(t, "Jan", results.Incorrect[0].PlayerName)
	assert.InDelta(t, 66.667, results.SuccessRate, 0.01)
}
