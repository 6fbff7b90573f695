package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/foosball-tournament/brackets"
	"github.com/Dosada05/foosball-tournament/live"
	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	tournament := createFourTeamTournament(t, env)

	assert.Equal(t, "id-1", tournament.ID)
	assert.Equal(t, "Winter Cup", tournament.Name)
	assert.Equal(t, models.PhaseGroup, tournament.Phase)
	assert.Equal(t, testNow, tournament.CreatedAt)
	assert.Equal(t, testNow, tournament.Date)
	assert.Len(t, tournament.Matches, 6)
	assert.Equal(t, 1, env.notifier.count())
	assert.Equal(t, live.MessageUpdated, env.notifier.messages[0])

	snap := env.tournaments.Snapshot(context.Background())
	require.NotNil(t, snap.Tournament)
	assert.Equal(t, tournament.ID, snap.Tournament.ID)
	assert.True(t, snap.CanMakePredictions)
	assert.False(t, snap.CanStartPlayoff)
	assert.Len(t, snap.UpcomingMatches, 6)
	assert.Empty(t, snap.RecentMatches)
	assert.Len(t, snap.Standings, 4)

	// a fresh store over the same repository sees the tournament
	reloaded := NewStore(env.repo, discardLogger())
	require.NoError(t, reloaded.Load(context.Background()))
	again := NewTournamentService(reloaded, discardLogger()).Snapshot(context.Background())
	require.NotNil(t, again.Tournament)
	assert.Equal(t, tournament.Matches, again.Tournament.Matches)
}

func TestCreateTournamentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateTournamentInput
		err   error
	}{
		{"missing name", CreateTournamentInput{Name: "  ", Format: models.FormatRoundRobin, Teams: fourTeams()}, ErrTournamentNameRequired},
		{"bad format", CreateTournamentInput{Name: "Cup", Format: "swiss", Teams: fourTeams()}, ErrInvalidFormat},
		{"three teams", CreateTournamentInput{Name: "Cup", Format: models.FormatRoundRobin, Teams: fourTeams()[:3]}, ErrTooFewTeams},
		{"odd teams", CreateTournamentInput{Name: "Cup", Format: models.FormatRoundRobin, Teams: append(fourTeams(), models.Team{Name: "Echo"})}, ErrOddTeamCount},
		{"duplicate", CreateTournamentInput{Name: "Cup", Format: models.FormatRoundRobin, Teams: append(fourTeams()[:3], models.Team{Name: " alpha "})}, ErrDuplicateTeamName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tournaments.CreateTournament(ctx, tc.input)
			assert.ErrorIs(t, err, tc.err)
		})
	}
	assert.Nil(t, env.tournaments.Snapshot(ctx).Tournament)
	assert.Zero(t, env.notifier.count())
}

func TestCreateTournamentDropsBlankRows(t *testing.T) {
	env := newTestEnv(t)
	teams := []models.Team{{Name: " Alpha "}, {Name: ""}, {Name: "Bravo"}, {Name: "   "}, {Name: "Charlie"}, {Name: "Delta"}}

	tournament, err := env.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name: "Cup", Format: models.FormatTwoGroups, Teams: teams,
	})
	require.NoError(t, err)
	require.Len(t, tournament.Teams, 4)
	assert.Equal(t, "Alpha", tournament.Teams[0].Name)
	for _, team := range tournament.Teams {
		assert.NotEmpty(t, team.ID)
	}
	// two groups of two
	assert.Len(t, tournament.Matches, 2)
}

func TestFullTournamentFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createFourTeamTournament(t, env)

	playGroupStage(t, env)

	snap := env.tournaments.Snapshot(ctx)
	assert.False(t, snap.CanMakePredictions)
	require.True(t, snap.CanStartPlayoff)
	order := []string{snap.Standings[0].TeamID, snap.Standings[1].TeamID, snap.Standings[2].TeamID, snap.Standings[3].TeamID}
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
	assert.Equal(t, models.TeamStats{TeamID: "a", Played: 3, Won: 3, GoalsFor: 9, GoalsAgainst: 1, GoalDifference: 8, Points: 3}, snap.Standings[0])
	assert.Equal(t, 6, snap.FinishedMatches)
	assert.Equal(t, 21, snap.TotalGoals)

	tournament, err := env.tournaments.StartPlayoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhasePlayoff, tournament.Phase)
	semis := tournament.MatchesInGroup(models.GroupSemifinal)
	require.Len(t, semis, 2)
	assert.Equal(t, [2]string{"a", "d"}, [2]string{semis[0].TeamAID, semis[0].TeamBID})
	assert.Equal(t, [2]string{"b", "c"}, [2]string{semis[1].TeamAID, semis[1].TeamBID})

	_, err = env.tournaments.StartPlayoff(ctx)
	assert.ErrorIs(t, err, ErrIneligibleTransition)

	_, err = env.tournaments.RecordResult(ctx, semis[0].ID, 5, 2)
	require.NoError(t, err)
	_, err = env.tournaments.RecordResult(ctx, semis[1].ID, 3, 1)
	require.NoError(t, err)

	tournament, err = env.tournaments.AdvanceToFinals(ctx)
	require.NoError(t, err)
	final, _ := brackets.FinalMatch(tournament)
	third, _ := brackets.ThirdPlaceMatch(tournament)
	assert.Equal(t, [2]string{"a", "b"}, [2]string{final.TeamAID, final.TeamBID})
	assert.Equal(t, [2]string{"d", "c"}, [2]string{third.TeamAID, third.TeamBID})

	_, err = env.tournaments.AdvanceToFinals(ctx)
	assert.ErrorIs(t, err, ErrIneligibleTransition)

	_, err = env.tournaments.Podium(ctx)
	assert.ErrorIs(t, err, ErrTournamentNotFinished)

	_, err = env.tournaments.RecordResult(ctx, third.ID, 4, 6)
	require.NoError(t, err)
	_, err = env.tournaments.RecordResult(ctx, final.ID, 2, 5)
	require.NoError(t, err)

	snap = env.tournaments.Snapshot(ctx)
	assert.True(t, snap.IsFinished)
	assert.Empty(t, snap.UpcomingMatches)

	podium, err := env.tournaments.Podium(ctx)
	require.NoError(t, err)
	assert.Equal(t, brackets.Podium{Champion: "b", RunnerUp: "a", ThirdPlace: "c"}, podium)
}

func TestFinishMatchSnapshotsPreviousStandings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := createFourTeamTournament(t, env)
	first := matchBetween(t, tournament, "a", "b")

	play(t, env, "c", "d", 2, 0)
	_, err := env.tournaments.UpdateMatchScore(ctx, first.ID, 3, 1)
	require.NoError(t, err)
	_, err = env.tournaments.FinishMatch(ctx, first.ID)
	require.NoError(t, err)

	snap := env.tournaments.Snapshot(ctx)
	var previousA models.TeamStats
	for _, s := range snap.PreviousStandings {
		if s.TeamID == "a" {
			previousA = s
		}
	}
	assert.Zero(t, previousA.Played, "previous standings are taken before the match counts")
	assert.Equal(t, 1, snap.PreviousStandings[0].Points, "c led before a finished")
	assert.Equal(t, map[string]int{"a": 1, "c": -1, "b": 0, "d": 0}, snap.PositionChanges)

	raw, err := env.kv.Get(ctx, string(repositories.PreviousStandingsKey))
	require.NoError(t, err)
	var stored []models.TeamStats
	require.NoError(t, repositories.DecodeState(raw, &stored))
	assert.Equal(t, snap.PreviousStandings, stored)
}

func TestFinishMatchGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.FinishMatch(ctx, "m")
	assert.ErrorIs(t, err, ErrNoActiveTournament)

	tournament := createFourTeamTournament(t, env)
	_, err = env.tournaments.FinishMatch(ctx, "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	drawn := tournament.Matches[0]
	_, err = env.tournaments.UpdateMatchScore(ctx, drawn.ID, 2, 2)
	require.NoError(t, err)
	_, err = env.tournaments.FinishMatch(ctx, drawn.ID)
	assert.ErrorIs(t, err, ErrDrawNotAllowed)

	playGroupStage(t, env)
	tournament, err = env.tournaments.StartPlayoff(ctx)
	require.NoError(t, err)
	_, err = env.tournaments.FinishMatch(ctx, groupMatchID(t, tournament, models.GroupFinal))
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestUpdateMatchScoreDoesNotValidate(t *testing.T) {
	env := newTestEnv(t)
	tournament := createFourTeamTournament(t, env)

	match, err := env.tournaments.UpdateMatchScore(context.Background(), tournament.Matches[0].ID, -1, 7)
	require.NoError(t, err)
	assert.Equal(t, -1, match.ScoreA)
	assert.Equal(t, 7, match.ScoreB)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
}

func TestRecordResultValidation(t *testing.T) {
	env := newTestEnv(t)
	tournament := createFourTeamTournament(t, env)
	id := tournament.Matches[0].ID

	_, err := env.tournaments.RecordResult(context.Background(), id, -1, 3)
	assert.ErrorIs(t, err, ErrNegativeScore)
	_, err = env.tournaments.RecordResult(context.Background(), id, 4, 4)
	assert.ErrorIs(t, err, ErrDrawNotAllowed)

	snap := env.tournaments.Snapshot(context.Background())
	assert.Zero(t, snap.FinishedMatches)
}

func TestStartPlayoffBeforeGroupStageEnds(t *testing.T) {
	env := newTestEnv(t)
	createFourTeamTournament(t, env)
	play(t, env, "a", "b", 3, 1)

	_, err := env.tournaments.StartPlayoff(context.Background())
	assert.ErrorIs(t, err, ErrIneligibleTransition)
}

func TestRecentAndUpcomingMatches(t *testing.T) {
	env := newTestEnv(t, WithRecentLimit(2))
	createFourTeamTournament(t, env)
	playGroupStage(t, env)

	snap := env.tournaments.Snapshot(context.Background())
	require.Len(t, snap.RecentMatches, 2)
	assert.Equal(t, 5, snap.RecentMatches[0].Order)
	assert.Equal(t, 4, snap.RecentMatches[1].Order)
	assert.Empty(t, snap.UpcomingMatches)

	_, err := env.tournaments.StartPlayoff(context.Background())
	require.NoError(t, err)
	snap = env.tournaments.Snapshot(context.Background())
	require.Len(t, snap.UpcomingMatches, 4)
	assert.Equal(t, models.GroupSemifinal, snap.UpcomingMatches[0].Group)
	assert.Equal(t, models.GroupFinal, snap.UpcomingMatches[3].Group)
	assert.Equal(t, 6, snap.UpcomingMatches[0].Order)
}

func TestArchiveAndLoadTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	original := createFourTeamTournament(t, env)
	play(t, env, "a", "b", 3, 1)

	archived, err := env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, testNow, *archived.ArchivedAt)
	assert.Equal(t, "https://cdn.example.com/archives/id-1.json", archived.ArchiveURL)
	assert.Nil(t, env.tournaments.Snapshot(ctx).Tournament)

	body, ok := env.uploader.uploads["archives/id-1.json"]
	require.True(t, ok)
	var exported models.Tournament
	require.NoError(t, json.Unmarshal(body, &exported))
	assert.Equal(t, original.ID, exported.ID)

	history := env.tournaments.ListHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, original.ID, history[0].ID)
	assert.Equal(t, archived.ArchiveURL, history[0].ArchiveURL)

	_, err = env.tournaments.ArchiveTournament(ctx)
	assert.ErrorIs(t, err, ErrNoActiveTournament)

	loaded, err := env.tournaments.LoadTournament(ctx, original.ID, false)
	require.NoError(t, err)
	assert.Equal(t, original.Teams, loaded.Teams)
	assert.Equal(t, models.MatchStatusFinished, matchBetween(t, loaded, "a", "b").Status)
	assert.Equal(t, history[0], *loaded)

	second, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Spring Cup", Format: models.FormatRoundRobin, Teams: fourTeams()})
	require.NoError(t, err)

	_, err = env.tournaments.LoadTournament(ctx, original.ID, false)
	assert.ErrorIs(t, err, ErrActiveTournamentExists)
	assert.Equal(t, second.ID, env.tournaments.Snapshot(ctx).Tournament.ID)

	_, err = env.tournaments.LoadTournament(ctx, original.ID, true)
	require.NoError(t, err)
	assert.Equal(t, original.ID, env.tournaments.Snapshot(ctx).Tournament.ID)

	_, err = env.tournaments.LoadTournament(ctx, "unknown", true)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestArchiveReplacesReloadedEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	original := createFourTeamTournament(t, env)

	_, err := env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)
	_, err = env.tournaments.LoadTournament(ctx, original.ID, false)
	require.NoError(t, err)
	_, err = env.tournaments.EndTournamentEarly(ctx)
	require.NoError(t, err)

	assert.Len(t, env.tournaments.ListHistory(ctx), 1)
}

func TestArchiveSurvivesExportFailure(t *testing.T) {
	env := newTestEnv(t)
	env.uploader.uploadErr = assert.AnError
	createFourTeamTournament(t, env)

	archived, err := env.tournaments.EndTournamentEarly(context.Background())
	require.NoError(t, err)
	assert.Empty(t, archived.ArchiveURL)
	assert.Len(t, env.tournaments.ListHistory(context.Background()), 1)
}

func TestHistoryIsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := createFourTeamTournament(t, env)
	_, err := env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)
	second := createFourTeamTournament(t, env)
	_, err = env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)

	history := env.tournaments.ListHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	found, err := env.tournaments.GetHistoricalTournament(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, found.Name)
	_, err = env.tournaments.GetHistoricalTournament(ctx, "nope")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestDeleteTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := createFourTeamTournament(t, env)
	_, err := env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, env.tournaments.DeleteTournament(ctx, "nope"), ErrTournamentNotFound)
	require.NoError(t, env.tournaments.DeleteTournament(ctx, tournament.ID))
	assert.Empty(t, env.tournaments.ListHistory(ctx))
	assert.Equal(t, []string{"archives/id-1.json"}, env.uploader.deleted)
}

func TestClearAllData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createFourTeamTournament(t, env)
	_, err := env.tournaments.ArchiveTournament(ctx)
	require.NoError(t, err)
	tournament := createFourTeamTournament(t, env)
	_, err = env.predictions.AddPrediction(ctx, "Eva", tournament.Teams[0].ID)
	require.NoError(t, err)
	play(t, env, "a", "b", 1, 0)

	require.NoError(t, env.tournaments.ClearAllData(ctx))

	snap := env.tournaments.Snapshot(ctx)
	assert.Nil(t, snap.Tournament)
	assert.Empty(t, snap.PreviousStandings)
	assert.Empty(t, env.tournaments.ListHistory(ctx))
	assert.Empty(t, env.predictions.ListPredictions(ctx))
	for _, key := range repositories.AllStateKeys {
		_, err := env.kv.Get(ctx, string(key))
		assert.ErrorIs(t, err, repositories.ErrStateNotFound, key)
	}
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := createFourTeamTournament(t, env)
	notified := env.notifier.count()

	env.repo.failSaves = true
	_, err := env.tournaments.RecordResult(ctx, tournament.Matches[0].ID, 3, 1)
	require.Error(t, err)

	snap := env.tournaments.Snapshot(ctx)
	assert.Zero(t, snap.FinishedMatches)
	assert.Equal(t, notified, env.notifier.count())

	env.repo.failSaves = false
	_, err = env.tournaments.RecordResult(ctx, tournament.Matches[0].ID, 3, 1)
	require.NoError(t, err)
}

func TestConcurrentMutationsPublishInOrder(t *testing.T) {
	gated := newGatedNotifier()
	env := newTestEnv(t, WithNotifier(gated))
	ctx := context.Background()
	tournament := createFourTeamTournament(t, env)
	first := matchBetween(t, tournament, "a", "b")
	second := matchBetween(t, tournament, "c", "d")

	gated.arm()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := env.tournaments.RecordResult(ctx, first.ID, 3, 1)
		assert.NoError(t, err)
	}()
	<-gated.entered

	go func() {
		defer wg.Done()
		_, err := env.tournaments.RecordResult(ctx, second.ID, 2, 0)
		assert.NoError(t, err)
	}()
	// give the second mutation a chance to overtake the blocked publish
	time.Sleep(50 * time.Millisecond)
	close(gated.release)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2}, gated.frames())
	assert.Equal(t, 2, env.tournaments.Snapshot(ctx).FinishedMatches)
}

func TestRefinishKeepsPreviousStandingsWithoutTheMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := createFourTeamTournament(t, env)
	first := matchBetween(t, tournament, "a", "b")

	play(t, env, "c", "d", 2, 0)
	play(t, env, "a", "b", 3, 1)
	before := env.tournaments.Snapshot(ctx)

	_, err := env.tournaments.FinishMatch(ctx, first.ID)
	require.NoError(t, err)

	after := env.tournaments.Snapshot(ctx)
	assert.Equal(t, before.PreviousStandings, after.PreviousStandings)
	assert.Equal(t, map[string]int{"a": 1, "c": -1, "b": 0, "d": 0}, after.PositionChanges)
}

func TestGetTeamByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.GetTeamByID(ctx, "a")
	assert.ErrorIs(t, err, ErrNoActiveTournament)

	createFourTeamTournament(t, env)
	team, err := env.tournaments.GetTeamByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team.Name)

	_, err = env.tournaments.GetTeamByID(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHighlightsAndGoalStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.Highlights(ctx)
	assert.ErrorIs(t, err, ErrNoActiveTournament)

	createFourTeamTournament(t, env)
	playGroupStage(t, env)

	highlights, err := env.tournaments.Highlights(ctx)
	require.NoError(t, err)
	require.NotNil(t, highlights.MostGoals)
	assert.Equal(t, 6, highlights.MostGoals.TotalGoals())
	require.NotNil(t, highlights.BiggestVictory)
	assert.Equal(t, 5, highlights.BiggestVictory.GoalDifference())

	stats, err := env.tournaments.GoalStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats.TopScorer)
	assert.Equal(t, "a", stats.TopScorer.TeamID)
	require.NotNil(t, stats.MostConceded)
	assert.Equal(t, "d", stats.MostConceded.TeamID)
	assert.Equal(t, 21, stats.TotalGoals)
	assert.InDelta(t, 3.5, stats.AverageGoals, 0.001)
}
