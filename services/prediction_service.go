package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/foosball-tournament/brackets"
	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
)

type TeamPredictionShare struct {
	Team       models.Team `json:"team"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

type PredictionResults struct {
	WinnerTeam  models.Team         `json:"winner_team"`
	Correct     []models.Prediction `json:"correct"`
	Incorrect   []models.Prediction `json:"incorrect"`
	SuccessRate float64             `json:"success_rate"`
}

type PredictionService interface {
	AddPrediction(ctx context.Context, playerName, teamID string) (*models.Prediction, error)
	ListPredictions(ctx context.Context) []models.Prediction
	Distribution(ctx context.Context) ([]TeamPredictionShare, error)
	Results(ctx context.Context) (*PredictionResults, error)
}

type predictionService struct {
	store  *Store
	logger *slog.Logger
}

func NewPredictionService(store *Store, logger *slog.Logger) PredictionService {
	return &predictionService{store: store, logger: logger}
}

// AddPrediction appends a guess. Repeated guesses by the same player are kept.
func (s *predictionService) AddPrediction(ctx context.Context, playerName, teamID string) (*models.Prediction, error) {
	playerName = strings.TrimSpace(playerName)
	teamID = strings.TrimSpace(teamID)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	if teamID == "" {
		return nil, fmt.Errorf("%w: predicted team is required", ErrValidationFailed)
	}

	prediction := models.Prediction{
		PlayerName:      playerName,
		PredictedTeamID: teamID,
		Timestamp:       s.store.now().UTC(),
	}
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		state.Predictions = append(state.Predictions, prediction)
		return []repositories.StateKey{repositories.PredictionsKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Prediction added", slog.String("player", playerName), slog.String("team_id", teamID))
	return &prediction, nil
}

func (s *predictionService) ListPredictions(_ context.Context) []models.Prediction {
	var predictions []models.Prediction
	s.store.view(func(state *repositories.State) {
		predictions = append([]models.Prediction{}, state.Predictions...)
	})
	return predictions
}

// Distribution counts predictions per team of the active tournament, most
// picked first.
func (s *predictionService) Distribution(_ context.Context) ([]TeamPredictionShare, error) {
	var (
		teams       []models.Team
		predictions []models.Prediction
	)
	s.store.view(func(state *repositories.State) {
		if state.Active != nil {
			teams = append([]models.Team{}, state.Active.Teams...)
		}
		predictions = append([]models.Prediction{}, state.Predictions...)
	})
	if teams == nil {
		return nil, ErrNoActiveTournament
	}

	counts := make(map[string]int, len(teams))
	for _, p := range predictions {
		counts[p.PredictedTeamID]++
	}

	shares := make([]TeamPredictionShare, len(teams))
	for i, team := range teams {
		share := TeamPredictionShare{Team: team, Count: counts[team.ID]}
		if len(predictions) > 0 {
			share.Percentage = float64(share.Count) / float64(len(predictions)) * 100
		}
		shares[i] = share
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Count > shares[j].Count })
	return shares, nil
}

// Results scores every prediction against the winner of the final.
func (s *predictionService) Results(_ context.Context) (*PredictionResults, error) {
	var (
		active      *models.Tournament
		predictions []models.Prediction
	)
	s.store.view(func(state *repositories.State) {
		active = state.Active.Clone()
		predictions = append([]models.Prediction{}, state.Predictions...)
	})
	if active == nil {
		return nil, ErrNoActiveTournament
	}

	final, ok := brackets.FinalMatch(active)
	if !ok || !final.IsFinished() {
		return nil, ErrTournamentNotFinished
	}
	winnerID, _, err := brackets.MatchWinner(final)
	if err != nil {
		if errors.Is(err, brackets.ErrNoWinner) {
			return nil, ErrTournamentNotFinished
		}
		return nil, err
	}
	winner, _ := active.TeamByID(winnerID)

	results := &PredictionResults{
		WinnerTeam: winner,
		Correct:    []models.Prediction{},
		Incorrect:  []models.Prediction{},
	}
	for _, p := range predictions {
		if p.PredictedTeamID == winnerID {
			results.Correct = append(results.Correct, p)
		} else {
			results.Incorrect = append(results.Incorrect, p)
		}
	}
	if len(predictions) > 0 {
		results.SuccessRate = float64(len(results.Correct)) / float64(len(predictions)) * 100
	}
	return results, nil
}
