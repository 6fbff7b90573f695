package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/foosball-tournament/brackets"
	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/Dosada05/foosball-tournament/standings"
	"github.com/Dosada05/foosball-tournament/storage"
)

type CreateTournamentInput struct {
	Name   string        `json:"name"`
	Format models.Format `json:"format"`
	Teams  []models.Team `json:"teams"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	UpdateMatchScore(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error)
	FinishMatch(ctx context.Context, matchID string) (*models.Match, error)
	RecordResult(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error)
	StartPlayoff(ctx context.Context) (*models.Tournament, error)
	AdvanceToFinals(ctx context.Context) (*models.Tournament, error)
	ArchiveTournament(ctx context.Context) (*models.Tournament, error)
	EndTournamentEarly(ctx context.Context) (*models.Tournament, error)
	LoadTournament(ctx context.Context, id string, discardActive bool) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
	ClearAllData(ctx context.Context) error

	Snapshot(ctx context.Context) Snapshot
	GetTeamByID(ctx context.Context, teamID string) (*models.Team, error)
	ListHistory(ctx context.Context) []models.Tournament
	GetHistoricalTournament(ctx context.Context, id string) (*models.Tournament, error)
	Highlights(ctx context.Context) (standings.MatchHighlights, error)
	GoalStats(ctx context.Context) (GoalStats, error)
	Podium(ctx context.Context) (brackets.Podium, error)
}

type tournamentService struct {
	store  *Store
	logger *slog.Logger
}

func NewTournamentService(store *Store, logger *slog.Logger) TournamentService {
	return &tournamentService{store: store, logger: logger}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}
	teams, err := normalizeTeams(input.Teams, s.store.newID)
	if err != nil {
		return nil, err
	}

	matches, err := brackets.GenerateMatches(teams, input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	now := s.store.now().UTC()
	tournament := &models.Tournament{
		ID:        s.store.newID(),
		Name:      name,
		Format:    input.Format,
		Date:      now,
		Teams:     teams,
		Matches:   matches,
		CreatedAt: now,
		Phase:     models.PhaseGroup,
	}

	err = s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		if state.Active != nil {
			s.logger.WarnContext(ctx, "Replacing active tournament without archiving",
				slog.String("replaced_tournament_id", state.Active.ID))
		}
		state.Active = tournament.Clone()
		return []repositories.StateKey{repositories.ActiveTournamentKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tournament created",
		slog.String("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))
	return tournament, nil
}

// activeMatch resolves matchID in the active tournament of state.
func activeMatch(state *repositories.State, matchID string) (*models.Match, error) {
	if state.Active == nil {
		return nil, ErrNoActiveTournament
	}
	i := state.Active.MatchIndex(matchID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return &state.Active.Matches[i], nil
}

// UpdateMatchScore stores a provisional score. The status is left alone and
// no validation is applied.
func (s *tournamentService) UpdateMatchScore(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error) {
	var updated models.Match
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		match, err := activeMatch(state, matchID)
		if err != nil {
			return nil, err
		}
		match.ScoreA, match.ScoreB = scoreA, scoreB
		updated = *match
		return []repositories.StateKey{repositories.ActiveTournamentKey}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FinishMatch stores the standings as they were before the match counted and
// marks it finished. Finishing an already finished match again (after a score
// correction) takes the same previous table, so position changes still show
// the effect of that match.
func (s *tournamentService) FinishMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var finished models.Match
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		match, err := activeMatch(state, matchID)
		if err != nil {
			return nil, err
		}
		if !match.HasTeams() {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
		}
		if match.ScoreA == match.ScoreB {
			return nil, fmt.Errorf("%w: %d:%d", ErrDrawNotAllowed, match.ScoreA, match.ScoreB)
		}

		state.PreviousStandings = standingsWithout(state.Active, match.ID)
		match.Status = models.MatchStatusFinished
		finished = *match
		return []repositories.StateKey{repositories.ActiveTournamentKey, repositories.PreviousStandingsKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match finished",
		slog.String("match_id", finished.ID),
		slog.Int("score_a", finished.ScoreA),
		slog.Int("score_b", finished.ScoreB))
	return &finished, nil
}

// RecordResult validates a final score, stores it and finishes the match.
func (s *tournamentService) RecordResult(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error) {
	if scoreA < 0 || scoreB < 0 {
		return nil, ErrNegativeScore
	}
	if scoreA == scoreB {
		return nil, ErrDrawNotAllowed
	}

	var recorded models.Match
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		match, err := activeMatch(state, matchID)
		if err != nil {
			return nil, err
		}
		if !match.HasTeams() {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
		}

		state.PreviousStandings = standingsWithout(state.Active, match.ID)
		match.ScoreA, match.ScoreB = scoreA, scoreB
		match.Status = models.MatchStatusFinished
		recorded = *match
		return []repositories.StateKey{repositories.ActiveTournamentKey, repositories.PreviousStandingsKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Match result recorded",
		slog.String("match_id", recorded.ID),
		slog.Int("score_a", scoreA),
		slog.Int("score_b", scoreB))
	return &recorded, nil
}

func (s *tournamentService) StartPlayoff(ctx context.Context) (*models.Tournament, error) {
	return s.transition(ctx, "Playoff started", brackets.StartPlayoff)
}

func (s *tournamentService) AdvanceToFinals(ctx context.Context) (*models.Tournament, error) {
	return s.transition(ctx, "Finals set", brackets.AdvanceToFinals)
}

func (s *tournamentService) transition(ctx context.Context, message string, apply func(*models.Tournament) error) (*models.Tournament, error) {
	var result *models.Tournament
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		if state.Active == nil {
			return nil, ErrNoActiveTournament
		}
		if err := apply(state.Active); err != nil {
			return nil, err
		}
		result = state.Active.Clone()
		return []repositories.StateKey{repositories.ActiveTournamentKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, message, slog.String("tournament_id", result.ID), slog.String("phase", string(result.Phase)))
	return result, nil
}

// ArchiveTournament moves the active tournament to the front of the history.
func (s *tournamentService) ArchiveTournament(ctx context.Context) (*models.Tournament, error) {
	return s.archive(ctx, "archive")
}

// EndTournamentEarly archives the active tournament whatever its phase.
func (s *tournamentService) EndTournamentEarly(ctx context.Context) (*models.Tournament, error) {
	return s.archive(ctx, "end_early")
}

func (s *tournamentService) archive(ctx context.Context, reason string) (*models.Tournament, error) {
	var archived *models.Tournament
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		if state.Active == nil {
			return nil, ErrNoActiveTournament
		}
		archivedAt := s.store.now().UTC()
		archived = state.Active.Clone()
		archived.ArchivedAt = &archivedAt

		// a tournament loaded back from history replaces its old entry
		state.History = append([]models.Tournament{*archived}, withoutTournament(state.History, archived.ID)...)
		state.Active = nil
		return []repositories.StateKey{repositories.ActiveTournamentKey, repositories.HistoryKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tournament archived",
		slog.String("tournament_id", archived.ID),
		slog.String("reason", reason),
		slog.Bool("finished", brackets.IsFinished(archived)))

	if url := s.exportArchive(ctx, archived); url != "" {
		archived.ArchiveURL = url
	}
	return archived, nil
}

// exportArchive uploads the archived tournament and records its public URL
// in the history. Failures are logged and never undo the archive.
func (s *tournamentService) exportArchive(ctx context.Context, archived *models.Tournament) string {
	if s.store.uploader == nil {
		return ""
	}
	result, err := storage.ExportTournament(ctx, s.store.uploader, archived)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to export archived tournament",
			slog.String("tournament_id", archived.ID), slog.Any("error", err))
		return ""
	}
	if result.Location == "" {
		return ""
	}

	err = s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		for i := range state.History {
			if state.History[i].ID == archived.ID {
				state.History[i].ArchiveURL = result.Location
				return []repositories.StateKey{repositories.HistoryKey}, nil
			}
		}
		return nil, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to store archive URL",
			slog.String("tournament_id", archived.ID), slog.Any("error", err))
		return ""
	}
	return result.Location
}

// LoadTournament makes a historical tournament active again. An active
// tournament is only replaced when discardActive is set.
func (s *tournamentService) LoadTournament(ctx context.Context, id string, discardActive bool) (*models.Tournament, error) {
	var loaded *models.Tournament
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		entry := findTournament(state.History, id)
		if entry == nil {
			return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
		}
		if state.Active != nil && !discardActive {
			return nil, fmt.Errorf("%w: %s", ErrActiveTournamentExists, state.Active.ID)
		}
		if state.Active != nil {
			s.logger.WarnContext(ctx, "Discarding active tournament", slog.String("tournament_id", state.Active.ID))
		}
		loaded = entry.Clone()
		state.Active = loaded.Clone()
		return []repositories.StateKey{repositories.ActiveTournamentKey}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tournament loaded from history", slog.String("tournament_id", loaded.ID))
	return loaded, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	err := s.store.mutate(ctx, func(state *repositories.State) ([]repositories.StateKey, error) {
		if findTournament(state.History, id) == nil {
			return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
		}
		state.History = withoutTournament(state.History, id)
		return []repositories.StateKey{repositories.HistoryKey}, nil
	})
	if err != nil {
		return err
	}

	if s.store.uploader != nil {
		if err := s.store.uploader.Delete(ctx, storage.ArchiveKey(id)); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete archive object", slog.String("tournament_id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "Historical tournament deleted", slog.String("tournament_id", id))
	return nil
}

func (s *tournamentService) ClearAllData(ctx context.Context) error {
	if err := s.store.clear(ctx); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "All tournament data cleared")
	return nil
}

func (s *tournamentService) Snapshot(_ context.Context) Snapshot {
	var snap Snapshot
	s.store.view(func(state *repositories.State) {
		snap = buildSnapshot(state, s.store.recentLimit)
	})
	return snap
}

func (s *tournamentService) GetTeamByID(_ context.Context, teamID string) (*models.Team, error) {
	var (
		team models.Team
		err  error
	)
	s.store.view(func(state *repositories.State) {
		if state.Active == nil {
			err = ErrNoActiveTournament
			return
		}
		var ok bool
		if team, ok = state.Active.TeamByID(teamID); !ok {
			err = fmt.Errorf("%w: team %s", ErrNotFound, teamID)
		}
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListHistory returns archived tournaments, newest first.
func (s *tournamentService) ListHistory(_ context.Context) []models.Tournament {
	var history []models.Tournament
	s.store.view(func(state *repositories.State) {
		history = make([]models.Tournament, len(state.History))
		for i := range state.History {
			history[i] = *state.History[i].Clone()
		}
	})
	return history
}

func (s *tournamentService) GetHistoricalTournament(_ context.Context, id string) (*models.Tournament, error) {
	var found *models.Tournament
	s.store.view(func(state *repositories.State) {
		found = findTournament(state.History, id).Clone()
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
	}
	return found, nil
}

func (s *tournamentService) activeCopy() (*models.Tournament, error) {
	var active *models.Tournament
	s.store.view(func(state *repositories.State) {
		active = state.Active.Clone()
	})
	if active == nil {
		return nil, ErrNoActiveTournament
	}
	return active, nil
}

func (s *tournamentService) Highlights(_ context.Context) (standings.MatchHighlights, error) {
	active, err := s.activeCopy()
	if err != nil {
		return standings.MatchHighlights{}, err
	}
	return standings.Highlights(active.Matches), nil
}

func (s *tournamentService) GoalStats(_ context.Context) (GoalStats, error) {
	active, err := s.activeCopy()
	if err != nil {
		return GoalStats{}, err
	}
	return goalStats(active), nil
}

func (s *tournamentService) Podium(_ context.Context) (brackets.Podium, error) {
	active, err := s.activeCopy()
	if err != nil {
		return brackets.Podium{}, err
	}
	podium, err := brackets.ResolvePodium(active)
	if err != nil {
		if errors.Is(err, brackets.ErrNoWinner) {
			return brackets.Podium{}, ErrTournamentNotFinished
		}
		return brackets.Podium{}, err
	}
	return podium, nil
}

func findTournament(history []models.Tournament, id string) *models.Tournament {
	for i := range history {
		if history[i].ID == id {
			return &history[i]
		}
	}
	return nil
}

func withoutTournament(history []models.Tournament, id string) []models.Tournament {
	kept := make([]models.Tournament, 0, len(history))
	for _, t := range history {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return kept
}

// standingsWithout ranks the tournament as if matchID had never been played.
func standingsWithout(tournament *models.Tournament, matchID string) []models.TeamStats {
	matches := make([]models.Match, 0, len(tournament.Matches))
	for _, m := range tournament.Matches {
		if m.ID != matchID {
			matches = append(matches, m)
		}
	}
	return standings.Calculate(tournament.Teams, matches)
}
