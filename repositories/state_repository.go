package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/foosball-tournament/models"
	"golang.org/x/sync/errgroup"
)

type StateKey string

const (
	ActiveTournamentKey  StateKey = "foosball-tournament"
	HistoryKey           StateKey = "foosball-tournament-history"
	PreviousStandingsKey StateKey = "foosball-previous-standings"
	PredictionsKey       StateKey = "foosball-predictions"
)

// AllStateKeys lists every blob owned by the tracker.
var AllStateKeys = []StateKey{ActiveTournamentKey, HistoryKey, PreviousStandingsKey, PredictionsKey}

// State is everything the tracker persists. Active is nil when no
// tournament is running.
type State struct {
	Active            *models.Tournament
	History           []models.Tournament
	PreviousStandings []models.TeamStats
	Predictions       []models.Prediction
}

type StateRepository interface {
	Load(ctx context.Context) (State, error)
	// Save writes the named keys from state. A nil Active deletes its key.
	Save(ctx context.Context, state State, keys ...StateKey) error
	Clear(ctx context.Context) error
}

type kvStateRepository struct {
	kv KVStore
}

func NewStateRepository(kv KVStore) StateRepository {
	return &kvStateRepository{kv: kv}
}

func (r *kvStateRepository) Load(ctx context.Context) (State, error) {
	var state State
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var active models.Tournament
		found, err := r.read(gCtx, ActiveTournamentKey, &active)
		if found && active.ID != "" {
			state.Active = &active
		}
		return err
	})
	g.Go(func() error {
		_, err := r.read(gCtx, HistoryKey, &state.History)
		return err
	})
	g.Go(func() error {
		_, err := r.read(gCtx, PreviousStandingsKey, &state.PreviousStandings)
		return err
	})
	g.Go(func() error {
		_, err := r.read(gCtx, PredictionsKey, &state.Predictions)
		return err
	})

	if err := g.Wait(); err != nil {
		return State{}, err
	}

	if state.History == nil {
		state.History = []models.Tournament{}
	}
	if state.PreviousStandings == nil {
		state.PreviousStandings = []models.TeamStats{}
	}
	if state.Predictions == nil {
		state.Predictions = []models.Prediction{}
	}
	return state, nil
}

func (r *kvStateRepository) read(ctx context.Context, key StateKey, v interface{}) (bool, error) {
	raw, err := r.kv.Get(ctx, string(key))
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := DecodeState(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *kvStateRepository) Save(ctx context.Context, state State, keys ...StateKey) error {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		var value interface{}
		switch key {
		case ActiveTournamentKey:
			if state.Active == nil {
				entries = append(entries, Entry{Key: string(key)})
				continue
			}
			value = state.Active
		case HistoryKey:
			value = nonNil(state.History)
		case PreviousStandingsKey:
			value = nonNil(state.PreviousStandings)
		case PredictionsKey:
			value = nonNil(state.Predictions)
		default:
			return fmt.Errorf("unknown state key %q", key)
		}

		blob, err := EncodeState(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries = append(entries, Entry{Key: string(key), Value: blob})
	}
	return r.kv.Put(ctx, entries...)
}

func (r *kvStateRepository) Clear(ctx context.Context) error {
	keys := make([]string, len(AllStateKeys))
	for i, key := range AllStateKeys {
		keys[i] = string(key)
	}
	return r.kv.Delete(ctx, keys...)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
