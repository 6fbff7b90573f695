package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/foosball-tournament/live"
	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/Dosada05/foosball-tournament/storage"
	"github.com/google/uuid"
)

// DefaultRecentLimit caps the recent matches view.
const DefaultRecentLimit = 5

// Notifier receives a snapshot after every successful mutation. Publish is
// called with the store lock held and must return without blocking.
type Notifier interface {
	Publish(messageType string, payload interface{})
}

// Store owns the tracker state. Every mutation runs on a copy which is
// persisted before it replaces the current state, so a failed write leaves
// the store unchanged.
type Store struct {
	mu    sync.RWMutex
	state repositories.State

	repo        repositories.StateRepository
	uploader    storage.FileUploader
	notifier    Notifier
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	recentLimit int
}

type StoreOption func(*Store)

// WithUploader enables exporting archived tournaments.
func WithUploader(uploader storage.FileUploader) StoreOption {
	return func(s *Store) { s.uploader = uploader }
}

func WithNotifier(notifier Notifier) StoreOption {
	return func(s *Store) { s.notifier = notifier }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) { s.newID = newID }
}

func WithRecentLimit(limit int) StoreOption {
	return func(s *Store) {
		if limit > 0 {
			s.recentLimit = limit
		}
	}
}

func NewStore(repo repositories.StateRepository, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		state:       emptyState(),
		repo:        repo,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with what the repository holds.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tournament state: %w", err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	attrs := []any{
		slog.Int("history", len(state.History)),
		slog.Int("predictions", len(state.Predictions)),
	}
	if state.Active != nil {
		attrs = append(attrs, slog.String("active_tournament_id", state.Active.ID))
	}
	s.logger.InfoContext(ctx, "Tournament state loaded", attrs...)
	return nil
}

// view runs fn under the read lock. fn must not keep references into state.
func (s *Store) view(fn func(state *repositories.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// mutate applies fn to a copy of the state and persists the keys fn reports
// as touched. Returning no keys means nothing changed.
func (s *Store) mutate(ctx context.Context, fn func(state *repositories.State) ([]repositories.StateKey, error)) error {
	s.mu.Lock()

	next := cloneState(s.state)
	keys, err := fn(&next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(keys) == 0 {
		s.mu.Unlock()
		return nil
	}

	if err := s.repo.Save(ctx, next, keys...); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to persist tournament state", slog.Any("error", err))
		return fmt.Errorf("failed to persist tournament state: %w", err)
	}
	s.state = next
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// clear wipes every persisted key and resets the state.
func (s *Store) clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.repo.Clear(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to clear tournament state: %w", err)
	}
	s.state = emptyState()
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// publishLocked sends the current state to the notifier. The caller holds
// s.mu, so frames leave in the same order the mutations were applied.
// Notifier.Publish must not block or call back into the store.
func (s *Store) publishLocked() {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(live.MessageUpdated, buildSnapshot(&s.state, s.recentLimit))
}

func emptyState() repositories.State {
	return repositories.State{
		History:           []models.Tournament{},
		PreviousStandings: []models.TeamStats{},
		Predictions:       []models.Prediction{},
	}
}

func cloneState(state repositories.State) repositories.State {
	next := repositories.State{
		Active:            state.Active.Clone(),
		History:           make([]models.Tournament, len(state.History)),
		PreviousStandings: append([]models.TeamStats{}, state.PreviousStandings...),
		Predictions:       append([]models.Prediction{}, state.Predictions...),
	}
	for i := range state.History {
		next.History[i] = *state.History[i].Clone()
	}
	return next
}
