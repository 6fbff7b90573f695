package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/repositories"
	"github.com/Dosada05/foosball-tournament/storage"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 12, 20, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	last     interface{}
}

func (n *recordingNotifier) Publish(messageType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, messageType)
	n.last = payload
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// gatedNotifier records the finished match count of every published
// snapshot. Once armed, the next Publish blocks until release is closed.
type gatedNotifier struct {
	mu       sync.Mutex
	armed    bool
	entered  chan struct{}
	release  chan struct{}
	finished []int
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{entered: make(chan struct{}), release: make(chan struct{})}
}

func (n *gatedNotifier) arm() {
	n.mu.Lock()
	n.armed = true
	n.mu.Unlock()
}

func (n *gatedNotifier) Publish(_ string, payload interface{}) {
	n.mu.Lock()
	block := n.armed
	n.armed = false
	n.mu.Unlock()

	if block {
		close(n.entered)
		<-n.release
	}

	snap, _ := payload.(Snapshot)
	n.mu.Lock()
	n.finished = append(n.finished, snap.FinishedMatches)
	n.mu.Unlock()
}

func (n *gatedNotifier) frames() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.finished...)
}

type fakeUploader struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.uploads[key] = buf.Bytes()
	u.mu.Unlock()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// flakyRepository fails every Save while failSaves is set.
type flakyRepository struct {
	repositories.StateRepository
	failSaves bool
}

func (r *flakyRepository) Save(ctx context.Context, state repositories.State, keys ...repositories.StateKey) error {
	if r.failSaves {
		return errors.New("database unavailable")
	}
	return r.StateRepository.Save(ctx, state, keys...)
}

type testEnv struct {
	kv          repositories.KVStore
	repo        *flakyRepository
	store       *Store
	notifier    *recordingNotifier
	uploader    *fakeUploader
	tournaments TournamentService
	predictions PredictionService
	teams       TeamService
}

func newTestEnv(t *testing.T, opts ...StoreOption) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:       repositories.NewMemoryKVStore(),
		notifier: &recordingNotifier{},
		uploader: newFakeUploader(),
	}
	env.repo = &flakyRepository{StateRepository: repositories.NewStateRepository(env.kv)}

	base := []StoreOption{
		WithNotifier(env.notifier),
		WithUploader(env.uploader),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs("id")),
	}
	env.store = NewStore(env.repo, discardLogger(), append(base, opts...)...)
	require.NoError(t, env.store.Load(context.Background()))

	env.tournaments = NewTournamentService(env.store, discardLogger())
	env.predictions = NewPredictionService(env.store, discardLogger())
	env.teams = NewTeamService(env.store)
	return env
}

func fourTeams() []models.Team {
	return []models.Team{
		{ID: "a", Name: "Alpha", Player1: "Ann", Player2: "Adam"},
		{ID: "b", Name: "Bravo"},
		{ID: "c", Name: "Charlie"},
		{ID: "d", Name: "Delta"},
	}
}

func createFourTeamTournament(t *testing.T, env *testEnv) *models.Tournament {
	t.Helper()
	tournament, err := env.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:   "Winter Cup",
		Format: models.FormatRoundRobin,
		Teams:  fourTeams(),
	})
	require.NoError(t, err)
	return tournament
}

// matchBetween finds the match between two teams in either slot order.
func matchBetween(t *testing.T, tournament *models.Tournament, teamA, teamB string) models.Match {
	t.Helper()
	for _, m := range tournament.Matches {
		if (m.TeamAID == teamA && m.TeamBID == teamB) || (m.TeamAID == teamB && m.TeamBID == teamA) {
			return m
		}
	}
	t.Fatalf("no match between %s and %s", teamA, teamB)
	return models.Match{}
}

// play records a result where winner scored winnerGoals and loser loserGoals.
func play(t *testing.T, env *testEnv, winner, loser string, winnerGoals, loserGoals int) {
	t.Helper()
	snap := env.tournaments.Snapshot(context.Background())
	require.NotNil(t, snap.Tournament)
	m := matchBetween(t, snap.Tournament, winner, loser)

	scoreA, scoreB := winnerGoals, loserGoals
	if m.TeamAID != winner {
		scoreA, scoreB = loserGoals, winnerGoals
	}
	_, err := env.tournaments.RecordResult(context.Background(), m.ID, scoreA, scoreB)
	require.NoError(t, err)
}

func playGroupStage(t *testing.T, env *testEnv) {
	t.Helper()
	play(t, env, "a", "b", 3, 1)
	play(t, env, "c", "d", 2, 0)
	play(t, env, "a", "c", 1, 0)
	play(t, env, "b", "d", 4, 2)
	play(t, env, "a", "d", 5, 0)
	play(t, env, "b", "c", 2, 1)
}

func groupMatchID(t *testing.T, tournament *models.Tournament, group models.MatchGroup) string {
	t.Helper()
	for _, m := range tournament.Matches {
		if m.Group == group {
			return m.ID
		}
	}
	t.Fatalf("no %s match", group)
	return ""
}
