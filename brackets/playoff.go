package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/standings"
)

// PlayoffSize is the number of teams seeded into the knockout bracket.
const PlayoffSize = 4

var (
	ErrIneligibleTransition = errors.New("tournament is not eligible for this transition")
	ErrDrawnMatch           = errors.New("match ended in a draw")
	ErrNoWinner             = errors.New("match has no winner yet")
)

// CanStartPlayoff reports whether the group stage is complete.
func CanStartPlayoff(t *models.Tournament) bool {
	if t == nil || t.Phase != models.PhaseGroup {
		return false
	}
	for _, m := range t.Matches {
		if m.Group.IsGroupStage() && !m.IsFinished() {
			return false
		}
	}
	return true
}

// StartPlayoff seeds the top four of the standings into two semifinals
// (1 vs 4, 2 vs 3) and appends empty third-place and final matches.
func StartPlayoff(t *models.Tournament) error {
	if !CanStartPlayoff(t) {
		return fmt.Errorf("%w: group stage is not complete", ErrIneligibleTransition)
	}

	table := standings.Calculate(t.Teams, t.Matches)
	if len(table) < PlayoffSize {
		return fmt.Errorf("%w: playoff needs %d teams, found %d", ErrIneligibleTransition, PlayoffSize, len(table))
	}
	seeds := table[:PlayoffSize]

	order := t.NextOrder()
	playoff := []models.Match{
		newScheduledMatch(seeds[0].TeamID, seeds[3].TeamID, models.GroupSemifinal, order),
		newScheduledMatch(seeds[1].TeamID, seeds[2].TeamID, models.GroupSemifinal, order+1),
		newScheduledMatch("", "", models.GroupThirdPlace, order+2),
		newScheduledMatch("", "", models.GroupFinal, order+3),
	}

	t.Matches = append(t.Matches, playoff...)
	t.Phase = models.PhasePlayoff
	return nil
}

// CanAdvanceToFinals reports whether both semifinals are decided and the
// final has not been filled yet.
func CanAdvanceToFinals(t *models.Tournament) bool {
	if t == nil || t.Phase != models.PhasePlayoff {
		return false
	}
	semis := t.MatchesInGroup(models.GroupSemifinal)
	if len(semis) != 2 {
		return false
	}
	for _, m := range semis {
		if !m.IsFinished() {
			return false
		}
	}
	final := groupMatchIndex(t, models.GroupFinal)
	return final >= 0 && t.Matches[final].TeamAID == ""
}

// AdvanceToFinals fills the third-place match with the semifinal losers and
// the final with the winners. Nothing is changed when either semifinal
// cannot produce a winner.
func AdvanceToFinals(t *models.Tournament) error {
	if !CanAdvanceToFinals(t) {
		return fmt.Errorf("%w: semifinals are not decided or finals are already set", ErrIneligibleTransition)
	}

	semis := t.MatchesInGroup(models.GroupSemifinal)
	winner1, loser1, err := MatchWinner(semis[0])
	if err != nil {
		return fmt.Errorf("semifinal 1: %w", err)
	}
	winner2, loser2, err := MatchWinner(semis[1])
	if err != nil {
		return fmt.Errorf("semifinal 2: %w", err)
	}

	thirdPlace := groupMatchIndex(t, models.GroupThirdPlace)
	final := groupMatchIndex(t, models.GroupFinal)
	if thirdPlace < 0 || final < 0 {
		return fmt.Errorf("%w: bracket is missing placeholder matches", ErrIneligibleTransition)
	}

	t.Matches[thirdPlace].TeamAID, t.Matches[thirdPlace].TeamBID = loser1, loser2
	t.Matches[final].TeamAID, t.Matches[final].TeamBID = winner1, winner2
	return nil
}

// IsFinished reports whether both medal matches have been played.
func IsFinished(t *models.Tournament) bool {
	if t == nil || t.Phase != models.PhasePlayoff {
		return false
	}
	thirdPlace, okThird := groupMatch(t, models.GroupThirdPlace)
	final, okFinal := groupMatch(t, models.GroupFinal)
	return okThird && okFinal && thirdPlace.IsFinished() && final.IsFinished()
}

// MatchWinner returns the winning and losing team ids of a finished match.
func MatchWinner(m models.Match) (winner, loser string, err error) {
	if !m.IsFinished() || !m.HasTeams() {
		return "", "", ErrNoWinner
	}
	switch {
	case m.ScoreA > m.ScoreB:
		return m.TeamAID, m.TeamBID, nil
	case m.ScoreB > m.ScoreA:
		return m.TeamBID, m.TeamAID, nil
	default:
		return "", "", ErrDrawnMatch
	}
}

// FinalMatch returns the final of the bracket if it has been created.
func FinalMatch(t *models.Tournament) (models.Match, bool) {
	return groupMatch(t, models.GroupFinal)
}

// ThirdPlaceMatch returns the third-place match if it has been created.
func ThirdPlaceMatch(t *models.Tournament) (models.Match, bool) {
	return groupMatch(t, models.GroupThirdPlace)
}

// Podium lists the medal winners. ThirdPlace stays empty until the
// third-place match is decided.
type Podium struct {
	Champion   string `json:"champion"`
	RunnerUp   string `json:"runner_up"`
	ThirdPlace string `json:"third_place,omitempty"`
}

// ResolvePodium reads the medal winners from the final and third-place match.
func ResolvePodium(t *models.Tournament) (Podium, error) {
	final, ok := FinalMatch(t)
	if !ok {
		return Podium{}, ErrNoWinner
	}
	champion, runnerUp, err := MatchWinner(final)
	if err != nil {
		return Podium{}, err
	}
	podium := Podium{Champion: champion, RunnerUp: runnerUp}
	if third, ok := ThirdPlaceMatch(t); ok {
		if winner, _, err := MatchWinner(third); err == nil {
			podium.ThirdPlace = winner
		}
	}
	return podium, nil
}

func groupMatch(t *models.Tournament, group models.MatchGroup) (models.Match, bool) {
	i := groupMatchIndex(t, group)
	if i < 0 {
		return models.Match{}, false
	}
	return t.Matches[i], true
}

// groupMatchIndex returns the index of the first match tagged with group or -1.
func groupMatchIndex(t *models.Tournament, group models.MatchGroup) int {
	if t == nil {
		return -1
	}
	for i := range t.Matches {
		if t.Matches[i].Group == group {
			return i
		}
	}
	return -1
}
