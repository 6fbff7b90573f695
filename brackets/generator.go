package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/google/uuid"
)

var ErrUnknownFormat = errors.New("unknown tournament format")

type GenerateBracketParams struct {
	Teams []models.Team
	// First order value handed out; later matches count up from here
	StartOrder int
}

type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) ([]models.Match, error)

	GetName() string
}

// NewBracketGenerator returns the group-stage generator for the format.
func NewBracketGenerator(format models.Format) (BracketGenerator, error) {
	switch format {
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatTwoGroups:
		return NewTwoGroupsGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// GenerateMatches builds the group-stage schedule for teams. All matches are
// scheduled with a 0:0 score and orders start at 0.
func GenerateMatches(teams []models.Team, format models.Format) ([]models.Match, error) {
	generator, err := NewBracketGenerator(format)
	if err != nil {
		return nil, err
	}
	return generator.GenerateBracket(GenerateBracketParams{Teams: teams})
}

func newMatchID() string {
	return uuid.NewString()
}

func newScheduledMatch(teamAID, teamBID string, group models.MatchGroup, order int) models.Match {
	return models.Match{
		ID:      newMatchID(),
		TeamAID: teamAID,
		TeamBID: teamBID,
		Status:  models.MatchStatusScheduled,
		Group:   group,
		Order:   order,
	}
}
