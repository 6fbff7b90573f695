package brackets

import (
	"github.com/Dosada05/foosball-tournament/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket pairs every team with every other team exactly once.
// Pairs are emitted in nested-loop order (i ascending, then j ascending).
func (g *RoundRobinGenerator) GenerateBracket(params GenerateBracketParams) ([]models.Match, error) {
	matches, _ := roundRobinPairs(params.Teams, models.GroupNone, params.StartOrder)
	return matches, nil
}

type TwoGroupsGenerator struct{}

func NewTwoGroupsGenerator() BracketGenerator {
	return &TwoGroupsGenerator{}
}

func (g *TwoGroupsGenerator) GetName() string {
	return "TwoGroups"
}

// GenerateBracket splits the roster into group A (the first ceil(n/2) teams)
// and group B (the rest) and plays a round robin inside each group. Group A
// matches come first and the order counter runs on into group B.
func (g *TwoGroupsGenerator) GenerateBracket(params GenerateBracketParams) ([]models.Match, error) {
	groupA, groupB := SplitGroups(params.Teams)

	matchesA, next := roundRobinPairs(groupA, models.GroupA, params.StartOrder)
	matchesB, _ := roundRobinPairs(groupB, models.GroupB, next)

	return append(matchesA, matchesB...), nil
}

// SplitGroups keeps input order: group A gets the larger half when n is odd.
func SplitGroups(teams []models.Team) (groupA, groupB []models.Team) {
	midpoint := (len(teams) + 1) / 2
	return teams[:midpoint], teams[midpoint:]
}

// roundRobinPairs returns the matches and the next unused order value.
// Fewer than two teams yield no matches.
func roundRobinPairs(teams []models.Team, group models.MatchGroup, order int) ([]models.Match, int) {
	n := len(teams)
	matches := make([]models.Match, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matches = append(matches, newScheduledMatch(teams[i].ID, teams[j].ID, group, order))
			order++
		}
	}
	return matches, order
}
