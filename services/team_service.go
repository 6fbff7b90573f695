package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/foosball-tournament/models"
)

// MinTeams is the smallest roster that can reach the top-4 playoff.
const MinTeams = 4

type TeamService interface {
	ValidateTeams(ctx context.Context, teams []models.Team) ([]models.Team, error)
	GenerateBalancedTeams(ctx context.Context, players []models.Player) ([]models.GeneratedTeam, error)
}

type teamService struct {
	newID func() string
}

func NewTeamService(store *Store) TeamService {
	return &teamService{newID: store.newID}
}

func (s *teamService) ValidateTeams(_ context.Context, teams []models.Team) ([]models.Team, error) {
	return normalizeTeams(teams, s.newID)
}

// normalizeTeams trims names, drops rows without a name and assigns missing
// ids. The remaining roster must be even, at least MinTeams long and use
// each name once, ignoring case.
func normalizeTeams(teams []models.Team, newID func() string) ([]models.Team, error) {
	result := make([]models.Team, 0, len(teams))
	seen := make(map[string]bool, len(teams))

	for _, team := range teams {
		team.Name = strings.TrimSpace(team.Name)
		if team.Name == "" {
			continue
		}
		key := strings.ToLower(team.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeamName, team.Name)
		}
		seen[key] = true

		team.ID = strings.TrimSpace(team.ID)
		if team.ID == "" {
			team.ID = newID()
		}
		team.Player1 = strings.TrimSpace(team.Player1)
		team.Player2 = strings.TrimSpace(team.Player2)
		result = append(result, team)
	}

	if len(result) < MinTeams {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewTeams, len(result))
	}
	if len(result)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddTeamCount, len(result))
	}
	return result, nil
}

// GenerateBalancedTeams ranks players by skill, splits them into a stronger
// and a weaker half and pairs the best remaining player of the first half
// with the worst of the second.
func (s *teamService) GenerateBalancedTeams(_ context.Context, players []models.Player) ([]models.GeneratedTeam, error) {
	pool := make([]models.Player, 0, len(players))
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, ErrPlayerNameRequired
		}
		if !p.SkillLevel.IsValid() {
			return nil, fmt.Errorf("%w: %s has %d", ErrInvalidSkillLevel, p.Name, p.SkillLevel)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayerName, p.Name)
		}
		seen[key] = true
		if p.ID == "" {
			p.ID = s.newID()
		}
		pool = append(pool, p)
	}

	if len(pool) < MinTeams {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPlayers, len(pool))
	}
	if len(pool)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddPlayerCount, len(pool))
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].SkillLevel < pool[j].SkillLevel })

	half := len(pool) / 2
	better, worse := pool[:half], pool[half:]

	teams := make([]models.GeneratedTeam, 0, half)
	for i := 0; i < half; i++ {
		p1 := better[i]
		p2 := worse[len(worse)-1-i]
		teams = append(teams, models.GeneratedTeam{
			ID:           s.newID(),
			Name:         fmt.Sprintf("Team %d", i+1),
			Player1:      p1,
			Player2:      p2,
			AverageSkill: float64(p1.SkillLevel+p2.SkillLevel) / 2,
		})
	}

	sort.SliceStable(teams, func(i, j int) bool { return teams[i].AverageSkill < teams[j].AverageSkill })
	return teams, nil
}
