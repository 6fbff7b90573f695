package models

// SkillLevel grades a player for team balancing: 1 is the strongest.
type SkillLevel int

const (
	SkillGood       SkillLevel = 1
	SkillAverage    SkillLevel = 2
	SkillImprovable SkillLevel = 3
)

func (l SkillLevel) IsValid() bool {
	return l >= SkillGood && l <= SkillImprovable
}

func (l SkillLevel) Label() string {
	switch l {
	case SkillGood:
		return "good"
	case SkillAverage:
		return "average"
	case SkillImprovable:
		return "room for improvement"
	default:
		return "unknown"
	}
}

type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SkillLevel SkillLevel `json:"skill_level"`
}

// GeneratedTeam is a balanced pairing proposed by the team generator.
type GeneratedTeam struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Player1      Player  `json:"player1"`
	Player2      Player  `json:"player2"`
	AverageSkill float64 `json:"average_skill"`
}

// Team converts the pairing into a tournament team.
func (g GeneratedTeam) Team() Team {
	return Team{
		ID:      g.ID,
		Name:    g.Name,
		Player1: g.Player1.Name,
		Player2: g.Player2.Name,
	}
}
