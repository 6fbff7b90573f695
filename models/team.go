package models

// Team is a pair of players registered at setup. Teams are fixed once the
// tournament is created.
type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
}

// Players returns the non-empty player names of the team.
func (t Team) Players() []string {
	players := make([]string, 0, 2)
	if t.Player1 != "" {
		players = append(players, t.Player1)
	}
	if t.Player2 != "" {
		players = append(players, t.Player2)
	}
	return players
}
