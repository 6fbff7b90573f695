package models

import "time"

// Prediction records which team a guest expects to win the final.
type Prediction struct {
	PlayerName      string    `json:"player_name"`
	PredictedTeamID string    `json:"predicted_team_id"`
	Timestamp       time.Time `json:"timestamp"`
}
