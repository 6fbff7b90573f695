package services

import (
	"errors"

	"github.com/Dosada05/foosball-tournament/brackets"
)

// Общие ошибки сервисов, используются в маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Состояние турнира
	ErrNoActiveTournament     = errors.New("no active tournament")
	ErrActiveTournamentExists = errors.New("another tournament is active; archive it or confirm discarding it")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchNotReady          = errors.New("match does not have both teams yet")
	ErrTournamentNotFinished  = errors.New("tournament final has not been played")

	// Переходы фаз
	ErrIneligibleTransition = brackets.ErrIneligibleTransition
	ErrDrawnMatch           = brackets.ErrDrawnMatch

	// Ошибки валидации
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrInvalidFormat          = errors.New("invalid tournament format")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTooFewTeams            = errors.New("at least 4 teams are required")
	ErrOddTeamCount           = errors.New("number of teams must be even")
	ErrDuplicateTeamName      = errors.New("team names must be unique")
	ErrNegativeScore          = errors.New("score cannot be negative")
	ErrDrawNotAllowed         = errors.New("a match cannot end in a draw")
	ErrTooFewPlayers          = errors.New("at least 4 players are required")
	ErrOddPlayerCount         = errors.New("number of players must be even")
	ErrDuplicatePlayerName    = errors.New("player names must be unique")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrInvalidSkillLevel      = errors.New("skill level must be 1, 2 or 3")

	// Аутентификация
	ErrInvalidCredentials   = errors.New("invalid password")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
