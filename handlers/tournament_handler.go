package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

type scoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

func (in scoreInput) validate() map[string]string {
	errs := make(map[string]string)
	if in.ScoreA == nil {
		errs["score_a"] = "must be provided"
	}
	if in.ScoreB == nil {
		errs["score_b"] = "must be provided"
	}
	return errs
}

// Snapshot godoc
// @Summary Текущий турнир
// @Tags tournament
// @Description Активный турнир вместе с таблицей, последними и предстоящими матчами и флагами фаз.
// @Produce json
// @Success 200 {object} map[string]interface{} "snapshot"
// @Router /tournament [get]
func (h *TournamentHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tournamentService.Snapshot(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать турнир
// @Tags tournament
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Название, формат и команды"
// @Success 201 {object} map[string]interface{} "tournament"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /tournament [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateScore godoc
// @Summary Изменить счет матча
// @Tags matches
// @Description Сохраняет счет без проверки и без завершения матча.
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body scoreInput true "Счет"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 422 {object} map[string]string "Не указан счет"
// @Security BearerAuth
// @Router /tournament/matches/{matchID}/score [patch]
func (h *TournamentHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	h.applyScore(w, r, h.tournamentService.UpdateMatchScore)
}

// RecordResult godoc
// @Summary Внести результат матча
// @Tags matches
// @Description Проверяет счет (без ничьих и отрицательных значений) и завершает матч.
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body scoreInput true "Счет"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 400 {object} map[string]string "Ничья или отрицательный счет"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "В матче еще нет обеих команд"
// @Security BearerAuth
// @Router /tournament/matches/{matchID}/result [post]
func (h *TournamentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	h.applyScore(w, r, h.tournamentService.RecordResult)
}

type scoreApplier func(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error)

func (h *TournamentHandler) applyScore(w http.ResponseWriter, r *http.Request, apply scoreApplier) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if errs := input.validate(); len(errs) > 0 {
		failedValidationResponse(w, r, errs)
		return
	}

	match, err := apply(r.Context(), matchID, *input.ScoreA, *input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinishMatch godoc
// @Summary Завершить матч
// @Tags matches
// @Description Завершает матч с уже сохраненным счетом. Ничья не допускается.
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{} "match"
// @Failure 400 {object} map[string]string "Ничья"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "В матче еще нет обеих команд"
// @Security BearerAuth
// @Router /tournament/matches/{matchID}/finish [post]
func (h *TournamentHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.FinishMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type transitionFunc func(ctx context.Context) (*models.Tournament, error)

func (h *TournamentHandler) transition(w http.ResponseWriter, r *http.Request, status int, apply transitionFunc) {
	tournament, err := apply(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, status, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartPlayoff godoc
// @Summary Начать плей-офф
// @Tags tournament
// @Description Создает полуфиналы 1-4 и 2-3 по итогам группового этапа.
// @Produce json
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 409 {object} map[string]string "Групповой этап не завершен"
// @Security BearerAuth
// @Router /tournament/playoff [post]
func (h *TournamentHandler) StartPlayoff(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.tournamentService.StartPlayoff)
}

// AdvanceToFinals godoc
// @Summary Перейти к финалу
// @Tags tournament
// @Description Заполняет финал и матч за третье место победителями и проигравшими полуфиналов.
// @Produce json
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 409 {object} map[string]string "Полуфиналы не сыграны"
// @Security BearerAuth
// @Router /tournament/finals [post]
func (h *TournamentHandler) AdvanceToFinals(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.tournamentService.AdvanceToFinals)
}

// Archive godoc
// @Summary Архивировать турнир
// @Tags tournament
// @Produce json
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Security BearerAuth
// @Router /tournament/archive [post]
func (h *TournamentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.tournamentService.ArchiveTournament)
}

// EndEarly godoc
// @Summary Завершить турнир досрочно
// @Tags tournament
// @Description Архивирует турнир в текущем состоянии.
// @Produce json
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Security BearerAuth
// @Router /tournament/end-early [post]
func (h *TournamentHandler) EndEarly(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.tournamentService.EndTournamentEarly)
}

// Standings godoc
// @Summary Турнирная таблица
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "standings, previous_standings, position_changes"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /tournament/standings [get]
func (h *TournamentHandler) Standings(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.activeSnapshot(w, r)
	if !ok {
		return
	}
	response := jsonResponse{
		"standings":          snapshot.Standings,
		"previous_standings": snapshot.PreviousStandings,
		"position_changes":   snapshot.PositionChanges,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecentMatches godoc
// @Summary Последние сыгранные матчи
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "matches"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /tournament/matches/recent [get]
func (h *TournamentHandler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.activeSnapshot(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": snapshot.RecentMatches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpcomingMatches godoc
// @Summary Предстоящие матчи
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "matches"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /tournament/matches/upcoming [get]
func (h *TournamentHandler) UpcomingMatches(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.activeSnapshot(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": snapshot.UpcomingMatches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) activeSnapshot(w http.ResponseWriter, r *http.Request) (services.Snapshot, bool) {
	snapshot := h.tournamentService.Snapshot(r.Context())
	if snapshot.Tournament == nil {
		mapServiceErrorToHTTP(w, r, services.ErrNoActiveTournament)
		return snapshot, false
	}
	return snapshot, true
}

// Highlights godoc
// @Summary Самые яркие матчи
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "highlights"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /tournament/highlights [get]
func (h *TournamentHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.tournamentService.Highlights(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"highlights": highlights}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GoalStats godoc
// @Summary Статистика голов
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "goal_stats"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /tournament/goal-stats [get]
func (h *TournamentHandler) GoalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tournamentService.GoalStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"goal_stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Podium godoc
// @Summary Призеры турнира
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "podium"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Failure 409 {object} map[string]string "Финал еще не сыгран"
// @Router /tournament/podium [get]
func (h *TournamentHandler) Podium(w http.ResponseWriter, r *http.Request) {
	podium, err := h.tournamentService.Podium(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"podium": podium}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeam godoc
// @Summary Команда активного турнира
// @Tags views
// @Produce json
// @Param teamID path string true "Team ID"
// @Success 200 {object} map[string]interface{} "team"
// @Failure 404 {object} map[string]string "Команда не найдена"
// @Router /tournament/teams/{teamID} [get]
func (h *TournamentHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.GetTeamByID(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
