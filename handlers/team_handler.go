package handlers

import (
	"net/http"

	"github.com/Dosada05/foosball-tournament/models"
	"github.com/Dosada05/foosball-tournament/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type generateTeamsInput struct {
	Players []models.Player `json:"players"`
}

type validateTeamsInput struct {
	Teams []models.Team `json:"teams"`
}

// Generate godoc
// @Summary Сгенерировать сбалансированные команды
// @Tags teams
// @Description Сильнейший игрок в паре со слабейшим. Уровень 1 - хорошо, 3 - есть куда расти.
// @Accept json
// @Produce json
// @Param input body generateTeamsInput true "Игроки"
// @Success 200 {object} map[string]interface{} "teams"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Router /teams/generate [post]
func (h *TeamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input generateTeamsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.GenerateBalancedTeams(r.Context(), input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Validate godoc
// @Summary Проверить список команд
// @Tags teams
// @Description Убирает пустые строки и проверяет количество и уникальность названий.
// @Accept json
// @Produce json
// @Param input body validateTeamsInput true "Команды"
// @Success 200 {object} map[string]interface{} "teams"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Router /teams/validate [post]
func (h *TeamHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var input validateTeamsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ValidateTeams(r.Context(), input.Teams)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
