package handlers

import (
	"net/http"

	"github.com/Dosada05/foosball-tournament/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(ps services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: ps}
}

type predictionInput struct {
	PlayerName      string `json:"player_name"`
	PredictedTeamID string `json:"predicted_team_id"`
}

// Add godoc
// @Summary Сделать прогноз
// @Tags predictions
// @Description Гость указывает, какая команда выиграет финал.
// @Accept json
// @Produce json
// @Param input body predictionInput true "Имя и команда"
// @Success 201 {object} map[string]interface{} "prediction"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Router /predictions [post]
func (h *PredictionHandler) Add(w http.ResponseWriter, r *http.Request) {
	var input predictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.predictionService.AddPrediction(r.Context(), input.PlayerName, input.PredictedTeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Все прогнозы
// @Tags predictions
// @Produce json
// @Success 200 {object} map[string]interface{} "predictions"
// @Router /predictions [get]
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	predictions := h.predictionService.ListPredictions(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Distribution godoc
// @Summary Распределение прогнозов по командам
// @Tags predictions
// @Produce json
// @Success 200 {object} map[string]interface{} "distribution"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Router /predictions/distribution [get]
func (h *PredictionHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	shares, err := h.predictionService.Distribution(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"distribution": shares}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Results godoc
// @Summary Итоги прогнозов
// @Tags predictions
// @Produce json
// @Success 200 {object} map[string]interface{} "results"
// @Failure 404 {object} map[string]string "Нет активного турнира"
// @Failure 409 {object} map[string]string "Финал еще не сыгран"
// @Router /predictions/results [get]
func (h *PredictionHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.predictionService.Results(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
