package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/foosball-tournament/services"
)

// HistoryHandler serves archived tournaments.
type HistoryHandler struct {
	tournamentService services.TournamentService
}

func NewHistoryHandler(ts services.TournamentService) *HistoryHandler {
	return &HistoryHandler{tournamentService: ts}
}

// List godoc
// @Summary Архив турниров
// @Tags history
// @Description Архивированные турниры, новые первыми.
// @Produce json
// @Success 200 {object} map[string]interface{} "tournaments"
// @Router /history [get]
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	history := h.tournamentService.ListHistory(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Турнир из архива
// @Tags history
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /history/{tournamentID} [get]
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetHistoricalTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Load godoc
// @Summary Загрузить турнир из архива
// @Tags history
// @Description Делает архивный турнир активным. Если активный турнир уже есть, нужен discard=true.
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param discard query bool false "Отбросить текущий активный турнир"
// @Success 200 {object} map[string]interface{} "tournament"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Есть активный турнир"
// @Security BearerAuth
// @Router /history/{tournamentID}/load [post]
func (h *HistoryHandler) Load(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	discard := false
	if raw := r.URL.Query().Get("discard"); raw != "" {
		discard, err = strconv.ParseBool(raw)
		if err != nil {
			failedValidationResponse(w, r, map[string]string{"discard": "must be a boolean"})
			return
		}
	}

	tournament, err := h.tournamentService.LoadTournament(r.Context(), id, discard)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить турнир из архива
// @Tags history
// @Param tournamentID path string true "Tournament ID"
// @Success 204 "Удалено"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /history/{tournamentID} [delete]
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAll godoc
// @Summary Удалить все данные
// @Tags history
// @Description Удаляет активный турнир, архив, прогнозы и сохраненную таблицу.
// @Success 204 "Удалено"
// @Security BearerAuth
// @Router /data [delete]
func (h *HistoryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.ClearAllData(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
