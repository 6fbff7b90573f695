package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/foosball-tournament/live"
	"github.com/Dosada05/foosball-tournament/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Лента только для чтения, поэтому разрешаем любой Origin
		return true
	},
}

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, ts services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		logger:            logger,
	}
}

// ServeWs godoc
// @Summary Живая лента турнира
// @Tags live
// @Description WebSocket. Первое сообщение TOURNAMENT_SNAPSHOT, затем TOURNAMENT_UPDATED после каждого изменения.
// @Success 101 "Switching Protocols"
// @Router /ws/live [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту
		h.logger.Warn("Failed to upgrade live connection", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.TournamentRoom)

	snapshot := h.tournamentService.Snapshot(r.Context())
	err = client.SendMessage(live.Message{
		Type:    live.MessageSnapshot,
		Payload: snapshot,
		RoomID:  live.TournamentRoom,
	})
	if err != nil {
		h.logger.Error("Failed to encode live snapshot", slog.Any("error", err))
		conn.Close()
		return
	}

	if !h.hub.Join(client) {
		h.logger.Warn("Live hub stopped, rejecting viewer")
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("Live viewer connected", slog.String("remote_addr", r.RemoteAddr))
}
