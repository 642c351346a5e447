package handlers

import (
	"log/slog"
	"net/http"

	"github.com/goodplay/goodplay-backend/live"
	"github.com/goodplay/goodplay-backend/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the frontend domains before exposing this
	// publicly.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
}

func NewWebSocketHandler(hub *live.Hub, tournamentService services.TournamentService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
	}
}

// ServeTournament subscribes the caller to live standings updates for one
// tournament. Room ids are tournament object ids.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := objectIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		slog.Debug("websocket upgrade failed",
			slog.String("tournament_id", tournamentID.Hex()),
			slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, tournamentID.Hex())
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
