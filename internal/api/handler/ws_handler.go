package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/infrastructure/ws"
)

// WSHandler upgrades authenticated requests to the realtime channel.
type WSHandler struct {
	upgrader websocket.Upgrader
	registry *ws.Registry
	signals  ws.SignalQueue
	cfg      ws.ClientConfig
	log      zerolog.Logger
}

func NewWSHandler(registry *ws.Registry, signals ws.SignalQueue, cfg ws.ClientConfig, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		registry: registry,
		signals:  signals,
		cfg:      cfg,
		log:      log.With().Str("component", "ws_handler").Logger(),
	}
}

// Connect handles GET /ws?token=<jwt>. The connection is registered for the
// token's user as soon as it opens and unregistered when the peer goes away.
//
// @Summary      Open the realtime channel
// @Tags         realtime
// @Param        token  query  string  true  "JWT issued by /api/login"
// @Success      101
// @Failure      401    {object}  errorResponse
// @Router       /ws [get]
func (h *WSHandler) Connect(c echo.Context) error {
	userID, err := actorID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("websocket upgrade failed")
		return nil
	}

	client := ws.NewClient(conn, h.cfg, h.log)
	session := ws.NewSession(userID, client, h.registry, h.signals, h.log)
	session.Open()
	go client.WritePump()

	defer func() {
		session.Close()
		client.Close()
	}()

	if err := client.ReadLoop(session.HandleFrame); err != nil {
		h.log.Debug().Err(err).Int64("user_id", userID).Msg("websocket closed")
	}
	return nil
}
