package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/realtime"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsMsgJoin  = "join"
	wsMsgLeave = "leave"
	wsMsgPing  = "ping"

	wsEventJoined = "joined"
	wsEventLeft   = "left"
	wsEventPong   = "pong"
	wsEventError  = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// WSHandler upgrades live notification connections. By default any client
// may join any room it names. With requireAuth the handshake must carry a
// valid ?token= and the client is bound to that identity.
type WSHandler struct {
	hub         *realtime.Hub
	validator   middleware.TokenValidator
	requireAuth bool
	cfg         realtime.Config
}

func NewWSHandler(hub *realtime.Hub, validator middleware.TokenValidator, requireAuth bool, cfg realtime.Config) *WSHandler {
	return &WSHandler{hub: hub, validator: validator, requireAuth: requireAuth, cfg: cfg}
}

func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c echo.Context) error {
	var identity string
	if h.requireAuth {
		payload, err := h.validator.Validate(c.QueryParam("token"))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, middleware.InvalidTokenMessage)
		}
		identity = payload.ID
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		l := logger.Ctx(c.Request().Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := realtime.NewClient(uuid.New().String(), h.hub, conn, h.cfg)
	client.Identity = identity
	h.hub.Register(client)

	switch {
	case identity != "":
		h.hub.Join(client, identity)
	case c.QueryParam("userId") != "":
		h.hub.Join(client, c.QueryParam("userId"))
	}

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
	return nil
}

func (h *WSHandler) handleMessage(client *realtime.Client, message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		client.SendFrame(wsEventError, "Invalid message format")
		return
	}

	switch msg.Type {
	case wsMsgJoin:
		if !client.CanJoin(msg.UserID) {
			client.SendFrame(wsEventError, "Cannot join room")
			return
		}
		h.hub.Join(client, msg.UserID)
		client.SendFrame(wsEventJoined, msg.UserID)

	case wsMsgLeave:
		h.hub.Leave(client, msg.UserID)
		client.SendFrame(wsEventLeft, msg.UserID)

	case wsMsgPing:
		client.SendFrame(wsEventPong, nil)

	default:
		client.SendFrame(wsEventError, "Unknown message type")
	}
}
