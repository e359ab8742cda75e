package ws

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	logger *log.Logger
}

func NewHandler(hub *Hub, logger *log.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNotificationsWS upgrades the connection and subscribes it to the
// authenticated actor's channel. channelFromCtx resolves the channel from
// whatever the auth middleware stored on the request.
func (h *Handler) HandleNotificationsWS(channelFromCtx func(fiber.Ctx) string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if h == nil || h.hub == nil {
			return fiber.ErrServiceUnavailable
		}
		channel := ""
		if channelFromCtx != nil {
			channel = channelFromCtx(c)
		}
		if channel == "" {
			return fiber.ErrUnauthorized
		}

		fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				if h.logger != nil {
					h.logger.Printf("WS upgrade error | error=%v", err)
				}
				return
			}

			client := NewClient(h.hub, conn, channel)
			h.hub.Register(client)
			go client.WritePump()
			go client.ReadPump()
		})

		return fiberHandler(c)
	}
}
