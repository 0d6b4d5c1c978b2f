package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/handlers"
	"github.com/Rachitt19/BlogApp/internal/middleware"
	"github.com/Rachitt19/BlogApp/internal/ws"
)

// Register mounts the chat REST surface and the websocket upgrade
// endpoint. The rate limiter is optional.
func Register(app *fiber.App, jwtSecret string, h *handlers.ChatHandler, relay *ws.Relay, limiter *middleware.RateLimiter, log *zap.SugaredLogger) {
	app.Use(middleware.Recovery(log))
	app.Use(middleware.RequestLogger(log))

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "Server is running"})
	})

	chats := api.Group("/chats", middleware.Auth(jwtSecret))
	if limiter != nil {
		chats.Use(limiter.Handler())
	}
	chats.Get("/", h.ListChats)
	chats.Get("/unread", h.UnreadCount)
	chats.Post("/", h.CreateChat)
	chats.Post("/group", h.CreateGroup)
	chats.Put("/group/:chatId", h.UpdateGroup)
	chats.Put("/group/:chatId/add", h.AddGroupMember)
	chats.Put("/group/:chatId/remove", h.RemoveGroupMember)
	chats.Put("/group/:chatId/leave", h.LeaveGroup)
	chats.Get("/:chatId/messages", h.ListMessages)
	chats.Put("/:chatId/read", h.MarkRead)

	// websocket clients authenticate with ?token= since browsers cannot
	// set headers on the upgrade request
	app.Get("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := middleware.ParseToken(jwtSecret, c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(middleware.UserIDKey, userID)
		return c.Next()
	}, websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.UserIDKey).(string)
		relay.HandleConn(conn, userID)
	}))
}
