package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/apperror"
	"github.com/Rachitt19/BlogApp/internal/httputils"
	"github.com/Rachitt19/BlogApp/internal/middleware"
	"github.com/Rachitt19/BlogApp/internal/service"
)

// ChatHandler maps the chat REST surface onto the services.
type ChatHandler struct {
	chats  service.Chats
	groups service.Groups
	unread service.Unread
	log    *zap.SugaredLogger
}

func NewChatHandler(chats service.Chats, groups service.Groups, unread service.Unread, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{chats: chats, groups: groups, unread: unread, log: log}
}

func (h *ChatHandler) fail(c *fiber.Ctx, err error) error {
	status := apperror.Status(err)
	if status == fiber.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.OriginalURL(), "err", err)
	}
	return httputils.Error(c, status, apperror.Message(err))
}

// GET /api/chats
func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	chats, err := h.chats.ListForUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chats": chats})
}

// GET /api/chats/unread
func (h *ChatHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.unread.Count(c.Context(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"count": count})
}

// GET /api/chats/:chatId/messages
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.chats.Messages(c.Context(), c.Params("chatId"))
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"messages": msgs})
}

// PUT /api/chats/:chatId/read
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.unread.MarkRead(c.Context(), c.Params("chatId"), middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, nil)
}

// POST /api/chats — find or create the direct chat with body.userId
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return httputils.Error(c, fiber.StatusBadRequest, "User ID is required")
	}
	chat, err := h.chats.FindOrCreateDirect(c.Context(), middleware.UserID(c), body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chat": chat})
}

// POST /api/chats/group
func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	var body struct {
		Users []string `json:"users"`
		Name  string   `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httputils.Error(c, fiber.StatusBadRequest, "Please fill all the fields")
	}
	chat, err := h.groups.Create(c.Context(), middleware.UserID(c), body.Users, body.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chat": chat})
}

// PUT /api/chats/group/:chatId
func (h *ChatHandler) UpdateGroup(c *fiber.Ctx) error {
	var body struct {
		GroupName  *string `json:"groupName"`
		GroupImage *string `json:"groupImage"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httputils.Error(c, fiber.StatusBadRequest, "Invalid body")
	}
	chat, err := h.groups.UpdateMetadata(c.Context(), c.Params("chatId"), middleware.UserID(c), body.GroupName, body.GroupImage)
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chat": chat})
}

// PUT /api/chats/group/:chatId/add
func (h *ChatHandler) AddGroupMember(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return httputils.Error(c, fiber.StatusBadRequest, "User ID is required")
	}
	chat, err := h.groups.AddMember(c.Context(), c.Params("chatId"), middleware.UserID(c), body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chat": chat})
}

// PUT /api/chats/group/:chatId/remove — admin only
func (h *ChatHandler) RemoveGroupMember(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return httputils.Error(c, fiber.StatusBadRequest, "User ID is required")
	}
	chat, err := h.groups.RemoveMember(c.Context(), c.Params("chatId"), middleware.UserID(c), body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chat": chat})
}

// PUT /api/chats/group/:chatId/leave
func (h *ChatHandler) LeaveGroup(c *fiber.Ctx) error {
	chatID := c.Params("chatId")
	if _, err := h.groups.Leave(c.Context(), chatID, middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return httputils.OK(c, fiber.StatusOK, fiber.Map{"chatId": chatID})
}
