package messaging

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	service *MessageService
}

func NewMessageHandler(service *MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	appID, err := validation.ParamUUID(c, "applicationId")
	if err != nil {
		return err
	}
	messages, err := h.service.ListThread(user, appID)
	if err != nil {
		return err
	}
	return c.JSON(messages)
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	msg, err := h.service.Send(user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	appID, err := validation.ParamUUID(c, "applicationId")
	if err != nil {
		return err
	}
	updated, err := h.service.MarkRead(user, appID)
	if err != nil {
		return err
	}
	return c.JSON(MarkReadResponse{Updated: updated})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(user)
	if err != nil {
		return err
	}
	return c.JSON(UnreadCountResponse{Unread: count})
}

// AuthorizeChannel answers the websocket gateway's auth callback.
func (h *MessageHandler) AuthorizeChannel(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req dto.ChannelAuthRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.service.AuthorizeChannel(user, req.SocketID, req.ChannelName)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
