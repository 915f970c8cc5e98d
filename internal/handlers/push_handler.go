package handlers

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type PushHandler struct {
	push *push.Service
}

func NewPushHandler(svc *push.Service) *PushHandler {
	return &PushHandler{push: svc}
}

func (h *PushHandler) PublicKey(c *fiber.Ctx) error {
	return c.JSON(dto.PushKeyResponse{
		Available: h.push.Available(),
		PublicKey: h.push.PublicKey(),
	})
}

func (h *PushHandler) Subscribe(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req dto.PushSubscribeRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	sub, err := h.push.Subscribe(user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *PushHandler) Unsubscribe(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req dto.PushUnsubscribeRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	if err := h.push.Unsubscribe(user.ID, req.Endpoint); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
