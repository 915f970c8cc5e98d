package applications

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	service *ApplicationService
}

func NewApplicationHandler(service *ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var q ListQuery
	if err := validation.BindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.service.ListScoped(user, q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	app, err := h.service.Get(user, id)
	if err != nil {
		return err
	}
	return c.JSON(app)
}

func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req CreateApplicationRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.Create(user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.UpdateStatus(user, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(app)
}
