package handlers

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	me, err := h.userService.Me(user)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(me))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	updated, err := h.userService.UpdateProfile(user, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(updated))
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var q dto.ListUsersQuery
	if err := validation.BindQuery(c, &q); err != nil {
		return err
	}
	users, total, err := h.userService.List(user, &q)
	if err != nil {
		return err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return c.JSON(dto.NewPage(dto.NewUserResponses(users), total, page))
}

func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	updated, err := h.userService.ChangeRole(user, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(updated))
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userService.Deactivate(user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
