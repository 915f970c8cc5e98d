package companies

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	service *CompanyService
}

func NewCompanyHandler(service *CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

func (h *CompanyHandler) List(c *fiber.Ctx) error {
	var q ListQuery
	if err := validation.BindQuery(c, &q); err != nil {
		return err
	}
	rows, err := h.service.List(access.CurrentUser(c), q)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	company, err := h.service.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(company)
}

func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req CreateCompanyRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	company, err := h.service.Create(user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCompanyRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	company, err := h.service.Update(user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(company)
}

func (h *CompanyHandler) SetStatus(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req SetActiveRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	company, err := h.service.SetActive(user, id, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(company)
}

func (h *CompanyHandler) ListLeaders(c *fiber.Ctx) error {
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	leaders, err := h.service.ListLeaders(id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(leaders))
}

func (h *CompanyHandler) PromoteLeader(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req PromoteLeaderRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	leader, err := h.service.PromoteToLeader(user, id, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(leader))
}
