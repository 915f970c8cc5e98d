package jobs

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	service *JobService
}

func NewJobHandler(service *JobService) *JobHandler {
	return &JobHandler{service: service}
}

func (h *JobHandler) Search(c *fiber.Ctx) error {
	var q SearchQuery
	if err := validation.BindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.service.Search(access.CurrentUser(c), q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.service.Get(id, c.Query("expand") == "company")
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *JobHandler) Similar(c *fiber.Ctx) error {
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.service.GetWithSimilar(id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	var req CreateJobRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	job, err := h.service.Create(user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateJobRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	job, err := h.service.Update(user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *JobHandler) SetStatus(c *fiber.Ctx) error {
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
	job, err := h.service.SetActive(user, id, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *JobHandler) Remove(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Remove(user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JobHandler) ListSkills(c *fiber.Ctx) error {
	skills, err := h.service.ListSkills()
	if err != nil {
		return err
	}
	return c.JSON(skills)
}

func (h *JobHandler) ListFavorites(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListFavorites(user)
	if err != nil {
		return err
	}
	return c.JSON(jobs)
}

func (h *JobHandler) AddFavorite(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.AddFavorite(user, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Job added to favorites"})
}

func (h *JobHandler) RemoveFavorite(c *fiber.Ctx) error {
	user, err := access.MustUser(c)
	if err != nil {
		return err
	}
	id, err := validation.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.RemoveFavorite(user, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Job removed from favorites"})
}
