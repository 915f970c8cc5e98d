package companies

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type CompaniesPlugin struct{}

func New() *CompaniesPlugin {
	return &CompaniesPlugin{}
}

func (p *CompaniesPlugin) ID() string { return "companies" }

func (p *CompaniesPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewCompanyHandler(NewCompanyService(deps.DB))

	router.Get("/companies", deps.OptionalAuth, handler.List)
	router.Get("/companies/:id", handler.Get)
	router.Post("/companies", deps.Auth, handler.Create)
	router.Patch("/companies/:id", deps.Auth, handler.Update)
	router.Patch("/companies/:id/status", deps.Auth, handler.SetStatus)
	router.Get("/companies/:id/leaders", deps.Auth, handler.ListLeaders)
	router.Post("/companies/:id/leaders", deps.Auth, handler.PromoteLeader)
}
