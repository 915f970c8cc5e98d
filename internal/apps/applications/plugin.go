package applications

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type ApplicationsPlugin struct{}

func New() *ApplicationsPlugin {
	return &ApplicationsPlugin{}
}

func (p *ApplicationsPlugin) ID() string { return "applications" }

func (p *ApplicationsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	svc := NewApplicationService(deps.DB, deps.Tasks, deps.Push)
	handler := NewApplicationHandler(svc)

	router.Get("/applications", deps.Auth, handler.List)
	router.Post("/applications", deps.Auth, handler.Create)
	router.Get("/applications/:id", deps.Auth, handler.Get)
	router.Patch("/applications/:id", deps.Auth, handler.UpdateStatus)
}
