package jobs

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type JobsPlugin struct{}

func New() *JobsPlugin {
	return &JobsPlugin{}
}

func (p *JobsPlugin) ID() string { return "jobs" }

func (p *JobsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewJobHandler(NewJobService(deps.DB))

	router.Get("/skills", handler.ListSkills)

	// Static segments before /jobs/:id
	router.Get("/jobs", deps.OptionalAuth, handler.Search)
	router.Get("/jobs/favorites", deps.Auth, handler.ListFavorites)
	router.Post("/jobs", deps.Auth, handler.Create)

	router.Get("/jobs/:id", handler.Get)
	router.Get("/jobs/:id/similar", handler.Similar)
	router.Patch("/jobs/:id", deps.Auth, handler.Update)
	router.Patch("/jobs/:id/status", deps.Auth, handler.SetStatus)
	router.Delete("/jobs/:id", deps.Auth, handler.Remove)
	router.Post("/jobs/:id/favorite", deps.Auth, handler.AddFavorite)
	router.Delete("/jobs/:id/favorite", deps.Auth, handler.RemoveFavorite)
}
