package apps

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure every module is built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Tasks    dispatch.Runner
	Realtime realtime.Publisher
	Signer   *realtime.Signer
	Push     *push.Service

	// Auth rejects anonymous requests; OptionalAuth lets them through with no
	// current user. Both re-hydrate the caller when a token is present.
	Auth         fiber.Handler
	OptionalAuth fiber.Handler
}

// Plugin defines the interface every domain module must implement.
type Plugin interface {
	// ID returns the unique module identifier used in logs.
	ID() string

	// RegisterRoutes mounts module routes on the given Fiber group.
	// The group is already prefixed with /api; modules attach deps.Auth or
	// deps.OptionalAuth per route.
	RegisterRoutes(router fiber.Router, deps *Deps)
}
