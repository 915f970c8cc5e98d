package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	realtime bool
	push     bool
}

func NewHealthHandler(db *gorm.DB, realtimeEnabled, pushEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, realtime: realtimeEnabled, push: pushEnabled}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Realtime:  h.realtime,
		Push:      h.push,
	})
}
