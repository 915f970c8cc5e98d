package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/logging"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

const internalMessage = "Internal server error"

// ErrorHandler maps service errors to the JSON error envelope. Only 4xx
// details reach the client; 5xx are logged and reported to Sentry.
func ErrorHandler(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Status: fiber.StatusInternalServerError, Message: internalMessage}

	var appErr *apperr.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		resp.Status = appErr.Status()
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
	case errors.As(err, &fiberErr):
		resp.Status = fiberErr.Code
		resp.Message = fiberErr.Message
	}

	if resp.Status >= fiber.StatusInternalServerError {
		logging.FromRequest(c).Error("unhandled server error",
			"action", c.Method()+" "+c.Route().Path,
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		resp.Message = internalMessage
		resp.Errors = nil
	}

	return c.Status(resp.Status).JSON(resp)
}
