package logging

import (
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/gofiber/fiber/v2"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(StdoutHandler()))
}

func StdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Attach routes ERROR+ records to pg as well as stdout.
func Attach(pg *PGHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(StdoutHandler(), pg)))
}

// FromRequest returns the default logger tagged with the request id, path
// and, when authenticated, the caller's id.
func FromRequest(c *fiber.Ctx) *slog.Logger {
	logger := slog.Default().With("path", c.Path())
	if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
		logger = logger.With("request_id", rid)
	}
	if user := access.CurrentUser(c); user != nil {
		logger = logger.With("user_id", user.ID.String())
	}
	return logger
}
