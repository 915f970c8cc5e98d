package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Authorizer re-loads the account behind a verified token.
type Authorizer interface {
	Authorize(userID uuid.UUID) (*models.User, error)
	ParseToken(raw string) (uuid.UUID, error)
}

// JWTProtected verifies the bearer token, stores it under "user" and then
// re-hydrates the caller from the store so role changes and deactivation
// take effect on the next request.
func JWTProtected(cfg *config.Config, auth Authorizer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		SuccessHandler: LoadUser(auth),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return access.ErrUnauthenticated
		},
	})
}

func LoadUser(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := access.GetUserID(c)
		if err != nil {
			return access.ErrUnauthenticated
		}
		user, err := auth.Authorize(userID)
		if err != nil {
			return err
		}
		access.SetCurrentUser(c, user)
		return c.Next()
	}
}

// OptionalAuth loads the caller when a valid bearer token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(auth Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return c.Next()
		}
		userID, err := auth.ParseToken(raw)
		if err != nil {
			return c.Next()
		}
		if user, err := auth.Authorize(userID); err == nil {
			access.SetCurrentUser(c, user)
		}
		return c.Next()
	}
}
