package access

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const currentUserKey = "current_user"

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetCurrentUser stores the re-hydrated user for downstream handlers.
func SetCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals(currentUserKey, user)
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

// MustUser returns the authenticated user or an Unauthenticated error.
func MustUser(c *fiber.Ctx) (*models.User, error) {
	if user := CurrentUser(c); user != nil {
		return user, nil
	}
	return nil, ErrUnauthenticated
}
