package validation

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrInvalidBody  = apperr.Validation("invalid request body", nil)
	ErrInvalidQuery = apperr.Validation("invalid query parameters", nil)
)

// BindBody parses the request body into v and validates it.
func BindBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return ErrInvalidBody
	}
	return Struct(v)
}

// BindQuery parses the query string into v and validates it.
func BindQuery(c *fiber.Ctx, v interface{}) error {
	if err := c.QueryParser(v); err != nil {
		return ErrInvalidQuery
	}
	return Struct(v)
}

// ParamUUID reads a path parameter that must be a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid "+name, map[string]string{name: "must be a valid id"})
	}
	return id, nil
}
