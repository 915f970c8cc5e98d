package access

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "authentication required")
	ErrForbidden       = apperr.New(apperr.KindForbidden, "insufficient permissions")
	ErrNotOwner        = apperr.New(apperr.KindForbidden, "resource belongs to another company")
)

// RequireRole fails with Forbidden unless user has one of roles.
func RequireRole(user *models.User, roles ...models.Role) error {
	if user == nil {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireOwnership passes for admins and for leaders linked to companyID.
func RequireOwnership(user *models.User, companyID uuid.UUID) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if user.IsAdmin() || user.LeadsCompany(companyID) {
		return nil
	}
	return ErrNotOwner
}
