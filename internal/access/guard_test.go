package access

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
)

func TestRequireRole(t *testing.T) {
	candidate := &models.User{Role: models.RoleCandidate}
	if err := RequireRole(candidate, models.RoleLeader, models.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := RequireRole(candidate, models.RoleCandidate); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RequireRole(nil, models.RoleAdmin); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestRequireOwnership(t *testing.T) {
	own := uuid.New()
	other := uuid.New()
	leader := &models.User{Role: models.RoleLeader, CompanyID: &own}
	admin := &models.User{Role: models.RoleAdmin}
	orphan := &models.User{Role: models.RoleLeader}

	if err := RequireOwnership(leader, own); err != nil {
		t.Fatalf("expected leader to own company, got %v", err)
	}
	if err := RequireOwnership(leader, other); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for foreign company, got %v", err)
	}
	if err := RequireOwnership(admin, other); err != nil {
		t.Fatalf("expected admin bypass, got %v", err)
	}
	if err := RequireOwnership(orphan, own); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for leader without company, got %v", err)
	}
}
