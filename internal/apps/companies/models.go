package companies

import (
	"time"

	"github.com/google/uuid"
)

type CreateCompanyRequest struct {
	Name        string `json:"name" validate:"required,max=160"`
	Description string `json:"description" validate:"max=5000"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

// UpdateCompanyRequest changes only the fields that are present.
type UpdateCompanyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=160"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,url"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type PromoteLeaderRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ListQuery struct {
	Search          string `query:"q"`
	IncludeInactive bool   `query:"include_inactive"`
}

// CompanySummary is one row of the directory listing.
type CompanySummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	LogoURL        string    `json:"logo_url,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	LeaderCount    int64     `json:"leader_count"`
	ActiveJobCount int64     `json:"active_job_count"`
}
