package jobs

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
)

type CreateJobRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"required"`
	Requirements string     `json:"requirements"`
	Salary       float64    `json:"salary" validate:"gt=0"`
	WorkMode     string     `json:"work_mode" validate:"required"`
	ContractType string     `json:"contract_type" validate:"required"`
	CompanyID    *uuid.UUID `json:"company_id"`
	Skills       []string   `json:"skills" validate:"max=30,dive,min=1,max=80"`
	Active       *bool      `json:"active"`
}

// UpdateJobRequest changes only the fields that are present. Skills, when
// present, replace the current set.
type UpdateJobRequest struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description" validate:"omitempty,min=1"`
	Requirements *string   `json:"requirements"`
	Salary       *float64  `json:"salary" validate:"omitempty,gt=0"`
	WorkMode     *string   `json:"work_mode"`
	ContractType *string   `json:"contract_type"`
	Skills       *[]string `json:"skills" validate:"omitempty,max=30,dive,min=1,max=80"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SearchQuery holds the listing filters. Skills is a comma-separated list
// that must all match.
type SearchQuery struct {
	Q            string  `query:"q"`
	Active       string  `query:"active"`
	Company      string  `query:"company"`
	CompanyID    string  `query:"company_id"`
	WorkMode     string  `query:"work_mode"`
	ContractType string  `query:"contract_type"`
	Skills       string  `query:"skills"`
	SalaryMin    float64 `query:"salary_min" validate:"gte=0"`
	SalaryMax    float64 `query:"salary_max" validate:"gte=0"`
	Page         int     `query:"page"`
}

type SimilarResponse struct {
	Job     *models.Job  `json:"job"`
	Similar []models.Job `json:"similar"`
}
