package applications

import "github.com/google/uuid"

type CreateApplicationRequest struct {
	JobID   uuid.UUID `json:"job_id" validate:"required"`
	Message string    `json:"message" validate:"max=5000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListQuery holds listing filters. Ids arrive as strings so a malformed one
// is reported as a validation error instead of a parser failure.
type ListQuery struct {
	UserID    string `query:"user_id"`
	JobID     string `query:"job_id"`
	CompanyID string `query:"company_id"`
	Status    string `query:"status"`
	Page      int    `query:"page"`
}
