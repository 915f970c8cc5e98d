package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// ApplicationStatuses is the fixed ordered label set. Any label may follow any
// other; no transition graph is enforced.
var ApplicationStatuses = []ApplicationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, st := range ApplicationStatuses {
		if string(st) == normalized {
			return st, true
		}
	}
	return "", false
}

type Application struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JobID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	Job       *Job              `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	Message   string            `gorm:"type:text" json:"message"`
	Status    ApplicationStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationStatuses[0]
	}
	return nil
}
