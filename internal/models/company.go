package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company owns its jobs. Deactivating a company deactivates its jobs.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:160;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:500" json:"logo_url,omitempty"`
	Active      bool      `gorm:"not null;index" json:"active"`
	Leaders     []User    `gorm:"foreignKey:CompanyID" json:"leaders,omitempty"`
	Jobs        []Job     `gorm:"foreignKey:CompanyID" json:"jobs,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
