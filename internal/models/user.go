package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleLeader    Role = "leader"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleLeader, RoleAdmin:
		return true
	}
	return false
}

// User is an account of any role. CompanyID is only set for leaders.
type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"size:120;not null" json:"name"`
	Email               string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Role                Role       `gorm:"size:20;not null;index" json:"role"`
	CompanyID           *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company             *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Active              bool       `gorm:"not null" json:"active"`
	PhotoURL            string     `gorm:"size:500" json:"photo_url,omitempty"`
	ResetTokenHash      *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	Favorites           []Job      `gorm:"many2many:favorites;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsLeader() bool { return u.Role == RoleLeader }

func (u *User) IsCandidate() bool { return u.Role == RoleCandidate }

// LeadsCompany reports whether u is a leader linked to companyID.
func (u *User) LeadsCompany(companyID uuid.UUID) bool {
	return u.Role == RoleLeader && u.CompanyID != nil && *u.CompanyID == companyID
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
