package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeOnSite WorkMode = "on_site"
)

var workModeAliases = map[string]WorkMode{
	"remote":     WorkModeRemote,
	"remoto":     WorkModeRemote,
	"hybrid":     WorkModeHybrid,
	"hibrido":    WorkModeHybrid,
	"híbrido":    WorkModeHybrid,
	"on_site":    WorkModeOnSite,
	"on-site":    WorkModeOnSite,
	"onsite":     WorkModeOnSite,
	"presencial": WorkModeOnSite,
}

// ParseWorkMode accepts the canonical values plus the Portuguese labels the
// frontend has historically sent.
func ParseWorkMode(s string) (WorkMode, bool) {
	m, ok := workModeAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

type ContractType string

const (
	ContractCLT ContractType = "clt"
	ContractPJ  ContractType = "pj"
)

func ParseContractType(s string) (ContractType, bool) {
	switch ContractType(strings.ToLower(strings.TrimSpace(s))) {
	case ContractCLT:
		return ContractCLT, true
	case ContractPJ:
		return ContractPJ, true
	}
	return "", false
}

// Job is a posting owned by a company. It is publicly visible only while both
// the job and its company are active.
type Job struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string       `gorm:"size:200;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Requirements string       `gorm:"type:text" json:"requirements"`
	Salary       float64      `gorm:"not null" json:"salary"`
	WorkMode     WorkMode     `gorm:"size:20;index" json:"work_mode"`
	ContractType ContractType `gorm:"size:20;index" json:"contract_type"`
	Active       bool         `gorm:"not null;index" json:"active"`
	CompanyID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *Company     `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Skills       []Skill      `gorm:"many2many:job_skills;constraint:OnDelete:CASCADE" json:"skills"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Skill is a normalized tag, created on demand when a job references it.
type Skill struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
