package access

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithCompanies joins each job to its owning company.
func WithCompanies(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN companies ON companies.id = jobs.company_id")
}

// PubliclyVisible restricts jobs to active jobs of active companies. The
// query must already join companies.
func PubliclyVisible(db *gorm.DB) *gorm.DB {
	return db.Where("jobs.active = ? AND companies.active = ?", true, true)
}

// ApplicationsForCompany returns a GORM scope that limits applications to jobs
// owned by companyID.
func ApplicationsForCompany(companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("applications.job_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Table("jobs").Select("id").Where("company_id = ?", companyID))
	}
}

// ApplicationsOf returns a GORM scope that limits applications to one applicant.
func ApplicationsOf(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("applications.user_id = ?", userID)
	}
}
