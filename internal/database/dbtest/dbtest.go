// Package dbtest opens throwaway in-memory SQLite databases with the full
// schema migrated, plus seed helpers for service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database private to the test. A single connection
// keeps the shared-cache memory database alive for the test's lifetime.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Password is the plaintext password of every seeded user.
const Password = "password123"

var passwordHash string

func hash() string {
	if passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		passwordHash = string(h)
	}
	return passwordHash
}

func User(t *testing.T, db *gorm.DB, email string, role models.Role, companyID *uuid.UUID) *models.User {
	t.Helper()
	user := &models.User{
		Name:      strings.Split(email, "@")[0],
		Email:     email,
		Password:  hash(),
		Role:      role,
		CompanyID: companyID,
		Active:    true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func Company(t *testing.T, db *gorm.DB, name string, active bool) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, Description: name + " description", Active: active}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("create company %s: %v", name, err)
	}
	return company
}

// Leader creates a company and a leader linked to it.
func Leader(t *testing.T, db *gorm.DB, email, companyName string) (*models.User, *models.Company) {
	t.Helper()
	company := Company(t, db, companyName, true)
	leader := User(t, db, email, models.RoleLeader, &company.ID)
	return leader, company
}

func Job(t *testing.T, db *gorm.DB, companyID uuid.UUID, title string, salary float64, mode models.WorkMode, skills ...string) *models.Job {
	t.Helper()
	job := &models.Job{
		Title:        title,
		Description:  title + " description",
		Salary:       salary,
		WorkMode:     mode,
		ContractType: models.ContractCLT,
		Active:       true,
		CompanyID:    companyID,
	}
	for _, name := range skills {
		skill := models.Skill{}
		if err := db.Where(models.Skill{Name: name}).FirstOrCreate(&skill).Error; err != nil {
			t.Fatalf("create skill %s: %v", name, err)
		}
		job.Skills = append(job.Skills, skill)
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("create job %s: %v", title, err)
	}
	return job
}

func Application(t *testing.T, db *gorm.DB, userID, jobID uuid.UUID) *models.Application {
	t.Helper()
	app := &models.Application{UserID: userID, JobID: jobID, Message: "hello"}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}
