package companies

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound    = apperr.NotFound("company not found")
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrAlreadyOwnsCompany = apperr.New(apperr.KindConflict, "leader is already linked to a company")
	ErrInvalidPromotion   = apperr.New(apperr.KindConflict, "only candidates can be promoted to leader")
)

type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// Create registers a company. A leader creating one is linked to it in the
// same transaction; a leader may own only one company.
func (s *CompanyService) Create(caller *models.User, req CreateCompanyRequest) (*models.Company, error) {
	if err := access.RequireRole(caller, models.RoleLeader, models.RoleAdmin); err != nil {
		return nil, err
	}
	if caller.IsLeader() && caller.CompanyID != nil {
		return nil, ErrAlreadyOwnsCompany
	}

	company := models.Company{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Active:      true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return apperr.Internal("failed to create company", err)
		}
		if !caller.IsLeader() {
			return nil
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND company_id IS NULL", caller.ID).
			Update("company_id", company.ID)
		if res.Error != nil {
			return apperr.Internal("failed to link leader", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyOwnsCompany
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if caller.IsLeader() {
		caller.CompanyID = &company.ID
	}
	return &company, nil
}

// Get returns the company with its leaders and active jobs.
func (s *CompanyService) Get(id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.db.
		Preload("Leaders", "role = ?", models.RoleLeader).
		Preload("Jobs", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("created_at DESC")
		}).
		First(&company, "id = ?", id).Error
	if err != nil {
		return nil, s.notFound(err)
	}
	return &company, nil
}

func (s *CompanyService) Update(caller *models.User, id uuid.UUID, req UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(caller, company.ID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if len(updates) > 0 {
		if err := s.db.Model(company).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update company", err)
		}
	}
	return s.load(id)
}

// SetActive toggles the company. Deactivation also deactivates every job of
// the company in the same transaction; reactivation leaves jobs untouched.
func (s *CompanyService) SetActive(caller *models.User, id uuid.UUID, active bool) (*models.Company, error) {
	company, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(caller, company.ID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Company{}).Where("id = ?", id).Update("active", active).Error; err != nil {
			return apperr.Internal("failed to update company", err)
		}
		if active {
			return nil
		}
		if err := tx.Model(&models.Job{}).Where("company_id = ?", id).Update("active", false).Error; err != nil {
			return apperr.Internal("failed to deactivate jobs", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	company.Active = active
	return company, nil
}

// List returns companies with leader and active job counts. Only admins can
// include inactive companies.
func (s *CompanyService) List(caller *models.User, q ListQuery) ([]CompanySummary, error) {
	query := s.db.Model(&models.Company{}).Select(
		"companies.id, companies.name, companies.description, companies.logo_url, companies.active, companies.created_at, "+
			"(SELECT COUNT(*) FROM users WHERE users.company_id = companies.id AND users.role = ?) AS leader_count, "+
			"(SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id AND jobs.active = ?) AS active_job_count",
		models.RoleLeader, true,
	)
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(companies.name) LIKE ? OR LOWER(companies.description) LIKE ?)", like, like)
	}
	if caller == nil || !caller.IsAdmin() || !q.IncludeInactive {
		query = query.Where("companies.active = ?", true)
	}

	var rows []CompanySummary
	if err := query.Order("companies.name ASC").Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("failed to list companies", err)
	}
	return rows, nil
}

// PromoteToLeader links the candidate with email to the company as a leader.
func (s *CompanyService) PromoteToLeader(caller *models.User, companyID uuid.UUID, email string) (*models.User, error) {
	if _, err := s.load(companyID); err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(caller, companyID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !user.IsCandidate() {
		return nil, ErrInvalidPromotion
	}

	res := s.db.Model(&models.User{}).
		Where("id = ? AND role = ?", user.ID, models.RoleCandidate).
		Updates(map[string]interface{}{"role": models.RoleLeader, "company_id": companyID})
	if res.Error != nil {
		return nil, apperr.Internal("failed to promote user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidPromotion
	}
	user.Role = models.RoleLeader
	user.CompanyID = &companyID
	return &user, nil
}

func (s *CompanyService) ListLeaders(companyID uuid.UUID) ([]models.User, error) {
	if _, err := s.load(companyID); err != nil {
		return nil, err
	}
	var leaders []models.User
	if err := s.db.Where("company_id = ? AND role = ?", companyID, models.RoleLeader).
		Order("name ASC").Find(&leaders).Error; err != nil {
		return nil, apperr.Internal("failed to list leaders", err)
	}
	return leaders, nil
}

func (s *CompanyService) load(id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, "id = ?", id).Error; err != nil {
		return nil, s.notFound(err)
	}
	return &company, nil
}

func (s *CompanyService) notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCompanyNotFound
	}
	return apperr.Internal("failed to load company", err)
}
