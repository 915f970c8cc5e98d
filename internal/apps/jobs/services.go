package jobs

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const similarLimit = 3

var (
	ErrJobNotFound      = apperr.NotFound("job not found")
	ErrCompanyNotFound  = apperr.NotFound("company not found")
	ErrCompanyRequired  = apperr.Validation("company is required", map[string]string{"company_id": "is required"})
	ErrInvalidWorkMode  = apperr.Validation("invalid work mode", map[string]string{"work_mode": "must be one of: remote hybrid on_site"})
	ErrInvalidContract  = apperr.Validation("invalid contract type", map[string]string{"contract_type": "must be one of: clt pj"})
	ErrInvalidCompanyID = apperr.Validation("invalid company id", map[string]string{"company_id": "must be a valid id"})
	ErrInvalidActive    = apperr.Validation("invalid active filter", map[string]string{"active": "must be true or false"})
	ErrInvalidSalary    = apperr.Validation("invalid salary range", map[string]string{"salary_max": "must not be below salary_min"})
)

type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

// Search lists jobs newest first, ten per page. Callers other than admins
// only ever see active jobs of active companies.
func (s *JobService) Search(caller *models.User, q SearchQuery) (*dto.Page, error) {
	query := s.db.Model(&models.Job{}).Scopes(access.WithCompanies)

	if caller != nil && caller.IsAdmin() {
		if q.Active != "" {
			active, err := strconv.ParseBool(q.Active)
			if err != nil {
				return nil, ErrInvalidActive
			}
			query = query.Where("jobs.active = ?", active)
		}
	} else {
		query = query.Scopes(access.PubliclyVisible)
	}

	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(jobs.title) LIKE ? OR LOWER(jobs.description) LIKE ?)", like, like)
	}
	if name := strings.TrimSpace(q.Company); name != "" {
		query = query.Where("LOWER(companies.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if q.CompanyID != "" {
		id, err := uuid.Parse(q.CompanyID)
		if err != nil {
			return nil, ErrInvalidCompanyID
		}
		query = query.Where("jobs.company_id = ?", id)
	}
	if q.WorkMode != "" {
		mode, ok := models.ParseWorkMode(q.WorkMode)
		if !ok {
			return nil, ErrInvalidWorkMode
		}
		query = query.Where("jobs.work_mode = ?", mode)
	}
	if q.ContractType != "" {
		contract, ok := models.ParseContractType(q.ContractType)
		if !ok {
			return nil, ErrInvalidContract
		}
		query = query.Where("jobs.contract_type = ?", contract)
	}
	for _, skill := range splitSkills(q.Skills) {
		query = query.Where("jobs.id IN (?)", s.db.Table("job_skills").
			Select("job_skills.job_id").
			Joins("JOIN skills ON skills.id = job_skills.skill_id").
			Where("LOWER(skills.name) = ?", skill))
	}
	if q.SalaryMin > 0 && q.SalaryMax > 0 && q.SalaryMax < q.SalaryMin {
		return nil, ErrInvalidSalary
	}
	if q.SalaryMin > 0 {
		query = query.Where("jobs.salary >= ?", q.SalaryMin)
	}
	if q.SalaryMax > 0 {
		query = query.Where("jobs.salary <= ?", q.SalaryMax)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count jobs", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	jobs := []models.Job{}
	if err := query.
		Preload("Company").
		Preload("Skills").
		Order("jobs.created_at DESC").
		Order("jobs.id DESC").
		Limit(dto.PageSize).
		Offset(dto.Offset(page)).
		Find(&jobs).Error; err != nil {
		return nil, apperr.Internal("failed to search jobs", err)
	}

	result := dto.NewPage(jobs, total, page)
	return &result, nil
}

// Get returns a job regardless of its visibility.
func (s *JobService) Get(id uuid.UUID, expandCompany bool) (*models.Job, error) {
	query := s.db.Preload("Skills")
	if expandCompany {
		query = query.Preload("Company")
	}
	var job models.Job
	if err := query.First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// GetWithSimilar returns the job and up to three other visible jobs of the
// same company.
func (s *JobService) GetWithSimilar(id uuid.UUID) (*SimilarResponse, error) {
	job, err := s.Get(id, true)
	if err != nil {
		return nil, err
	}
	similar := []models.Job{}
	if err := s.db.Model(&models.Job{}).
		Scopes(access.WithCompanies, access.PubliclyVisible).
		Where("jobs.company_id = ? AND jobs.id <> ?", job.CompanyID, job.ID).
		Preload("Skills").
		Order("jobs.created_at DESC").
		Limit(similarLimit).
		Find(&similar).Error; err != nil {
		return nil, apperr.Internal("failed to load similar jobs", err)
	}
	return &SimilarResponse{Job: job, Similar: similar}, nil
}

// Create posts a job. Without an explicit company id the job goes to the
// caller's own company. An explicit company id is taken as given.
func (s *JobService) Create(caller *models.User, req CreateJobRequest) (*models.Job, error) {
	if err := access.RequireRole(caller, models.RoleLeader, models.RoleAdmin); err != nil {
		return nil, err
	}

	var companyID uuid.UUID
	switch {
	case req.CompanyID != nil:
		companyID = *req.CompanyID
	case caller.CompanyID != nil:
		companyID = *caller.CompanyID
	default:
		return nil, ErrCompanyRequired
	}

	mode, ok := models.ParseWorkMode(req.WorkMode)
	if !ok {
		return nil, ErrInvalidWorkMode
	}
	contract, ok := models.ParseContractType(req.ContractType)
	if !ok {
		return nil, ErrInvalidContract
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	job := models.Job{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Requirements: req.Requirements,
		Salary:       req.Salary,
		WorkMode:     mode,
		ContractType: contract,
		Active:       active,
		CompanyID:    companyID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
			return apperr.Internal("failed to load company", err)
		}
		if count == 0 {
			return ErrCompanyNotFound
		}
		skills, err := resolveSkills(tx, req.Skills)
		if err != nil {
			return err
		}
		job.Skills = skills
		if err := tx.Omit("Skills.*").Create(&job).Error; err != nil {
			return apperr.Internal("failed to create job", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(job.ID, true)
}

func (s *JobService) Update(caller *models.User, id uuid.UUID, req UpdateJobRequest) (*models.Job, error) {
	job, err := s.Get(id, false)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(caller, job.CompanyID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Requirements != nil {
		updates["requirements"] = *req.Requirements
	}
	if req.Salary != nil {
		updates["salary"] = *req.Salary
	}
	if req.WorkMode != nil {
		mode, ok := models.ParseWorkMode(*req.WorkMode)
		if !ok {
			return nil, ErrInvalidWorkMode
		}
		updates["work_mode"] = mode
	}
	if req.ContractType != nil {
		contract, ok := models.ParseContractType(*req.ContractType)
		if !ok {
			return nil, ErrInvalidContract
		}
		updates["contract_type"] = contract
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Job{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return apperr.Internal("failed to update job", err)
			}
		}
		if req.Skills == nil {
			return nil
		}
		skills, err := resolveSkills(tx, *req.Skills)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM job_skills WHERE job_id = ?", id).Error; err != nil {
			return apperr.Internal("failed to replace skills", err)
		}
		for _, skill := range skills {
			if err := tx.Table("job_skills").Create(map[string]interface{}{
				"job_id":   id,
				"skill_id": skill.ID,
			}).Error; err != nil {
				return apperr.Internal("failed to replace skills", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id, true)
}

func (s *JobService) SetActive(caller *models.User, id uuid.UUID, active bool) (*models.Job, error) {
	job, err := s.Get(id, false)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(caller, job.CompanyID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Job{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		return nil, apperr.Internal("failed to update job", err)
	}
	job.Active = active
	return job, nil
}

// Remove hard-deletes the job together with its favorites, skill links,
// applications and their messages.
func (s *JobService) Remove(caller *models.User, id uuid.UUID) error {
	job, err := s.Get(id, false)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(caller, job.CompanyID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		appIDs := tx.Model(&models.Application{}).Select("id").Where("job_id = ?", id)
		if err := tx.Where("application_id IN (?)", appIDs).Delete(&models.Message{}).Error; err != nil {
			return apperr.Internal("failed to delete messages", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return apperr.Internal("failed to delete applications", err)
		}
		if err := tx.Exec("DELETE FROM favorites WHERE job_id = ?", id).Error; err != nil {
			return apperr.Internal("failed to delete favorites", err)
		}
		if err := tx.Exec("DELETE FROM job_skills WHERE job_id = ?", id).Error; err != nil {
			return apperr.Internal("failed to delete skill links", err)
		}
		if err := tx.Delete(&models.Job{}, "id = ?", id).Error; err != nil {
			return apperr.Internal("failed to delete job", err)
		}
		return nil
	})
}

func (s *JobService) ListSkills() ([]models.Skill, error) {
	skills := []models.Skill{}
	if err := s.db.Order("name ASC").Find(&skills).Error; err != nil {
		return nil, apperr.Internal("failed to list skills", err)
	}
	return skills, nil
}

// AddFavorite bookmarks a job for a candidate. Adding twice is a no-op.
func (s *JobService) AddFavorite(caller *models.User, jobID uuid.UUID) error {
	if err := access.RequireRole(caller, models.RoleCandidate); err != nil {
		return err
	}
	if _, err := s.Get(jobID, false); err != nil {
		return err
	}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Table("favorites").Create(map[string]interface{}{
		"user_id": caller.ID,
		"job_id":  jobID,
	}).Error
	if err != nil {
		return apperr.Internal("failed to add favorite", err)
	}
	return nil
}

func (s *JobService) RemoveFavorite(caller *models.User, jobID uuid.UUID) error {
	if err := access.RequireRole(caller, models.RoleCandidate); err != nil {
		return err
	}
	if err := s.db.Exec("DELETE FROM favorites WHERE user_id = ? AND job_id = ?", caller.ID, jobID).Error; err != nil {
		return apperr.Internal("failed to remove favorite", err)
	}
	return nil
}

func (s *JobService) ListFavorites(caller *models.User) ([]models.Job, error) {
	if err := access.RequireRole(caller, models.RoleCandidate); err != nil {
		return nil, err
	}
	jobs := []models.Job{}
	if err := s.db.Model(&models.Job{}).
		Joins("JOIN favorites ON favorites.job_id = jobs.id").
		Where("favorites.user_id = ?", caller.ID).
		Preload("Company").
		Preload("Skills").
		Order("jobs.created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, apperr.Internal("failed to list favorites", err)
	}
	return jobs, nil
}

// resolveSkills maps names to skills, matching case-insensitively and
// creating the ones that do not exist yet.
func resolveSkills(tx *gorm.DB, names []string) ([]models.Skill, error) {
	seen := map[string]bool{}
	skills := []models.Skill{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true

		var skill models.Skill
		err := tx.Where("LOWER(name) = ?", key).First(&skill).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			skill = models.Skill{ID: uuid.New(), Name: name}
			if err := tx.Create(&skill).Error; err != nil {
				return nil, apperr.Internal("failed to create skill", err)
			}
		default:
			return nil, apperr.Internal("failed to load skill", err)
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

func splitSkills(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrJobNotFound
	}
	return apperr.Internal("failed to load job", err)
}
