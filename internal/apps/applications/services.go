package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = apperr.NotFound("application not found")
	ErrJobNotFound         = apperr.NotFound("job not found")
	ErrJobClosed           = apperr.Validation("job is not accepting applications", map[string]string{"job_id": "is not open"})
	ErrAlreadyApplied      = apperr.New(apperr.KindConflict, "already applied to this job")
	ErrInvalidStatus       = apperr.Validation("invalid status", map[string]string{"status": "must be one of: submitted under_review approved rejected"})
	ErrForeignApplicant    = apperr.Forbidden("candidates can only list their own applications")
	ErrForeignCompany      = apperr.Forbidden("leaders can only list applications of their own company")
	ErrNoCompany           = apperr.Forbidden("leader is not linked to a company")
)

// Notifier delivers push notifications to every device of a user.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, payload push.Payload) error
}

type ApplicationService struct {
	db       *gorm.DB
	tasks    dispatch.Runner
	notifier Notifier
}

func NewApplicationService(db *gorm.DB, tasks dispatch.Runner, notifier Notifier) *ApplicationService {
	return &ApplicationService{db: db, tasks: tasks, notifier: notifier}
}

// Create submits an application from a candidate to a publicly visible job.
func (s *ApplicationService) Create(caller *models.User, req CreateApplicationRequest) (*models.Application, error) {
	if err := access.RequireRole(caller, models.RoleCandidate); err != nil {
		return nil, err
	}

	var job models.Job
	if err := s.db.Preload("Company").First(&job, "id = ?", req.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, apperr.Internal("failed to load job", err)
	}
	if !job.Active || job.Company == nil || !job.Company.Active {
		return nil, ErrJobClosed
	}

	var count int64
	if err := s.db.Model(&models.Application{}).
		Where("user_id = ? AND job_id = ?", caller.ID, job.ID).
		Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check applications", err)
	}
	if count > 0 {
		return nil, ErrAlreadyApplied
	}

	app := models.Application{
		ID:      uuid.New(),
		UserID:  caller.ID,
		JobID:   job.ID,
		Message: strings.TrimSpace(req.Message),
		Status:  models.StatusSubmitted,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, apperr.Internal("failed to create application", err)
	}
	app.Job = &job
	return &app, nil
}

// ListScoped lists applications visible to the caller: candidates see their
// own, leaders those of their company, admins all.
func (s *ApplicationService) ListScoped(caller *models.User, q ListQuery) (*dto.Page, error) {
	if caller == nil {
		return nil, access.ErrUnauthenticated
	}

	query := s.db.Model(&models.Application{})
	switch caller.Role {
	case models.RoleCandidate:
		if q.UserID != "" && q.UserID != caller.ID.String() {
			return nil, ErrForeignApplicant
		}
		query = query.Scopes(access.ApplicationsOf(caller.ID))
	case models.RoleLeader:
		if caller.CompanyID == nil {
			return nil, ErrNoCompany
		}
		if q.CompanyID != "" && q.CompanyID != caller.CompanyID.String() {
			return nil, ErrForeignCompany
		}
		query = query.Scopes(access.ApplicationsForCompany(*caller.CompanyID))
	case models.RoleAdmin:
	default:
		return nil, access.ErrForbidden
	}

	if q.UserID != "" {
		id, err := parseID("user_id", q.UserID)
		if err != nil {
			return nil, err
		}
		query = query.Where("applications.user_id = ?", id)
	}
	if q.JobID != "" {
		id, err := parseID("job_id", q.JobID)
		if err != nil {
			return nil, err
		}
		query = query.Where("applications.job_id = ?", id)
	}
	if q.CompanyID != "" {
		id, err := parseID("company_id", q.CompanyID)
		if err != nil {
			return nil, err
		}
		query = query.Scopes(access.ApplicationsForCompany(id))
	}
	if q.Status != "" {
		status, ok := models.ParseApplicationStatus(q.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		query = query.Where("applications.status = ?", status)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count applications", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	apps := []models.Application{}
	if err := query.
		Preload("Job.Company").
		Preload("User").
		Order("applications.created_at DESC").
		Order("applications.id DESC").
		Limit(dto.PageSize).
		Offset(dto.Offset(page)).
		Find(&apps).Error; err != nil {
		return nil, apperr.Internal("failed to list applications", err)
	}

	result := dto.NewPage(apps, total, page)
	return &result, nil
}

// Get returns one application under the same scope rules as ListScoped.
func (s *ApplicationService) Get(caller *models.User, id uuid.UUID) (*models.Application, error) {
	if caller == nil {
		return nil, access.ErrUnauthenticated
	}
	var app models.Application
	if err := s.db.Preload("Job.Company").Preload("User").First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	switch {
	case caller.IsAdmin():
	case caller.IsCandidate() && app.UserID == caller.ID:
	case caller.IsLeader() && app.Job != nil && caller.LeadsCompany(app.Job.CompanyID):
	default:
		return nil, access.ErrForbidden
	}
	return &app, nil
}

// UpdateStatus moves an application to any status. Only admins and leaders
// of the job's company may do so. The candidate is notified by push.
func (s *ApplicationService) UpdateStatus(caller *models.User, id uuid.UUID, raw string) (*models.Application, error) {
	if err := access.RequireRole(caller, models.RoleLeader, models.RoleAdmin); err != nil {
		return nil, err
	}
	status, ok := models.ParseApplicationStatus(raw)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var app models.Application
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Job").First(&app, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := access.RequireOwnership(caller, app.Job.CompanyID); err != nil {
			return err
		}
		if err := tx.Model(&models.Application{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return apperr.Internal("failed to update status", err)
		}
		app.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(&app)
	return &app, nil
}

func (s *ApplicationService) notifyStatus(app *models.Application) {
	if s.notifier == nil || s.tasks == nil {
		return
	}
	candidateID := app.UserID
	payload := push.Payload{
		Title: "Application update",
		Body:  fmt.Sprintf("Your application for %s is now %s", app.Job.Title, statusLabel(app.Status)),
		URL:   "/applications/" + app.ID.String(),
		Tag:   "application-" + app.ID.String(),
		Data:  map[string]string{"application_id": app.ID.String(), "status": string(app.Status)},
	}
	s.tasks.Go("application-status-push", func(ctx context.Context) error {
		return s.notifier.NotifyUser(ctx, candidateID, payload)
	})
}

func statusLabel(st models.ApplicationStatus) string {
	return strings.ReplaceAll(string(st), "_", " ")
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid "+field, map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrApplicationNotFound
	}
	return apperr.Internal("failed to load application", err)
}
