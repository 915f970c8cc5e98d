package services

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrWrongPassword    = apperr.Validation("current password is incorrect", map[string]string{"current_password": "is incorrect"})
	ErrCompanyRequired  = apperr.Validation("leaders must be linked to a company", map[string]string{"company_id": "is required"})
	ErrCompanyNotFound  = apperr.New(apperr.KindNotFound, "company not found")
	ErrSelfModification = apperr.New(apperr.KindForbidden, "admins cannot change or deactivate their own account")
)

// UserService covers profile self-service and admin user management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Me(caller *models.User) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Company").First(&user, "id = ?", caller.ID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdateProfile changes only the supplied fields. A new password requires
// the current one.
func (s *UserService) UpdateProfile(caller *models.User, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.Password != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(caller.Password), []byte(req.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		updates["password"] = string(hash)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.User{}).Where("id = ?", caller.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update profile", err)
		}
	}
	return s.Me(caller)
}

func (s *UserService) List(caller *models.User, q *dto.ListUsersQuery) ([]models.User, int64, error) {
	if err := access.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.User{})
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count users", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	var users []models.User
	if err := query.Order("created_at DESC, id DESC").
		Limit(dto.PageSize).Offset(dto.Offset(page)).
		Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal("failed to list users", err)
	}
	return users, total, nil
}

// ChangeRole sets a user's role. Leaders must name an existing company; any
// other role clears the company link.
func (s *UserService) ChangeRole(caller *models.User, userID uuid.UUID, req *dto.ChangeRoleRequest) (*models.User, error) {
	if err := access.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if caller.ID == userID {
		return nil, ErrSelfModification
	}

	role := models.Role(req.Role)
	var companyID *uuid.UUID
	if role == models.RoleLeader {
		if req.CompanyID == nil {
			return nil, ErrCompanyRequired
		}
		var count int64
		if err := s.db.Model(&models.Company{}).Where("id = ?", *req.CompanyID).Count(&count).Error; err != nil {
			return nil, apperr.Internal("failed to load company", err)
		}
		if count == 0 {
			return nil, ErrCompanyNotFound
		}
		companyID = req.CompanyID
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"role":       role,
		"company_id": companyID,
	}).Error; err != nil {
		return nil, apperr.Internal("failed to change role", err)
	}
	user.Role = role
	user.CompanyID = companyID
	return &user, nil
}

// Deactivate soft-deletes a user: the account is disabled, unlinked from its
// company, and its applications, their messages, refresh tokens and push
// subscriptions are removed in one transaction.
func (s *UserService) Deactivate(caller *models.User, userID uuid.UUID) error {
	if err := access.RequireRole(caller, models.RoleAdmin); err != nil {
		return err
	}
	if caller.ID == userID {
		return ErrSelfModification
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return apperr.Internal("failed to load user", err)
		}

		appIDs := tx.Model(&models.Application{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("application_id IN (?)", appIDs).Delete(&models.Message{}).Error; err != nil {
			return apperr.Internal("failed to delete messages", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Application{}).Error; err != nil {
			return apperr.Internal("failed to delete applications", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PushSubscription{}).Error; err != nil {
			return apperr.Internal("failed to delete push subscriptions", err)
		}
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error; err != nil {
			return apperr.Internal("failed to revoke tokens", err)
		}
		if err := tx.Exec("DELETE FROM favorites WHERE user_id = ?", userID).Error; err != nil {
			return apperr.Internal("failed to delete favorites", err)
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"active":     false,
			"company_id": nil,
		}).Error
	})
}
