package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/mail"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid email or password")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthenticated, "invalid or expired refresh token")
	ErrInvalidResetToken  = apperr.New(apperr.KindValidation, "invalid or expired reset token")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user not found")
	ErrAccountDisabled    = apperr.New(apperr.KindUnauthenticated, "account is deactivated")
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	tasks    dispatch.Runner
	mailer   mail.Mailer
	renderer *mail.Renderer
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tasks dispatch.Runner, mailer mail.Mailer, renderer *mail.Renderer) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		tasks:    tasks,
		mailer:   mailer,
		renderer: renderer,
		now:      time.Now,
	}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := models.NormalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	role := models.RoleCandidate
	if req.Role == string(models.RoleLeader) {
		role = models.RoleLeader
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     role,
		Active:   true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	return s.generateTokenPair(&user)
}

// Login fails with the same error for an unknown email, a wrong password and
// a deactivated account.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
	if err != nil {
		return apperr.Internal("failed to logout", err)
	}
	return nil
}

// Authorize re-hydrates the user named by a verified token.
func (s *AuthService) Authorize(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

// ParseToken verifies an access token and returns its subject.
func (s *AuthService) ParseToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	}
	return id, nil
}

// RequestPasswordReset never reveals whether the email is registered. When it
// is, a reset link is mailed in the background.
func (s *AuthService) RequestPasswordReset(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Internal("failed to load user", err)
	}
	if !user.Active {
		return nil
	}

	raw, err := randomToken()
	if err != nil {
		return apperr.Internal("failed to generate reset token", err)
	}
	hash := hashToken(raw)
	expires := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":       hash,
		"reset_token_expires_at": expires,
	}).Error; err != nil {
		return apperr.Internal("failed to store reset token", err)
	}

	body, err := s.renderer.Render(mail.TemplatePasswordReset, mail.PasswordResetData{
		Name:       user.Name,
		ResetURL:   strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(raw),
		ExpiresMin: int(s.cfg.ResetTokenTTL.Minutes()),
	})
	if err != nil {
		return apperr.Internal("failed to render reset email", err)
	}

	to := user.Email
	if !s.tasks.Go("password-reset-email", func(ctx context.Context) error {
		return s.mailer.Send(ctx, to, "Reset your password", body)
	}) {
		slog.Warn("password reset email not queued", "user_id", user.ID)
	}
	return nil
}

func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	var user models.User
	if err := s.db.Where("reset_token_hash = ?", hashToken(req.Token)).First(&user).Error; err != nil {
		return ErrInvalidResetToken
	}
	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password":               string(hash),
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", user.ID).
			Update("revoked", true).Error
	})
	if err != nil {
		return apperr.Internal("failed to reset password", err)
	}
	return nil
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to sign token", err)
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue refresh token", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	companyID := ""
	if user.CompanyID != nil {
		companyID = user.CompanyID.String()
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":        user.ID.String(),
		"email":      user.Email,
		"role":       string(user.Role),
		"company_id": companyID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
