package services

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/mail"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"gorm.io/gorm"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		ResetTokenTTL:    10 * time.Minute,
		FrontendURL:      "https://jobs.example",
	}
}

func newAuthService(t *testing.T) (*AuthService, *gorm.DB, *fakeMailer) {
	t.Helper()
	db := dbtest.Open(t)
	renderer, err := mail.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	mailer := &fakeMailer{}
	return NewAuthService(db, testConfig(), dispatch.Inline{}, mailer, renderer), db, mailer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)

	resp, err := svc.Register(&dto.RegisterRequest{Name: "Ana", Email: "Ana@Example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "ana@example.com" || resp.User.Role != models.RoleCandidate {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	id, err := svc.ParseToken(resp.AccessToken)
	if err != nil || id != resp.User.ID {
		t.Fatalf("expected token subject %s, got %s (%v)", resp.User.ID, id, err)
	}

	if _, err := svc.Register(&dto.RegisterRequest{Name: "Dup", Email: "ana@example.com", Password: "supersecret"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	if _, err := svc.Login(&dto.LoginRequest{Email: "ANA@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	resp, err := svc.Register(&dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "supersecret", Role: "admin"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != models.RoleCandidate {
		t.Fatalf("expected candidate role, got %s", resp.User.Role)
	}
}

func TestLoginFailuresShareOneError(t *testing.T) {
	svc, db, _ := newAuthService(t)
	dbtest.User(t, db, "known@example.com", models.RoleCandidate, nil)
	disabled := dbtest.User(t, db, "gone@example.com", models.RoleCandidate, nil)
	db.Model(disabled).Update("active", false)

	cases := []dto.LoginRequest{
		{Email: "unknown@example.com", Password: dbtest.Password},
		{Email: "known@example.com", Password: "wrong-password"},
		{Email: "gone@example.com", Password: dbtest.Password},
	}
	for _, req := range cases {
		_, err := svc.Login(&req)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected invalid credentials, got %v", req.Email, err)
		}
	}
}

func TestAuthorize(t *testing.T) {
	svc, db, _ := newAuthService(t)
	user := dbtest.User(t, db, "a@example.com", models.RoleCandidate, nil)

	got, err := svc.Authorize(user.ID)
	if err != nil || got.ID != user.ID {
		t.Fatalf("expected user, got %v", err)
	}

	db.Model(user).Update("active", false)
	if _, err := svc.Authorize(user.ID); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated for deactivated user, got %v", err)
	}

	db.Delete(user)
	if _, err := svc.Authorize(user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	svc, _, _ := newAuthService(t)
	resp, err := svc.Register(&dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	other := *svc
	other.cfg = &config.Config{JWTSecret: "another-secret"}
	if _, err := other.ParseToken(resp.AccessToken); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	resp, err := svc.Register(&dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	next, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == resp.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected reused token to be rejected, got %v", err)
	}

	if err := svc.Logout(&dto.LogoutRequest{RefreshToken: next.RefreshToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: next.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected logged out token to be rejected, got %v", err)
	}
}

var tokenPattern = regexp.MustCompile(`token=([^"&\s]+)`)

func resetTokenFrom(t *testing.T, body string) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no reset token in mail body: %s", body)
	}
	raw, err := url.QueryUnescape(m[1])
	if err != nil {
		t.Fatalf("unescape token: %v", err)
	}
	return raw
}

func TestPasswordResetFlow(t *testing.T) {
	svc, db, mailer := newAuthService(t)
	user := dbtest.User(t, db, "ana@example.com", models.RoleCandidate, nil)

	if err := svc.RequestPasswordReset("ana@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "ana@example.com" {
		t.Fatalf("expected one reset mail, got %+v", mailer.sent)
	}
	token := resetTokenFrom(t, mailer.sent[0].body)

	var stored models.User
	db.First(&stored, "id = ?", user.ID)
	if stored.ResetTokenHash == nil || *stored.ResetTokenHash == token {
		t.Fatal("expected only the token hash to be stored")
	}
	if d := stored.ResetTokenExpiresAt.Sub(time.Now()); d > 10*time.Minute || d < 9*time.Minute {
		t.Fatalf("expected ~10 minute expiry, got %s", d)
	}

	if err := svc.ResetPassword(&dto.ResetPasswordRequest{Token: token, Password: "brand-new-pass"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Login(&dto.LoginRequest{Email: "ana@example.com", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := svc.ResetPassword(&dto.ResetPasswordRequest{Token: token, Password: "another-pass"}); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected token to be single use, got %v", err)
	}
}

func TestPasswordResetExpires(t *testing.T) {
	svc, db, mailer := newAuthService(t)
	dbtest.User(t, db, "ana@example.com", models.RoleCandidate, nil)

	if err := svc.RequestPasswordReset("ana@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := resetTokenFrom(t, mailer.sent[0].body)

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	if err := svc.ResetPassword(&dto.ResetPasswordRequest{Token: token, Password: "brand-new-pass"}); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	if err := svc.RequestPasswordReset("nobody@example.com"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail, got %d", len(mailer.sent))
	}
}
