package applications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notification struct {
	userID  uuid.UUID
	payload push.Payload
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID uuid.UUID, payload push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{userID, payload})
	return nil
}

type fixture struct {
	db        *gorm.DB
	svc       *ApplicationService
	notifier  *fakeNotifier
	leader    *models.User
	company   *models.Company
	job       *models.Job
	candidate *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	notifier := &fakeNotifier{}
	leader, company := dbtest.Leader(t, db, "lead@acme.com", "Acme")
	return &fixture{
		db:        db,
		svc:       NewApplicationService(db, dispatch.Inline{}, notifier),
		notifier:  notifier,
		leader:    leader,
		company:   company,
		job:       dbtest.Job(t, db, company.ID, "Go Engineer", 5000, models.WorkModeRemote),
		candidate: dbtest.User(t, db, "ana@example.com", models.RoleCandidate, nil),
	}
}

func listed(t *testing.T, f *fixture, caller *models.User, q ListQuery) []models.Application {
	t.Helper()
	page, err := f.svc.ListScoped(caller, q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return page.Items.([]models.Application)
}

func TestCreate(t *testing.T) {
	f := setup(t)

	app, err := f.svc.Create(f.candidate, CreateApplicationRequest{JobID: f.job.ID, Message: "Hire me"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.Status != models.StatusSubmitted || app.UserID != f.candidate.ID {
		t.Fatalf("unexpected application %+v", app)
	}

	if _, err := f.svc.Create(f.candidate, CreateApplicationRequest{JobID: f.job.ID}); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected already applied, got %v", err)
	}
	if _, err := f.svc.Create(f.leader, CreateApplicationRequest{JobID: f.job.ID}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected forbidden for leader, got %v", err)
	}
	if _, err := f.svc.Create(f.candidate, CreateApplicationRequest{JobID: uuid.New()}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected job not found, got %v", err)
	}

	closed := dbtest.Job(t, f.db, f.company.ID, "Closed", 5000, models.WorkModeRemote)
	f.db.Model(closed).Update("active", false)
	if _, err := f.svc.Create(f.candidate, CreateApplicationRequest{JobID: closed.ID}); !errors.Is(err, ErrJobClosed) {
		t.Fatalf("expected job closed, got %v", err)
	}
}

func TestListScopedForCandidates(t *testing.T) {
	f := setup(t)
	other := dbtest.User(t, f.db, "bob@example.com", models.RoleCandidate, nil)
	mine := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)
	dbtest.Application(t, f.db, other.ID, f.job.ID)

	got := listed(t, f, f.candidate, ListQuery{})
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("expected only own application, got %d", len(got))
	}
	for _, app := range got {
		if app.UserID != f.candidate.ID {
			t.Fatalf("candidate saw foreign application %s", app.ID)
		}
	}

	if _, err := f.svc.ListScoped(f.candidate, ListQuery{UserID: other.ID.String()}); !errors.Is(err, ErrForeignApplicant) {
		t.Fatalf("expected forbidden for foreign user filter, got %v", err)
	}
}

func TestListScopedForLeaders(t *testing.T) {
	f := setup(t)
	otherLeader, otherCompany := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")
	foreignJob := dbtest.Job(t, f.db, otherCompany.ID, "Ops", 4000, models.WorkModeOnSite)
	own := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)
	dbtest.Application(t, f.db, f.candidate.ID, foreignJob.ID)

	got := listed(t, f, f.leader, ListQuery{})
	if len(got) != 1 || got[0].ID != own.ID {
		t.Fatalf("expected only own company's application, got %d", len(got))
	}
	for _, app := range got {
		if app.Job == nil || app.Job.CompanyID != f.company.ID {
			t.Fatalf("leader saw application of another company: %s", app.ID)
		}
	}

	if _, err := f.svc.ListScoped(f.leader, ListQuery{CompanyID: otherCompany.ID.String()}); !errors.Is(err, ErrForeignCompany) {
		t.Fatalf("expected forbidden for foreign company filter, got %v", err)
	}
	orphan := dbtest.User(t, f.db, "orphan@example.com", models.RoleLeader, nil)
	if _, err := f.svc.ListScoped(orphan, ListQuery{}); !errors.Is(err, ErrNoCompany) {
		t.Fatalf("expected forbidden for leader without company, got %v", err)
	}
	if got := listed(t, f, otherLeader, ListQuery{}); len(got) != 1 || got[0].JobID != foreignJob.ID {
		t.Fatalf("expected other leader to see their own application only")
	}
}

func TestListScopedForAdminsWithFilters(t *testing.T) {
	f := setup(t)
	admin := dbtest.User(t, f.db, "admin@example.com", models.RoleAdmin, nil)
	_, otherCompany := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")
	foreignJob := dbtest.Job(t, f.db, otherCompany.ID, "Ops", 4000, models.WorkModeOnSite)
	a1 := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)
	a2 := dbtest.Application(t, f.db, f.candidate.ID, foreignJob.ID)
	f.db.Model(a2).Update("status", models.StatusRejected)

	if got := listed(t, f, admin, ListQuery{}); len(got) != 2 {
		t.Fatalf("expected admin to see 2 applications, got %d", len(got))
	}
	if got := listed(t, f, admin, ListQuery{CompanyID: f.company.ID.String()}); len(got) != 1 || got[0].ID != a1.ID {
		t.Fatal("expected company filter to narrow results")
	}
	if got := listed(t, f, admin, ListQuery{Status: "Rejected"}); len(got) != 1 || got[0].ID != a2.ID {
		t.Fatal("expected status filter to narrow results")
	}
	if _, err := f.svc.ListScoped(admin, ListQuery{Status: "hired"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestUpdateStatusScenario(t *testing.T) {
	f := setup(t)
	app, err := f.svc.Create(f.candidate, CreateApplicationRequest{JobID: f.job.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(f.leader, app.ID, "Approved"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got := listed(t, f, f.candidate, ListQuery{})
	if len(got) != 1 || got[0].Status != models.StatusApproved {
		t.Fatalf("expected approved application, got %+v", got)
	}

	second := dbtest.User(t, f.db, "bob@example.com", models.RoleCandidate, nil)
	if _, err := f.svc.UpdateStatus(second, app.ID, "rejected"); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected forbidden for candidate, got %v", err)
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].userID != f.candidate.ID {
		t.Fatalf("expected one push to the candidate, got %+v", f.notifier.sent)
	}
	if f.notifier.sent[0].payload.Data["status"] != "approved" {
		t.Fatalf("unexpected payload %+v", f.notifier.sent[0].payload)
	}
}

func TestUpdateStatusAcceptsAnyTransition(t *testing.T) {
	f := setup(t)
	app := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)

	for _, st := range []string{"rejected", "submitted", "approved", "under review", "submitted"} {
		got, err := f.svc.UpdateStatus(f.leader, app.ID, st)
		if err != nil {
			t.Fatalf("transition to %q: %v", st, err)
		}
		want, _ := models.ParseApplicationStatus(st)
		if got.Status != want {
			t.Fatalf("expected %s, got %s", want, got.Status)
		}
	}
	if _, err := f.svc.UpdateStatus(f.leader, app.ID, "hired"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestUpdateStatusRequiresOwnership(t *testing.T) {
	f := setup(t)
	outsider, _ := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")
	app := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)

	if _, err := f.svc.UpdateStatus(outsider, app.ID, "approved"); !errors.Is(err, access.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(f.leader, uuid.New(), "approved"); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var stored models.Application
	f.db.First(&stored, "id = ?", app.ID)
	if stored.Status != models.StatusSubmitted {
		t.Fatalf("expected status unchanged, got %s", stored.Status)
	}
}

func TestGetScope(t *testing.T) {
	f := setup(t)
	app := dbtest.Application(t, f.db, f.candidate.ID, f.job.ID)
	outsider, _ := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")
	stranger := dbtest.User(t, f.db, "bob@example.com", models.RoleCandidate, nil)

	for _, caller := range []*models.User{f.candidate, f.leader} {
		if _, err := f.svc.Get(caller, app.ID); err != nil {
			t.Fatalf("%s: expected access, got %v", caller.Email, err)
		}
	}
	for _, caller := range []*models.User{outsider, stranger} {
		if _, err := f.svc.Get(caller, app.ID); !errors.Is(err, access.ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", caller.Email, err)
		}
	}
}
