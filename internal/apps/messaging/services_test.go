package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type published struct {
	channel string
	event   string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(_ context.Context, channel, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{channel, event, payload})
	return nil
}

type fakeNotifier struct {
	mu  sync.Mutex
	to  []uuid.UUID
	msg []push.Payload
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID uuid.UUID, payload push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, userID)
	f.msg = append(f.msg, payload)
	return nil
}

type fixture struct {
	db        *gorm.DB
	svc       *MessageService
	publisher *fakePublisher
	notifier  *fakeNotifier
	leader    *models.User
	candidate *models.User
	app       *models.Application
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	leader, company := dbtest.Leader(t, db, "lead@acme.com", "Acme")
	candidate := dbtest.User(t, db, "ana@example.com", models.RoleCandidate, nil)
	job := dbtest.Job(t, db, company.ID, "Go Engineer", 5000, models.WorkModeRemote)
	return &fixture{
		db:        db,
		svc:       NewMessageService(db, dispatch.Inline{}, publisher, realtime.NewSigner("app-key", "app-secret"), notifier),
		publisher: publisher,
		notifier:  notifier,
		leader:    leader,
		candidate: candidate,
		app:       dbtest.Application(t, db, candidate.ID, job.ID),
	}
}

func TestSendFansOut(t *testing.T) {
	f := setup(t)

	msg, err := f.svc.Send(f.candidate, SendMessageRequest{ApplicationID: f.app.ID, RecipientID: f.leader.ID, Body: "  Hello there  "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Body != "Hello there" || msg.Read {
		t.Fatalf("unexpected message %+v", msg)
	}

	if len(f.publisher.events) != 2 {
		t.Fatalf("expected 2 realtime events, got %d", len(f.publisher.events))
	}
	wantChannels := []string{realtime.ApplicationChannel(f.app.ID), realtime.UserChannel(f.leader.ID)}
	for i, ev := range f.publisher.events {
		if ev.channel != wantChannels[i] || ev.event != realtime.EventNewMessage {
			t.Fatalf("event %d: got %s/%s", i, ev.channel, ev.event)
		}
	}
	if len(f.notifier.to) != 1 || f.notifier.to[0] != f.leader.ID {
		t.Fatalf("expected push to the leader, got %v", f.notifier.to)
	}
}

func TestSendRecipientRules(t *testing.T) {
	f := setup(t)
	colleague := dbtest.User(t, f.db, "lead2@acme.com", models.RoleLeader, f.leader.CompanyID)
	outsider, _ := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")
	stranger := dbtest.User(t, f.db, "bob@example.com", models.RoleCandidate, nil)

	cases := []struct {
		name      string
		sender    *models.User
		recipient uuid.UUID
		want      error
	}{
		{"leader to candidate", f.leader, f.candidate.ID, nil},
		{"leader to colleague", f.leader, colleague.ID, nil},
		{"to self", f.candidate, f.candidate.ID, ErrInvalidRecipient},
		{"to foreign leader", f.candidate, outsider.ID, ErrInvalidRecipient},
		{"to unknown user", f.candidate, uuid.New(), ErrInvalidRecipient},
		{"from outsider", outsider, f.candidate.ID, ErrNotParticipant},
		{"from stranger", stranger, f.leader.ID, ErrNotParticipant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Send(tc.sender, SendMessageRequest{ApplicationID: f.app.ID, RecipientID: tc.recipient, Body: "hi"})
			if tc.want == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := f.svc.Send(f.candidate, SendMessageRequest{ApplicationID: uuid.New(), RecipientID: f.leader.ID, Body: "hi"}); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestThreadAndReadState(t *testing.T) {
	f := setup(t)
	for _, body := range []string{"first", "second"} {
		if _, err := f.svc.Send(f.candidate, SendMessageRequest{ApplicationID: f.app.ID, RecipientID: f.leader.ID, Body: body}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if _, err := f.svc.Send(f.leader, SendMessageRequest{ApplicationID: f.app.ID, RecipientID: f.candidate.ID, Body: "reply"}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	thread, err := f.svc.ListThread(f.leader, f.app.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if len(thread) != 3 || thread[0].Body != "first" || thread[2].Body != "reply" {
		t.Fatalf("expected thread in send order, got %+v", thread)
	}
	stranger := dbtest.User(t, f.db, "bob@example.com", models.RoleCandidate, nil)
	if _, err := f.svc.ListThread(stranger, f.app.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	unread, _ := f.svc.UnreadCount(f.leader)
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}
	updated, err := f.svc.MarkRead(f.leader, f.app.ID)
	if err != nil || updated != 2 {
		t.Fatalf("expected 2 marked read, got %d (%v)", updated, err)
	}
	updated, _ = f.svc.MarkRead(f.leader, f.app.ID)
	if updated != 0 {
		t.Fatalf("expected mark-read to be idempotent, got %d", updated)
	}
	if unread, _ := f.svc.UnreadCount(f.leader); unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
	if unread, _ := f.svc.UnreadCount(f.candidate); unread != 1 {
		t.Fatalf("expected candidate's reply to stay unread, got %d", unread)
	}
}

func TestAuthorizeChannel(t *testing.T) {
	f := setup(t)
	signer := realtime.NewSigner("app-key", "app-secret")
	outsider, _ := dbtest.Leader(t, f.db, "lead@globex.com", "Globex")

	resp, err := f.svc.AuthorizeChannel(f.candidate, "123.456", realtime.UserChannel(f.candidate.ID))
	if err != nil {
		t.Fatalf("own user channel: %v", err)
	}
	if resp.Auth != signer.Sign("123.456", realtime.UserChannel(f.candidate.ID), "") {
		t.Fatalf("unexpected signature %s", resp.Auth)
	}
	if _, err := f.svc.AuthorizeChannel(f.candidate, "123.456", realtime.UserChannel(f.leader.ID)); !errors.Is(err, ErrChannelDenied) {
		t.Fatalf("expected denied for foreign user channel, got %v", err)
	}

	if _, err := f.svc.AuthorizeChannel(f.leader, "1.2", realtime.ApplicationChannel(f.app.ID)); err != nil {
		t.Fatalf("participant application channel: %v", err)
	}
	if _, err := f.svc.AuthorizeChannel(outsider, "1.2", realtime.ApplicationChannel(f.app.ID)); !errors.Is(err, ErrChannelDenied) {
		t.Fatalf("expected denied for outsider, got %v", err)
	}
	if _, err := f.svc.AuthorizeChannel(f.leader, "1.2", "private-chat-room"); !errors.Is(err, ErrChannelDenied) {
		t.Fatalf("expected denied for unknown channel, got %v", err)
	}

	presence := "presence-application-" + f.app.ID.String()
	resp, err = f.svc.AuthorizeChannel(f.candidate, "9.9", presence)
	if err != nil {
		t.Fatalf("presence channel: %v", err)
	}
	var data presenceData
	if err := json.Unmarshal([]byte(resp.ChannelData), &data); err != nil {
		t.Fatalf("channel data: %v", err)
	}
	if data.UserID != f.candidate.ID.String() || data.UserInfo.Role != "candidate" {
		t.Fatalf("unexpected presence data %+v", data)
	}
	if resp.Auth != signer.Sign("9.9", presence, resp.ChannelData) || !strings.HasPrefix(resp.Auth, "app-key:") {
		t.Fatalf("unexpected presence signature %s", resp.Auth)
	}
}

func TestAuthorizeChannelWithoutSigner(t *testing.T) {
	f := setup(t)
	svc := NewMessageService(f.db, dispatch.Inline{}, realtime.NopPublisher{}, realtime.NewSigner("", ""), nil)
	if _, err := svc.AuthorizeChannel(f.candidate, "1.2", realtime.UserChannel(f.candidate.ID)); !errors.Is(err, ErrRealtimeDisabled) {
		t.Fatalf("expected realtime disabled, got %v", err)
	}
}
