package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/access"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = apperr.NotFound("application not found")
	ErrNotParticipant      = apperr.Forbidden("not a participant of this conversation")
	ErrInvalidRecipient    = apperr.Validation("invalid recipient", map[string]string{"recipient_id": "must be another participant of the application"})
	ErrEmptyBody           = apperr.Validation("message body is empty", map[string]string{"body": "is required"})
	ErrRealtimeDisabled    = apperr.Validation("realtime is not configured", nil)
	ErrChannelDenied       = apperr.Forbidden("channel not allowed")
)

const previewLen = 120

// Notifier delivers push notifications to every device of a user.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, payload push.Payload) error
}

// MessageService manages the per-application conversation between the
// candidate and the leaders of the hiring company.
type MessageService struct {
	db        *gorm.DB
	tasks     dispatch.Runner
	publisher realtime.Publisher
	signer    *realtime.Signer
	notifier  Notifier
}

func NewMessageService(db *gorm.DB, tasks dispatch.Runner, publisher realtime.Publisher, signer *realtime.Signer, notifier Notifier) *MessageService {
	return &MessageService{db: db, tasks: tasks, publisher: publisher, signer: signer, notifier: notifier}
}

// ListThread returns the messages of one application, oldest first.
func (s *MessageService) ListThread(caller *models.User, appID uuid.UUID) ([]models.Message, error) {
	if _, err := s.thread(caller, appID); err != nil {
		return nil, err
	}
	messages := []models.Message{}
	if err := s.db.Preload("Sender").
		Where("application_id = ?", appID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, apperr.Internal("failed to list messages", err)
	}
	return messages, nil
}

// Send stores a message and fans it out over realtime and push.
func (s *MessageService) Send(caller *models.User, req SendMessageRequest) (*models.Message, error) {
	app, err := s.thread(caller, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if req.RecipientID == caller.ID {
		return nil, ErrInvalidRecipient
	}
	if req.RecipientID != app.UserID {
		var recipient models.User
		if err := s.db.First(&recipient, "id = ?", req.RecipientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidRecipient
			}
			return nil, apperr.Internal("failed to load recipient", err)
		}
		if !recipient.LeadsCompany(app.Job.CompanyID) {
			return nil, ErrInvalidRecipient
		}
	}

	msg := models.Message{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		SenderID:      caller.ID,
		RecipientID:   req.RecipientID,
		Body:          body,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, apperr.Internal("failed to send message", err)
	}
	msg.Sender = caller

	s.fanOut(&msg, caller, app)
	return &msg, nil
}

func (s *MessageService) fanOut(msg *models.Message, sender *models.User, app *models.Application) {
	if s.tasks == nil {
		return
	}
	event := MessageEvent{
		ID:            msg.ID,
		ApplicationID: msg.ApplicationID,
		SenderID:      msg.SenderID,
		SenderName:    sender.Name,
		RecipientID:   msg.RecipientID,
		Body:          msg.Body,
		CreatedAt:     msg.CreatedAt,
	}
	if s.publisher != nil {
		s.tasks.Go("message-realtime", func(ctx context.Context) error {
			if err := s.publisher.Publish(ctx, realtime.ApplicationChannel(app.ID), realtime.EventNewMessage, event); err != nil {
				return err
			}
			return s.publisher.Publish(ctx, realtime.UserChannel(event.RecipientID), realtime.EventNewMessage, event)
		})
	}
	if s.notifier != nil {
		payload := push.Payload{
			Title: "New message from " + sender.Name,
			Body:  preview(msg.Body),
			URL:   "/applications/" + app.ID.String() + "/messages",
			Tag:   "thread-" + app.ID.String(),
			Data:  map[string]string{"application_id": app.ID.String(), "message_id": msg.ID.String()},
		}
		recipientID := msg.RecipientID
		s.tasks.Go("message-push", func(ctx context.Context) error {
			return s.notifier.NotifyUser(ctx, recipientID, payload)
		})
	}
}

// MarkRead flags every message addressed to the caller in the thread as read.
func (s *MessageService) MarkRead(caller *models.User, appID uuid.UUID) (int64, error) {
	if _, err := s.thread(caller, appID); err != nil {
		return 0, err
	}
	res := s.db.Model(&models.Message{}).
		Where("application_id = ? AND recipient_id = ? AND read = ?", appID, caller.ID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, apperr.Internal("failed to mark messages read", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *MessageService) UnreadCount(caller *models.User) (int64, error) {
	if caller == nil {
		return 0, access.ErrUnauthenticated
	}
	var count int64
	if err := s.db.Model(&models.Message{}).
		Where("recipient_id = ? AND read = ?", caller.ID, false).
		Count(&count).Error; err != nil {
		return 0, apperr.Internal("failed to count unread messages", err)
	}
	return count, nil
}

// AuthorizeChannel signs a websocket subscription. Users may join their own
// user channel and the channels of applications they take part in.
func (s *MessageService) AuthorizeChannel(caller *models.User, socketID, channel string) (*dto.ChannelAuthResponse, error) {
	if caller == nil {
		return nil, access.ErrUnauthenticated
	}
	if s.signer == nil || !s.signer.Enabled() {
		return nil, ErrRealtimeDisabled
	}
	kind, id, err := realtime.ParseChannel(channel)
	if err != nil {
		return nil, ErrChannelDenied
	}

	switch kind {
	case realtime.ChannelUser:
		if id != caller.ID {
			return nil, ErrChannelDenied
		}
	case realtime.ChannelApplication, realtime.ChannelPresenceApplication:
		if _, err := s.thread(caller, id); err != nil {
			if apperr.IsKind(err, apperr.KindInternal) {
				return nil, err
			}
			return nil, ErrChannelDenied
		}
	}

	var channelData string
	if kind == realtime.ChannelPresenceApplication {
		raw, err := json.Marshal(presenceData{
			UserID:   caller.ID.String(),
			UserInfo: presenceInfo{Name: caller.Name, Role: string(caller.Role)},
		})
		if err != nil {
			return nil, apperr.Internal("failed to encode presence data", err)
		}
		channelData = string(raw)
	}
	return &dto.ChannelAuthResponse{
		Auth:        s.signer.Sign(socketID, channel, channelData),
		ChannelData: channelData,
	}, nil
}

// thread loads an application and checks that caller takes part in it.
func (s *MessageService) thread(caller *models.User, appID uuid.UUID) (*models.Application, error) {
	if caller == nil {
		return nil, access.ErrUnauthenticated
	}
	var app models.Application
	if err := s.db.Preload("Job").First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, apperr.Internal("failed to load application", err)
	}
	if !isParticipant(caller, &app) {
		return nil, ErrNotParticipant
	}
	return &app, nil
}

func isParticipant(user *models.User, app *models.Application) bool {
	if user.ID == app.UserID {
		return true
	}
	return app.Job != nil && user.LeadsCompany(app.Job.CompanyID)
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLen {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewLen]) + "…"
}
