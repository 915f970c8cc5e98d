// Package push stores browser Web Push subscriptions and delivers VAPID-signed
// notifications to them.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnavailable = apperr.New(apperr.KindValidation, "push notifications are not configured")

// Payload is the JSON document the service worker receives.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	URL   string            `json:"url,omitempty"`
	Tag   string            `json:"tag,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

type Service struct {
	db         *gorm.DB
	publicKey  string
	privateKey string
	subject    string
	send       sendFunc
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.VAPIDSubject,
		send:       webpush.SendNotificationWithContext,
	}
}

// Available reports whether a VAPID key pair is configured.
func (s *Service) Available() bool {
	return s.publicKey != "" && s.privateKey != ""
}

func (s *Service) PublicKey() string {
	return s.publicKey
}

// Subscribe registers endpoint for userID. An endpoint already on file is
// reassigned to the caller with fresh keys.
func (s *Service) Subscribe(userID uuid.UUID, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	sub := models.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		return nil, apperr.Internal("failed to save push subscription", err)
	}
	return &sub, nil
}

func (s *Service) Unsubscribe(userID uuid.UUID, endpoint string) error {
	if err := s.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error; err != nil {
		return apperr.Internal("failed to delete push subscription", err)
	}
	return nil
}

// NotifyUser sends payload to every subscription of userID. Subscriptions the
// push service reports as gone (404/410) are deleted.
func (s *Service) NotifyUser(ctx context.Context, userID uuid.UUID, payload Payload) error {
	if !s.Available() {
		return nil
	}
	var subs []models.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return fmt.Errorf("load push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	var errs []error
	for _, sub := range subs {
		resp, err := s.send(ctx, message, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, &webpush.Options{
			Subscriber:      s.subject,
			VAPIDPublicKey:  s.publicKey,
			VAPIDPrivateKey: s.privateKey,
			TTL:             60 * 60 * 24,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("push to %s: %w", sub.ID, err))
			continue
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			if err := s.db.WithContext(ctx).Delete(&models.PushSubscription{}, "id = ?", sub.ID).Error; err != nil {
				errs = append(errs, fmt.Errorf("delete stale subscription %s: %w", sub.ID, err))
			}
		case resp.StatusCode >= 400:
			errs = append(errs, fmt.Errorf("push to %s: status %d", sub.ID, resp.StatusCode))
		}
	}
	return errors.Join(errs...)
}
