package messaging

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
	RecipientID   uuid.UUID `json:"recipient_id" validate:"required"`
	Body          string    `json:"body" validate:"required,max=5000"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// MessageEvent is the realtime payload of a new-message event.
type MessageEvent struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

type presenceInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type presenceData struct {
	UserID   string       `json:"user_id"`
	UserInfo presenceInfo `json:"user_info"`
}
