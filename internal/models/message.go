package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs to the thread of one application.
type Message struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender        *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID   uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_recipient_read,priority:1" json:"recipient_id"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	Read          bool      `gorm:"not null;index:idx_messages_recipient_read,priority:2" json:"read"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
