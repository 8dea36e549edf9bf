package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Members   []ChatMember `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"members"`
	Messages  []Message    `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"messages"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Chat) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (c *Chat) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

type ChatMember struct {
	ChatID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID   uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Body     string    `gorm:"type:text;not null" json:"body"`
	// Assigned by the server at creation, UTC. Immutable afterwards.
	SendTime time.Time `gorm:"not null" json:"send_time"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
