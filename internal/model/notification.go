package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

const (
	// NotificationTypeFriendRequest is the only actionable kind: the
	// recipient accepts or dismisses the request through it.
	NotificationTypeFriendRequest = "friend_request"
	// NotificationTypeMessage covers plain informational notices
	// (accept/dismiss confirmations), not chat messages.
	NotificationTypeMessage = "message"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Body      string    `gorm:"type:text" json:"body"`
	Status    string    `gorm:"size:20;not null;default:'unread'" json:"status"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
