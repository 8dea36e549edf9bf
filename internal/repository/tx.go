package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores bundles per-entity repositories bound to one transaction so a
// service can mutate several entities atomically (symmetric friend-set
// updates, notification consumption).
type Stores struct {
	Users         UserRepository
	Notifications NotificationRepository
	Chats         ChatRepository
}

type TxManager interface {
	Do(ctx context.Context, fn func(s Stores) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(s Stores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Users:         NewUserRepository(tx),
			Notifications: NewNotificationRepository(tx),
			Chats:         NewChatRepository(tx),
		})
	})
}
