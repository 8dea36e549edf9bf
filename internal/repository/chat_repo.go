package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/pkg/apperror"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Chat, error)
	// FindTwoPartyChat looks up the chat whose member set is exactly
	// {idA, idB}. Returns (nil, nil) when no such chat exists.
	FindTwoPartyChat(ctx context.Context, idA, idB uuid.UUID) (*model.Chat, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Chat, error)
	CreateMessage(ctx context.Context, message *model.Message) error
	UpdateMessage(ctx context.Context, message *model.Message) error
	// DeleteMessage reports how many rows were removed.
	DeleteMessage(ctx context.Context, chatID, messageID uuid.UUID) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("send_time asc")
		}).
		Where("id = ?", id).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return &chat, nil
}

func (r *chatRepository) FindTwoPartyChat(ctx context.Context, idA, idB uuid.UUID) (*model.Chat, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT chat_id FROM chat_members
		GROUP BY chat_id
		HAVING COUNT(*) = 2
		   AND COUNT(*) FILTER (WHERE user_id IN (?, ?)) = 2
		LIMIT 1`, idA, idB).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, ids[0])
}

func (r *chatRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("send_time asc")
		}).
		Where("id IN (?)", r.db.Table("chat_members").Select("chat_id").Where("user_id = ?", userID)).
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) UpdateMessage(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *chatRepository) DeleteMessage(ctx context.Context, chatID, messageID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND chat_id = ?", messageID, chatID).
		Delete(&model.Message{})
	return res.RowsAffected, res.Error
}
