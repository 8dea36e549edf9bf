package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/push"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

// ChatService authorizes by chat membership only: any member may edit or
// delete any message in the chat.
type ChatService interface {
	GetMyChats(ctx context.Context, actorID uuid.UUID) ([]model.Chat, error)
	GetChatByID(ctx context.Context, actorID, chatID uuid.UUID) (*model.Chat, error)
	SendMessage(ctx context.Context, actorID, chatID uuid.UUID, body string) (*model.Message, error)
	EditMessage(ctx context.Context, actorID, chatID, messageID uuid.UUID, body string) (*model.Message, error)
	DeleteMessage(ctx context.Context, actorID, chatID, messageID uuid.UUID) error
}

type chatService struct {
	chats     repository.ChatRepository
	gateway   push.Gateway
	sanitizer *bluemonday.Policy
}

func NewChatService(chats repository.ChatRepository, gateway push.Gateway) ChatService {
	return &chatService{
		chats:     chats,
		gateway:   gateway,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *chatService) GetMyChats(ctx context.Context, actorID uuid.UUID) ([]model.Chat, error) {
	return s.chats.ListByMember(ctx, actorID)
}

func (s *chatService) GetChatByID(ctx context.Context, actorID, chatID uuid.UUID) (*model.Chat, error) {
	return s.resolveAuthorizedChat(ctx, actorID, chatID)
}

func (s *chatService) SendMessage(ctx context.Context, actorID, chatID uuid.UUID, body string) (*model.Message, error) {
	chat, err := s.resolveAuthorizedChat(ctx, actorID, chatID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: actorID,
		Body:     s.sanitizer.Sanitize(body),
		SendTime: time.Now().UTC(),
	}

	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: persist message: %v", apperror.ErrUnavailable, err)
	}

	s.publish(ctx, push.ChatChannel(chat.ID), push.EventMessageCreated, message)

	return message, nil
}

// EditMessage replaces the body only; sender and timestamp are immutable.
func (s *chatService) EditMessage(ctx context.Context, actorID, chatID, messageID uuid.UUID, body string) (*model.Message, error) {
	chat, err := s.resolveAuthorizedChat(ctx, actorID, chatID)
	if err != nil {
		return nil, err
	}

	message := findMessage(chat, messageID)
	if message == nil {
		return nil, fmt.Errorf("message %s: %w", messageID, apperror.ErrNotFound)
	}

	message.Body = s.sanitizer.Sanitize(body)
	if err := s.chats.UpdateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: persist message edit: %v", apperror.ErrUnavailable, err)
	}

	s.publish(ctx, push.ChatChannel(chat.ID), push.EventMessageUpdated, message)

	return message, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, actorID, chatID, messageID uuid.UUID) error {
	chat, err := s.resolveAuthorizedChat(ctx, actorID, chatID)
	if err != nil {
		return err
	}

	message := findMessage(chat, messageID)
	if message == nil {
		return fmt.Errorf("message %s: %w", messageID, apperror.ErrNotFound)
	}

	rows, err := s.chats.DeleteMessage(ctx, chat.ID, messageID)
	if err != nil {
		return fmt.Errorf("%w: delete message: %v", apperror.ErrUnavailable, err)
	}
	if rows == 0 {
		return fmt.Errorf("message %s: %w", messageID, apperror.ErrNotFound)
	}

	s.publish(ctx, push.ChatChannel(chat.ID), push.EventMessageDeleted, message)

	return nil
}

// resolveAuthorizedChat is the shared precondition of every operation:
// the chat must exist and the actor must be one of its members.
func (s *chatService) resolveAuthorizedChat(ctx context.Context, actorID, chatID uuid.UUID) (*model.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(actorID) {
		return nil, apperror.ErrForbidden
	}

	return chat, nil
}

func findMessage(chat *model.Chat, messageID uuid.UUID) *model.Message {
	for i := range chat.Messages {
		if chat.Messages[i].ID == messageID {
			return &chat.Messages[i]
		}
	}
	return nil
}

func (s *chatService) publish(ctx context.Context, channel, event string, payload any) {
	if s.gateway == nil {
		return
	}
	if err := s.gateway.Publish(ctx, channel, event, payload); err != nil {
		log.Printf("push publish failed on %s: %v", channel, err)
	}
}
