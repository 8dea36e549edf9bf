package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/push"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

type NotificationService interface {
	// Send persists a notice for its recipient, then pushes a
	// notification-created event on the recipient's user channel.
	Send(ctx context.Context, notification *model.Notification) error
	SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error
	SendAcceptConfirmation(ctx context.Context, senderID, recipientID uuid.UUID) error
	SendDismissConfirmation(ctx context.Context, senderID, recipientID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, actorID, notificationID uuid.UUID) error
	Delete(ctx context.Context, actorID, notificationID uuid.UUID) error
}

type notificationService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	gateway       push.Gateway
}

func NewNotificationService(users repository.UserRepository, notifications repository.NotificationRepository, gateway push.Gateway) NotificationService {
	return &notificationService{
		users:         users,
		notifications: notifications,
		gateway:       gateway,
	}
}

func (s *notificationService) Send(ctx context.Context, notification *model.Notification) error {
	if _, err := s.users.GetByID(ctx, notification.UserID); err != nil {
		return fmt.Errorf("notification recipient: %w", err)
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	s.publish(ctx, push.UserChannel(notification.UserID), push.EventNotificationCreated, notification)

	return nil
}

func (s *notificationService) SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) error {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	return s.Send(ctx, &model.Notification{
		UserID:   recipientID,
		SenderID: senderID,
		Body:     fmt.Sprintf("%s sent you a friend request", sender.Nickname),
		Status:   model.NotificationUnread,
		Type:     model.NotificationTypeFriendRequest,
	})
}

func (s *notificationService) SendAcceptConfirmation(ctx context.Context, senderID, recipientID uuid.UUID) error {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	return s.Send(ctx, &model.Notification{
		UserID:   recipientID,
		SenderID: senderID,
		Body:     fmt.Sprintf("%s accepted your friend request", sender.Nickname),
		Status:   model.NotificationUnread,
		Type:     model.NotificationTypeMessage,
	})
}

func (s *notificationService) SendDismissConfirmation(ctx context.Context, senderID, recipientID uuid.UUID) error {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return err
	}

	return s.Send(ctx, &model.Notification{
		UserID:   recipientID,
		SenderID: senderID,
		Body:     fmt.Sprintf("%s dismissed your friend request", sender.Nickname),
		Status:   model.NotificationUnread,
		Type:     model.NotificationTypeMessage,
	})
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.notifications.ListByRecipient(ctx, userID, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actorID, notificationID uuid.UUID) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return apperror.ErrForbidden
	}

	return s.notifications.MarkAsRead(ctx, notificationID)
}

func (s *notificationService) Delete(ctx context.Context, actorID, notificationID uuid.UUID) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return apperror.ErrForbidden
	}

	rows, err := s.notifications.Delete(ctx, notificationID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

// publish is fire-and-forget: the durable state is already committed, a
// missed push only means nobody was connected to observe it.
func (s *notificationService) publish(ctx context.Context, channel, event string, payload any) {
	if s.gateway == nil {
		return
	}
	if err := s.gateway.Publish(ctx, channel, event, payload); err != nil {
		log.Printf("push publish failed on %s: %v", channel, err)
	}
}
