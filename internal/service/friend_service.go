package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"notely.app/notelyserver/internal/dto"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

// FriendService drives the friend-request lifecycle. Every redundant
// mutation (request twice, block twice, remove a non-friend) is a
// Conflict, never a silent no-op.
type FriendService interface {
	ListFriends(ctx context.Context, actorID uuid.UUID) ([]dto.FriendResponse, error)
	SendFriendRequest(ctx context.Context, actorID, targetID uuid.UUID) error
	CancelFriendRequest(ctx context.Context, actorID, targetID uuid.UUID) error
	AcceptFriendRequest(ctx context.Context, actorID, notificationID uuid.UUID) error
	DismissFriendRequest(ctx context.Context, actorID, notificationID uuid.UUID) error
	BlockUser(ctx context.Context, actorID, targetID uuid.UUID) error
	UnblockUser(ctx context.Context, actorID, targetID uuid.UUID) error
	RemoveFriend(ctx context.Context, actorID, targetID uuid.UUID) error
}

type friendService struct {
	users         repository.UserRepository
	chats         repository.ChatRepository
	notifications repository.NotificationRepository
	notifier      NotificationService
	tx            repository.TxManager
}

func NewFriendService(users repository.UserRepository, chats repository.ChatRepository,
	notifications repository.NotificationRepository, notifier NotificationService,
	tx repository.TxManager) FriendService {
	return &friendService{
		users:         users,
		chats:         chats,
		notifications: notifications,
		notifier:      notifier,
		tx:            tx,
	}
}

// ListFriends resolves every friend's profile together with the pairwise
// chat, creating the chat when it does not exist yet. The result always
// has exactly one entry per friend-set member.
func (s *friendService) ListFriends(ctx context.Context, actorID uuid.UUID) ([]dto.FriendResponse, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	friends := make([]dto.FriendResponse, 0, len(actor.Friends))
	for _, friendID := range actor.Friends {
		friend, err := s.users.GetByID(ctx, friendID)
		if err != nil {
			return nil, fmt.Errorf("resolve friend %s: %w", friendID, err)
		}

		chat, err := s.ensureTwoPartyChat(ctx, actorID, friendID)
		if err != nil {
			return nil, err
		}

		friends = append(friends, dto.FriendResponse{
			ID:        friend.ID,
			Nickname:  friend.Nickname,
			Email:     friend.Email,
			AvatarURL: friend.AvatarURL,
			Chat: dto.ChatSummary{
				ID:      chat.ID,
				Members: chat.MemberIDs(),
			},
		})
	}

	return friends, nil
}

func (s *friendService) SendFriendRequest(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return fmt.Errorf("friend request target: %w", err)
	}

	if actor.Friends.Contains(targetID) {
		return fmt.Errorf("%w: already friends", apperror.ErrConflict)
	}
	if actor.PendingOutgoing.Contains(targetID) {
		return fmt.Errorf("%w: friend request already pending", apperror.ErrConflict)
	}

	actor.PendingOutgoing.Add(targetID)
	if err := s.users.Update(ctx, actor); err != nil {
		return fmt.Errorf("%w: persist friend request: %v", apperror.ErrUnavailable, err)
	}

	return s.notifier.SendFriendRequest(ctx, actorID, targetID)
}

func (s *friendService) CancelFriendRequest(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if !actor.PendingOutgoing.Remove(targetID) {
		return fmt.Errorf("%w: no pending friend request to cancel", apperror.ErrConflict)
	}

	if err := s.users.Update(ctx, actor); err != nil {
		return fmt.Errorf("%w: persist cancellation: %v", apperror.ErrUnavailable, err)
	}

	return nil
}

// AcceptFriendRequest consumes a friend-request notification: both friend
// sets gain the other party, the sender's pending entry goes away and the
// notification is deleted, all in one transaction. The notification
// delete doubles as the winner check when accept and dismiss race.
func (s *friendService) AcceptFriendRequest(ctx context.Context, actorID, notificationID uuid.UUID) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return apperror.ErrForbidden
	}

	senderID := notification.SenderID

	err = s.tx.Do(ctx, func(st repository.Stores) error {
		actor, err := st.Users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		sender, err := st.Users.GetByID(ctx, senderID)
		if err != nil {
			return err
		}

		actor.Friends.Add(senderID)
		sender.Friends.Add(actorID)
		sender.PendingOutgoing.Remove(actorID)

		if err := st.Users.Update(ctx, actor); err != nil {
			return err
		}
		if err := st.Users.Update(ctx, sender); err != nil {
			return err
		}

		rows, err := st.Notifications.Delete(ctx, notificationID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Someone consumed the notification first; roll back.
			return apperror.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Provision the pairwise chat as soon as the friendship exists, so the
	// pair can message each other without a ListFriends round trip first.
	if _, err := s.ensureTwoPartyChat(ctx, actorID, senderID); err != nil {
		return err
	}

	return s.notifier.SendAcceptConfirmation(ctx, actorID, senderID)
}

func (s *friendService) DismissFriendRequest(ctx context.Context, actorID, notificationID uuid.UUID) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return apperror.ErrForbidden
	}

	senderID := notification.SenderID

	err = s.tx.Do(ctx, func(st repository.Stores) error {
		sender, err := st.Users.GetByID(ctx, senderID)
		if err != nil {
			return err
		}

		sender.PendingOutgoing.Remove(actorID)
		if err := st.Users.Update(ctx, sender); err != nil {
			return err
		}

		rows, err := st.Notifications.Delete(ctx, notificationID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return err
	}

	return s.notifier.SendDismissConfirmation(ctx, actorID, senderID)
}

// BlockUser only touches the blocked set. An existing friendship or
// pending request survives the block.
func (s *friendService) BlockUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if !actor.Blocked.Add(targetID) {
		return fmt.Errorf("%w: user already blocked", apperror.ErrConflict)
	}

	if err := s.users.Update(ctx, actor); err != nil {
		return fmt.Errorf("%w: persist block: %v", apperror.ErrUnavailable, err)
	}

	return nil
}

func (s *friendService) UnblockUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	if !actor.Blocked.Remove(targetID) {
		return fmt.Errorf("%w: user is not blocked", apperror.ErrConflict)
	}

	if err := s.users.Update(ctx, actor); err != nil {
		return fmt.Errorf("%w: persist unblock: %v", apperror.ErrUnavailable, err)
	}

	return nil
}

func (s *friendService) RemoveFriend(ctx context.Context, actorID, targetID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return fmt.Errorf("removed friend: %w", err)
	}

	return s.tx.Do(ctx, func(st repository.Stores) error {
		actor, err := st.Users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		target, err := st.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if !actor.Friends.Remove(targetID) {
			return fmt.Errorf("%w: user is not a friend", apperror.ErrConflict)
		}
		target.Friends.Remove(actorID)

		if err := st.Users.Update(ctx, actor); err != nil {
			return err
		}
		return st.Users.Update(ctx, target)
	})
}

// ensureTwoPartyChat finds the chat whose member set is exactly the pair,
// creating it when absent. The exact-match lookup keeps the chat unique
// per unordered pair.
func (s *friendService) ensureTwoPartyChat(ctx context.Context, idA, idB uuid.UUID) (*model.Chat, error) {
	chat, err := s.chats.FindTwoPartyChat(ctx, idA, idB)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		return chat, nil
	}

	chat = &model.Chat{
		ID: uuid.New(),
		Members: []model.ChatMember{
			{UserID: idA},
			{UserID: idB},
		},
	}
	for i := range chat.Members {
		chat.Members[i].ChatID = chat.ID
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("%w: create chat: %v", apperror.ErrUnavailable, err)
	}

	return chat, nil
}
