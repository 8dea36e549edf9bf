package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

// In-memory fakes of the repository and gateway interfaces. The engines
// only ever see the interfaces, so the fakes stand in for postgres and
// redis without any behavioral difference the services could observe.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) put(u *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.put(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperror.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SearchByNicknameOrEmail(ctx context.Context, query string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[id]; !ok {
		return 0, nil
	}
	delete(r.notifications, id)
	return 1, nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return apperror.ErrNotFound
	}
	n.Status = model.NotificationRead
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.Status == model.NotificationUnread {
			count++
		}
	}
	return count, nil
}

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[uuid.UUID]*model.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]*model.Chat)}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == uuid.Nil {
		chat.ID = uuid.New()
	}
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	// hand out a copy so callers cannot mutate the store directly
	cp := *chat
	cp.Members = append([]model.ChatMember(nil), chat.Members...)
	cp.Messages = append([]model.Message(nil), chat.Messages...)
	return &cp, nil
}

func (r *fakeChatRepo) FindTwoPartyChat(ctx context.Context, idA, idB uuid.UUID) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if len(chat.Members) == 2 && chat.HasMember(idA) && chat.HasMember(idB) {
			cp := *chat
			cp.Members = append([]model.ChatMember(nil), chat.Members...)
			cp.Messages = append([]model.Message(nil), chat.Messages...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Chat
	for _, chat := range r.chats {
		if chat.HasMember(userID) {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[message.ChatID]
	if !ok {
		return apperror.ErrNotFound
	}
	chat.Messages = append(chat.Messages, *message)
	return nil
}

func (r *fakeChatRepo) UpdateMessage(ctx context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[message.ChatID]
	if !ok {
		return apperror.ErrNotFound
	}
	for i := range chat.Messages {
		if chat.Messages[i].ID == message.ID {
			chat.Messages[i] = *message
			return nil
		}
	}
	return apperror.ErrNotFound
}

func (r *fakeChatRepo) DeleteMessage(ctx context.Context, chatID, messageID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return 0, nil
	}
	for i := range chat.Messages {
		if chat.Messages[i].ID == messageID {
			chat.Messages = append(chat.Messages[:i], chat.Messages[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeChatRepo) twoPartyChatCount(idA, idB uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, chat := range r.chats {
		if len(chat.Members) == 2 && chat.HasMember(idA) && chat.HasMember(idB) {
			count++
		}
	}
	return count
}

// fakeTxManager hands the same fakes back, so "transactional" work lands
// in the same in-memory state.
type fakeTxManager struct {
	stores repository.Stores
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(s repository.Stores) error) error {
	return fn(m.stores)
}

type publishRecord struct {
	Channel string
	Event   string
	Payload any
}

type fakeGateway struct {
	mu        sync.Mutex
	published []publishRecord
}

func (g *fakeGateway) Publish(ctx context.Context, channel, event string, payload any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.published = append(g.published, publishRecord{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (g *fakeGateway) records() []publishRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]publishRecord(nil), g.published...)
}

func (g *fakeGateway) recordsFor(channel string) []publishRecord {
	var out []publishRecord
	for _, rec := range g.records() {
		if rec.Channel == channel {
			out = append(out, rec)
		}
	}
	return out
}
