package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event names carried on the wire.
const (
	EventMessageCreated      = "message-created"
	EventMessageUpdated      = "message-updated"
	EventMessageDeleted      = "message-deleted"
	EventNotificationCreated = "notification-created"
)

const publishTimeout = 2 * time.Second

// Envelope is the JSON frame delivered to subscribers.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Gateway fans an event out to every subscriber currently attached to a
// channel. Delivery is best-effort: no retry, no backlog, no error when
// nobody is listening. Durable state lives in the stores, never here.
type Gateway interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// UserChannel addresses every connection a user holds open.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// ChatChannel addresses every connection subscribed to a chat.
func ChatChannel(chatID uuid.UUID) string {
	return "chat:" + chatID.String()
}

type redisGateway struct {
	client *redis.Client
}

func NewRedisGateway(client *redis.Client) Gateway {
	return &redisGateway{client: client}
}

func (g *redisGateway) Publish(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return g.client.Publish(ctx, channel, data).Err()
}
