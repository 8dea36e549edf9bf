package dto

import "github.com/google/uuid"

type ChatSummary struct {
	ID      uuid.UUID   `json:"id"`
	Members []uuid.UUID `json:"members"`
}

type FriendResponse struct {
	ID        uuid.UUID   `json:"id"`
	Nickname  string      `json:"nickname"`
	Email     string      `json:"email"`
	AvatarURL *string     `json:"avatar_url,omitempty"`
	Chat      ChatSummary `json:"chat"`
}
