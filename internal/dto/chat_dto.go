package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageCreateRequest struct {
	Body string `json:"body" binding:"required,min=1,max=1000"`
}

type MessageUpdateRequest struct {
	Body string `json:"body" binding:"required,min=1,max=1000"`
}

type MessageResponse struct {
	ID       uuid.UUID `json:"id"`
	ChatID   uuid.UUID `json:"chat_id"`
	SenderID uuid.UUID `json:"sender_id"`
	Body     string    `json:"body"`
	SendTime time.Time `json:"send_time"`
}

type ChatResponse struct {
	ID       uuid.UUID         `json:"id"`
	Members  []uuid.UUID       `json:"members"`
	Messages []MessageResponse `json:"messages"`
}
