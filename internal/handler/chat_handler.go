package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"notely.app/notelyserver/internal/dto"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/push"
	"notely.app/notelyserver/internal/service"
	"notely.app/notelyserver/pkg/apperror"
	"notely.app/notelyserver/pkg/response"
	"notely.app/notelyserver/pkg/validator"
)

type ChatHandler struct {
	service     service.ChatService
	redisClient *redis.Client
}

func NewChatHandler(service service.ChatService, redisClient *redis.Client) *ChatHandler {
	return &ChatHandler{
		service:     service,
		redisClient: redisClient,
	}
}

func (h *ChatHandler) GetMyChats(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	chats, err := h.service.GetMyChats(c.Request.Context(), actorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	out := make([]dto.ChatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, toChatResponse(&chats[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	actorID, chatID, ok := h.actorAndChat(c)
	if !ok {
		return
	}

	chat, err := h.service.GetChatByID(c.Request.Context(), actorID, chatID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toChatResponse(chat)})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	actorID, chatID, ok := h.actorAndChat(c)
	if !ok {
		return
	}

	var req dto.MessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), actorID, chatID, req.Body)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": toMessageResponse(message)})
}

func (h *ChatHandler) EditMessage(c *gin.Context) {
	actorID, chatID, ok := h.actorAndChat(c)
	if !ok {
		return
	}

	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var req dto.MessageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	message, err := h.service.EditMessage(c.Request.Context(), actorID, chatID, messageID, req.Body)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toMessageResponse(message)})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	actorID, chatID, ok := h.actorAndChat(c)
	if !ok {
		return
	}

	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), actorID, chatID, messageID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// HandleWebSocket streams chat events. Membership is checked before the
// upgrade so outsiders never subscribe to the channel.
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	actorID, chatID, ok := h.actorAndChat(c)
	if !ok {
		return
	}

	if _, err := h.service.GetChatByID(c.Request.Context(), actorID, chatID); err != nil {
		response.ResponseError(c, err)
		return
	}

	streamChannel(c, h.redisClient, push.ChatChannel(chatID))
}

func (h *ChatHandler) actorAndChat(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return actorID, chatID, true
}

func toChatResponse(chat *model.Chat) dto.ChatResponse {
	messages := make([]dto.MessageResponse, 0, len(chat.Messages))
	for i := range chat.Messages {
		messages = append(messages, toMessageResponse(&chat.Messages[i]))
	}

	return dto.ChatResponse{
		ID:       chat.ID,
		Members:  chat.MemberIDs(),
		Messages: messages,
	}
}

func toMessageResponse(message *model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:       message.ID,
		ChatID:   message.ChatID,
		SenderID: message.SenderID,
		Body:     message.Body,
		SendTime: message.SendTime,
	}
}
