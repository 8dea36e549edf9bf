package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"notely.app/notelyserver/internal/push"
	"notely.app/notelyserver/internal/service"
	"notely.app/notelyserver/pkg/apperror"
	"notely.app/notelyserver/pkg/response"
)

type NotificationHandler struct {
	service     service.NotificationService
	redisClient *redis.Client
}

func NewNotificationHandler(service service.NotificationService, redisClient *redis.Client) *NotificationHandler {
	return &NotificationHandler{
		service:     service,
		redisClient: redisClient,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	notifications, err := h.service.List(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), actorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	actorID, notificationID, ok := h.actorAndNotification(c)
	if !ok {
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), actorID, notificationID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	actorID, notificationID, ok := h.actorAndNotification(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, notificationID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// HandleWebSocket streams the actor's own notification channel.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	streamChannel(c, h.redisClient, push.UserChannel(actorID))
}

func (h *NotificationHandler) actorAndNotification(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return actorID, notificationID, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}
