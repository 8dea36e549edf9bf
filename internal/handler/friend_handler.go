package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"notely.app/notelyserver/internal/service"
	"notely.app/notelyserver/pkg/apperror"
	"notely.app/notelyserver/pkg/response"
)

type FriendHandler struct {
	service service.FriendService
}

func NewFriendHandler(service service.FriendService) *FriendHandler {
	return &FriendHandler{service: service}
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	friends, err := h.service.ListFriends(c.Request.Context(), actorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": friends})
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	h.targetAction(c, h.service.SendFriendRequest)
}

func (h *FriendHandler) CancelRequest(c *gin.Context) {
	h.targetAction(c, h.service.CancelFriendRequest)
}

func (h *FriendHandler) Block(c *gin.Context) {
	h.targetAction(c, h.service.BlockUser)
}

func (h *FriendHandler) Unblock(c *gin.Context) {
	h.targetAction(c, h.service.UnblockUser)
}

func (h *FriendHandler) Remove(c *gin.Context) {
	h.targetAction(c, h.service.RemoveFriend)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	h.notificationAction(c, h.service.AcceptFriendRequest)
}

func (h *FriendHandler) Dismiss(c *gin.Context) {
	h.notificationAction(c, h.service.DismissFriendRequest)
}

func (h *FriendHandler) targetAction(c *gin.Context, fn func(ctx context.Context, actorID, targetID uuid.UUID) error) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := fn(c.Request.Context(), actorID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *FriendHandler) notificationAction(c *gin.Context, fn func(ctx context.Context, actorID, notificationID uuid.UUID) error) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	notificationID, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := fn(c.Request.Context(), actorID, notificationID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
