package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"notely.app/notelyserver/internal/dto"
	"notely.app/notelyserver/internal/service"
	"notely.app/notelyserver/pkg/apperror"
	"notely.app/notelyserver/pkg/response"
	"notely.app/notelyserver/pkg/validator"
)

type NoteHandler struct {
	service service.NoteService
}

func NewNoteHandler(service service.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) Create(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.NoteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	note, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": note})
}

func (h *NoteHandler) ListMine(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	notes, err := h.service.ListMine(c.Request.Context(), actorID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notes})
}

func (h *NoteHandler) Get(c *gin.Context) {
	actorID, noteID, ok := h.actorAndNote(c)
	if !ok {
		return
	}

	note, err := h.service.GetByID(c.Request.Context(), actorID, noteID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (h *NoteHandler) Update(c *gin.Context) {
	actorID, noteID, ok := h.actorAndNote(c)
	if !ok {
		return
	}

	var req dto.NoteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	note, err := h.service.Update(c.Request.Context(), actorID, noteID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	actorID, noteID, ok := h.actorAndNote(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, noteID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *NoteHandler) actorAndNote(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return actorID, noteID, true
}
