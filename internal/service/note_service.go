package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"notely.app/notelyserver/internal/dto"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

type NoteService interface {
	Create(ctx context.Context, actorID uuid.UUID, req dto.NoteCreateRequest) (*model.Note, error)
	GetByID(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error)
	ListMine(ctx context.Context, actorID uuid.UUID) ([]model.Note, error)
	Update(ctx context.Context, actorID, noteID uuid.UUID, req dto.NoteUpdateRequest) (*model.Note, error)
	Delete(ctx context.Context, actorID, noteID uuid.UUID) error
}

type noteService struct {
	notes     repository.NoteRepository
	sanitizer *bluemonday.Policy
}

func NewNoteService(notes repository.NoteRepository) NoteService {
	return &noteService{
		notes:     notes,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *noteService) Create(ctx context.Context, actorID uuid.UUID, req dto.NoteCreateRequest) (*model.Note, error) {
	note := &model.Note{
		UserID:   actorID,
		Status:   model.NoteStatusActive,
		Head:     s.sanitizer.Sanitize(req.Head),
		Body:     s.sanitizer.Sanitize(req.Body),
		Deadline: req.Deadline,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *noteService) GetByID(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error) {
	return s.resolveOwnedNote(ctx, actorID, noteID)
}

func (s *noteService) ListMine(ctx context.Context, actorID uuid.UUID) ([]model.Note, error) {
	return s.notes.ListByOwner(ctx, actorID)
}

func (s *noteService) Update(ctx context.Context, actorID, noteID uuid.UUID, req dto.NoteUpdateRequest) (*model.Note, error) {
	note, err := s.resolveOwnedNote(ctx, actorID, noteID)
	if err != nil {
		return nil, err
	}

	note.Head = s.sanitizer.Sanitize(req.Head)
	note.Body = s.sanitizer.Sanitize(req.Body)
	note.Status = req.Status
	note.Deadline = req.Deadline

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *noteService) Delete(ctx context.Context, actorID, noteID uuid.UUID) error {
	if _, err := s.resolveOwnedNote(ctx, actorID, noteID); err != nil {
		return err
	}

	rows, err := s.notes.Delete(ctx, noteID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

func (s *noteService) resolveOwnedNote(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != actorID {
		return nil, apperror.ErrForbidden
	}

	return note, nil
}
