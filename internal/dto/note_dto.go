package dto

import "time"

type NoteCreateRequest struct {
	Head     string     `json:"head" binding:"required,max=255"`
	Body     string     `json:"body" binding:"max=5000"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

type NoteUpdateRequest struct {
	Head     string     `json:"head" binding:"required,max=255"`
	Body     string     `json:"body" binding:"max=5000"`
	Status   string     `json:"status" binding:"required,oneof=active done"`
	Deadline *time.Time `json:"deadline,omitempty"`
}
