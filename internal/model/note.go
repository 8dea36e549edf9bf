package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NoteStatusActive = "active"
	NoteStatusDone   = "done"
)

type Note struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Status    string     `gorm:"size:20;not null;default:'active'" json:"status"`
	Head      string     `gorm:"size:255;not null" json:"head"`
	Body      string     `gorm:"type:text" json:"body"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
