package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDSet is a small id set persisted as a jsonb column. The friend,
// pending and blocked relations are mutually exclusive per (self, other)
// pair; the services enforce that on every mutation.
type UUIDSet []uuid.UUID

func (s UUIDSet) Contains(id uuid.UUID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if absent and reports whether the set changed.
func (s *UUIDSet) Add(id uuid.UUID) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id if present and reports whether the set changed.
func (s *UUIDSet) Remove(id uuid.UUID) bool {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Nickname     string    `gorm:"size:50;uniqueIndex;not null" json:"nickname"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`

	Friends         UUIDSet `gorm:"type:jsonb;serializer:json" json:"friends"`
	PendingOutgoing UUIDSet `gorm:"type:jsonb;serializer:json" json:"pending_outgoing"`
	Blocked         UUIDSet `gorm:"type:jsonb;serializer:json" json:"blocked"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
