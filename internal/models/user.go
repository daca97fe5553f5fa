package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is an identity record. Email is stored case-normalized and carries the
// unique index that guards concurrent registrations; the password column holds
// a bcrypt hash and is never serialized.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
