package models

import (
	"time"

	"github.com/google/uuid"
)

// CiphertextFile is a handle to a user-selected blob. Path points at the
// bytes on disk; Name is the original file name shown to the user.
type CiphertextFile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	Owned     bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
