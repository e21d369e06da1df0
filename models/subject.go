package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject is an entry of the subject catalog sessions are filed under
type Subject struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
