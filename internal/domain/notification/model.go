package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a stored record only; nothing is delivered anywhere.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	Role      string     `db:"role" json:"role"`
	Type      string     `db:"type" json:"type"`
	Message   string     `db:"message" json:"message"`
	IsRead    bool       `db:"is_read" json:"isRead"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

var validRoles = map[string]bool{
	"patient": true,
	"doctor":  true,
	"admin":   true,
}
