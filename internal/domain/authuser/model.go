package authuser

import (
	"time"

	"github.com/google/uuid"
)

// User is a standalone login account. Doctors and patients can also log in
// with the credentials stored on their own rows; see Service.Login.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

var validRoles = map[string]bool{
	"admin":   true,
	"doctor":  true,
	"patient": true,
}

// Identity is what a successful login returns alongside the token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}
