package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. TreatedPatients and Wards are join-table
// projections loaded by the service, never written from client payloads.
type Doctor struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Grade           string      `db:"grade" json:"grade"`
	Email           string      `db:"email" json:"email"`
	PasswordHash    string      `db:"password_hash" json:"-"`
	ImagePath       string      `db:"image_path" json:"image,omitempty"`
	TreatedPatients []uuid.UUID `db:"-" json:"treatedPatients"`
	Wards           []uuid.UUID `db:"-" json:"wards"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

var validGrades = map[string]bool{
	"Junior": true,
	"Senior": true,
}
