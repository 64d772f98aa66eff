package ward

import (
	"time"

	"github.com/google/uuid"
)

// Ward maps to the ward table. OccupiedBeds and Patients are maintained
// exclusively by the capacity manager, never from client payloads.
type Ward struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	WardName     string      `db:"ward_name" json:"wardName"`
	WardType     string      `db:"ward_type" json:"wardType"`
	Capacity     int         `db:"capacity" json:"capacity"`
	OccupiedBeds int         `db:"occupied_beds" json:"occupiedBeds"`
	ImagePath    string      `db:"image_path" json:"image,omitempty"`
	Patients     []uuid.UUID `db:"-" json:"patients"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

var validWardTypes = map[string]bool{
	"Male":   true,
	"Female": true,
	"Kids":   true,
	"Other":  true,
}
