package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment review state. Transitions go through the
// transition table below; there is no auto-approve anywhere.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusRescheduled Status = "rescheduled"
)

// transitions is authoritative. A rescheduled appointment re-enters review,
// so it can be approved, rejected or rescheduled again. Approved and
// rejected are exits.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved:    true,
		StatusRejected:    true,
		StatusRescheduled: true,
	},
	StatusRescheduled: {
		StatusApproved:    true,
		StatusRejected:    true,
		StatusRescheduled: true,
	},
	StatusApproved: {},
	StatusRejected: {},
}

func (s Status) CanTransitionTo(next Status) bool {
	allowed, ok := transitions[s]
	return ok && allowed[next]
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

type Appointment struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patientId"`
	DoctorID            uuid.UUID `db:"doctor_id" json:"doctorId"`
	AppointmentDateTime time.Time `db:"appointment_date_time" json:"appointmentDateTime"`
	Status              Status    `db:"status" json:"status"`
	Notes               string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
