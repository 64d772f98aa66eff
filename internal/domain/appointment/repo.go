package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// HasConflict reports whether the doctor already has an appointment at
	// exactly the given time with status pending or approved, ignoring the
	// appointment identified by exclude (uuid.Nil excludes nothing).
	HasConflict(ctx context.Context, doctorID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error)
}
