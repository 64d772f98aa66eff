package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)

	// LinkPatient inserts a patient_doctor row with add-to-set semantics.
	// Returns false when the link already existed.
	LinkPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	// UnlinkPatient removes the link. Returns false when there was none.
	UnlinkPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	// UnlinkAllPatients drops every link for the doctor (doctor deletion).
	UnlinkAllPatients(ctx context.Context, doctorID uuid.UUID) error
	TreatedPatients(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)

	LinkWard(ctx context.Context, doctorID, wardID uuid.UUID) error
	UnlinkAllWards(ctx context.Context, doctorID uuid.UUID) error
	Wards(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)

	// LeastLoaded picks the doctor with the fewest treated patients, ties
	// broken by insertion order. Returns nil when no doctors exist.
	LeastLoaded(ctx context.Context) (*Doctor, error)
}
