package ward

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, w *Ward) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ward, error)
	GetByName(ctx context.Context, name string) (*Ward, error)
	List(ctx context.Context, limit, offset int) ([]*Ward, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ClaimBed increments occupied_beds only while below capacity, in a
	// single conditional statement. Returns false when the ward is full.
	ClaimBed(ctx context.Context, wardID uuid.UUID) (bool, error)
	// ReleaseBed decrements occupied_beds with a floor of zero.
	ReleaseBed(ctx context.Context, wardID uuid.UUID) error
	// SetOccupiedBeds overwrites the bed count (invariant self-heal).
	SetOccupiedBeds(ctx context.Context, wardID uuid.UUID, n int) error

	// AddMember records ward membership. Returns false if the patient is
	// already tracked in some ward.
	AddMember(ctx context.Context, wardID, patientID uuid.UUID) (bool, error)
	// RemoveMember drops the membership row. Returns false when the patient
	// was not a member.
	RemoveMember(ctx context.Context, wardID, patientID uuid.UUID) (bool, error)
	// WardOf returns the ward currently housing the patient, if any.
	WardOf(ctx context.Context, patientID uuid.UUID) (uuid.UUID, bool, error)
	Members(ctx context.Context, wardID uuid.UUID) ([]uuid.UUID, error)

	// LeastOccupiedOpen picks the open ward with the fewest occupied beds,
	// ties broken by insertion order. Returns nil when every ward is full.
	LeastOccupiedOpen(ctx context.Context) (*Ward, error)
}
