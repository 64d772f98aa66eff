package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByContact(ctx context.Context, contact string) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)

	// LinkDoctor has add-to-set semantics; false means the link existed.
	LinkDoctor(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error)
	UnlinkDoctor(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error)
	UnlinkAllDoctors(ctx context.Context, patientID uuid.UUID) error
	DoctorIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)

	SetAIFields(ctx context.Context, id uuid.UUID, score float64, summary string, next time.Time) error

	CountAll(ctx context.Context) (int, error)
	CountByGender(ctx context.Context) (map[string]int, error)
	// CountByAgeBucket groups ages as 0-17, 18-39, 40-59, 60+.
	CountByAgeBucket(ctx context.Context) (map[string]int, error)
	AverageRisk(ctx context.Context) (float64, error)
}
