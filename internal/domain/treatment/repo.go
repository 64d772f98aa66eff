package treatment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, limit, offset int) ([]*Record, int, error)
	// ListByPatient returns the patient's journal oldest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error

	// LatestAmendable returns the newest non-initial record without a
	// discharge date, or nil when the journal has none.
	LatestAmendable(ctx context.Context, patientID uuid.UUID) (*Record, error)

	AddTransfer(ctx context.Context, tr *Transfer) error
	TransfersByRecord(ctx context.Context, recordID uuid.UUID) ([]Transfer, error)
}
