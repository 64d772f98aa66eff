package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateBill(ctx context.Context, b *Bill) error
	AddItem(ctx context.Context, item *Item) error
	GetBill(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Bill, error)
	UpdateBill(ctx context.Context, b *Bill) error
	Items(ctx context.Context, billID uuid.UUID) ([]Item, error)

	CreateInvoice(ctx context.Context, inv *Invoice) error
	InvoiceByBill(ctx context.Context, billID uuid.UUID) (*Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, billID uuid.UUID, status BillStatus) error

	AddAudit(ctx context.Context, entry *AuditEntry) error
	AuditByBill(ctx context.Context, billID uuid.UUID) ([]AuditEntry, error)
}
