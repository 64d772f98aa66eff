package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Service manages bills, their invoices and the append-only audit trail.
// Status is always derived from the balance, never set by clients.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   float64
}

// CreateBill computes item totals server-side, writes the invoice alongside
// and appends the first audit entry.
func (s *Service) CreateBill(ctx context.Context, patientID uuid.UUID, items []ItemInput, userID *uuid.UUID) (*Bill, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Validation("patientId is required")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("at least one billing item is required")
	}
	for _, it := range items {
		if it.Description == "" {
			return nil, apperr.Validation("item description is required")
		}
		if it.Quantity < 1 {
			return nil, apperr.Validation("item quantity must be at least 1")
		}
		if it.UnitPrice < 0 {
			return nil, apperr.Validation("item unit price cannot be negative")
		}
	}

	b := &Bill{PatientID: patientID, Status: StatusUnpaid}
	for _, it := range items {
		total := float64(it.Quantity) * it.UnitPrice
		b.Items = append(b.Items, Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  total,
		})
		b.TotalAmount += total
	}
	b.Balance = b.TotalAmount

	if err := s.repo.CreateBill(ctx, b); err != nil {
		return nil, apperr.Internal("create bill", err)
	}
	for i := range b.Items {
		b.Items[i].BillID = b.ID
		if err := s.repo.AddItem(ctx, &b.Items[i]); err != nil {
			return nil, apperr.Internal("create billing item", err)
		}
	}

	inv := &Invoice{
		BillID:        b.ID,
		InvoiceNumber: fmt.Sprintf("INV-%d", s.now().UnixMilli()),
		Amount:        b.TotalAmount,
		Status:        StatusUnpaid,
		Date:          s.now(),
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, apperr.Internal("create invoice", err)
	}

	s.audit(ctx, &AuditEntry{
		BillID: b.ID,
		Action: "bill_created",
		Amount: b.TotalAmount,
		UserID: userID,
		Details: fmt.Sprintf("bill created with %d items, invoice %s",
			len(b.Items), inv.InvoiceNumber),
	})
	return b, nil
}

// AddPayment applies a payment and derives the new status from the balance.
func (s *Service) AddPayment(ctx context.Context, billID uuid.UUID, amount float64, method string, userID *uuid.UUID) (*Bill, error) {
	if amount <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}
	if method == "" {
		return nil, apperr.Validation("payment method is required")
	}

	b, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, apperr.NotFound("Bill not found!")
	}
	if b.Status == StatusPaid {
		return nil, apperr.Conflict("Bill is already fully paid!")
	}
	if amount > b.Balance {
		return nil, apperr.Conflict("Payment exceeds the outstanding balance!")
	}

	b.PaidAmount += amount
	b.Balance = b.TotalAmount - b.PaidAmount
	switch {
	case b.Balance == 0:
		b.Status = StatusPaid
	default:
		b.Status = StatusPartial
	}

	if err := s.repo.UpdateBill(ctx, b); err != nil {
		return nil, apperr.Internal("update bill", err)
	}
	if err := s.repo.UpdateInvoiceStatus(ctx, b.ID, b.Status); err != nil {
		return nil, apperr.Internal("update invoice status", err)
	}

	s.audit(ctx, &AuditEntry{
		BillID:  b.ID,
		Action:  "payment_added",
		Amount:  amount,
		Method:  method,
		UserID:  userID,
		Details: fmt.Sprintf("payment of %.2f via %s, balance %.2f", amount, method, b.Balance),
	})
	return b, nil
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Bill not found!")
	}
	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load bill items", err)
	}
	b.Items = items
	return b, nil
}

func (s *Service) ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	bills, total, err := s.repo.ListBills(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list bills", err)
	}
	for _, b := range bills {
		items, err := s.repo.Items(ctx, b.ID)
		if err != nil {
			return nil, 0, apperr.Internal("load bill items", err)
		}
		b.Items = items
	}
	return bills, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Bill, error) {
	bills, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal("list patient bills", err)
	}
	for _, b := range bills {
		items, err := s.repo.Items(ctx, b.ID)
		if err != nil {
			return nil, apperr.Internal("load bill items", err)
		}
		b.Items = items
	}
	return bills, nil
}

func (s *Service) GetInvoice(ctx context.Context, billID uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.InvoiceByBill(ctx, billID)
	if err != nil {
		return nil, apperr.NotFound("Invoice not found!")
	}
	return inv, nil
}

func (s *Service) GetAudit(ctx context.Context, billID uuid.UUID) ([]AuditEntry, error) {
	entries, err := s.repo.AuditByBill(ctx, billID)
	if err != nil {
		return nil, apperr.Internal("load billing audit", err)
	}
	return entries, nil
}

// audit is best effort: a failed audit write is logged, not surfaced.
func (s *Service) audit(ctx context.Context, entry *AuditEntry) {
	if err := s.repo.AddAudit(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("bill_id", entry.BillID.String()).
			Str("action", entry.Action).
			Msg("failed to append billing audit entry")
	}
}
