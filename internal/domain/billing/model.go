package billing

import (
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	StatusUnpaid  BillStatus = "unpaid"
	StatusPartial BillStatus = "partial"
	StatusPaid    BillStatus = "paid"
)

type Bill struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patientId"`
	TotalAmount float64    `db:"total_amount" json:"totalAmount"`
	PaidAmount  float64    `db:"paid_amount" json:"paidAmount"`
	Balance     float64    `db:"balance" json:"balance"`
	Status      BillStatus `db:"status" json:"status"`
	Items       []Item     `db:"-" json:"items"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BillID      uuid.UUID `db:"bill_id" json:"billId"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unitPrice"`
	TotalPrice  float64   `db:"total_price" json:"totalPrice"`
}

type Invoice struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	BillID        uuid.UUID  `db:"bill_id" json:"billId"`
	InvoiceNumber string     `db:"invoice_number" json:"invoiceNumber"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        BillStatus `db:"status" json:"status"`
	Date          time.Time  `db:"date" json:"date"`
}

// AuditEntry records every billing action append-only.
type AuditEntry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	BillID    uuid.UUID  `db:"bill_id" json:"billId"`
	Action    string     `db:"action" json:"action"`
	Amount    float64    `db:"amount" json:"amount"`
	Method    string     `db:"method" json:"method,omitempty"`
	UserID    *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	Details   string     `db:"details" json:"details,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
