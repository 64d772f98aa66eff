package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Record is one entry in a patient's treatment journal. The journal is
// append-mostly: only the latest non-initial record may be amended, and
// transfers and discharges always append.
type Record struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patientId"`
	DoctorID         *uuid.UUID `db:"doctor_id" json:"doctorId,omitempty"`
	WardID           *uuid.UUID `db:"ward_id" json:"wardId,omitempty"`
	TreatmentDetails string     `db:"treatment_details" json:"treatmentDetails"`
	Notes            string     `db:"notes" json:"notes,omitempty"`
	AdmissionDate    time.Time  `db:"admission_date" json:"admissionDate"`
	DischargeDate    *time.Time `db:"discharge_date" json:"dischargeDate,omitempty"`
	Transferred      bool       `db:"transferred" json:"transferred"`
	Initial          bool       `db:"initial" json:"-"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	Transfers []Transfer `db:"-" json:"transferHistory,omitempty"`
}

// Transfer is one row of a record's transfer history.
type Transfer struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RecordID       uuid.UUID  `db:"record_id" json:"recordId"`
	PreviousWardID *uuid.UUID `db:"previous_ward_id" json:"previousWardId,omitempty"`
	NewWardID      uuid.UUID  `db:"new_ward_id" json:"newWardId"`
	TransferredAt  time.Time  `db:"transferred_at" json:"transferredAt"`
}

const initialDetails = "Initial admission and treatment"
