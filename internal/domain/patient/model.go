package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. PasswordHash never serializes; Doctors
// and WardName are projections loaded by the coordinator.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientName   string     `db:"patient_name" json:"patientName"`
	Caste         string     `db:"patient_caste" json:"caste,omitempty"`
	Age           int        `db:"age" json:"age"`
	Gender        string     `db:"gender" json:"gender"`
	Contact       string     `db:"contact" json:"contact"`
	Email         string     `db:"email" json:"email,omitempty"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Status        string     `db:"status" json:"status"`
	WardID        *uuid.UUID `db:"ward_id" json:"wardId,omitempty"`
	Conditions    []string   `db:"conditions" json:"conditions"`
	ImagePath     string     `db:"image_path" json:"image,omitempty"`
	Address       string     `db:"address" json:"address,omitempty"`
	AdmissionDate time.Time  `db:"admission_date" json:"admissionDate"`
	DischargeDate *time.Time `db:"discharge_date" json:"dischargeDate,omitempty"`

	AIRiskScore       *float64   `db:"ai_risk_score" json:"aiRiskScore,omitempty"`
	AISummary         string     `db:"ai_summary" json:"aiSummary,omitempty"`
	AINextAppointment *time.Time `db:"ai_next_appointment" json:"aiNextAppointment,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	WardName string          `db:"-" json:"wardName,omitempty"`
	Doctors  []DoctorSummary `db:"-" json:"doctors"`
}

// DoctorSummary is the doctor projection embedded in patient responses.
type DoctorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Grade string    `json:"grade"`
}

const (
	StatusAdmitted   = "Admitted"
	StatusDischarged = "Discharged"
)

var validGenders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

var validStatuses = map[string]bool{
	StatusAdmitted:   true,
	StatusDischarged: true,
}

// riskStatus maps the patient onto the risk engine's status vocabulary: any
// condition mentioning "critical" outranks the admission status.
func (p *Patient) riskStatus() string {
	for _, c := range p.Conditions {
		if strings.Contains(strings.ToLower(c), "critical") {
			return "critical"
		}
	}
	return p.Status
}
