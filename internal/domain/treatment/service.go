package treatment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Service is the treatment record journal. Records are append-mostly: the
// only in-place mutation is amending the latest open non-initial record;
// transfers and discharges always append.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// OpenEpisode writes the single initial record created at patient
// registration.
func (s *Service) OpenEpisode(ctx context.Context, patientID uuid.UUID, doctorID, wardID *uuid.UUID) (*Record, error) {
	rec := &Record{
		PatientID:        patientID,
		DoctorID:         doctorID,
		WardID:           wardID,
		TreatmentDetails: initialDetails,
		AdmissionDate:    s.now(),
		Initial:          true,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperr.Internal("create initial treatment record", err)
	}
	return rec, nil
}

// AmendOrAppend applies an update note to the journal: the latest open
// non-initial record is amended in place; when none exists a new record is
// appended. The initial record is never amended.
func (s *Service) AmendOrAppend(ctx context.Context, patientID uuid.UUID, note string, doctorID, wardID *uuid.UUID) (*Record, error) {
	latest, err := s.repo.LatestAmendable(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal("find amendable record", err)
	}
	if latest != nil {
		if latest.Notes == "" {
			latest.Notes = note
		} else {
			latest.Notes += "; " + note
		}
		if err := s.repo.Update(ctx, latest); err != nil {
			return nil, apperr.Internal("amend treatment record", err)
		}
		return latest, nil
	}

	rec := &Record{
		PatientID:        patientID,
		DoctorID:         doctorID,
		WardID:           wardID,
		TreatmentDetails: "Treatment update",
		Notes:            note,
		AdmissionDate:    s.now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperr.Internal("append treatment record", err)
	}
	return rec, nil
}

// RecordTransfer appends a transfer record and its transfer-history row.
func (s *Service) RecordTransfer(ctx context.Context, patientID uuid.UUID, previousWardID *uuid.UUID, newWardID uuid.UUID) (*Record, error) {
	rec := &Record{
		PatientID:        patientID,
		WardID:           &newWardID,
		TreatmentDetails: "Ward transfer",
		AdmissionDate:    s.now(),
		Transferred:      true,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperr.Internal("append transfer record", err)
	}
	tr := &Transfer{
		RecordID:       rec.ID,
		PreviousWardID: previousWardID,
		NewWardID:      newWardID,
		TransferredAt:  rec.AdmissionDate,
	}
	if err := s.repo.AddTransfer(ctx, tr); err != nil {
		return nil, apperr.Internal("append transfer history", err)
	}
	rec.Transfers = []Transfer{*tr}
	return rec, nil
}

// CloseEpisode appends the closing record written when a patient is
// discharged or deleted. Historical records are retained.
func (s *Service) CloseEpisode(ctx context.Context, patientID uuid.UUID, details string) (*Record, error) {
	now := s.now()
	rec := &Record{
		PatientID:        patientID,
		TreatmentDetails: details,
		AdmissionDate:    now,
		DischargeDate:    &now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperr.Internal("append closing record", err)
	}
	return rec, nil
}

func (s *Service) CreateRecord(ctx context.Context, rec *Record) error {
	if rec.PatientID == uuid.Nil {
		return apperr.Validation("patientId is required")
	}
	if rec.TreatmentDetails == "" {
		return apperr.Validation("treatmentDetails is required")
	}
	if rec.AdmissionDate.IsZero() {
		rec.AdmissionDate = s.now()
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return apperr.Internal("create treatment record", err)
	}
	return nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Treatment record not found!")
	}
	transfers, err := s.repo.TransfersByRecord(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load transfer history", err)
	}
	rec.Transfers = transfers
	return rec, nil
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	records, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list treatment records", err)
	}
	return records, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error) {
	records, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal("list patient treatment records", err)
	}
	return records, nil
}

// UpdateRecord is the direct CRUD path. The initial record stays immutable
// even here.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, details, notes string, dischargeDate *time.Time) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Treatment record not found!")
	}
	if rec.Initial {
		return nil, apperr.Conflict("Initial treatment record cannot be modified!")
	}
	if details != "" {
		rec.TreatmentDetails = details
	}
	if notes != "" {
		rec.Notes = notes
	}
	if dischargeDate != nil {
		rec.DischargeDate = dischargeDate
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperr.Internal("update treatment record", err)
	}
	return rec, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("Treatment record not found!")
	}
	if rec.Initial {
		return apperr.Conflict("Initial treatment record cannot be deleted!")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("delete treatment record", err)
	}
	return nil
}
