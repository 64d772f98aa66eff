package patient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/domain/doctor"
	"github.com/carebridge/hms/internal/domain/treatment"
	"github.com/carebridge/hms/internal/domain/ward"
	"github.com/carebridge/hms/internal/platform/ai"
	"github.com/carebridge/hms/internal/platform/apperr"
	"github.com/carebridge/hms/internal/platform/auth"
)

// Collaborator interfaces. The coordinator orchestrates single-entity
// operations; there is no cross-entity transaction, failures are undone by
// explicit compensation in reverse order.

type WardAllocator interface {
	GetWard(ctx context.Context, id uuid.UUID) (*ward.Ward, error)
	Admit(ctx context.Context, wardID, patientID uuid.UUID) error
	Transfer(ctx context.Context, oldWardID, newWardID, patientID uuid.UUID) error
	DischargeEverywhere(ctx context.Context, patientID uuid.UUID) error
	PickLeastOccupied(ctx context.Context) (*ward.Ward, error)
}

type DoctorRoster interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
	PickLeastLoaded(ctx context.Context) (*doctor.Doctor, error)
}

type Journal interface {
	OpenEpisode(ctx context.Context, patientID uuid.UUID, doctorID, wardID *uuid.UUID) (*treatment.Record, error)
	AmendOrAppend(ctx context.Context, patientID uuid.UUID, note string, doctorID, wardID *uuid.UUID) (*treatment.Record, error)
	RecordTransfer(ctx context.Context, patientID uuid.UUID, previousWardID *uuid.UUID, newWardID uuid.UUID) (*treatment.Record, error)
	CloseEpisode(ctx context.Context, patientID uuid.UUID, details string) (*treatment.Record, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID *uuid.UUID, role, typ, message string)
}

// Service is the patient lifecycle coordinator.
type Service struct {
	repo     Repository
	wards    WardAllocator
	roster   DoctorRoster
	journal  Journal
	notifier Notifier
	hasher   auth.Hasher
	engine   *ai.Engine
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, wards WardAllocator, roster DoctorRoster, journal Journal,
	notifier Notifier, hasher auth.Hasher, engine *ai.Engine, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		wards:    wards,
		roster:   roster,
		journal:  journal,
		notifier: notifier,
		hasher:   hasher,
		engine:   engine,
		logger:   logger,
		now:      time.Now,
	}
}

type RegisterInput struct {
	PatientName string
	Caste       string
	Age         int
	Gender      string
	Contact     string
	Email       string
	Password    string
	Conditions  []string
	Address     string
	ImagePath   string
	WardID      string   // optional; empty triggers the fallback scheduler
	Doctors     []string // raw ids; already normalized from string-or-array
}

// Register runs the admission saga: validate, persist, claim a bed, link
// doctors, open the journal. A failed bed claim removes the patient row so
// the operation is all-or-nothing.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.PatientName == "" {
		return nil, apperr.Validation("patientName is required")
	}
	if in.Age <= 0 {
		return nil, apperr.Validation("age must be positive")
	}
	if !validGenders[in.Gender] {
		return nil, apperr.Newf(apperr.KindValidation, "invalid gender: %s", in.Gender)
	}
	if in.Contact == "" {
		return nil, apperr.Validation("contact is required")
	}
	if existing, err := s.repo.GetByContact(ctx, in.Contact); err == nil && existing != nil {
		return nil, apperr.Conflict("Patient with this contact already exists!")
	}

	doctorIDs, err := s.resolveDoctors(ctx, in.Doctors)
	if err != nil {
		return nil, err
	}

	var wardID uuid.UUID
	switch {
	case in.WardID != "":
		id, err := uuid.Parse(in.WardID)
		if err != nil {
			return nil, apperr.Validation("invalid ward id")
		}
		if _, err := s.wards.GetWard(ctx, id); err != nil {
			return nil, err
		}
		wardID = id
	default:
		// Fallback scheduler: least-occupied open ward.
		w, err := s.wards.PickLeastOccupied(ctx)
		if err != nil {
			return nil, err
		}
		wardID = w.ID
	}
	if len(doctorIDs) == 0 {
		d, err := s.roster.PickLeastLoaded(ctx)
		if err != nil {
			return nil, err
		}
		doctorIDs = []uuid.UUID{d.ID}
	}

	p := &Patient{
		PatientName:   in.PatientName,
		Caste:         in.Caste,
		Age:           in.Age,
		Gender:        in.Gender,
		Contact:       in.Contact,
		Email:         in.Email,
		Status:        StatusAdmitted,
		WardID:        &wardID,
		Conditions:    in.Conditions,
		ImagePath:     in.ImagePath,
		Address:       in.Address,
		AdmissionDate: s.now(),
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, apperr.Internal("hash password", err)
		}
		p.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal("create patient", err)
	}

	if err := s.wards.Admit(ctx, wardID, p.ID); err != nil {
		// Bed claim failed: undo the patient row.
		if delErr := s.repo.Delete(ctx, p.ID); delErr != nil {
			s.logger.Error().Err(delErr).
				Str("patient_id", p.ID.String()).
				Msg("failed to remove patient after admit failure")
		}
		return nil, err
	}

	for _, doctorID := range doctorIDs {
		if _, err := s.repo.LinkDoctor(ctx, p.ID, doctorID); err != nil {
			return nil, apperr.Internal("link doctor", err)
		}
	}

	var firstDoctor *uuid.UUID
	if len(doctorIDs) > 0 {
		firstDoctor = &doctorIDs[0]
	}
	if _, err := s.journal.OpenEpisode(ctx, p.ID, firstDoctor, &wardID); err != nil {
		return nil, err
	}

	assessment := s.engine.AssessRisk(p.Age, p.riskStatus())
	next := ai.SuggestNextAppointment(p.AdmissionDate, assessment.RiskScore)
	summary := ai.Summarize(p.PatientName, p.Age, p.Gender, p.Status, assessment, next)
	if err := s.repo.SetAIFields(ctx, p.ID, assessment.RiskScore, summary, next); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", p.ID.String()).Msg("failed to store risk fields")
	} else {
		p.AIRiskScore = &assessment.RiskScore
		p.AISummary = summary
		p.AINextAppointment = &next
	}

	s.notifier.Notify(ctx, nil, "admin", "patient_registered",
		fmt.Sprintf("Patient %s was registered and admitted.", p.PatientName))

	return s.populate(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Patient not found!")
	}
	return s.populate(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	patients, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list patients", err)
	}
	for _, p := range patients {
		if _, err := s.populate(ctx, p); err != nil {
			return nil, 0, err
		}
	}
	return patients, total, nil
}

type UpdateInput struct {
	PatientName *string
	Caste       *string
	Age         *int
	Gender      *string
	Status      *string
	Email       *string
	Conditions  []string
	Address     *string
	ImagePath   *string
	WardID      *string
	Doctors     []string // add-only; removal goes through UnassignDoctor
}

// Update applies a partial update. Contact is immutable and silently
// dropped; a ward change runs as a transfer; the doctors payload only adds
// links; a no-diff payload succeeds with zero side effects.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Patient not found!")
	}

	var changed []string

	apply := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = append(changed, field)
		}
	}
	apply("patientName", &p.PatientName, in.PatientName)
	apply("caste", &p.Caste, in.Caste)
	apply("address", &p.Address, in.Address)
	apply("image", &p.ImagePath, in.ImagePath)
	apply("email", &p.Email, in.Email)

	if in.Age != nil && *in.Age != p.Age {
		if *in.Age <= 0 {
			return nil, apperr.Validation("age must be positive")
		}
		p.Age = *in.Age
		changed = append(changed, "age")
	}
	if in.Gender != nil && *in.Gender != p.Gender {
		if !validGenders[*in.Gender] {
			return nil, apperr.Newf(apperr.KindValidation, "invalid gender: %s", *in.Gender)
		}
		p.Gender = *in.Gender
		changed = append(changed, "gender")
	}
	if in.Status != nil && *in.Status != p.Status {
		if !validStatuses[*in.Status] {
			return nil, apperr.Newf(apperr.KindValidation, "invalid status: %s", *in.Status)
		}
		p.Status = *in.Status
		if p.Status == StatusDischarged {
			now := s.now()
			p.DischargeDate = &now
		} else {
			p.DischargeDate = nil
		}
		changed = append(changed, "status")
	}
	if in.Conditions != nil && !equalStrings(in.Conditions, p.Conditions) {
		p.Conditions = in.Conditions
		changed = append(changed, "conditions")
	}

	// Ward change is a transfer, not a field write.
	var wardChanged bool
	var previousWard *uuid.UUID
	if in.WardID != nil && *in.WardID != "" {
		newWardID, err := uuid.Parse(*in.WardID)
		if err != nil {
			return nil, apperr.Validation("invalid ward id")
		}
		if p.WardID == nil || *p.WardID != newWardID {
			if _, err := s.wards.GetWard(ctx, newWardID); err != nil {
				return nil, err
			}
			previousWard = p.WardID
			if p.WardID != nil {
				if err := s.wards.Transfer(ctx, *p.WardID, newWardID, p.ID); err != nil {
					return nil, err
				}
			} else {
				if err := s.wards.Admit(ctx, newWardID, p.ID); err != nil {
					return nil, err
				}
			}
			p.WardID = &newWardID
			wardChanged = true
			changed = append(changed, "ward")
		}
	}

	// Doctors payload adds links, never removes.
	addedDoctors, err := s.addDoctors(ctx, p.ID, in.Doctors)
	if err != nil {
		return nil, err
	}
	if addedDoctors > 0 {
		changed = append(changed, "doctors")
	}

	// No-op payload: succeed without writing anything.
	if len(changed) == 0 {
		return s.populate(ctx, p)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		// The ward membership moved before the row write. Move it back so
		// the bed counts match the persisted patient.
		if wardChanged {
			s.undoWardChange(ctx, p.ID, *p.WardID, previousWard)
		}
		return nil, apperr.Internal("update patient", err)
	}

	if wardChanged {
		if _, err := s.journal.RecordTransfer(ctx, p.ID, previousWard, *p.WardID); err != nil {
			return nil, err
		}
	}
	note := "updated: " + strings.Join(changed, ", ")
	if _, err := s.journal.AmendOrAppend(ctx, p.ID, note, nil, p.WardID); err != nil {
		return nil, err
	}

	return s.populate(ctx, p)
}

// undoWardChange reverses a ward move after a failed row write: back to the
// previous ward when there was one, otherwise out of every ward.
func (s *Service) undoWardChange(ctx context.Context, patientID, newWardID uuid.UUID, previousWard *uuid.UUID) {
	var err error
	if previousWard != nil {
		err = s.wards.Transfer(ctx, newWardID, *previousWard, patientID)
	} else {
		err = s.wards.DischargeEverywhere(ctx, patientID)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("patient_id", patientID.String()).
			Str("ward_id", newWardID.String()).
			Msg("failed to undo ward change after update failure")
	}
}

// Delete tears the patient down in reverse dependency order: close the
// journal, leave the ward, drop doctor links, then the row itself.
// Historical treatment records are retained.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("Patient not found!")
	}

	if _, err := s.journal.CloseEpisode(ctx, p.ID, "Patient record closed"); err != nil {
		return err
	}
	if err := s.wards.DischargeEverywhere(ctx, p.ID); err != nil {
		return err
	}
	if err := s.repo.UnlinkAllDoctors(ctx, p.ID); err != nil {
		return apperr.Internal("unlink doctors", err)
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return apperr.Internal("delete patient", err)
	}

	s.notifier.Notify(ctx, nil, "admin", "patient_deleted",
		fmt.Sprintf("Patient %s was removed.", p.PatientName))
	return nil
}

// UnassignDoctor is the explicit removal intent for a doctor link.
func (s *Service) UnassignDoctor(ctx context.Context, patientID, doctorID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return apperr.NotFound("Patient not found!")
	}
	removed, err := s.repo.UnlinkDoctor(ctx, patientID, doctorID)
	if err != nil {
		return apperr.Internal("unlink doctor", err)
	}
	if !removed {
		return apperr.NotFound("Doctor is not assigned to this patient!")
	}
	return nil
}

// Report recomputes the advisory risk assessment and persists it.
type Report struct {
	Patient         *Patient      `json:"patient"`
	Assessment      ai.Assessment `json:"assessment"`
	Summary         string        `json:"summary"`
	NextAppointment time.Time     `json:"nextAppointment"`
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	p, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	assessment := s.engine.AssessRisk(p.Age, p.riskStatus())
	next := ai.SuggestNextAppointment(p.AdmissionDate, assessment.RiskScore)
	summary := ai.Summarize(p.PatientName, p.Age, p.Gender, p.Status, assessment, next)

	if err := s.repo.SetAIFields(ctx, p.ID, assessment.RiskScore, summary, next); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", p.ID.String()).Msg("failed to store risk fields")
	}
	p.AIRiskScore = &assessment.RiskScore
	p.AISummary = summary
	p.AINextAppointment = &next

	return &Report{Patient: p, Assessment: assessment, Summary: summary, NextAppointment: next}, nil
}

// SmartSchedule suggests the next appointment date from the stored risk
// score, recomputing when none is stored yet.
func (s *Service) SmartSchedule(ctx context.Context, id uuid.UUID) (time.Time, float64, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, 0, apperr.NotFound("Patient not found!")
	}
	score := 0.0
	if p.AIRiskScore != nil {
		score = *p.AIRiskScore
	} else {
		score = s.engine.AssessRisk(p.Age, p.riskStatus()).RiskScore
	}
	return ai.SuggestNextAppointment(p.AdmissionDate, score), score, nil
}

type Stats struct {
	TotalPatients int            `json:"totalPatients,omitempty"`
	ByAge         map[string]int `json:"patientsByAge,omitempty"`
	ByGender      map[string]int `json:"patientsByGender,omitempty"`
	AverageRisk   *float64       `json:"averageRisk,omitempty"`
}

func (s *Service) TotalPatients(ctx context.Context) (int, error) {
	n, err := s.repo.CountAll(ctx)
	if err != nil {
		return 0, apperr.Internal("count patients", err)
	}
	return n, nil
}

func (s *Service) PatientsByAge(ctx context.Context) (map[string]int, error) {
	buckets, err := s.repo.CountByAgeBucket(ctx)
	if err != nil {
		return nil, apperr.Internal("group patients by age", err)
	}
	return buckets, nil
}

func (s *Service) PatientsByGender(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByGender(ctx)
	if err != nil {
		return nil, apperr.Internal("group patients by gender", err)
	}
	return counts, nil
}

func (s *Service) AverageRisk(ctx context.Context) (float64, error) {
	avg, err := s.repo.AverageRisk(ctx)
	if err != nil {
		return 0, apperr.Internal("average risk", err)
	}
	return avg, nil
}

// resolveDoctors parses and resolves the normalized doctor id list into a
// deduplicated set, preserving first-seen order.
func (s *Service) resolveDoctors(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperr.Newf(apperr.KindValidation, "invalid doctor id: %s", r)
		}
		if seen[id] {
			continue
		}
		if _, err := s.roster.GetDoctor(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) addDoctors(ctx context.Context, patientID uuid.UUID, raw []string) (int, error) {
	ids, err := s.resolveDoctors(ctx, raw)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, id := range ids {
		ok, err := s.repo.LinkDoctor(ctx, patientID, id)
		if err != nil {
			return added, apperr.Internal("link doctor", err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (s *Service) populate(ctx context.Context, p *Patient) (*Patient, error) {
	if p.WardID != nil {
		if w, err := s.wards.GetWard(ctx, *p.WardID); err == nil {
			p.WardName = w.WardName
		}
	}

	doctorIDs, err := s.repo.DoctorIDs(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("load patient doctors", err)
	}
	p.Doctors = make([]DoctorSummary, 0, len(doctorIDs))
	for _, id := range doctorIDs {
		d, err := s.roster.GetDoctor(ctx, id)
		if err != nil {
			continue
		}
		p.Doctors = append(p.Doctors, DoctorSummary{ID: d.ID, Name: d.Name, Grade: d.Grade})
	}
	sort.Slice(p.Doctors, func(i, j int) bool {
		return p.Doctors[i].Name < p.Doctors[j].Name
	})
	return p, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
