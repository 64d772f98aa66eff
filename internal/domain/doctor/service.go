package doctor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
	"github.com/carebridge/hms/internal/platform/auth"
)

// PatientChecker is the narrow view of the patient store the roster needs
// when linking treated patients. Wired in main to break the package cycle.
type PatientChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service is the doctor roster. Treated-patient links live in a single join
// table, so linking from the doctor side and from the patient side are the
// same write and the bidirectional invariant holds structurally.
type Service struct {
	repo     Repository
	patients PatientChecker
	hasher   auth.Hasher
	logger   zerolog.Logger
}

func NewService(repo Repository, patients PatientChecker, hasher auth.Hasher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, hasher: hasher, logger: logger}
}

// RegisterDoctor creates the doctor and its ward links. The password is
// optional; doctors without one cannot log in but remain schedulable.
func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor, wardIDs []uuid.UUID, password string) error {
	if d.Name == "" {
		return apperr.Validation("name is required")
	}
	if !validGrades[d.Grade] {
		return apperr.Newf(apperr.KindValidation, "invalid grade: %s", d.Grade)
	}
	if d.Email == "" {
		return apperr.Validation("email is required")
	}
	if existing, err := s.repo.GetByEmail(ctx, d.Email); err == nil && existing != nil {
		return apperr.Conflict("Doctor with this email already exists!")
	}

	if password != "" {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return apperr.Internal("hash doctor password", err)
		}
		d.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return apperr.Internal("create doctor", err)
	}
	for _, wardID := range wardIDs {
		if err := s.repo.LinkWard(ctx, d.ID, wardID); err != nil {
			return apperr.Internal("link doctor ward", err)
		}
	}
	d.Wards = wardIDs
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Doctor not found!")
	}
	if err := s.populate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	doctors, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list doctors", err)
	}
	for _, d := range doctors {
		if err := s.populate(ctx, d); err != nil {
			return nil, 0, err
		}
	}
	return doctors, total, nil
}

// UpdateDoctor overwrites the mutable fields. Treated-patient links are not
// touched here; they change only through the explicit link operations.
func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, name, grade, email, imagePath string) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Doctor not found!")
	}
	if name != "" {
		d.Name = name
	}
	if grade != "" {
		if !validGrades[grade] {
			return nil, apperr.Newf(apperr.KindValidation, "invalid grade: %s", grade)
		}
		d.Grade = grade
	}
	if email != "" && email != d.Email {
		if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
			return nil, apperr.Conflict("Doctor with this email already exists!")
		}
		d.Email = email
	}
	if imagePath != "" {
		d.ImagePath = imagePath
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, apperr.Internal("update doctor", err)
	}
	if err := s.populate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDoctor unlinks patients and wards before removing the row so no
// dangling references survive the doctor.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperr.NotFound("Doctor not found!")
	}
	if err := s.repo.UnlinkAllPatients(ctx, id); err != nil {
		return apperr.Internal("unlink doctor patients", err)
	}
	if err := s.repo.UnlinkAllWards(ctx, id); err != nil {
		return apperr.Internal("unlink doctor wards", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("delete doctor", err)
	}
	return nil
}

// AddTreatedPatient links both sides via the shared join table. Add-to-set:
// linking an already treated patient is a no-op success.
func (s *Service) AddTreatedPatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return apperr.NotFound("Doctor not found!")
	}
	exists, err := s.patients.PatientExists(ctx, patientID)
	if err != nil {
		return apperr.Internal("check patient", err)
	}
	if !exists {
		return apperr.NotFound("Patient not found!")
	}
	if _, err := s.repo.LinkPatient(ctx, doctorID, patientID); err != nil {
		return apperr.Internal("link treated patient", err)
	}
	return nil
}

// RemoveTreatedPatient is the only removal path for a doctor/patient link.
func (s *Service) RemoveTreatedPatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return apperr.NotFound("Doctor not found!")
	}
	if _, err := s.repo.UnlinkPatient(ctx, doctorID, patientID); err != nil {
		return apperr.Internal("unlink treated patient", err)
	}
	return nil
}

// PickLeastLoaded is the fallback scheduler's doctor choice.
func (s *Service) PickLeastLoaded(ctx context.Context) (*Doctor, error) {
	d, err := s.repo.LeastLoaded(ctx)
	if err != nil {
		return nil, apperr.Internal("pick least loaded doctor", err)
	}
	if d == nil {
		return nil, apperr.Conflict("No doctors available for assignment!")
	}
	return d, nil
}

func (s *Service) populate(ctx context.Context, d *Doctor) error {
	patients, err := s.repo.TreatedPatients(ctx, d.ID)
	if err != nil {
		return apperr.Internal("load treated patients", err)
	}
	wards, err := s.repo.Wards(ctx, d.ID)
	if err != nil {
		return apperr.Internal("load doctor wards", err)
	}
	d.TreatedPatients = patients
	d.Wards = wards
	return nil
}
