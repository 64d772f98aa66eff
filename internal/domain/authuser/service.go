package authuser

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/domain/doctor"
	"github.com/carebridge/hms/internal/domain/patient"
	"github.com/carebridge/hms/internal/platform/apperr"
	"github.com/carebridge/hms/internal/platform/auth"
)

// DoctorDirectory and PatientDirectory expose the credential lookups login
// falls back to when no standalone account matches the email.
type DoctorDirectory interface {
	GetByEmail(ctx context.Context, email string) (*doctor.Doctor, error)
}

type PatientDirectory interface {
	GetByEmail(ctx context.Context, email string) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	patients PatientDirectory
	hasher   auth.Hasher
	issuer   *auth.TokenIssuer
	logger   zerolog.Logger
}

func NewService(repo Repository, doctors DoctorDirectory, patients PatientDirectory,
	hasher auth.Hasher, issuer *auth.TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (*User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if !validRoles[role] {
		return nil, apperr.Newf(apperr.KindValidation, "invalid role: %s", role)
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Conflict("Email is already registered!")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal("create auth user", err)
	}
	return u, nil
}

// Login checks the email against standalone accounts first, then doctor and
// patient rows, so staff and patients log in without a separate account.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	if email == "" || password == "" {
		return "", nil, apperr.Validation("email and password are required")
	}

	if u, err := s.repo.GetByEmail(ctx, email); err == nil && u != nil {
		if s.hasher.Compare(u.PasswordHash, password) {
			return s.issue(&Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
		}
		return "", nil, apperr.Unauthorized("Invalid email or password!")
	}

	if d, err := s.doctors.GetByEmail(ctx, email); err == nil && d != nil && d.PasswordHash != "" {
		if s.hasher.Compare(d.PasswordHash, password) {
			return s.issue(&Identity{ID: d.ID, Name: d.Name, Email: d.Email, Role: "doctor"})
		}
		return "", nil, apperr.Unauthorized("Invalid email or password!")
	}

	if p, err := s.patients.GetByEmail(ctx, email); err == nil && p != nil {
		if s.hasher.Compare(p.PasswordHash, password) {
			return s.issue(&Identity{ID: p.ID, Name: p.PatientName, Email: p.Email, Role: "patient"})
		}
	}
	return "", nil, apperr.Unauthorized("Invalid email or password!")
}

func (s *Service) issue(id *Identity) (string, *Identity, error) {
	token, err := s.issuer.Issue(id.ID.String(), id.Email, id.Role)
	if err != nil {
		return "", nil, apperr.Internal("issue token", err)
	}
	return token, id, nil
}

// SeedDefaultAdmin creates the bootstrap admin account if the email is free.
// Called once at startup; an existing account is left untouched.
func (s *Service) SeedDefaultAdmin(ctx context.Context, name, email, password string) error {
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil
	}
	if _, err := s.Register(ctx, name, email, password, "admin"); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Msg("seeded default admin account")
	return nil
}
