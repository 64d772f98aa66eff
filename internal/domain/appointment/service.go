package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Notifier is the narrow sink the scheduler writes status-change
// notifications through.
type Notifier interface {
	Notify(ctx context.Context, userID *uuid.UUID, role, typ, message string)
}

// PatientChecker and DoctorChecker verify that a booking references real
// rows. Wired in main to break the package cycle.
type PatientChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type DoctorChecker interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service schedules appointments. The double-booking guard runs on create,
// on approval and on any reschedule that moves the time: same doctor, same
// exact timestamp, status pending or approved is a conflict.
type Service struct {
	repo     Repository
	patients PatientChecker
	doctors  DoctorChecker
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, patients PatientChecker, doctors DoctorChecker,
	notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, notifier: notifier, logger: logger}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return apperr.Validation("patientId is required")
	}
	if a.DoctorID == uuid.Nil {
		return apperr.Validation("doctorId is required")
	}
	if a.AppointmentDateTime.IsZero() {
		return apperr.Validation("appointmentDateTime is required")
	}

	exists, err := s.doctors.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return apperr.Internal("check doctor", err)
	}
	if !exists {
		return apperr.NotFound("Doctor not found!")
	}
	exists, err = s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return apperr.Internal("check patient", err)
	}
	if !exists {
		return apperr.NotFound("Patient not found!")
	}

	conflict, err := s.repo.HasConflict(ctx, a.DoctorID, a.AppointmentDateTime, uuid.Nil)
	if err != nil {
		return apperr.Internal("check doctor availability", err)
	}
	if conflict {
		return apperr.Conflict("Doctor is not available at the requested time.")
	}

	a.Status = StatusPending
	if err := s.repo.Create(ctx, a); err != nil {
		return apperr.Internal("create appointment", err)
	}

	s.notifier.Notify(ctx, &a.PatientID, "patient", "appointment_created",
		"Your appointment request was received and is pending review.")
	s.notifier.Notify(ctx, nil, "admin", "appointment_created",
		fmt.Sprintf("New appointment requested for %s.", a.AppointmentDateTime.Format(time.RFC3339)))
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Appointment not found!")
	}
	return a, nil
}

// ListAppointments filters by userId/role when given: patients see their
// own, doctors see their schedule, anything else lists all.
func (s *Service) ListAppointments(ctx context.Context, userID uuid.UUID, role string, limit, offset int) ([]*Appointment, int, error) {
	switch {
	case role == "patient" && userID != uuid.Nil:
		items, err := s.repo.ListByPatient(ctx, userID)
		if err != nil {
			return nil, 0, apperr.Internal("list patient appointments", err)
		}
		return items, len(items), nil
	case role == "doctor" && userID != uuid.Nil:
		items, err := s.repo.ListByDoctor(ctx, userID)
		if err != nil {
			return nil, 0, apperr.Internal("list doctor appointments", err)
		}
		return items, len(items), nil
	default:
		items, total, err := s.repo.List(ctx, limit, offset)
		if err != nil {
			return nil, 0, apperr.Internal("list appointments", err)
		}
		return items, total, nil
	}
}

// UpdateStatus applies one transition. A reschedule carries the new time and
// re-runs the conflict guard against it.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status, newDateTime *time.Time, notes string) (*Appointment, error) {
	if !next.Valid() || next == StatusPending {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status: %s", next)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Appointment not found!")
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, apperr.Newf(apperr.KindConflict, "cannot move appointment from %s to %s", a.Status, next)
	}

	if next == StatusRescheduled {
		if newDateTime == nil {
			return nil, apperr.Validation("newDateTime is required to reschedule")
		}
		a.AppointmentDateTime = *newDateTime
	}
	if next == StatusRescheduled || next == StatusApproved {
		conflict, err := s.repo.HasConflict(ctx, a.DoctorID, a.AppointmentDateTime, a.ID)
		if err != nil {
			return nil, apperr.Internal("check doctor availability", err)
		}
		if conflict {
			return nil, apperr.Conflict("Doctor is not available at the requested time.")
		}
	}

	a.Status = next
	if notes != "" {
		a.Notes = notes
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal("update appointment", err)
	}

	s.notifier.Notify(ctx, &a.PatientID, "patient", "appointment_"+string(next),
		statusMessage(next, a.AppointmentDateTime))
	return a, nil
}

// DeleteAppointment is unconditional regardless of status.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperr.NotFound("Appointment not found!")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("delete appointment", err)
	}
	return nil
}

func statusMessage(s Status, at time.Time) string {
	switch s {
	case StatusApproved:
		return fmt.Sprintf("Your appointment on %s was approved.", at.Format(time.RFC3339))
	case StatusRejected:
		return "Your appointment request was rejected."
	case StatusRescheduled:
		return fmt.Sprintf("Your appointment was rescheduled to %s and is pending review.", at.Format(time.RFC3339))
	default:
		return "Your appointment status changed."
	}
}
