package ward

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Service is the ward capacity manager. It owns every mutation of
// occupied_beds and ward membership; the occupancy invariant
// (0 <= occupied_beds <= capacity, occupied_beds == len(members)) is
// checked after each mutating call.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) AddWard(ctx context.Context, w *Ward) error {
	if w.WardName == "" {
		return apperr.Validation("wardName is required")
	}
	if !validWardTypes[w.WardType] {
		return apperr.Newf(apperr.KindValidation, "invalid wardType: %s", w.WardType)
	}
	if w.Capacity < 1 {
		return apperr.Validation("capacity must be at least 1")
	}
	if existing, err := s.repo.GetByName(ctx, w.WardName); err == nil && existing != nil {
		return apperr.Conflict("Ward with this name already exists!")
	}

	// Occupancy always starts empty regardless of the payload.
	w.OccupiedBeds = 0
	w.Patients = nil

	if err := s.repo.Create(ctx, w); err != nil {
		return apperr.Internal("create ward", err)
	}
	return nil
}

func (s *Service) GetWard(ctx context.Context, id uuid.UUID) (*Ward, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Ward not found!")
	}
	members, err := s.repo.Members(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load ward members", err)
	}
	w.Patients = members
	return w, nil
}

func (s *Service) ListWards(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	wards, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list wards", err)
	}
	for _, w := range wards {
		members, err := s.repo.Members(ctx, w.ID)
		if err != nil {
			return nil, 0, apperr.Internal("load ward members", err)
		}
		w.Patients = members
	}
	return wards, total, nil
}

func (s *Service) DeleteWard(ctx context.Context, id uuid.UUID) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("Ward not found!")
	}
	if w.OccupiedBeds > 0 {
		return apperr.Conflict("Ward still has admitted patients!")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("delete ward", err)
	}
	return nil
}

// Admit claims a bed and records membership. The bed claim is a single
// conditional increment so concurrent admits cannot overshoot capacity.
func (s *Service) Admit(ctx context.Context, wardID, patientID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, wardID); err != nil {
		return apperr.NotFound("Ward not found!")
	}

	claimed, err := s.repo.ClaimBed(ctx, wardID)
	if err != nil {
		return apperr.Internal("claim bed", err)
	}
	if !claimed {
		return apperr.Conflict("Ward is full!")
	}

	added, err := s.repo.AddMember(ctx, wardID, patientID)
	if err != nil || !added {
		// Release the claimed bed; the membership write did not land.
		if relErr := s.repo.ReleaseBed(ctx, wardID); relErr != nil {
			s.logger.Error().Err(relErr).
				Str("ward_id", wardID.String()).
				Msg("failed to release bed after membership failure")
			return apperr.Internal("release bed after failed admit", relErr)
		}
		if err != nil {
			return apperr.Internal("record ward membership", err)
		}
		return apperr.Conflict("Patient is already assigned to a ward!")
	}

	s.checkInvariant(ctx, wardID)
	return nil
}

// Discharge is idempotent: the bed count only drops when a membership row
// was actually removed, so discharging an absent patient is a no-op.
func (s *Service) Discharge(ctx context.Context, wardID, patientID uuid.UUID) error {
	removed, err := s.repo.RemoveMember(ctx, wardID, patientID)
	if err != nil {
		return apperr.Internal("remove ward membership", err)
	}
	if !removed {
		return nil
	}
	if err := s.repo.ReleaseBed(ctx, wardID); err != nil {
		return apperr.Internal("release bed", err)
	}

	s.checkInvariant(ctx, wardID)
	return nil
}

// Transfer moves a patient between wards. If the admit into the new ward
// fails, the patient is re-admitted into the old ward so the operation is
// all-or-nothing from the caller's perspective.
func (s *Service) Transfer(ctx context.Context, oldWardID, newWardID, patientID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, newWardID); err != nil {
		return apperr.NotFound("Ward not found!")
	}

	if err := s.Discharge(ctx, oldWardID, patientID); err != nil {
		return err
	}

	if err := s.Admit(ctx, newWardID, patientID); err != nil {
		if compErr := s.Admit(ctx, oldWardID, patientID); compErr != nil {
			s.logger.Error().Err(compErr).
				Str("ward_id", oldWardID.String()).
				Str("patient_id", patientID.String()).
				Msg("transfer compensation failed, patient left without a ward")
			return apperr.Internal("transfer compensation failed", compErr)
		}
		return err
	}
	return nil
}

// DischargeEverywhere removes the patient from whichever ward tracks them.
// Used by patient deletion.
func (s *Service) DischargeEverywhere(ctx context.Context, patientID uuid.UUID) error {
	wardID, ok, err := s.repo.WardOf(ctx, patientID)
	if err != nil {
		return apperr.Internal("resolve ward membership", err)
	}
	if !ok {
		return nil
	}
	return s.Discharge(ctx, wardID, patientID)
}

// PickLeastOccupied is the fallback scheduler's ward choice: the open ward
// with the fewest occupied beds, ties by insertion order.
func (s *Service) PickLeastOccupied(ctx context.Context) (*Ward, error) {
	w, err := s.repo.LeastOccupiedOpen(ctx)
	if err != nil {
		return nil, apperr.Internal("pick least occupied ward", err)
	}
	if w == nil {
		return nil, apperr.Conflict("No ward with free beds available!")
	}
	return w, nil
}

// checkInvariant recounts membership and self-heals a diverged bed count.
// Divergence is logged; it indicates a lost compensation somewhere.
func (s *Service) checkInvariant(ctx context.Context, wardID uuid.UUID) {
	w, err := s.repo.GetByID(ctx, wardID)
	if err != nil {
		return
	}
	members, err := s.repo.Members(ctx, wardID)
	if err != nil {
		return
	}
	if w.OccupiedBeds == len(members) && w.OccupiedBeds >= 0 && w.OccupiedBeds <= w.Capacity {
		return
	}

	s.logger.Warn().
		Str("ward_id", wardID.String()).
		Int("occupied_beds", w.OccupiedBeds).
		Int("members", len(members)).
		Msg("ward occupancy diverged from membership, self-healing")

	if err := s.repo.SetOccupiedBeds(ctx, wardID, len(members)); err != nil {
		s.logger.Error().Err(err).Str("ward_id", wardID.String()).Msg("self-heal failed")
	}
}
