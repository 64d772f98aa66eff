package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Service stores and queries notification records. Other services write
// through Notify; a store failure there is logged but never fails the
// operation that triggered it.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Notify stores a notification record. Best effort: errors are logged, not
// returned, so a notification failure cannot fail an admission or a status
// change.
func (s *Service) Notify(ctx context.Context, userID *uuid.UUID, role, typ, message string) {
	if !validRoles[role] {
		s.logger.Warn().Str("role", role).Msg("dropping notification with unknown role")
		return
	}
	n := &Notification{UserID: userID, Role: role, Type: typ, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Str("type", typ).Msg("failed to store notification")
	}
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list notifications", err)
	}
	return items, nil
}

func (s *Service) ListForAdmin(ctx context.Context) ([]*Notification, error) {
	items, err := s.repo.ListByRole(ctx, "admin")
	if err != nil {
		return nil, apperr.Internal("list admin notifications", err)
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperr.NotFound("Notification not found!")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return apperr.Internal("mark notification read", err)
	}
	return nil
}

func (s *Service) MarkAllReadForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllReadByUser(ctx, userID); err != nil {
		return apperr.Internal("mark notifications read", err)
	}
	return nil
}

func (s *Service) MarkAllReadForAdmin(ctx context.Context) error {
	if err := s.repo.MarkAllReadByRole(ctx, "admin"); err != nil {
		return apperr.Internal("mark admin notifications read", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperr.NotFound("Notification not found!")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("delete notification", err)
	}
	return nil
}
