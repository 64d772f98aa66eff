package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	// ListByRole returns role-addressed notifications (admin feed) newest first.
	ListByRole(ctx context.Context, role string) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllReadByUser(ctx context.Context, userID uuid.UUID) error
	MarkAllReadByRole(ctx context.Context, role string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
