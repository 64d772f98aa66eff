package notification

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/hms/internal/platform/apperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Notification
	order []uuid.UUID

	failCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.items[n.ID] = n
	m.order = append(m.order, n.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return n, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*Notification, error) {
	var out []*Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.items[m.order[i]]
		if n != nil && n.UserID != nil && *n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByRole(_ context.Context, role string) ([]*Notification, error) {
	var out []*Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.items[m.order[i]]
		if n != nil && n.Role == role {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	if n, ok := m.items[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (m *mockRepo) MarkAllReadByUser(_ context.Context, userID uuid.UUID) error {
	for _, n := range m.items {
		if n.UserID != nil && *n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockRepo) MarkAllReadByRole(_ context.Context, role string) error {
	for _, n := range m.items {
		if n.Role == role {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, zerolog.New(os.Stderr))
}

func TestNotify_StoresRecord(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	user := uuid.New()

	svc.Notify(context.Background(), &user, "patient", "appointment_approved", "Your appointment was approved.")

	items, err := svc.ListForUser(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(items))
	}
	if items[0].IsRead {
		t.Error("new notification must be unread")
	}
}

func TestNotify_BestEffort(t *testing.T) {
	repo := newMockRepo()
	repo.failCreate = true
	svc := newTestService(repo)
	user := uuid.New()

	// Must not panic or surface the error.
	svc.Notify(context.Background(), &user, "patient", "x", "y")
}

func TestNotify_DropsUnknownRole(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	user := uuid.New()

	svc.Notify(context.Background(), &user, "superuser", "x", "y")
	if len(repo.items) != 0 {
		t.Error("unknown role must be dropped")
	}
}

func TestListForUser_NewestFirst(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	user := uuid.New()

	svc.Notify(context.Background(), &user, "patient", "a", "first")
	svc.Notify(context.Background(), &user, "patient", "b", "second")

	items, err := svc.ListForUser(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Message != "second" {
		t.Error("expected newest first ordering")
	}
}

func TestMarkRead(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	user := uuid.New()
	svc.Notify(context.Background(), &user, "patient", "a", "x")
	id := repo.order[0]

	if err := svc.MarkRead(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if !repo.items[id].IsRead {
		t.Error("notification should be read")
	}
}

func TestMarkRead_UnknownID(t *testing.T) {
	svc := newTestService(newMockRepo())
	err := svc.MarkRead(context.Background(), uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMarkAllReadForAdmin(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	svc.Notify(context.Background(), nil, "admin", "a", "x")
	svc.Notify(context.Background(), nil, "admin", "b", "y")

	if err := svc.MarkAllReadForAdmin(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, n := range repo.items {
		if !n.IsRead {
			t.Error("every admin notification should be read")
		}
	}
}
