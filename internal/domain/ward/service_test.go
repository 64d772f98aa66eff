package ward

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

// -- Mock Repository --

type mockRepo struct {
	wards      map[uuid.UUID]*Ward
	order      []uuid.UUID
	membership map[uuid.UUID]uuid.UUID // patient -> ward

	failAddMember bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		wards:      make(map[uuid.UUID]*Ward),
		membership: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepo) Create(_ context.Context, w *Ward) error {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	m.wards[w.ID] = w
	m.order = append(m.order, w.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Ward, error) {
	w, ok := m.wards[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return w, nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Ward, error) {
	for _, w := range m.wards {
		if w.WardName == name {
			return w, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Ward, int, error) {
	var result []*Ward
	for _, id := range m.order {
		result = append(result, m.wards[id])
	}
	return result, len(result), nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.wards, id)
	return nil
}

func (m *mockRepo) ClaimBed(_ context.Context, wardID uuid.UUID) (bool, error) {
	w, ok := m.wards[wardID]
	if !ok {
		return false, fmt.Errorf("not found")
	}
	if w.OccupiedBeds >= w.Capacity {
		return false, nil
	}
	w.OccupiedBeds++
	return true, nil
}

func (m *mockRepo) ReleaseBed(_ context.Context, wardID uuid.UUID) error {
	w, ok := m.wards[wardID]
	if !ok {
		return fmt.Errorf("not found")
	}
	if w.OccupiedBeds > 0 {
		w.OccupiedBeds--
	}
	return nil
}

func (m *mockRepo) SetOccupiedBeds(_ context.Context, wardID uuid.UUID, n int) error {
	if w, ok := m.wards[wardID]; ok {
		w.OccupiedBeds = n
	}
	return nil
}

func (m *mockRepo) AddMember(_ context.Context, wardID, patientID uuid.UUID) (bool, error) {
	if m.failAddMember {
		return false, fmt.Errorf("membership write failed")
	}
	if _, exists := m.membership[patientID]; exists {
		return false, nil
	}
	m.membership[patientID] = wardID
	return true, nil
}

func (m *mockRepo) RemoveMember(_ context.Context, wardID, patientID uuid.UUID) (bool, error) {
	if current, ok := m.membership[patientID]; ok && current == wardID {
		delete(m.membership, patientID)
		return true, nil
	}
	return false, nil
}

func (m *mockRepo) WardOf(_ context.Context, patientID uuid.UUID) (uuid.UUID, bool, error) {
	wardID, ok := m.membership[patientID]
	return wardID, ok, nil
}

func (m *mockRepo) Members(_ context.Context, wardID uuid.UUID) ([]uuid.UUID, error) {
	var members []uuid.UUID
	for pid, wid := range m.membership {
		if wid == wardID {
			members = append(members, pid)
		}
	}
	return members, nil
}

func (m *mockRepo) LeastOccupiedOpen(_ context.Context) (*Ward, error) {
	var best *Ward
	for _, id := range m.order {
		w := m.wards[id]
		if w.OccupiedBeds >= w.Capacity {
			continue
		}
		if best == nil || w.OccupiedBeds < best.OccupiedBeds {
			best = w
		}
	}
	return best, nil
}

// -- Helpers --

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, zerolog.New(os.Stderr))
}

func addWard(t *testing.T, svc *Service, name string, capacity int) *Ward {
	t.Helper()
	w := &Ward{WardName: name, WardType: "Other", Capacity: capacity}
	if err := svc.AddWard(context.Background(), w); err != nil {
		t.Fatalf("add ward %s: %v", name, err)
	}
	return w
}

func assertOccupancy(t *testing.T, repo *mockRepo, wardID uuid.UUID, want int) {
	t.Helper()
	w := repo.wards[wardID]
	if w.OccupiedBeds != want {
		t.Errorf("expected %d occupied beds, got %d", want, w.OccupiedBeds)
	}
	members, _ := repo.Members(context.Background(), wardID)
	if len(members) != w.OccupiedBeds {
		t.Errorf("invariant broken: occupied_beds=%d, members=%d", w.OccupiedBeds, len(members))
	}
}

// -- Tests --

func TestAddWard_Validation(t *testing.T) {
	svc := newTestService(newMockRepo())

	cases := []struct {
		name string
		w    *Ward
	}{
		{"missing name", &Ward{WardType: "Male", Capacity: 2}},
		{"bad type", &Ward{WardName: "A", WardType: "ICU", Capacity: 2}},
		{"zero capacity", &Ward{WardName: "A", WardType: "Male", Capacity: 0}},
	}
	for _, tc := range cases {
		if err := svc.AddWard(context.Background(), tc.w); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestAddWard_DuplicateName(t *testing.T) {
	svc := newTestService(newMockRepo())
	addWard(t, svc, "North", 3)

	err := svc.AddWard(context.Background(), &Ward{WardName: "North", WardType: "Male", Capacity: 2})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAddWard_IgnoresClientOccupancy(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	w := &Ward{WardName: "North", WardType: "Male", Capacity: 3, OccupiedBeds: 2}
	if err := svc.AddWard(context.Background(), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.wards[w.ID].OccupiedBeds != 0 {
		t.Error("occupied beds must start at zero regardless of payload")
	}
}

func TestAdmit_FullWard(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	w := addWard(t, svc, "W", 1)

	if err := svc.Admit(context.Background(), w.ID, uuid.New()); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	err := svc.Admit(context.Background(), w.ID, uuid.New())
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected WardFull conflict, got %v", err)
	}
	assertOccupancy(t, repo, w.ID, 1)
}

func TestAdmit_UnknownWard(t *testing.T) {
	svc := newTestService(newMockRepo())
	err := svc.Admit(context.Background(), uuid.New(), uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAdmit_MembershipFailureReleasesBed(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	w := addWard(t, svc, "W", 2)

	repo.failAddMember = true
	err := svc.Admit(context.Background(), w.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	repo.failAddMember = false
	assertOccupancy(t, repo, w.ID, 0)
}

func TestDischarge_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	w := addWard(t, svc, "W", 2)
	patient := uuid.New()

	if err := svc.Admit(context.Background(), w.ID, patient); err != nil {
		t.Fatal(err)
	}
	if err := svc.Discharge(context.Background(), w.ID, patient); err != nil {
		t.Fatal(err)
	}
	assertOccupancy(t, repo, w.ID, 0)

	// Discharging again must not push occupancy negative.
	if err := svc.Discharge(context.Background(), w.ID, patient); err != nil {
		t.Fatal(err)
	}
	assertOccupancy(t, repo, w.ID, 0)
}

func TestTransfer_Success(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a := addWard(t, svc, "A", 1)
	b := addWard(t, svc, "B", 1)
	patient := uuid.New()

	if err := svc.Admit(context.Background(), a.ID, patient); err != nil {
		t.Fatal(err)
	}
	if err := svc.Transfer(context.Background(), a.ID, b.ID, patient); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertOccupancy(t, repo, a.ID, 0)
	assertOccupancy(t, repo, b.ID, 1)
}

func TestTransfer_FullTargetRestoresSource(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a := addWard(t, svc, "A", 1)
	b := addWard(t, svc, "B", 1)
	patient := uuid.New()
	other := uuid.New()

	if err := svc.Admit(context.Background(), a.ID, patient); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(context.Background(), b.ID, other); err != nil {
		t.Fatal(err)
	}

	err := svc.Transfer(context.Background(), a.ID, b.ID, patient)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected WardFull conflict, got %v", err)
	}

	// Source ward unchanged from before the attempt.
	assertOccupancy(t, repo, a.ID, 1)
	assertOccupancy(t, repo, b.ID, 1)
	if wid := repo.membership[patient]; wid != a.ID {
		t.Error("patient must remain in the source ward")
	}
}

func TestTransfer_UnknownTarget(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a := addWard(t, svc, "A", 1)
	patient := uuid.New()
	if err := svc.Admit(context.Background(), a.ID, patient); err != nil {
		t.Fatal(err)
	}

	err := svc.Transfer(context.Background(), a.ID, uuid.New(), patient)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	assertOccupancy(t, repo, a.ID, 1)
}

func TestDeleteWard_RefusesOccupied(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	w := addWard(t, svc, "W", 1)
	if err := svc.Admit(context.Background(), w.ID, uuid.New()); err != nil {
		t.Fatal(err)
	}

	err := svc.DeleteWard(context.Background(), w.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict for occupied ward, got %v", err)
	}
}

func TestPickLeastOccupied(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a := addWard(t, svc, "A", 2)
	b := addWard(t, svc, "B", 2)

	if err := svc.Admit(context.Background(), a.ID, uuid.New()); err != nil {
		t.Fatal(err)
	}

	picked, err := svc.PickLeastOccupied(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if picked.ID != b.ID {
		t.Errorf("expected least occupied ward B, got %s", picked.WardName)
	}
}

func TestPickLeastOccupied_AllFull(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	a := addWard(t, svc, "A", 1)
	if err := svc.Admit(context.Background(), a.ID, uuid.New()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.PickLeastOccupied(context.Background())
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict when all wards full, got %v", err)
	}
}
