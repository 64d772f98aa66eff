package appointment

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
	items map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.items[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, id := range m.order {
		if a, ok := m.items[id]; ok {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, id := range m.order {
		if a, ok := m.items[id]; ok && a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, id := range m.order {
		if a, ok := m.items[id]; ok && a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) HasConflict(_ context.Context, doctorID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error) {
	for _, a := range m.items {
		if a.ID == exclude {
			continue
		}
		if a.DoctorID == doctorID && a.AppointmentDateTime.Equal(at) &&
			(a.Status == StatusPending || a.Status == StatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

type recordedNotification struct {
	userID  *uuid.UUID
	role    string
	typ     string
	message string
}

type mockNotifier struct {
	sent []recordedNotification
}

func (m *mockNotifier) Notify(_ context.Context, userID *uuid.UUID, role, typ, message string) {
	m.sent = append(m.sent, recordedNotification{userID, role, typ, message})
}

// mockDirectory answers both existence checks; every id exists unless
// listed in missing.
type mockDirectory struct {
	missing map[uuid.UUID]bool
}

func (m *mockDirectory) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return !m.missing[id], nil
}

func (m *mockDirectory) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	return !m.missing[id], nil
}

func newTestService(repo *mockRepo, notifier *mockNotifier) *Service {
	return newTestServiceMissing(repo, notifier, nil)
}

func newTestServiceMissing(repo *mockRepo, notifier *mockNotifier, missing map[uuid.UUID]bool) *Service {
	if notifier == nil {
		notifier = &mockNotifier{}
	}
	dir := &mockDirectory{missing: missing}
	return NewService(repo, dir, dir, notifier, zerolog.New(os.Stderr))
}

func makeAppointment(t *testing.T, svc *Service, doctorID uuid.UUID, at time.Time) *Appointment {
	t.Helper()
	a := &Appointment{PatientID: uuid.New(), DoctorID: doctorID, AppointmentDateTime: at}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func TestCreateAppointment_StartsPending(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	a := makeAppointment(t, svc, uuid.New(), time.Now().Add(24*time.Hour))
	if a.Status != StatusPending {
		t.Errorf("expected pending, got %s", a.Status)
	}
}

func TestCreateAppointment_UnknownDoctor(t *testing.T) {
	doctor := uuid.New()
	svc := newTestServiceMissing(newMockRepo(), nil, map[uuid.UUID]bool{doctor: true})

	err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID: uuid.New(), DoctorID: doctor, AppointmentDateTime: time.Now().Add(time.Hour),
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if apperr.Message(err) != "Doctor not found!" {
		t.Errorf("unexpected message: %q", apperr.Message(err))
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	patient := uuid.New()
	svc := newTestServiceMissing(newMockRepo(), nil, map[uuid.UUID]bool{patient: true})

	err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID: patient, DoctorID: uuid.New(), AppointmentDateTime: time.Now().Add(time.Hour),
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if apperr.Message(err) != "Patient not found!" {
		t.Errorf("unexpected message: %q", apperr.Message(err))
	}
}

func TestCreateAppointment_DoctorDoubleBooked(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	doctor := uuid.New()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	makeAppointment(t, svc, doctor, at)

	err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID: uuid.New(), DoctorID: doctor, AppointmentDateTime: at,
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperr.Message(err) != "Doctor is not available at the requested time." {
		t.Errorf("unexpected message: %q", apperr.Message(err))
	}
}

func TestCreateAppointment_SameTimeDifferentDoctor(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	makeAppointment(t, svc, uuid.New(), at)

	err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID: uuid.New(), DoctorID: uuid.New(), AppointmentDateTime: at,
	})
	if err != nil {
		t.Errorf("different doctors may share a slot: %v", err)
	}
}

func TestCreateAppointment_RejectedSlotIsFree(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	doctor := uuid.New()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a := makeAppointment(t, svc, doctor, at)

	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusRejected, nil, ""); err != nil {
		t.Fatal(err)
	}

	// A rejected appointment does not block the slot.
	err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID: uuid.New(), DoctorID: doctor, AppointmentDateTime: at,
	})
	if err != nil {
		t.Errorf("rejected slot should be reusable: %v", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusRescheduled, true},
		{StatusRescheduled, StatusApproved, true},
		{StatusRescheduled, StatusRescheduled, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusRescheduled, false},
		{StatusRejected, StatusApproved, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			repo := newMockRepo()
			svc := newTestService(repo, nil)
			a := makeAppointment(t, svc, uuid.New(), time.Now().Add(time.Hour))
			a.Status = tc.from
			repo.items[a.ID] = a

			newTime := a.AppointmentDateTime.Add(time.Hour)
			_, err := svc.UpdateStatus(context.Background(), a.ID, tc.to, &newTime, "")
			if tc.allowed && err != nil {
				t.Errorf("expected transition to succeed, got %v", err)
			}
			if !tc.allowed && apperr.KindOf(err) != apperr.KindConflict {
				t.Errorf("expected conflict, got %v", err)
			}
		})
	}
}

func TestUpdateStatus_RescheduleChecksNewSlot(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	doctor := uuid.New()
	busy := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	makeAppointment(t, svc, doctor, busy)
	other := makeAppointment(t, svc, doctor, busy.Add(time.Hour))

	_, err := svc.UpdateStatus(context.Background(), other.ID, StatusRescheduled, &busy, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict moving onto a busy slot, got %v", err)
	}
}

func TestUpdateStatus_ApproveChecksSlot(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	doctor := uuid.New()
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	// Two pending requests for the same slot, seeded directly into the
	// store. Approving the second must fail while the first still holds it.
	first := &Appointment{PatientID: uuid.New(), DoctorID: doctor, AppointmentDateTime: at, Status: StatusPending}
	second := &Appointment{PatientID: uuid.New(), DoctorID: doctor, AppointmentDateTime: at, Status: StatusPending}
	repo.Create(context.Background(), first)
	repo.Create(context.Background(), second)

	_, err := svc.UpdateStatus(context.Background(), second.ID, StatusApproved, nil, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict approving a contested slot, got %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), first.ID, StatusRejected, nil, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(context.Background(), second.ID, StatusApproved, nil, ""); err != nil {
		t.Errorf("slot freed by rejection should be approvable: %v", err)
	}
}

func TestUpdateStatus_RescheduleRequiresNewTime(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	a := makeAppointment(t, svc, uuid.New(), time.Now().Add(time.Hour))

	_, err := svc.UpdateStatus(context.Background(), a.ID, StatusRescheduled, nil, "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus_NotifiesPatient(t *testing.T) {
	notifier := &mockNotifier{}
	svc := newTestService(newMockRepo(), notifier)
	a := makeAppointment(t, svc, uuid.New(), time.Now().Add(time.Hour))
	notifier.sent = nil

	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusApproved, nil, ""); err != nil {
		t.Fatal(err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].role != "patient" || *notifier.sent[0].userID != a.PatientID {
		t.Error("notification must address the patient")
	}
}

func TestDeleteAppointment_Unconditional(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	a := makeAppointment(t, svc, uuid.New(), time.Now().Add(time.Hour))
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusApproved, nil, ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteAppointment(context.Background(), a.ID); err != nil {
		t.Fatalf("delete should not depend on status: %v", err)
	}
	if len(repo.items) != 0 {
		t.Error("appointment should be gone")
	}
}

func TestListAppointments_RoleFilter(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	doctor := uuid.New()
	a := makeAppointment(t, svc, doctor, time.Now().Add(time.Hour))
	makeAppointment(t, svc, uuid.New(), time.Now().Add(2*time.Hour))

	byPatient, _, err := svc.ListAppointments(context.Background(), a.PatientID, "patient", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPatient) != 1 {
		t.Errorf("expected 1 patient appointment, got %d", len(byPatient))
	}

	byDoctor, _, err := svc.ListAppointments(context.Background(), doctor, "doctor", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byDoctor) != 1 {
		t.Errorf("expected 1 doctor appointment, got %d", len(byDoctor))
	}

	all, total, err := svc.ListAppointments(context.Background(), uuid.Nil, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || total != 2 {
		t.Errorf("expected 2 appointments, got %d", len(all))
	}
}
