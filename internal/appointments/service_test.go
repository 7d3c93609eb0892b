package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/scheduling"
)

type stubStore struct {
	inserted    *Appointment
	existing    *Appointment
	getErr      error
	overlap     bool
	overlapErr  error
	lastStation string
	lastExclude string
	lastUpdate  PlacementUpdate
	updateID    string
	updated     *Appointment
	updateErr   error
	listed      []Appointment
}

func (s *stubStore) Insert(_ context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = "appt-new"
	}
	copied := *a
	s.inserted = &copied
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*Appointment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.existing != nil {
		return s.existing, nil
	}
	return &Appointment{ID: id}, nil
}

func (s *stubStore) HasOverlap(_ context.Context, stationID string, _, _ time.Time, excludeID string) (bool, error) {
	s.lastStation = stationID
	s.lastExclude = excludeID
	return s.overlap, s.overlapErr
}

func (s *stubStore) UpdatePlacement(_ context.Context, id string, upd PlacementUpdate) (*Appointment, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updateID = id
	s.lastUpdate = upd
	if s.updated != nil {
		return s.updated, nil
	}
	return &Appointment{ID: id, StationID: upd.StationID, StartTime: upd.StartTime, EndTime: upd.EndTime}, nil
}

func (s *stubStore) ListRange(context.Context, time.Time, time.Time) ([]Appointment, error) {
	return s.listed, nil
}

type stubResolver struct {
	policy scheduling.Policy
	err    error
}

func (r *stubResolver) Resolve(context.Context, string, *string) (scheduling.Policy, error) {
	return r.policy, r.err
}

type stubDirectory struct {
	customer  *customers.Customer
	err       error
	byIDErr   error
	lookups   int
	idLookups int
}

func (d *stubDirectory) GetByID(_ context.Context, id string) (*customers.Customer, error) {
	d.idLookups++
	if d.byIDErr != nil {
		return nil, d.byIDErr
	}
	return &customers.Customer{ID: id}, nil
}

func (d *stubDirectory) GetByAuthUser(context.Context, string) (*customers.Customer, error) {
	d.lookups++
	if d.err != nil {
		return nil, d.err
	}
	return d.customer, nil
}

func newTestService(store *stubStore, resolver *stubResolver, dir *stubDirectory) *Service {
	if store == nil {
		store = &stubStore{}
	}
	if resolver == nil {
		resolver = &stubResolver{policy: scheduling.Policy{DurationMinutes: 60}}
	}
	if dir == nil {
		dir = &stubDirectory{err: customers.ErrCustomerNotFound}
	}
	return NewService(store, resolver, dir, time.UTC, nil)
}

func TestReserveAppliesPolicyDurationAndApproval(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, &stubResolver{policy: scheduling.Policy{DurationMinutes: 45, RequiresApproval: true}}, nil)

	appt, message, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-1",
		Date:       "2025-06-01",
		StartTime:  "10:00",
		StationID:  "ST1",
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if appt.Status != StatusPending {
		t.Fatalf("expected pending status under approval policy, got %s", appt.Status)
	}
	wantStart := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !appt.StartTime.Equal(wantStart) {
		t.Fatalf("expected start %s, got %s", wantStart, appt.StartTime)
	}
	if got := appt.EndTime.Sub(appt.StartTime); got != 45*time.Minute {
		t.Fatalf("expected 45 minute window, got %s", got)
	}
	if message != msgPendingApproval {
		t.Fatalf("expected pending wording, got %q", message)
	}
	if appt.PaymentStatus != PaymentUnpaid || appt.Kind != KindBusiness {
		t.Fatalf("unexpected defaults: %+v", appt)
	}
}

func TestReserveConfirmedWithoutApproval(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, &stubResolver{policy: scheduling.Policy{DurationMinutes: 60}}, nil)

	appt, message, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-1",
		Date:       "2025-06-01",
		StartTime:  "09:30",
		StationID:  "ST1",
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if appt.Status != StatusScheduled || message != msgConfirmed {
		t.Fatalf("expected confirmed reservation, got %s / %q", appt.Status, message)
	}
}

func TestReserveMissingFieldNamesFirstAbsent(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, _, err := svc.Reserve(context.Background(), ReserveParams{CustomerID: "cust-1"})
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "serviceId" {
		t.Fatalf("expected missing serviceId, got %v", err)
	}
}

func TestReserveExplicitCustomerSkipsDirectory(t *testing.T) {
	dir := &stubDirectory{customer: &customers.Customer{ID: "other"}}
	svc := newTestService(&stubStore{}, nil, dir)

	appt, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:   "S1",
		CustomerID:  "cust-explicit",
		AuthSubject: "auth-1",
		Date:        "2025-06-01",
		StartTime:   "10:00",
		StationID:   "ST1",
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if dir.lookups != 0 {
		t.Fatal("explicit customerId must not trigger an identity lookup")
	}
	if dir.idLookups != 1 {
		t.Fatal("explicit customerId must be validated against the directory")
	}
	if appt.CustomerID != "cust-explicit" {
		t.Fatalf("explicit customerId ignored: %s", appt.CustomerID)
	}
}

func TestReserveUnknownExplicitCustomer(t *testing.T) {
	store := &stubStore{}
	dir := &stubDirectory{byIDErr: customers.ErrCustomerNotFound}
	svc := newTestService(store, nil, dir)

	_, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-ghost",
		Date:       "2025-06-01",
		StartTime:  "10:00",
		StationID:  "ST1",
	})
	if !errors.Is(err, customers.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if store.inserted != nil {
		t.Fatal("unknown customer must not insert a row")
	}
}

func TestReserveDerivesCustomerFromPrincipal(t *testing.T) {
	dir := &stubDirectory{customer: &customers.Customer{ID: "cust-derived"}}
	svc := newTestService(&stubStore{}, nil, dir)

	appt, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:   "S1",
		AuthSubject: "auth-1",
		Date:        "2025-06-01",
		StartTime:   "10:00",
		StationID:   "ST1",
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if appt.CustomerID != "cust-derived" {
		t.Fatalf("expected derived customer, got %s", appt.CustomerID)
	}
}

func TestReserveNoCustomerNoPrincipal(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID: "S1",
		Date:      "2025-06-01",
		StartTime: "10:00",
		StationID: "ST1",
	})
	if !errors.Is(err, customers.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestReserveConflictDoesNotInsert(t *testing.T) {
	store := &stubStore{overlap: true}
	svc := newTestService(store, nil, nil)

	_, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-1",
		Date:       "2025-06-01",
		StartTime:  "10:00",
		StationID:  "ST1",
	})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if store.inserted != nil {
		t.Fatal("conflicting reservation must not insert a row")
	}
}

func TestReservePolicyRejectionDoesNotInsert(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, &stubResolver{err: scheduling.ErrStationNotBookableRemotely}, nil)

	_, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-1",
		Date:       "2025-06-01",
		StartTime:  "10:00",
		StationID:  "ST1",
	})
	if !errors.Is(err, scheduling.ErrStationNotBookableRemotely) {
		t.Fatalf("expected remote-booking rejection, got %v", err)
	}
	if store.inserted != nil {
		t.Fatal("rejected reservation must not insert a row")
	}
}

func TestReserveInvalidDateTime(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, _, err := svc.Reserve(context.Background(), ReserveParams{
		ServiceID:  "S1",
		CustomerID: "cust-1",
		Date:       "June 1st",
		StartTime:  "10:00",
		StationID:  "ST1",
	})
	if !errors.Is(err, scheduling.ErrInvalidDateTime) {
		t.Fatalf("expected ErrInvalidDateTime, got %v", err)
	}
}

func TestMoveRejectsUnknownType(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:   "appt-1",
		AppointmentType: "daycare",
	})
	if !errors.Is(err, ErrInvalidAppointmentType) {
		t.Fatalf("expected ErrInvalidAppointmentType, got %v", err)
	}
}

func TestMoveUnknownAppointment(t *testing.T) {
	store := &stubStore{getErr: ErrAppointmentNotFound}
	svc := newTestService(store, nil, nil)

	_, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:   "appt-ghost",
		NewStationID:    "station-1",
		NewStartTime:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		NewEndTime:      time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
		AppointmentType: TypeGrooming,
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if store.updateID != "" {
		t.Fatal("missing appointment must not be updated")
	}
}

func TestMoveGardenHourlyRecomputesWindow(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, nil, nil)

	hourly := GardenHourly
	appt, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:         "appt-1",
		NewStationID:          "garden-hourly",
		NewStartTime:          time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		NewEndTime:            time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC),
		OldStationID:          "garden-hourly",
		OldStartTime:          time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC),
		OldEndTime:            time.Date(2025, 3, 9, 17, 0, 0, 0, time.UTC),
		AppointmentType:       TypeGarden,
		GardenAppointmentType: &hourly,
		SelectedHours:         &HourSelection{Start: "13:00", End: "15:00"},
	})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	// Date from the drag target, hours from the explicit selection.
	if want := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC); !appt.StartTime.Equal(want) {
		t.Fatalf("expected start %s, got %s", want, appt.StartTime)
	}
	if want := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC); !appt.EndTime.Equal(want) {
		t.Fatalf("expected end %s, got %s", want, appt.EndTime)
	}
	if appt.StationID != nil {
		t.Fatalf("garden placement must store a null station, got %v", *appt.StationID)
	}
	if store.lastStation != "" {
		t.Fatal("no overlap check expected for day-care placements")
	}
}

func TestMoveGroomingChecksOverlapExcludingSelf(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, nil, nil)

	_, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:   "appt-1",
		NewStationID:    "station-2",
		NewStartTime:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		NewEndTime:      time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		OldStationID:    "station-1",
		OldStartTime:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		OldEndTime:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		AppointmentType: TypeGrooming,
	})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if store.lastStation != "station-2" || store.lastExclude != "appt-1" {
		t.Fatalf("overlap check must target the new station excluding the moved row, got %q/%q",
			store.lastStation, store.lastExclude)
	}
}

func TestMoveConflict(t *testing.T) {
	store := &stubStore{overlap: true}
	svc := newTestService(store, nil, nil)

	_, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:   "appt-1",
		NewStationID:    "station-2",
		NewStartTime:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		NewEndTime:      time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		OldStationID:    "station-1",
		OldStartTime:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		OldEndTime:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		AppointmentType: TypeGrooming,
	})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestMovePartialUpdateLeavesOmittedFieldsNil(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, nil, nil)

	bath := true
	_, err := svc.Move(context.Background(), MoveParams{
		AppointmentID:   "appt-1",
		NewStationID:    "garden",
		NewStartTime:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		NewEndTime:      time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC),
		OldStationID:    "garden",
		OldStartTime:    time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC),
		OldEndTime:      time.Date(2025, 3, 9, 17, 0, 0, 0, time.UTC),
		AppointmentType: TypeGarden,
		GardenBath:      &bath,
	})
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	upd := store.lastUpdate
	if upd.GardenBath == nil || !*upd.GardenBath {
		t.Fatal("provided field must be carried into the update")
	}
	if upd.GardenTrimNails != nil || upd.GardenBrush != nil || upd.LatePickupNotes != nil || upd.InternalNotes != nil {
		t.Fatalf("omitted fields must stay nil in the update: %+v", upd)
	}
}

func TestMoveIdempotent(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store, nil, nil)

	params := MoveParams{
		AppointmentID:   "appt-1",
		NewStationID:    "station-2",
		NewStartTime:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		NewEndTime:      time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		OldStationID:    "station-1",
		OldStartTime:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		OldEndTime:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		AppointmentType: TypeGrooming,
	}
	first, err := svc.Move(context.Background(), params)
	if err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	second, err := svc.Move(context.Background(), params)
	if err != nil {
		t.Fatalf("second identical move failed: %v", err)
	}
	if !first.StartTime.Equal(second.StartTime) || !first.EndTime.Equal(second.EndTime) {
		t.Fatalf("identical moves must converge: %+v vs %+v", first, second)
	}
}

func TestDayScheduleInvalidDate(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	if _, err := svc.DaySchedule(context.Background(), "not-a-date"); !errors.Is(err, scheduling.ErrInvalidDateTime) {
		t.Fatalf("expected ErrInvalidDateTime, got %v", err)
	}
}

func TestDayScheduleListsFromStore(t *testing.T) {
	store := &stubStore{listed: []Appointment{{ID: "appt-1"}, {ID: "appt-2"}}}
	svc := newTestService(store, nil, nil)

	out, err := svc.DaySchedule(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("schedule read failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != "appt-1" {
		t.Fatalf("unexpected schedule: %+v", out)
	}
}
