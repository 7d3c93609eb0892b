package meetings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
)

type stubStore struct {
	meeting   *ProposedMeeting
	getErr    error
	claimID   string
	claimErr  error
	lastClaim *ClaimParams
}

func (s *stubStore) GetWithRelations(context.Context, string) (*ProposedMeeting, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.meeting, nil
}

func (s *stubStore) Claim(_ context.Context, params ClaimParams) (string, error) {
	s.lastClaim = &params
	if s.claimErr != nil {
		return "", s.claimErr
	}
	if s.claimID == "" {
		return "appt-new", nil
	}
	return s.claimID, nil
}

type stubDirectory struct {
	customer *customers.Customer
	err      error
}

func (d *stubDirectory) GetByAuthUser(context.Context, string) (*customers.Customer, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.customer, nil
}

func strptr(s string) *string { return &s }

func timeptr(t time.Time) *time.Time { return &t }

func openMeeting() *ProposedMeeting {
	return &ProposedMeeting{
		ID:        "meet-1",
		StationID: strptr("station-1"),
		StartTime: timeptr(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		EndTime:   timeptr(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)),
		Status:    StatusProposed,
		Title:     strptr("Open grooming slot"),
	}
}

func vipCustomer() *customers.Customer {
	typeID := "type-vip"
	return &customers.Customer{ID: "cust-1", CustomerTypeID: &typeID}
}

func newBookingService(store *stubStore, dir *stubDirectory) *Service {
	if dir == nil {
		dir = &stubDirectory{customer: vipCustomer()}
	}
	return NewService(store, dir, nil)
}

func TestBookInvitedCustomer(t *testing.T) {
	meeting := openMeeting()
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	store := &stubStore{meeting: meeting}

	result, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if result.AppointmentID != "appt-new" || result.MeetingID != "meet-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if store.lastClaim == nil || store.lastClaim.CustomerID != "cust-1" {
		t.Fatalf("claim must carry the resolved customer: %+v", store.lastClaim)
	}
	if store.lastClaim.Name == nil || *store.lastClaim.Name != "Open grooming slot" {
		t.Fatal("claim must copy the meeting title as appointment name")
	}
}

func TestBookCategoryMatch(t *testing.T) {
	meeting := openMeeting()
	meeting.Categories = []string{"type-regular", "type-vip"}
	store := &stubStore{meeting: meeting}

	if _, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	}); err != nil {
		t.Fatalf("category-matched booking failed: %v", err)
	}
}

func TestBookWithClaimCode(t *testing.T) {
	meeting := openMeeting()
	meeting.Code = strptr("SECRET7")
	store := &stubStore{meeting: meeting}

	if _, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		Code:        "SECRET7",
		AuthSubject: "auth-1",
	}); err != nil {
		t.Fatalf("code booking failed: %v", err)
	}
}

func TestBookWrongCodeForbidden(t *testing.T) {
	meeting := openMeeting()
	meeting.Code = strptr("SECRET7")
	store := &stubStore{meeting: meeting}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		Code:        "WRONG",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
}

func TestBookNoEligibilityPathForbidden(t *testing.T) {
	// Meeting with a code but none supplied, no invites, no categories.
	meeting := openMeeting()
	meeting.Code = strptr("SECRET7")
	meeting.Categories = []string{"type-regular"}
	store := &stubStore{meeting: meeting}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if store.lastClaim != nil {
		t.Fatal("ineligible booking must not reach the claim")
	}
}

func TestBookRescheduleLockedToOriginalCustomer(t *testing.T) {
	meeting := openMeeting()
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	meeting.RescheduleCustomerID = strptr("cust-other")
	store := &stubStore{meeting: meeting}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("reschedule slot for another customer must be forbidden, got %v", err)
	}
}

func TestBookRescheduleForOwnerPassesAppointmentID(t *testing.T) {
	meeting := openMeeting()
	meeting.RescheduleCustomerID = strptr("cust-1")
	meeting.RescheduleAppointmentID = strptr("appt-old")
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	store := &stubStore{meeting: meeting, claimID: "appt-old"}

	result, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if err != nil {
		t.Fatalf("reschedule booking failed: %v", err)
	}
	if result.AppointmentID != "appt-old" {
		t.Fatalf("expected the original appointment id, got %s", result.AppointmentID)
	}
	if store.lastClaim.RescheduleAppointmentID == nil || *store.lastClaim.RescheduleAppointmentID != "appt-old" {
		t.Fatal("claim must carry the reschedule appointment id")
	}
}

func TestBookAlreadyClaimed(t *testing.T) {
	meeting := openMeeting()
	meeting.Status = StatusBooked
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	store := &stubStore{meeting: meeting}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrMeetingUnavailable) {
		t.Fatalf("expected ErrMeetingUnavailable, got %v", err)
	}
}

func TestBookLostRaceSurfacesConflict(t *testing.T) {
	meeting := openMeeting()
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	store := &stubStore{meeting: meeting, claimErr: ErrMeetingUnavailable}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrMeetingUnavailable) {
		t.Fatalf("expected ErrMeetingUnavailable from the lost race, got %v", err)
	}
}

func TestBookMissingTimes(t *testing.T) {
	meeting := openMeeting()
	meeting.EndTime = nil
	meeting.Invites = []Invite{{CustomerID: "cust-1", Source: InviteManual}}
	store := &stubStore{meeting: meeting}

	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrMissingMeetingTimes) {
		t.Fatalf("expected ErrMissingMeetingTimes, got %v", err)
	}
}

func TestBookMeetingNotFound(t *testing.T) {
	store := &stubStore{getErr: ErrMeetingNotFound}
	_, err := newBookingService(store, nil).Book(context.Background(), BookParams{
		MeetingID:   "missing",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestBookNoCustomerProfile(t *testing.T) {
	store := &stubStore{meeting: openMeeting()}
	dir := &stubDirectory{err: customers.ErrCustomerNotFound}
	_, err := newBookingService(store, dir).Book(context.Background(), BookParams{
		MeetingID:   "meet-1",
		AuthSubject: "auth-1",
	})
	if !errors.Is(err, customers.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
