package appointments

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/cache"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/events"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/observability/metrics"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/scheduling"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	HasOverlap(ctx context.Context, stationID string, start, end time.Time, excludeID string) (bool, error)
	UpdatePlacement(ctx context.Context, id string, upd PlacementUpdate) (*Appointment, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Appointment, error)
}

// PolicyResolver resolves duration and approval for a service/station
// pair.
type PolicyResolver interface {
	Resolve(ctx context.Context, serviceID string, stationID *string) (scheduling.Policy, error)
}

// CustomerDirectory resolves customers from explicit ids and from
// authenticated principals.
type CustomerDirectory interface {
	GetByID(ctx context.Context, id string) (*customers.Customer, error)
	GetByAuthUser(ctx context.Context, authUserID string) (*customers.Customer, error)
}

// EventRecorder enqueues scheduling events for best-effort delivery.
type EventRecorder interface {
	Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error)
}

// Service implements Slot Reservation and Slot Relocation.
type Service struct {
	store     Store
	resolver  PolicyResolver
	customers CustomerDirectory
	loc       *time.Location
	logger    *logging.Logger

	outbox  EventRecorder
	cache   *cache.ScheduleCache
	metrics *metrics.SchedulingMetrics
}

// NewService creates a placement service.
func NewService(store Store, resolver PolicyResolver, directory CustomerDirectory, loc *time.Location, logger *logging.Logger) *Service {
	if store == nil || resolver == nil || directory == nil {
		panic("appointments: store, resolver and customer directory required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, resolver: resolver, customers: directory, loc: loc, logger: logger}
}

// WithOutbox enables event recording.
func (s *Service) WithOutbox(outbox EventRecorder) *Service {
	s.outbox = outbox
	return s
}

// WithCache enables schedule day-cache invalidation.
func (s *Service) WithCache(c *cache.ScheduleCache) *Service {
	s.cache = c
	return s
}

// WithMetrics enables scheduling metrics.
func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// ReserveParams are the inputs for Slot Reservation. AuthSubject is
// the authenticated principal's identity, used only when CustomerID is
// not supplied explicitly.
type ReserveParams struct {
	ServiceID   string
	CustomerID  string
	AuthSubject string
	Date        string
	StartTime   string
	StationID   string
	Notes       string
	Kind        string
	Name        string
}

// Messages returned alongside a created reservation.
const (
	msgPendingApproval = "Your appointment was received and is pending staff approval."
	msgConfirmed       = "Your appointment is confirmed."
)

// Reserve creates a new appointment at a station/time, applying the
// resolved duration and approval policy. The returned message
// distinguishes pending-approval from confirmed wording.
func (s *Service) Reserve(ctx context.Context, params ReserveParams) (*Appointment, string, error) {
	started := time.Now()
	for _, f := range []struct{ name, value string }{
		{"serviceId", params.ServiceID},
		{"date", params.Date},
		{"startTime", params.StartTime},
		{"stationId", params.StationID},
	} {
		if f.value == "" {
			return nil, "", &MissingFieldError{Field: f.name}
		}
	}

	customerID := params.CustomerID
	if customerID != "" {
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return nil, "", err
		}
	} else {
		if params.AuthSubject == "" {
			return nil, "", customers.ErrCustomerNotFound
		}
		customer, err := s.customers.GetByAuthUser(ctx, params.AuthSubject)
		if err != nil {
			return nil, "", err
		}
		customerID = customer.ID
	}

	station := scheduling.NormalizeStation(params.StationID)
	policy, err := s.resolver.Resolve(ctx, params.ServiceID, station)
	if err != nil {
		return nil, "", err
	}

	start, err := scheduling.ComposeLocal(params.Date, params.StartTime, s.loc)
	if err != nil {
		return nil, "", err
	}
	end := start.Add(time.Duration(policy.DurationMinutes) * time.Minute)

	if station != nil {
		conflict, err := s.store.HasOverlap(ctx, *station, start, end, "")
		if err != nil {
			return nil, "", err
		}
		if conflict {
			s.metrics.ObserveReservation("conflict", "")
			return nil, "", ErrSlotConflict
		}
	}

	status := StatusScheduled
	message := msgConfirmed
	if policy.RequiresApproval {
		status = StatusPending
		message = msgPendingApproval
	}

	kind := params.Kind
	if kind == "" {
		kind = KindBusiness
	}
	appt := &Appointment{
		CustomerID:    customerID,
		ServiceID:     optional(params.ServiceID),
		StationID:     station,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
		PaymentStatus: PaymentUnpaid,
		Kind:          kind,
		Name:          optional(params.Name),
		CustomerNotes: optional(params.Notes),
	}
	if err := s.store.Insert(ctx, appt); err != nil {
		return nil, "", err
	}

	s.logger.Info("appointment reserved",
		"appointment_id", appt.ID, "customer_id", customerID,
		"service_id", params.ServiceID, "status", status,
		"start", start, "duration_minutes", policy.DurationMinutes)
	s.recordEvent(ctx, events.TypeAppointmentReserved, events.AppointmentReserved{
		AppointmentID: appt.ID,
		CustomerID:    customerID,
		ServiceID:     params.ServiceID,
		StationID:     station,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
	})
	s.cache.InvalidateDay(ctx, start)
	s.metrics.ObserveReservation("success", status)
	s.metrics.ObservePlacementLatency("reserve", time.Since(started).Seconds())
	return appt, message, nil
}

// HourSelection is an explicit wall-clock range refinement for hourly
// day-care placements.
type HourSelection struct {
	Start string
	End   string
}

// MoveParams are the inputs for Slot Relocation. The old placement
// fields are diagnostic only; the stored row is the source of truth
// for where the appointment was.
type MoveParams struct {
	AppointmentID   string
	NewStationID    string
	NewStartTime    time.Time
	NewEndTime      time.Time
	OldStationID    string
	OldStartTime    time.Time
	OldEndTime      time.Time
	AppointmentType string

	GardenAppointmentType *string
	GardenIsTrial         *bool
	SelectedHours         *HourSelection
	GardenTrimNails       *bool
	GardenBrush           *bool
	GardenBath            *bool
	LatePickupRequested   *bool
	LatePickupNotes       *string
	InternalNotes         *string
}

// Move relocates an existing appointment to a new station and/or
// window. For hourly day-care placements with an explicit hour
// selection, the date travels with the drag target while the hours are
// pinned to the selection.
func (s *Service) Move(ctx context.Context, params MoveParams) (*Appointment, error) {
	started := time.Now()
	if params.AppointmentType != TypeGrooming && params.AppointmentType != TypeGarden {
		return nil, ErrInvalidAppointmentType
	}

	current, err := s.store.GetByID(ctx, params.AppointmentID)
	if err != nil {
		return nil, err
	}

	start, end := params.NewStartTime, params.NewEndTime
	if params.AppointmentType == TypeGarden &&
		params.GardenAppointmentType != nil && *params.GardenAppointmentType == GardenHourly &&
		params.SelectedHours != nil {
		start, end, err = scheduling.HourRange(params.NewStartTime, params.SelectedHours.Start, params.SelectedHours.End, s.loc)
		if err != nil {
			return nil, err
		}
	}

	station := scheduling.NormalizeStation(params.NewStationID)
	if station != nil {
		conflict, err := s.store.HasOverlap(ctx, *station, start, end, params.AppointmentID)
		if err != nil {
			return nil, err
		}
		if conflict {
			s.metrics.ObserveRelocation("conflict", params.AppointmentType)
			return nil, ErrSlotConflict
		}
	}

	appt, err := s.store.UpdatePlacement(ctx, params.AppointmentID, PlacementUpdate{
		StationID:             station,
		StartTime:             start,
		EndTime:               end,
		GardenAppointmentType: params.GardenAppointmentType,
		GardenIsTrial:         params.GardenIsTrial,
		GardenTrimNails:       params.GardenTrimNails,
		GardenBrush:           params.GardenBrush,
		GardenBath:            params.GardenBath,
		LatePickupRequested:   params.LatePickupRequested,
		LatePickupNotes:       params.LatePickupNotes,
		InternalNotes:         params.InternalNotes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment moved",
		"appointment_id", appt.ID, "type", params.AppointmentType,
		"old_station", params.OldStationID, "old_start", params.OldStartTime,
		"new_station", params.NewStationID, "new_start", start)
	s.recordEvent(ctx, events.TypeAppointmentMoved, events.AppointmentMoved{
		AppointmentID: appt.ID,
		OldStationID:  params.OldStationID,
		NewStationID:  station,
		StartTime:     start,
		EndTime:       end,
	})
	// Invalidate the day the row actually occupied, not the one the
	// client claims it did.
	s.cache.InvalidateDay(ctx, current.StartTime, start)
	s.metrics.ObserveRelocation("success", params.AppointmentType)
	s.metrics.ObservePlacementLatency("move", time.Since(started).Seconds())
	return appt, nil
}

// DaySchedule returns all appointments starting on the given calendar
// date, served from the day-cache when possible.
func (s *Service) DaySchedule(ctx context.Context, date string) ([]Appointment, error) {
	from, err := scheduling.ComposeLocal(date, "00:00", s.loc)
	if err != nil {
		return nil, err
	}
	to := from.AddDate(0, 0, 1)

	if cached := s.cache.GetDay(ctx, from); cached != nil {
		var out []Appointment
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
		// A corrupt entry falls through to the database read.
		s.cache.InvalidateDay(ctx, from)
	}

	out, err := s.store.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(out); err == nil {
		s.cache.SetDay(ctx, from, payload)
	}
	return out, nil
}

func (s *Service) recordEvent(ctx context.Context, eventType string, payload any) {
	if s.outbox == nil {
		return
	}
	if _, err := s.outbox.Insert(ctx, eventType, payload); err != nil {
		// Notifications are best effort; the placement already
		// happened.
		s.logger.Error("failed to record scheduling event", "error", err, "type", eventType)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
