package meetings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/cache"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/events"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/observability/metrics"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

var meetingsTracer = otel.Tracer("barbery.internal.meetings")

// Store is the persistence surface the booking service needs.
type Store interface {
	GetWithRelations(ctx context.Context, id string) (*ProposedMeeting, error)
	Claim(ctx context.Context, params ClaimParams) (string, error)
}

// CustomerDirectory resolves customers from authenticated principals.
type CustomerDirectory interface {
	GetByAuthUser(ctx context.Context, authUserID string) (*customers.Customer, error)
}

// EventRecorder enqueues booking events for best-effort delivery.
type EventRecorder interface {
	Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error)
}

// Service implements Proposed-Meeting Booking.
type Service struct {
	store     Store
	customers CustomerDirectory
	logger    *logging.Logger

	outbox  EventRecorder
	cache   *cache.ScheduleCache
	metrics *metrics.SchedulingMetrics
}

// NewService creates a booking service.
func NewService(store Store, directory CustomerDirectory, logger *logging.Logger) *Service {
	if store == nil || directory == nil {
		panic("meetings: store and customer directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, customers: directory, logger: logger}
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

// WithMetrics enables booking metrics.
func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// BookParams are the inputs for Proposed-Meeting Booking.
type BookParams struct {
	MeetingID   string
	Code        string
	AuthSubject string
}

// BookResult links the claimed meeting to the created appointment.
type BookResult struct {
	AppointmentID string
	MeetingID     string
}

// Book converts a still-open proposed meeting into a confirmed
// appointment for the calling customer. Eligibility requires an
// invite, a matching customer category, or the meeting's claim code;
// reschedule slots are additionally locked to their original customer.
func (s *Service) Book(ctx context.Context, params BookParams) (*BookResult, error) {
	ctx, span := meetingsTracer.Start(ctx, "meetings.book")
	defer span.End()
	span.SetAttributes(attribute.String("barbery.meeting_id", params.MeetingID))

	started := time.Now()
	customer, err := s.customers.GetByAuthUser(ctx, params.AuthSubject)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	meeting, err := s.store.GetWithRelations(ctx, params.MeetingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if meeting.Status != "" && meeting.Status != StatusProposed {
		s.metrics.ObserveMeetingClaim("unavailable")
		return nil, ErrMeetingUnavailable
	}
	if !eligible(meeting, customer, params.Code) {
		s.metrics.ObserveMeetingClaim("forbidden")
		return nil, ErrNotEligible
	}
	if meeting.RescheduleCustomerID != nil && *meeting.RescheduleCustomerID != customer.ID {
		s.metrics.ObserveMeetingClaim("forbidden")
		return nil, ErrNotEligible
	}
	if meeting.StartTime == nil || meeting.EndTime == nil {
		return nil, ErrMissingMeetingTimes
	}

	appointmentID, err := s.store.Claim(ctx, ClaimParams{
		MeetingID:               meeting.ID,
		CustomerID:              customer.ID,
		StationID:               meeting.StationID,
		StartTime:               *meeting.StartTime,
		EndTime:                 *meeting.EndTime,
		Name:                    meeting.Title,
		Notes:                   meeting.Summary,
		RescheduleAppointmentID: meeting.RescheduleAppointmentID,
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrMeetingUnavailable) {
			s.metrics.ObserveMeetingClaim("lost_race")
		}
		return nil, err
	}

	s.logger.Info("proposed meeting booked",
		"meeting_id", meeting.ID, "appointment_id", appointmentID,
		"customer_id", customer.ID, "start", *meeting.StartTime)
	if s.outbox != nil {
		if _, err := s.outbox.Insert(ctx, events.TypeMeetingBooked, events.MeetingBooked{
			MeetingID:     meeting.ID,
			AppointmentID: appointmentID,
			CustomerID:    customer.ID,
			StartTime:     *meeting.StartTime,
			EndTime:       *meeting.EndTime,
		}); err != nil {
			s.logger.Error("failed to record booking event", "error", err, "meeting_id", meeting.ID)
		}
	}
	s.cache.InvalidateDay(ctx, *meeting.StartTime)
	s.metrics.ObserveMeetingClaim("success")
	s.metrics.ObservePlacementLatency("book", time.Since(started).Seconds())
	return &BookResult{AppointmentID: appointmentID, MeetingID: meeting.ID}, nil
}

func eligible(meeting *ProposedMeeting, customer *customers.Customer, code string) bool {
	for _, inv := range meeting.Invites {
		if inv.CustomerID == customer.ID {
			return true
		}
	}
	if customer.CustomerTypeID != nil {
		for _, typeID := range meeting.Categories {
			if typeID == *customer.CustomerTypeID {
				return true
			}
		}
	}
	if code != "" && meeting.Code != nil && code == *meeting.Code {
		return true
	}
	return false
}
