package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/events"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

// BookingNotifier turns scheduling outbox events into emails for the
// salon's notifications inbox. It implements events.DeliveryHandler.
type BookingNotifier struct {
	sender EmailSender
	inbox  string
	logger *logging.Logger
}

// NewBookingNotifier creates a notifier. inbox is the staff address
// that receives booking notifications.
func NewBookingNotifier(sender EmailSender, inbox string, logger *logging.Logger) *BookingNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{sender: sender, inbox: inbox, logger: logger}
}

// Handle renders and sends one event. Unknown event types are
// acknowledged without an email so they do not clog the outbox.
func (n *BookingNotifier) Handle(ctx context.Context, entry events.OutboxEntry) error {
	if n.sender == nil || n.inbox == "" {
		n.logger.Debug("booking notifications disabled, dropping event", "type", entry.Type)
		return nil
	}

	var subject, body string
	switch entry.Type {
	case events.TypeAppointmentReserved:
		var payload events.AppointmentReserved
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		subject = "New appointment reserved"
		body = fmt.Sprintf("Appointment %s for customer %s, %s to %s (status %s).",
			payload.AppointmentID, payload.CustomerID,
			payload.StartTime.Format("Mon 02 Jan 15:04"),
			payload.EndTime.Format("15:04"), payload.Status)
	case events.TypeAppointmentMoved:
		var payload events.AppointmentMoved
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		station := "day care"
		if payload.NewStationID != nil {
			station = "station " + *payload.NewStationID
		}
		subject = "Appointment moved"
		body = fmt.Sprintf("Appointment %s moved to %s, %s to %s.",
			payload.AppointmentID, station,
			payload.StartTime.Format("Mon 02 Jan 15:04"),
			payload.EndTime.Format("15:04"))
	case events.TypeMeetingBooked:
		var payload events.MeetingBooked
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		subject = "Proposed meeting booked"
		body = fmt.Sprintf("Meeting %s was claimed by customer %s (appointment %s).",
			payload.MeetingID, payload.CustomerID, payload.AppointmentID)
	default:
		n.logger.Warn("unknown outbox event type", "type", entry.Type, "event_id", entry.ID)
		return nil
	}

	return n.sender.Send(ctx, EmailMessage{
		To:      n.inbox,
		ToName:  "Salon notifications",
		Subject: subject,
		Body:    body,
	})
}
