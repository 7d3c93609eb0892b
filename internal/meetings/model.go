package meetings

import "time"

// Proposed meeting statuses. Booking handles only the proposed to
// booked transition; other statuses are staff-managed.
const (
	StatusProposed = "proposed"
	StatusBooked   = "booked"
)

// Invite sources.
const (
	InviteManual   = "manual"
	InviteCategory = "category"
)

// Invite targets a specific customer for a proposed meeting.
type Invite struct {
	CustomerID string `json:"customer_id"`
	Source     string `json:"source"`
}

// ProposedMeeting is a staff-published open time window. It may be
// restricted to invited customers, to customer-type categories, or
// claimable with a shareable code. When it was published to reschedule
// an existing appointment, the reschedule fields link back to that
// appointment and pin the slot to its customer.
type ProposedMeeting struct {
	ID          string     `json:"id"`
	StationID   *string    `json:"station_id"`
	ServiceType string     `json:"service_type"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Status      string     `json:"status"`
	Title       *string    `json:"title"`
	Summary     *string    `json:"summary"`
	Notes       *string    `json:"notes"`
	Code        *string    `json:"code"`

	RescheduleAppointmentID *string    `json:"reschedule_appointment_id"`
	RescheduleCustomerID    *string    `json:"reschedule_customer_id"`
	OriginalStartTime       *time.Time `json:"original_start_time"`
	OriginalEndTime         *time.Time `json:"original_end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Invites    []Invite `json:"invites"`
	Categories []string `json:"categories"`
}
