package appointments

import "time"

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Appointment kinds.
const (
	KindBusiness = "business"
	KindPrivate  = "private"
)

// Appointment types for relocation.
const (
	TypeGrooming = "grooming"
	TypeGarden   = "garden"
)

// Garden sub-types.
const (
	GardenFullDay = "full-day"
	GardenHourly  = "hourly"
)

// Appointment is a scheduled occupation of one station for one
// customer over a time interval. StationID is null for day-care
// ("garden") placements, which are not tied to a physical station.
// ServiceID is null for rows created by booking a proposed meeting.
type Appointment struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	ServiceID     *string   `json:"service_id,omitempty"`
	StationID     *string   `json:"station_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Kind          string    `json:"appointment_kind"`
	Name          *string   `json:"appointment_name,omitempty"`
	CustomerNotes *string   `json:"customer_notes,omitempty"`
	InternalNotes *string   `json:"internal_notes,omitempty"`

	// Day-care attributes, null for grooming appointments.
	GardenAppointmentType *string `json:"garden_appointment_type,omitempty"`
	GardenIsTrial         *bool   `json:"garden_is_trial,omitempty"`
	GardenTrimNails       *bool   `json:"garden_trim_nails,omitempty"`
	GardenBrush           *bool   `json:"garden_brush,omitempty"`
	GardenBath            *bool   `json:"garden_bath,omitempty"`
	LatePickupRequested   *bool   `json:"late_pickup_requested,omitempty"`
	LatePickupNotes       *string `json:"late_pickup_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
