package events

import "time"

// Event types recorded by the scheduling flows.
const (
	TypeAppointmentReserved = "appointment.reserved"
	TypeAppointmentMoved    = "appointment.moved"
	TypeMeetingBooked       = "meeting.booked"
)

// AppointmentReserved is the payload for TypeAppointmentReserved.
type AppointmentReserved struct {
	AppointmentID string    `json:"appointment_id"`
	CustomerID    string    `json:"customer_id"`
	ServiceID     string    `json:"service_id"`
	StationID     *string   `json:"station_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

// AppointmentMoved is the payload for TypeAppointmentMoved.
type AppointmentMoved struct {
	AppointmentID string    `json:"appointment_id"`
	OldStationID  string    `json:"old_station_id"`
	NewStationID  *string   `json:"new_station_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// MeetingBooked is the payload for TypeMeetingBooked.
type MeetingBooked struct {
	MeetingID     string    `json:"meeting_id"`
	AppointmentID string    `json:"appointment_id"`
	CustomerID    string    `json:"customer_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}
