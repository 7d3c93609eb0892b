package scheduling

import "errors"

var (
	// ErrStationNotBookableRemotely is returned when the service/station
	// policy forbids customer-initiated booking for the pair.
	ErrStationNotBookableRemotely = errors.New("this station cannot be booked remotely for the selected service")

	// ErrInvalidDateTime is returned when a calendar date and wall-clock
	// time cannot be composed into an instant.
	ErrInvalidDateTime = errors.New("invalid date or time")
)
