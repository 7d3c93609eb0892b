package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrAppointmentNotFound is returned when no appointment row matches.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotConflict is returned when the target station already has a
	// non-cancelled appointment intersecting the requested window.
	ErrSlotConflict = errors.New("the selected time slot is already taken on this station")

	// ErrInvalidAppointmentType is returned when the relocation type is
	// neither grooming nor garden.
	ErrInvalidAppointmentType = errors.New("appointment type must be grooming or garden")
)

// MissingFieldError names the first absent required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
