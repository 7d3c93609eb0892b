package scheduling

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "15:04"
)

// ComposeLocal combines a calendar date ("2006-01-02") and a
// wall-clock time ("15:04") into an instant in the salon's timezone.
func ComposeLocal(date, clock string, loc *time.Location) (time.Time, error) {
	composed, err := time.ParseInLocation(dateLayout+" "+hourLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidDateTime, date, clock)
	}
	return composed, nil
}

// HourRange pins an explicit start/end wall-clock selection onto the
// calendar date of anchor. The date travels with the drag target; the
// hour range comes from the customer's explicit selection.
func HourRange(anchor time.Time, startClock, endClock string, loc *time.Location) (time.Time, time.Time, error) {
	date := anchor.In(loc).Format(dateLayout)
	start, err := ComposeLocal(date, startClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ComposeLocal(date, endClock, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q not after start %q", ErrInvalidDateTime, endClock, startClock)
	}
	return start, end, nil
}
