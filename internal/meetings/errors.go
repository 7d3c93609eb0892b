package meetings

import "errors"

var (
	// ErrMeetingNotFound is returned when no proposed meeting exists
	// with the requested id.
	ErrMeetingNotFound = errors.New("proposed meeting not found")

	// ErrMeetingUnavailable is returned when the meeting has already
	// been claimed or withdrawn.
	ErrMeetingUnavailable = errors.New("meeting is no longer available")

	// ErrNotEligible is returned when the caller is neither invited,
	// category-matched, nor holding the claim code, or when the slot is
	// earmarked for a different customer's reschedule.
	ErrNotEligible = errors.New("you are not eligible to book this meeting")

	// ErrMissingMeetingTimes is returned when the meeting record lacks
	// a start or end timestamp and cannot produce an appointment.
	ErrMissingMeetingTimes = errors.New("meeting is missing start or end time")
)
