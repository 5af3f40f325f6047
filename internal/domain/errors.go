package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to stable
// API error codes; anything else is treated as an internal error.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to act on the
	// target entity (e.g. a non-organizer invoking an organizer action).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for request payloads that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyConfirmed is returned when a user joins an event they
	// already hold a confirmed, checked-in, or no-show record for.
	ErrAlreadyConfirmed = errors.New("already confirmed for this event")

	// ErrWaitlistDisabled is returned when an event is full and does not
	// accept waitlisted attendees.
	ErrWaitlistDisabled = errors.New("event is full and waitlisting is disabled")

	// ErrNotAttending is returned when a user leaves an event they hold no
	// active record for.
	ErrNotAttending = errors.New("not attending this event")

	// ErrOrganizerCannotLeave is returned when an organizer tries to leave
	// their own event.
	ErrOrganizerCannotLeave = errors.New("organizers cannot leave their own event")

	// ErrInvalidTransition is returned when an organizer action targets a
	// record in a state it cannot move from (e.g. check-in on a cancelled
	// record).
	ErrInvalidTransition = errors.New("invalid attendance transition")

	// ErrFeedbackNotEligible is returned when feedback is submitted without
	// qualifying prior attendance.
	ErrFeedbackNotEligible = errors.New("not eligible to leave feedback")

	// ErrDuplicateEmail is returned when a signup reuses an existing email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrTransient is returned after a transaction kept failing on lock or
	// serialization conflicts; callers may retry the whole request.
	ErrTransient = errors.New("transient storage conflict, retry")
)
