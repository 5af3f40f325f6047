package helpers

import (
	"errors"
	"net/http"

	"matchday/internal/domain"
)

// WriteDomainError maps a known domain sentinel error to its stable API
// error code and HTTP status and writes the envelope. Returns false when the
// error is not a known business error, in which case the caller should log
// it and respond 500.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeEventNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		WriteJSONError(w, http.StatusConflict, ErrCodeAlreadyConfirmed, "already confirmed for this event")
	case errors.Is(err, domain.ErrWaitlistDisabled):
		WriteJSONError(w, http.StatusConflict, ErrCodeWaitlistDisabled, "event is full and waitlisting is disabled")
	case errors.Is(err, domain.ErrNotAttending):
		WriteJSONError(w, http.StatusConflict, ErrCodeNotAttending, "not attending this event")
	case errors.Is(err, domain.ErrOrganizerCannotLeave):
		WriteJSONError(w, http.StatusConflict, ErrCodeOrganizerCannotLeave, "organizers cannot leave their own event")
	case errors.Is(err, domain.ErrInvalidTransition):
		WriteJSONError(w, http.StatusConflict, ErrCodeInvalidTransition, "invalid attendance transition")
	case errors.Is(err, domain.ErrFeedbackNotEligible):
		WriteJSONError(w, http.StatusForbidden, ErrCodeFeedbackNotEligible, "not eligible to leave feedback")
	case errors.Is(err, domain.ErrTransient):
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeTransient, "temporary conflict, please retry")
	default:
		return false
	}
	return true
}
