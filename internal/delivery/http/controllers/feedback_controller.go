package controllers

import (
	"log/slog"
	"net/http"

	"matchday/internal/delivery/http/helpers"
	"matchday/internal/delivery/http/middleware"
	"matchday/internal/domain"
)

type FeedbackController struct {
	Logger  *slog.Logger
	Service domain.FeedbackService
}

func NewFeedbackController(logger *slog.Logger, svc domain.FeedbackService) *FeedbackController {
	return &FeedbackController{Logger: logger, Service: svc}
}

// SubmitFeedbackRequest is the request body for POST /events/{eventID}/feedback.
type SubmitFeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// Validate implements helpers.Validator.
func (r *SubmitFeedbackRequest) Validate() []string {
	if r.Rating < 1 || r.Rating > 5 {
		return []string{"rating must be between 1 and 5"}
	}
	return nil
}

// Submit godoc
// @Summary Submit post-event feedback
// @Description Records a rating and optional comment for the event. Requires prior attendance: the caller must have been checked in, or still be confirmed after the event ended. Re-submission replaces the earlier feedback.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SubmitFeedbackRequest true "Feedback payload"
// @Success 201 {object} helpers.APIResponse "data is the stored feedback"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feedback_not_eligible"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Router /events/{eventID}/feedback [post]
func (c *FeedbackController) Submit(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req SubmitFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	fb, err := c.Service.Submit(r.Context(), eventID, userID, req.Rating, req.Comment)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, fb)
}
