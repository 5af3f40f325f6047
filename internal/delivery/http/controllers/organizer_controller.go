package controllers

import (
	"log/slog"
	"net/http"

	"matchday/internal/delivery/http/helpers"
	"matchday/internal/delivery/http/middleware"
	"matchday/internal/domain"
)

type OrganizerController struct {
	Logger   *slog.Logger
	Service  domain.OrganizerService
	Notifier domain.NotificationService
}

func NewOrganizerController(logger *slog.Logger, svc domain.OrganizerService, notifier domain.NotificationService) *OrganizerController {
	return &OrganizerController{Logger: logger, Service: svc, Notifier: notifier}
}

// OrganizerActionRequest is the request body for POST /events/{eventID}/organizer.
type OrganizerActionRequest struct {
	Action       string  `json:"action"`
	TargetUserID string  `json:"target_user_id,omitempty"`
	Rating       int     `json:"rating,omitempty"`
	Comment      *string `json:"comment,omitempty"`
}

// Validate implements helpers.Validator.
func (r *OrganizerActionRequest) Validate() []string {
	if r.Action == "" {
		return []string{"action is required"}
	}
	if !domain.OrganizerAction(r.Action).Valid() {
		return []string{"unknown action"}
	}
	return nil
}

// Act godoc
// @Summary Run an organizer action
// @Description Forces an attendance transition (confirm/waitlist/cancel/check_in/no_show), sweeps the event's waitlist, or records feedback on a participant's behalf. Organizer only. Returns the refreshed roster, summary, and recent feedback.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.OrganizerActionRequest true "Action payload"
// @Success 200 {object} helpers.APIResponse "data contains roster, summary, recent_feedback, promoted_user_ids"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 503 {object} helpers.APIResponse "error.code: transient"
// @Router /events/{eventID}/organizer [post]
func (c *OrganizerController) Act(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req OrganizerActionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Act(r.Context(), domain.OrganizerRequest{
		EventID:      eventID,
		ActorID:      userID,
		Action:       domain.OrganizerAction(req.Action),
		TargetUserID: req.TargetUserID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	for _, promotedID := range result.PromotedUserIDs {
		notice := domain.PromotionNotice{EventID: eventID, UserID: promotedID}
		if err := c.Notifier.SendPromotionNotice(r.Context(), notice); err != nil {
			c.Logger.ErrorContext(r.Context(), "promotion notice failed", "event_id", eventID, "user_id", promotedID, "err", err)
		}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
