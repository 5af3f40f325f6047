package controllers

import (
	"log/slog"
	"net/http"

	"matchday/internal/delivery/http/helpers"
	"matchday/internal/delivery/http/middleware"
	"matchday/internal/domain"
)

type AttendanceController struct {
	Logger   *slog.Logger
	Service  domain.AttendanceService
	LogRepo  domain.AttendanceLogRepository
	Events   domain.EventService
	Notifier domain.NotificationService
}

func NewAttendanceController(
	logger *slog.Logger,
	svc domain.AttendanceService,
	logRepo domain.AttendanceLogRepository,
	events domain.EventService,
	notifier domain.NotificationService,
) *AttendanceController {
	return &AttendanceController{
		Logger:   logger,
		Service:  svc,
		LogRepo:  logRepo,
		Events:   events,
		Notifier: notifier,
	}
}

// Join godoc
// @Summary RSVP to an event
// @Description Confirms the authenticated user for the event while a slot is free, otherwise waitlists them in FIFO order. Joining while already waitlisted is a no-op success.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains record, waitlisted flag, and summary"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_confirmed or waitlist_disabled"
// @Failure 503 {object} helpers.APIResponse "error.code: transient"
// @Router /events/{eventID}/attendance [post]
func (c *AttendanceController) Join(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// Leave godoc
// @Summary Cancel an RSVP
// @Description Cancels the authenticated user's active record. When the cancellation frees a confirmed slot the earliest-waiting attendee is promoted; the response names them.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains record, promoted_user_id, and summary"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_attending or organizer_cannot_leave"
// @Failure 503 {object} helpers.APIResponse "error.code: transient"
// @Router /events/{eventID}/attendance [delete]
func (c *AttendanceController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.Leave(r.Context(), eventID, userID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	// The transition is committed; notification failure is logged, not
	// surfaced.
	if result.PromotedUserID != "" {
		notice := domain.PromotionNotice{EventID: eventID, UserID: result.PromotedUserID}
		if err := c.Notifier.SendPromotionNotice(r.Context(), notice); err != nil {
			c.Logger.ErrorContext(r.Context(), "promotion notice failed", "event_id", eventID, "user_id", result.PromotedUserID, "err", err)
		}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// GetSummary godoc
// @Summary Get attendance summary
// @Description Returns confirmed count, waitlist count, capacity, and the is_full flag, computed fresh from record aggregates.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is the attendance summary"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Router /events/{eventID}/attendance [get]
func (c *AttendanceController) GetSummary(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}

	summary, err := c.Service.GetSummary(r.Context(), eventID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// AttendanceLogResponse is the success payload for GET /events/{eventID}/attendance/log.
type AttendanceLogResponse struct {
	Entries    []*domain.AttendanceLogEntry `json:"entries"`
	Pagination helpers.PaginationMeta       `json:"pagination"`
}

// ListLog godoc
// @Summary List attendance audit entries
// @Description Returns the event's audit log, newest first. Organizer only.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse "data contains entries and pagination"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Router /events/{eventID}/attendance/log [get]
func (c *AttendanceController) ListLog(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDFromPath(w, r)
	if eventID == "" {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	event, err := c.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if event.OrganizerID != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return
	}

	params := helpers.ParsePagination(r)
	entries, total, err := c.LogRepo.ListByEvent(r.Context(), eventID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendanceLogResponse{
		Entries:    entries,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
