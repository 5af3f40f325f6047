package controllers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"matchday/internal/delivery/http/helpers"
	"matchday/internal/domain"
)

type SweepController struct {
	Logger           *slog.Logger
	Service          domain.SweepService
	Notifier         domain.NotificationService
	Token            string
	DefaultLookahead time.Duration
}

func NewSweepController(logger *slog.Logger, svc domain.SweepService, notifier domain.NotificationService, token string, defaultLookahead time.Duration) *SweepController {
	return &SweepController{
		Logger:           logger,
		Service:          svc,
		Notifier:         notifier,
		Token:            token,
		DefaultLookahead: defaultLookahead,
	}
}

// SweepRequest is the request body for POST /internal/attendance/sweep.
// Lookahead is a Go duration string; empty uses the configured default.
type SweepRequest struct {
	Lookahead string `json:"lookahead,omitempty"`
}

// Sweep godoc
// @Summary Run the waitlist promotion sweep
// @Description Promotes waitlisted attendees for every event starting within the lookahead window that has spare capacity. Invoked by an external scheduler; authenticated with the X-Sweep-Token header.
// @Tags internal
// @Accept json
// @Produce json
// @Param X-Sweep-Token header string true "Shared sweep token"
// @Param body body controllers.SweepRequest false "Optional lookahead override"
// @Success 200 {object} helpers.APIResponse "data contains events_processed and promotions"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /internal/attendance/sweep [post]
func (c *SweepController) Sweep(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Sweep-Token")
	if c.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(c.Token)) != 1 {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid sweep token")
		return
	}

	lookahead := c.DefaultLookahead
	if r.ContentLength > 0 {
		var req SweepRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
		if req.Lookahead != "" {
			d, err := time.ParseDuration(req.Lookahead)
			if err != nil || d <= 0 {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid lookahead")
				return
			}
			lookahead = d
		}
	}

	result, err := c.Service.SweepWaitlists(r.Context(), lookahead)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "sweep failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	for _, notice := range result.Promotions {
		if err := c.Notifier.SendPromotionNotice(r.Context(), notice); err != nil {
			c.Logger.ErrorContext(r.Context(), "promotion notice failed", "event_id", notice.EventID, "user_id", notice.UserID, "err", err)
		}
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
