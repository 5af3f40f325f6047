package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"matchday/internal/delivery/http/middleware"
	"matchday/internal/domain"
)

const testEventID = "7b1e1a2e-0c6d-4b6f-9d7a-2f84a7f3b111"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventRequest builds a request carrying the eventID path value and,
// when userID is non-empty, an authenticated context.
func eventRequest(method, userID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, "http://test/events/"+testEventID, body)
	req.SetPathValue("eventID", testEventID)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// fakeNotifier records promotion notices and optionally fails.
type fakeNotifier struct {
	notices []domain.PromotionNotice
	err     error
}

func (f *fakeNotifier) SendPromotionNotice(ctx context.Context, notice domain.PromotionNotice) error {
	if f.err != nil {
		return f.err
	}
	f.notices = append(f.notices, notice)
	return nil
}
