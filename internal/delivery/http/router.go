package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"matchday/internal/delivery/http/controllers"
	"matchday/internal/delivery/http/middleware"
	"matchday/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	attendanceController *controllers.AttendanceController,
	organizerController *controllers.OrganizerController,
	feedbackController *controllers.FeedbackController,
	sweepController *controllers.SweepController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListUpcomingEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))

	// Attendance
	mux.HandleFunc("GET /events/{eventID}/attendance", auth(attendanceController.GetSummary))
	mux.HandleFunc("POST /events/{eventID}/attendance", auth(attendanceController.Join))
	mux.HandleFunc("DELETE /events/{eventID}/attendance", auth(attendanceController.Leave))
	mux.HandleFunc("GET /events/{eventID}/attendance/log", auth(attendanceController.ListLog))

	// Organizer controls
	mux.HandleFunc("POST /events/{eventID}/organizer", auth(organizerController.Act))

	// Feedback
	mux.HandleFunc("POST /events/{eventID}/feedback", auth(feedbackController.Submit))

	// Internal, for the external scheduler
	mux.HandleFunc("POST /internal/attendance/sweep", sweepController.Sweep)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
