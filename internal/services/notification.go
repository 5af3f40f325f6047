package services

import (
	"context"
	"fmt"
	"log/slog"

	"matchday/internal/domain"
)

type notificationService struct {
	mailer    domain.Mailer
	renderer  domain.EmailTemplateRenderer
	userRepo  domain.UserRepository
	eventRepo domain.EventRepository
	logger    *slog.Logger
}

// NewNotificationService returns a NotificationService that emails attendance
// notices. It is called by the delivery layer after a transition has
// committed; failures here never affect the committed state.
func NewNotificationService(
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		mailer:    mailer,
		renderer:  renderer,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// SendPromotionNotice emails the promoted attendee using the "promotion"
// template.
func (s *notificationService) SendPromotionNotice(ctx context.Context, notice domain.PromotionNotice) error {
	user, err := s.userRepo.GetByID(ctx, notice.UserID)
	if err != nil {
		return fmt.Errorf("get promoted user: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, notice.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	data := &domain.PromotionNoticeEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventName: event.Name,
	}
	subject, htmlBody, textBody, err := s.renderer.Render("promotion", data)
	if err != nil {
		return fmt.Errorf("render promotion template: %w", err)
	}
	if err := s.mailer.Send(user.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send promotion email: %w", err)
	}
	s.logger.InfoContext(ctx, "promotion notice sent", "event_id", notice.EventID, "user_id", notice.UserID)
	return nil
}
