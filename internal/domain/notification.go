package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PromotionNoticeEmailData holds data for the waitlist promotion email.
type PromotionNoticeEmailData struct {
	Email     string
	Name      string
	EventName string
}

// NotificationService delivers attendance notifications. Implementations are
// invoked by controllers after the state transition has committed; a delivery
// failure never rolls back the transition.
type NotificationService interface {
	SendPromotionNotice(ctx context.Context, notice PromotionNotice) error
}
