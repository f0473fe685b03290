package service

import (
	"context"
	"fmt"
	"time"

	"devicepool-backend/internal/domain"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	client     *sendgrid.Client
	from       string
	recipients []string
}

func NewEmailService(apiKey, from string, recipients []string) EmailService {
	return &emailService{
		client:     sendgrid.NewSendClient(apiKey),
		from:       from,
		recipients: recipients,
	}
}

// SendTestModeChangeNotice mails the QA distribution list when the
// effective test mode flips.
func (s *emailService) SendTestModeChangeNotice(ctx context.Context, status *domain.SystemStatus) error {
	subject := "Device pool: test mode deactivated, rentals open"
	body := "Test mode has been deactivated. Device rentals are available again."
	if status.IsTestMode {
		subject = "Device pool: test mode activated, rentals blocked"
		body = "Test mode has been activated. Device rentals are blocked until further notice."
		if status.TestType != nil {
			body += fmt.Sprintf("\n\nTest type: %s", *status.TestType)
		}
		if status.TestMessage != nil {
			body += fmt.Sprintf("\n\nMessage: %s", *status.TestMessage)
		}
		if status.TestStartDate != nil && status.TestEndDate != nil {
			body += fmt.Sprintf("\n\nWindow: %s to %s",
				status.TestStartDate.Format(time.RFC3339),
				status.TestEndDate.Format(time.RFC3339))
		}
	}

	sender := mail.NewEmail("Device Pool", s.from)
	for _, rcpt := range s.recipients {
		m := mail.NewSingleEmail(sender, subject, mail.NewEmail("", rcpt), body, "")
		resp, err := s.client.SendWithContext(ctx, m)
		if err != nil {
			return fmt.Errorf("failed to send notice to %s: %w", rcpt, err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("sendgrid rejected notice to %s: status %d", rcpt, resp.StatusCode)
		}
	}
	return nil
}
