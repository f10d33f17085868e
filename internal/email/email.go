// Package email sends approved reply drafts via SendGrid. Transmission
// success is what drives a thread's transition to the sent state.
package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service dispatches outbound replies through SendGrid
type Service struct {
	apiKey      string
	fromAddress string
	fromName    string
}

// NewService creates an outbound email service
func NewService(apiKey, fromAddress, fromName string) *Service {
	if fromName == "" {
		fromName = "Mailflow"
	}
	return &Service{
		apiKey:      apiKey,
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// SendReply transmits a reply to the given recipient
func (s *Service) SendReply(recipient, subject, body string) error {
	if s.apiKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromAddress)
	to := mail.NewEmail("", recipient)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}
