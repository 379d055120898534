package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier mails the administrators through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     []string
}

func NewEmailNotifier(client *resend.Client, from string, to []string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from, to: to}
}

func (n *EmailNotifier) Publish(ctx context.Context, subject, message string) error {
	if len(n.to) == 0 {
		return errors.New("email: no recipients configured")
	}
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Text:    message,
	}
	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return fmt.Errorf("email rate limit exceeded (resets in %s seconds): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}
	return nil
}
